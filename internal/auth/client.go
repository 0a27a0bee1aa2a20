// Package auth talks to the remote authentication service and exposes the
// current user as a watched value for the rest of the storefront.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 8 * time.Second

// User is the authenticated visitor as reported by the auth service.
type User struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// IsAdmin reports whether the user carries the back-office role.
func (u User) IsAdmin() bool { return u.Role == "ADMIN" }

// Credentials is a token plus the user it belongs to.
type Credentials struct {
	Token string
	User  User
}

// ErrMissingCredentials is returned when email or password is blank.
var ErrMissingCredentials = errors.New("auth: missing email or password")

// Client issues login and register calls against the auth API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs an auth client. When baseURL is empty, the client
// accepts any credentials and issues fake tokens.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// Login exchanges email and password for a token and user record.
func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Credentials{}, ErrMissingCredentials
	}
	if c == nil || c.baseURL == "" {
		return fakeCredentials(email), nil
	}
	return c.post(ctx, "login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates an account and returns its credentials.
func (c *Client) Register(ctx context.Context, name, email, password string) (Credentials, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Credentials{}, ErrMissingCredentials
	}
	if c == nil || c.baseURL == "" {
		creds := fakeCredentials(email)
		creds.User.Name = strings.TrimSpace(name)
		return creds, nil
	}
	return c.post(ctx, "register", map[string]string{
		"name":     strings.TrimSpace(name),
		"email":    email,
		"password": password,
	})
}

func (c *Client) post(ctx context.Context, action string, body map[string]string) (Credentials, error) {
	endpoint, err := url.JoinPath(c.baseURL, "auth", action)
	if err != nil {
		return Credentials{}, err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Credentials{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Credentials{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Credentials{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return Credentials{}, fmt.Errorf("auth: %s status %d: %s", action, resp.StatusCode, drainError(resp.Body))
	}

	var p authPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Credentials{}, err
	}
	return p.toCredentials(), nil
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}

type authPayload struct {
	Token string      `json:"token"`
	ID    json.Number `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  string      `json:"role"`
}

func (p authPayload) toCredentials() Credentials {
	return Credentials{
		Token: strings.TrimSpace(p.Token),
		User: User{
			ID:    p.ID.String(),
			Name:  strings.TrimSpace(p.Name),
			Email: strings.TrimSpace(p.Email),
			Role:  strings.ToUpper(strings.TrimSpace(p.Role)),
		},
	}
}
