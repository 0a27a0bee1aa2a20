package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	defaultTimeout    = 8 * time.Second
	idempotencyHeader = "Idempotency-Key"
)

// TokenSource supplies the bearer token for the checkout call.
type TokenSource func() string

// Client creates orders from the current remote cart.
type Client struct {
	baseURL string
	token   TokenSource
	http    *http.Client

	// offline substitute for the backend emptying the cart on order creation
	emptyCart func(ctx context.Context) error
}

// NewClient constructs a checkout client. When baseURL is empty, order
// creation is simulated locally.
func NewClient(baseURL string, token TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   token,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// SetOfflineEmptyCart registers the stand-in for the backend's
// empty-the-cart side effect, invoked when an order is simulated locally.
func (c *Client) SetOfflineEmptyCart(fn func(ctx context.Context) error) {
	c.emptyCart = fn
}

// PlaceOrder asks the backend to turn the current cart into an order and
// returns the server-issued order identifier. The backend empties the cart as
// a side effect; the simulated path mirrors that through the registered hook.
func (c *Client) PlaceOrder(ctx context.Context) (string, error) {
	if c == nil || c.baseURL == "" {
		if c != nil && c.emptyCart != nil {
			if err := c.emptyCart(ctx); err != nil {
				return "", fmt.Errorf("checkout: empty cart: %w", err)
			}
		}
		return fakeOrderID(), nil
	}

	endpoint, err := url.JoinPath(c.baseURL, "checkout")
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader([]byte("{}")))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(idempotencyHeader, ulid.Make().String())
	if c.token != nil {
		if tok := strings.TrimSpace(c.token()); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("checkout: status %d: %s", resp.StatusCode, drainError(resp.Body))
	}

	var payload checkoutPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	orderID := payload.OrderID.String()
	if orderID == "" {
		return "", fmt.Errorf("checkout: response carried no order id")
	}
	return orderID, nil
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}

type checkoutPayload struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	OrderID json.Number `json:"orderId"`
}

func fakeOrderID() string {
	return fmt.Sprintf("%d", 10000+rand.Intn(90000))
}
