package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"gearhaus.dev/gear-web/internal/domain"
)

const (
	defaultTimeout    = 8 * time.Second
	idempotencyHeader = "Idempotency-Key"
)

// Remote is the backing cart service. Every mutating call returns the full
// resulting cart; there are no partial-patch responses.
type Remote interface {
	Get(ctx context.Context) (domain.Cart, error)
	AddItem(ctx context.Context, productID string, quantity int) (domain.Cart, error)
	UpdateItem(ctx context.Context, itemID string, quantity int) (domain.Cart, error)
	RemoveItem(ctx context.Context, itemID string) (domain.Cart, error)
	Clear(ctx context.Context) (domain.Cart, error)
}

// TokenSource supplies the bearer token for authenticated cart calls.
type TokenSource func() string

// Client issues cart calls against the remote cart API.
type Client struct {
	baseURL string
	token   TokenSource
	http    *http.Client

	// offline state used when no base URL is configured
	fake *fakeRemote
}

// NewClient constructs a cart client. When baseURL is empty, the client keeps
// an in-process cart so the storefront works without a backend.
func NewClient(baseURL string, token TokenSource) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   token,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	if c.baseURL == "" {
		c.fake = newFakeRemote()
	}
	return c
}

func (c *Client) Get(ctx context.Context) (domain.Cart, error) {
	if c.fake != nil {
		return c.fake.Get(ctx)
	}
	return c.do(ctx, http.MethodGet, []string{"cart"}, nil)
}

func (c *Client) AddItem(ctx context.Context, productID string, quantity int) (domain.Cart, error) {
	if c.fake != nil {
		return c.fake.AddItem(ctx, productID, quantity)
	}
	body := map[string]any{
		"productId": productID,
		"quantity":  quantity,
	}
	return c.do(ctx, http.MethodPost, []string{"cart"}, body)
}

func (c *Client) UpdateItem(ctx context.Context, itemID string, quantity int) (domain.Cart, error) {
	if c.fake != nil {
		return c.fake.UpdateItem(ctx, itemID, quantity)
	}
	body := map[string]any{
		"quantity": quantity,
	}
	return c.do(ctx, http.MethodPut, []string{"cart", itemID}, body)
}

func (c *Client) RemoveItem(ctx context.Context, itemID string) (domain.Cart, error) {
	if c.fake != nil {
		return c.fake.RemoveItem(ctx, itemID)
	}
	return c.do(ctx, http.MethodDelete, []string{"cart", itemID}, nil)
}

func (c *Client) Clear(ctx context.Context) (domain.Cart, error) {
	if c.fake != nil {
		return c.fake.Clear(ctx)
	}
	return c.do(ctx, http.MethodDelete, []string{"cart"}, nil)
}

func (c *Client) do(ctx context.Context, method string, path []string, body map[string]any) (domain.Cart, error) {
	endpoint, err := url.JoinPath(c.baseURL, path...)
	if err != nil {
		return domain.Cart{}, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return domain.Cart{}, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return domain.Cart{}, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if method != http.MethodGet {
		req.Header.Set(idempotencyHeader, ulid.Make().String())
	}
	if c.token != nil {
		if tok := strings.TrimSpace(c.token()); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Cart{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return domain.Cart{}, fmt.Errorf("cart: %s status %d: %s", strings.ToLower(method), resp.StatusCode, drainError(resp.Body))
	}

	var payload cartPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Cart{}, err
	}
	return payload.toCart(), nil
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}

type cartPayload struct {
	Items    []cartItemPayload `json:"items"`
	Total    float64           `json:"total"`
	Currency string            `json:"currency"`
}

type cartItemPayload struct {
	ID        json.Number `json:"id"`
	ProductID json.Number `json:"productId"`
	Name      string      `json:"name"`
	Brand     string      `json:"brand"`
	Price     float64     `json:"price"`
	Image     string      `json:"image"`
	Quantity  int         `json:"quantity"`
	Subtotal  float64     `json:"subtotal"`
}

func (p cartPayload) toCart() domain.Cart {
	unit := parseCurrency(p.Currency)
	items := make([]domain.CartLineItem, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, domain.CartLineItem{
			ID:        it.ID.String(),
			ProductID: it.ProductID.String(),
			Name:      strings.TrimSpace(it.Name),
			Brand:     strings.TrimSpace(it.Brand),
			UnitPrice: domain.Money{Amount: decimal.NewFromFloat(it.Price), Currency: unit},
			Image:     strings.TrimSpace(it.Image),
			Quantity:  it.Quantity,
			LineTotal: domain.Money{Amount: decimal.NewFromFloat(it.Subtotal), Currency: unit},
		})
	}
	return domain.Cart{
		Items: items,
		Total: domain.Money{Amount: decimal.NewFromFloat(p.Total), Currency: unit},
	}
}

func parseCurrency(code string) currency.Unit {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return currency.USD
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return currency.USD
	}
	return unit
}
