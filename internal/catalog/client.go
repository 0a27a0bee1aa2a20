// Package catalog talks to the remote product/stock service. Stock numbers
// change frequently, so lookups are never cached across calls.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"gearhaus.dev/gear-web/internal/domain"
)

const defaultTimeout = 8 * time.Second

// StockInfo is the slice of product metadata the cart enrichment needs.
type StockInfo struct {
	Stock    int
	Category string
}

// Resolver resolves live stock and category data for a single product.
type Resolver interface {
	Resolve(ctx context.Context, productID string) (StockInfo, error)
}

// Client issues product and stock lookups against the catalog API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a catalog client. When baseURL is empty, the client
// serves built-in demo data.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// Resolve fetches current stock and category for one product.
func (c *Client) Resolve(ctx context.Context, productID string) (StockInfo, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return StockInfo{}, fmt.Errorf("catalog: missing product id")
	}
	if c == nil || c.baseURL == "" {
		return fakeResolve(productID)
	}

	p, err := c.getProduct(ctx, productID)
	if err != nil {
		return StockInfo{}, err
	}
	return StockInfo{Stock: p.Stock, Category: p.Type}, nil
}

// Product fetches the full catalog entry for one product.
func (c *Client) Product(ctx context.Context, productID string) (domain.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, fmt.Errorf("catalog: missing product id")
	}
	if c == nil || c.baseURL == "" {
		return fakeProduct(productID)
	}
	return c.getProduct(ctx, productID)
}

// ListProducts returns the catalog in service order.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if c == nil || c.baseURL == "" {
		return fakeProducts(), nil
	}

	endpoint, err := url.JoinPath(c.baseURL, "products")
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("catalog: list status %d: %s", resp.StatusCode, drainError(resp.Body))
	}

	var payload []productPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(payload))
	for _, p := range payload {
		products = append(products, p.toProduct())
	}
	return products, nil
}

// Brands returns the distinct brand names across the catalog, in first-seen order.
func (c *Client) Brands(ctx context.Context) ([]string, error) {
	products, err := c.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return distinct(products, func(p domain.Product) string { return p.Brand }), nil
}

// Types returns the distinct product types across the catalog, in first-seen order.
func (c *Client) Types(ctx context.Context) ([]string, error) {
	products, err := c.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return distinct(products, func(p domain.Product) string { return p.Type }), nil
}

func (c *Client) getProduct(ctx context.Context, productID string) (domain.Product, error) {
	endpoint, err := url.JoinPath(c.baseURL, "products", productID)
	if err != nil {
		return domain.Product{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Product{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Product{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return domain.Product{}, fmt.Errorf("catalog: product status %d: %s", resp.StatusCode, drainError(resp.Body))
	}

	var payload productPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Product{}, err
	}
	return payload.toProduct(), nil
}

func distinct(products []domain.Product, key func(domain.Product) string) []string {
	seen := make(map[string]struct{}, len(products))
	var out []string
	for _, p := range products {
		k := key(p)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func drainError(r io.Reader) string {
	if r == nil {
		return ""
	}
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}

type productPayload struct {
	ID       json.Number `json:"id"`
	Name     string      `json:"name"`
	Brand    string      `json:"brand"`
	Type     string      `json:"type"`
	Price    float64     `json:"price"`
	Currency string      `json:"currency"`
	Image    string      `json:"image"`
	Stock    int         `json:"stock"`
}

func (p productPayload) toProduct() domain.Product {
	return domain.Product{
		ID:    p.ID.String(),
		Name:  strings.TrimSpace(p.Name),
		Brand: strings.TrimSpace(p.Brand),
		Type:  strings.TrimSpace(p.Type),
		Price: domain.Money{
			Amount:   decimal.NewFromFloat(p.Price),
			Currency: parseCurrency(p.Currency),
		},
		Image: strings.TrimSpace(p.Image),
		Stock: p.Stock,
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
