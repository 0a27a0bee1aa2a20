package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gearhaus.dev/gear-web/internal/config"
)

// newTestApp wires the full router in offline mode: every remote URL is empty,
// so the clients serve demo data in process.
func newTestApp(t *testing.T) (*App, http.Handler) {
	t.Helper()

	contentDir := t.TempDir()
	page := "---\ntitle: About Gearhaus\n---\nWe sell **gear**.\n"
	require.NoError(t, os.WriteFile(filepath.Join(contentDir, "about.md"), []byte(page), 0o600))

	cfg := config.Config{}
	cfg.Content.Dir = contentDir

	app := newApp(cfg, zap.NewNop())
	t.Cleanup(app.Close)
	return app, newRouter(app, zap.NewNop())
}

// testClient replays the session cookie across requests the way a browser
// would, so every call lands on the same visitor bundle.
type testClient struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newTestClient(t *testing.T, handler http.Handler) *testClient {
	return &testClient{t: t, handler: handler, cookies: make(map[string]*http.Cookie)}
}

func (c *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		c.cookies[cookie.Name] = cookie
	}
	return rec
}

func (c *testClient) decode(rec *httptest.ResponseRecorder, dst any) {
	c.t.Helper()
	require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func TestHealthz(t *testing.T) {
	_, router := newTestApp(t)
	client := newTestClient(t, router)

	rec := client.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
}

func TestProductsEndpoints(t *testing.T) {
	_, router := newTestApp(t)
	client := newTestClient(t, router)

	rec := client.do(http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var products []map[string]any
	client.decode(rec, &products)
	require.Len(t, products, 4)
	assert.Equal(t, "Logitech Keyboard", products[0]["name"])
	assert.Equal(t, "$99.99", products[0]["priceDisplay"])

	rec = client.do(http.MethodGet, "/api/products/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var product map[string]any
	client.decode(rec, &product)
	assert.Equal(t, "Dell Monitor", product["name"])

	rec = client.do(http.MethodGet, "/api/products/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = client.do(http.MethodGet, "/api/brands", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var brands []string
	client.decode(rec, &brands)
	assert.Equal(t, []string{"Logitech", "Dell", "Asus"}, brands)

	rec = client.do(http.MethodGet, "/api/types", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var types []string
	client.decode(rec, &types)
	assert.Equal(t, []string{"Keyboard", "Monitor", "Laptop"}, types)
}

type cartResponse struct {
	Items []struct {
		ID        string `json:"id"`
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
		Stock     int    `json:"stock"`
	} `json:"items"`
	Subtotal float64 `json:"subtotal"`
	Display  string  `json:"subtotalDisplay"`
}

func TestCartFlow(t *testing.T) {
	_, router := newTestApp(t)
	client := newTestClient(t, router)

	// empty to start
	rec := client.do(http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cart cartResponse
	client.decode(rec, &cart)
	assert.Empty(t, cart.Items)

	// add the Dell monitor (stock 12) twice: the second add merges
	rec = client.do(http.MethodPost, "/api/cart/items", map[string]any{"productId": "2", "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = client.do(http.MethodPost, "/api/cart/items", map[string]any{"productId": "2", "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	client.decode(rec, &cart)
	require.Len(t, cart.Items, 1, "same product must merge into one line")
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 12, cart.Items[0].Stock)
	assert.Equal(t, "$599.97", cart.Display)

	itemID := cart.Items[0].ID

	// quantity clamps to stock on the way up and to one on the way down
	rec = client.do(http.MethodPut, "/api/cart/items/"+itemID, map[string]any{"quantity": 50})
	require.Equal(t, http.StatusOK, rec.Code)
	client.decode(rec, &cart)
	assert.Equal(t, 12, cart.Items[0].Quantity)

	rec = client.do(http.MethodPut, "/api/cart/items/"+itemID, map[string]any{"quantity": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	client.decode(rec, &cart)
	assert.Equal(t, 1, cart.Items[0].Quantity)

	// add a second product, then remove the first line
	rec = client.do(http.MethodPost, "/api/cart/items", map[string]any{"productId": "1", "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = client.do(http.MethodDelete, "/api/cart/items/"+itemID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	client.decode(rec, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "1", cart.Items[0].ProductID)

	rec = client.do(http.MethodDelete, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	client.decode(rec, &cart)
	assert.Empty(t, cart.Items)
}

func TestCartAddUnknownProduct(t *testing.T) {
	_, router := newTestApp(t)
	client := newTestClient(t, router)

	rec := client.do(http.MethodPost, "/api/cart/items", map[string]any{"productId": "999", "quantity": 1})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = client.do(http.MethodPost, "/api/cart/items", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	_, router := newTestApp(t)
	client := newTestClient(t, router)

	// anonymous session
	rec := client.do(http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var session map[string]any
	client.decode(rec, &session)
	assert.Equal(t, false, session["loggedIn"])

	// cart contents survive login: the synchronizer reloads from the canonical cart
	rec = client.do(http.MethodPost, "/api/cart/items", map[string]any{"productId": "1", "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = client.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "dana@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	var user map[string]any
	client.decode(rec, &user)
	assert.Equal(t, "dana@example.com", user["email"])
	assert.Equal(t, false, user["isAdmin"])

	rec = client.do(http.MethodGet, "/api/session", nil)
	client.decode(rec, &session)
	assert.Equal(t, true, session["loggedIn"])

	require.Eventually(t, func() bool {
		var cart cartResponse
		rec := client.do(http.MethodGet, "/api/cart", nil)
		if rec.Code != http.StatusOK {
			return false
		}
		client.decode(rec, &cart)
		return len(cart.Items) == 1 && cart.Items[0].Quantity == 2
	}, 2*time.Second, 10*time.Millisecond, "cart must be reloaded after login")

	// logout clears the local cart view without a remote call
	rec = client.do(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = client.do(http.MethodGet, "/api/session", nil)
	client.decode(rec, &session)
	assert.Equal(t, false, session["loggedIn"])

	require.Eventually(t, func() bool {
		var cart cartResponse
		rec := client.do(http.MethodGet, "/api/cart", nil)
		if rec.Code != http.StatusOK {
			return false
		}
		client.decode(rec, &cart)
		return len(cart.Items) == 0
	}, 2*time.Second, 10*time.Millisecond, "logout must clear the local cart view")
}

func TestAdminStatsRequiresAdminRole(t *testing.T) {
	_, router := newTestApp(t)
	client := newTestClient(t, router)

	rec := client.do(http.MethodGet, "/api/admin/stats", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "anonymous visitors are rejected")

	rec = client.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "dana@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = client.do(http.MethodGet, "/api/admin/stats", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "regular users are rejected")

	admin := newTestClient(t, router)
	rec = admin.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "admin@gearhaus.dev", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = admin.do(http.MethodGet, "/api/admin/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats map[string]any
	admin.decode(rec, &stats)
	assert.Equal(t, float64(4), stats["catalogSize"])
}

func TestRegisterGrantsAdminRoleByEmail(t *testing.T) {
	_, router := newTestApp(t)
	client := newTestClient(t, router)

	rec := client.do(http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Ops", "email": "admin@gearhaus.dev", "password": "secret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var user map[string]any
	client.decode(rec, &user)
	assert.Equal(t, true, user["isAdmin"])
}

func validShipping() map[string]string {
	return map[string]string{
		"fullName":   "Dana Reyes",
		"phone":      "5551234567",
		"email":      "dana@example.com",
		"address1":   "1 Main St",
		"postalCode": "94105",
		"city":       "San Francisco",
		"state":      "CA",
		"country":    "USA",
	}
}

func TestCheckoutFlow(t *testing.T) {
	_, router := newTestApp(t)
	client := newTestClient(t, router)

	rec := client.do(http.MethodPost, "/api/cart/items", map[string]any{"productId": "1", "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)

	// invalid form reports the failing fields
	rec = client.do(http.MethodPost, "/api/checkout", map[string]any{
		"shipping":     map[string]string{"fullName": "Dana"},
		"deliveryMode": "deliver",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var problem struct {
		Fields map[string]string `json:"fields"`
	}
	client.decode(rec, &problem)
	assert.Contains(t, problem.Fields, "phone")
	assert.Contains(t, problem.Fields, "address1")

	// valid submission creates the order and returns the breakdown
	rec = client.do(http.MethodPost, "/api/checkout", map[string]any{
		"shipping":     validShipping(),
		"deliveryMode": "deliver",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		Status  string `json:"status"`
		OrderID string `json:"orderId"`
		Totals  struct {
			Subtotal string `json:"subtotal"`
			Shipping string `json:"shipping"`
			Tax      string `json:"tax"`
			Total    string `json:"total"`
		} `json:"totals"`
	}
	client.decode(rec, &created)
	assert.Equal(t, "created", created.Status)
	assert.NotEmpty(t, created.OrderID)
	assert.Equal(t, "$199.98", created.Totals.Subtotal)
	assert.Equal(t, "$50.00", created.Totals.Shipping)
	assert.Equal(t, "$16.00", created.Totals.Tax)
	assert.Equal(t, "$249.98", created.Totals.Total)

	rec = client.do(http.MethodPost, "/api/payment/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// the order emptied the canonical cart; payment confirm reloads it
	var cart cartResponse
	rec = client.do(http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	client.decode(rec, &cart)
	assert.Empty(t, cart.Items, "cart must not survive checkout and payment")

	// first confirmation read is fresh and one-shot
	rec = client.do(http.MethodGet, "/api/order/confirmation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var conf struct {
		Fresh        bool              `json:"fresh"`
		OrderNumber  string            `json:"orderNumber"`
		DeliveryMode string            `json:"deliveryMode"`
		Shipping     map[string]string `json:"shipping"`
	}
	client.decode(rec, &conf)
	assert.True(t, conf.Fresh)
	assert.Equal(t, "ORD-"+created.OrderID, conf.OrderNumber)
	assert.Equal(t, "deliver", conf.DeliveryMode)
	assert.Equal(t, "Dana Reyes", conf.Shipping["fullName"])

	rec = client.do(http.MethodGet, "/api/order/confirmation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	client.decode(rec, &conf)
	assert.False(t, conf.Fresh, "handoff must be consumed by the first read")
	assert.Empty(t, conf.OrderNumber)
}

func TestContentPage(t *testing.T) {
	_, router := newTestApp(t)
	client := newTestClient(t, router)

	rec := client.do(http.MethodGet, "/content/about", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=600")

	var page map[string]string
	client.decode(rec, &page)
	assert.Equal(t, "About Gearhaus", page["title"])
	assert.Contains(t, page["body"], "<strong>gear</strong>")

	rec = client.do(http.MethodGet, "/content/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIdleVisitorsSweptByLiveTraffic(t *testing.T) {
	app, router := newTestApp(t)

	stale := newTestClient(t, router)
	rec := stale.do(http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	live := newTestClient(t, router)
	rec = live.do(http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	app.mu.Lock()
	require.Len(t, app.visitors, 2)
	for _, v := range app.visitors {
		v.lastSeen = time.Now().Add(-visitorIdleTimeout - time.Minute)
	}
	app.mu.Unlock()

	// a request from an already-known session must sweep expired bundles
	rec = live.do(http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	app.mu.Lock()
	defer app.mu.Unlock()
	assert.Len(t, app.visitors, 1, "expired bundles must not linger while live sessions keep requesting")
}

func TestSessionIsolationBetweenVisitors(t *testing.T) {
	_, router := newTestApp(t)
	alice := newTestClient(t, router)
	bob := newTestClient(t, router)

	rec := alice.do(http.MethodPost, "/api/cart/items", map[string]any{"productId": "1", "quantity": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = bob.do(http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cart cartResponse
	bob.decode(rec, &cart)
	assert.Empty(t, cart.Items, "visitors must not share cart state")
}
