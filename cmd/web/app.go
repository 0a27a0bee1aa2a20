package main

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"gearhaus.dev/gear-web/internal/auth"
	"gearhaus.dev/gear-web/internal/cart"
	"gearhaus.dev/gear-web/internal/catalog"
	"gearhaus.dev/gear-web/internal/checkout"
	"gearhaus.dev/gear-web/internal/cms"
	"gearhaus.dev/gear-web/internal/config"
	"gearhaus.dev/gear-web/internal/kvstore"
	mw "gearhaus.dev/gear-web/internal/middleware"
)

// Sessions older than this without a request are torn down.
const visitorIdleTimeout = 2 * time.Hour

// App wires the storefront services. Each visitor session gets its own cart,
// auth state and scoped storage, matching the one-browser-one-app shape of
// the original deployment; the catalog client and content store are shared.
type App struct {
	cfg     config.Config
	logger  *zap.Logger
	catalog *catalog.Client
	content *cms.Store

	mu       sync.Mutex
	visitors map[string]*visitor
	sessions *kvstore.Registry
}

type visitor struct {
	auth     *auth.Service
	cart     *cart.Service
	checkout *checkout.Service
	cancel   context.CancelFunc
	lastSeen time.Time
}

func newApp(cfg config.Config, logger *zap.Logger) *App {
	return &App{
		cfg:      cfg,
		logger:   logger,
		catalog:  catalog.NewClient(cfg.Services.CatalogURL),
		content:  cms.NewStore(cfg.Content.Dir),
		visitors: make(map[string]*visitor),
		sessions: kvstore.NewRegistry(),
	}
}

// visitor returns the per-session service bundle, creating it on first use.
func (a *App) visitor(r *http.Request) *visitor {
	sess := mw.GetSession(r)

	a.mu.Lock()
	defer a.mu.Unlock()

	v, ok := a.visitors[sess.ID]
	if !ok {
		v = a.newVisitor(sess.ID)
		a.visitors[sess.ID] = v
	}
	// refresh before sweeping so the current bundle never evicts itself
	v.lastSeen = time.Now()
	a.evictIdleLocked()
	return v
}

func (a *App) newVisitor(sessionID string) *visitor {
	kv := a.sessions.For(sessionID)

	authSvc, err := auth.NewService(auth.ServiceDeps{
		Client: auth.NewClient(a.cfg.Services.AuthURL),
		Store:  kv,
		Logger: a.logger,
	})
	if err != nil {
		// only reachable with nil deps, which newVisitor never passes
		panic(err)
	}

	cartRemote := cart.NewClient(a.cfg.Services.CartURL, authSvc.Token)
	cartSvc, err := cart.NewService(cart.ServiceDeps{
		Store:  cart.NewStore(),
		Remote: cartRemote,
		Stock:  a.catalog,
		Logger: a.logger,
	})
	if err != nil {
		panic(err)
	}

	// a real checkout backend empties the cart when it creates the order;
	// the simulated path clears the canonical cart through the same remote
	orders := checkout.NewClient(a.cfg.Services.CheckoutURL, authSvc.Token)
	orders.SetOfflineEmptyCart(func(ctx context.Context) error {
		_, err := cartRemote.Clear(ctx)
		return err
	})

	checkoutSvc, err := checkout.NewService(checkout.ServiceDeps{
		Orders:  orders,
		Handoff: checkout.NewHandoff(kv),
		Logger:  a.logger,
	})
	if err != nil {
		panic(err)
	}

	// the synchronizer follows this visitor's login/logout transitions
	ctx, cancel := context.WithCancel(context.Background())
	users, cancelSub := authSvc.Subscribe()
	go func() {
		defer cancelSub()
		cartSvc.Run(ctx, users)
	}()

	return &visitor{
		auth:     authSvc,
		cart:     cartSvc,
		checkout: checkoutSvc,
		cancel:   cancel,
		lastSeen: time.Now(),
	}
}

func (a *App) evictIdleLocked() {
	cutoff := time.Now().Add(-visitorIdleTimeout)
	for id, v := range a.visitors {
		if v.lastSeen.Before(cutoff) {
			v.cancel()
			delete(a.visitors, id)
			a.sessions.Drop(id)
		}
	}
}

// Close tears down all visitor coordinators.
func (a *App) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id, v := range a.visitors {
		v.cancel()
		delete(a.visitors, id)
		a.sessions.Drop(id)
	}
}
