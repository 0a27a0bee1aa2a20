package auth

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"gearhaus.dev/gear-web/internal/kvstore"
	"gearhaus.dev/gear-web/internal/watch"
)

// Storage keys, shared with the original browser deployment.
const (
	tokenKey = "jwt_token"
	userKey  = "currentUser"
)

var (
	errClientRequired = errors.New("auth service: client is required")
	errStoreRequired  = errors.New("auth service: store is required")
)

// ServiceDeps wires the remote client and persistence for the auth service.
type ServiceDeps struct {
	Client *Client
	Store  kvstore.Store
	Logger *zap.Logger
}

// Service holds the current user for one visitor session. Login and logout
// publish transitions to subscribers; the persisted token and user survive a
// restart of the session the same way browser storage would.
type Service struct {
	client  *Client
	store   kvstore.Store
	logger  *zap.Logger
	current *watch.Value[*User]
}

// NewService constructs the auth service, restoring any persisted user.
func NewService(deps ServiceDeps) (*Service, error) {
	if deps.Client == nil {
		return nil, errClientRequired
	}
	if deps.Store == nil {
		return nil, errStoreRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		client:  deps.Client,
		store:   deps.Store,
		logger:  logger,
		current: watch.New[*User](),
	}
	s.current.Set(s.restore())
	return s, nil
}

// Login authenticates against the remote service, persists the credentials
// and publishes the new user.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	creds, err := s.client.Login(ctx, email, password)
	if err != nil {
		return User{}, err
	}
	s.persist(creds)
	return creds.User, nil
}

// Register creates an account and signs the visitor in.
func (s *Service) Register(ctx context.Context, name, email, password string) (User, error) {
	creds, err := s.client.Register(ctx, name, email, password)
	if err != nil {
		return User{}, err
	}
	s.persist(creds)
	return creds.User, nil
}

// Logout clears persisted credentials and publishes the signed-out state.
// No remote call is made.
func (s *Service) Logout() {
	s.store.Delete(tokenKey)
	s.store.Delete(userKey)
	s.current.Set(nil)
}

// Current returns the signed-in user, or nil.
func (s *Service) Current() *User {
	u, _ := s.current.Get()
	return u
}

// Token returns the persisted bearer token, or empty.
func (s *Service) Token() string {
	tok, _ := s.store.Get(tokenKey)
	return tok
}

// IsLoggedIn reports whether a token and user are both present.
func (s *Service) IsLoggedIn() bool {
	return s.Token() != "" && s.Current() != nil
}

// IsAdmin reports whether the current user carries the back-office role.
func (s *Service) IsAdmin() bool {
	u := s.Current()
	return u != nil && u.IsAdmin()
}

// Subscribe streams user transitions: the current user (or nil) is replayed
// immediately, then every login and logout is delivered in order.
func (s *Service) Subscribe() (<-chan *User, func()) {
	return s.current.Subscribe()
}

func (s *Service) persist(creds Credentials) {
	s.store.Set(tokenKey, creds.Token)
	if raw, err := json.Marshal(creds.User); err == nil {
		s.store.Set(userKey, string(raw))
	}
	user := creds.User
	s.current.Set(&user)
}

func (s *Service) restore() *User {
	raw, ok := s.store.Get(userKey)
	if !ok || raw == "" {
		return nil
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.logger.Warn("auth: discarding unreadable stored user", zap.Error(err))
		s.store.Delete(userKey)
		return nil
	}
	if tok, _ := s.store.Get(tokenKey); tok == "" {
		return nil
	}
	return &u
}
