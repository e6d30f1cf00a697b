// ABOUTME: Auth session store: bearer token, operator profile, permission set
// ABOUTME: Login via OAuth password grant; user data refresh via /me and /users/{id}/permissions

package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/panelops/panelctl/internal/api"
	"github.com/panelops/panelctl/internal/config"
	"github.com/panelops/panelctl/internal/model"
	"github.com/panelops/panelctl/internal/status"
	"github.com/panelops/panelctl/internal/store"
)

// Session holds the authenticated operator's state. The token is the only
// value persisted between runs; user and permissions are refetched per
// session. Resource stores read the token through Token and never mutate it.
type Session struct {
	authBaseURL  string
	clientID     string
	clientSecret string
	scope        string

	client *api.Client
	tokens store.SessionStore
	logger *slog.Logger

	mu          sync.RWMutex
	token       string
	user        *model.User
	permissions []string
	login       status.Op
	refresh     status.Op

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// New creates a Session, seeding the token from the durable store. A
// persisted token whose JWT exp claim has passed is discarded instead of
// seeding a dead session; tokens that are not JWTs are kept as-is.
func New(cfg *config.Config, client *api.Client, tokens store.SessionStore) *Session {
	s := &Session{
		authBaseURL:  cfg.API.AuthBaseURL,
		clientID:     cfg.OAuth.ClientID,
		clientSecret: cfg.OAuth.ClientSecret,
		scope:        cfg.OAuth.Scope,
		client:       client,
		tokens:       tokens,
		logger:       slog.Default().With("component", "session"),
		login:        status.NewOp(),
		refresh:      status.NewOp(),
		subs:         make(map[int]func()),
	}

	tok, err := tokens.LoadToken(context.Background())
	if err == nil {
		if tokenExpired(tok) {
			s.logger.Info("persisted token expired, discarding")
			if err := tokens.ClearToken(context.Background()); err != nil {
				s.logger.Warn("clearing persisted token failed", "error", err)
			}
		} else {
			s.token = tok
		}
	}
	return s
}

// tokenExpired reports whether tok is a JWT with an exp claim in the past.
// The signing key is server-side, so claims are read without verification.
func tokenExpired(tok string) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now())
}

// Login exchanges the operator's credentials for a bearer token via the
// password grant. On success the token is stored in memory and persisted; on
// failure the previous token (and any prior session) is left untouched.
func (s *Session) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	s.login.Start()
	s.mu.Unlock()
	s.notify()

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)
	form.Set("username", username)
	form.Set("password", password)
	form.Set("scope", s.scope)

	var tr model.TokenResponse
	err := s.client.PostForm(ctx, s.authBaseURL+"/oauth/token", form, &tr)
	if err != nil {
		s.mu.Lock()
		s.login.Fail(err.Error())
		s.mu.Unlock()
		s.notify()
		return err
	}

	s.mu.Lock()
	s.token = tr.AccessToken
	s.login.Succeed()
	s.mu.Unlock()

	if err := s.tokens.SaveToken(ctx, tr.AccessToken); err != nil {
		// The in-memory session is valid either way; persistence is best effort.
		s.logger.Warn("persisting token failed", "error", err)
	}
	s.logger.Info("logged in", "username", username)
	s.notify()
	return nil
}

// FetchUserData loads the operator profile and then the permission list. The
// second call depends on the id from the first, so they are sequential. Both
// values are replaced wholesale on success; on any failure the prior user and
// permissions are kept.
func (s *Session) FetchUserData(ctx context.Context) error {
	s.mu.Lock()
	s.refresh.Start()
	token := s.token
	s.mu.Unlock()
	s.notify()

	var user model.User
	if err := s.client.Get(ctx, "/me", nil, token, &user); err != nil {
		s.fail(&s.refresh, err)
		return err
	}

	var permissions []string
	path := fmt.Sprintf("/users/%d/permissions", user.ID)
	if err := s.client.Get(ctx, path, nil, token, &permissions); err != nil {
		s.fail(&s.refresh, err)
		return err
	}

	s.mu.Lock()
	s.user = &user
	s.permissions = permissions
	s.refresh.Succeed()
	s.mu.Unlock()
	s.notify()
	return nil
}

// Logout clears the session and the persisted token. No network call.
func (s *Session) Logout() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.permissions = nil
	s.login.Reset()
	s.refresh.Reset()
	s.mu.Unlock()

	if err := s.tokens.ClearToken(context.Background()); err != nil {
		s.logger.Warn("clearing persisted token failed", "error", err)
	}
	s.logger.Info("logged out")
	s.notify()
}

func (s *Session) fail(op *status.Op, err error) {
	s.mu.Lock()
	op.Fail(err.Error())
	s.mu.Unlock()
	s.notify()
}

// Token returns the current bearer token ("" when unauthenticated). Resource
// fetches capture it at call time; a later logout does not affect a request
// already in flight.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated is true iff a token is present.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// User returns a copy of the operator profile, or nil before the first
// successful refresh.
func (s *Session) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Permissions returns a copy of the permission list. Empty until the first
// successful refresh.
func (s *Session) Permissions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.permissions))
	copy(out, s.permissions)
	return out
}

// HasPermission reports whether the named permission was granted.
func (s *Session) HasPermission(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.permissions {
		if p == name {
			return true
		}
	}
	return false
}

// LoginStatus returns the login operation's status slot.
func (s *Session) LoginStatus() status.Op {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.login
}

// RefreshStatus returns the user-data refresh operation's status slot.
func (s *Session) RefreshStatus() status.Op {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// Subscribe registers fn to run after every state transition and returns an
// unsubscribe func. Subscribers own their lifecycle; an in-flight operation
// completing after unsubscribe still updates the session, it just no longer
// notifies the departed subscriber.
func (s *Session) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Session) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
