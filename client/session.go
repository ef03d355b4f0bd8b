package client

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/queerlil/handles/internal/domain"
	"github.com/queerlil/handles/jwt"
)

const refreshMargin = 30 * time.Second

// AuthInfo is the persisted session shape.
type AuthInfo struct {
	AccessJwt  string `json:"accessJwt"`
	RefreshJwt string `json:"refreshJwt"`
	Handle     string `json:"handle"`
	DID        string `json:"did"`
}

type Credential struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// PersistFunc is called with every new or refreshed session.
type PersistFunc func(ctx context.Context, auth AuthInfo) error

// Session owns the bot's tokens. It is safe for concurrent use.
type Session struct {
	mu      sync.RWMutex
	auth    *AuthInfo
	persist PersistFunc
}

func NewSession(persist PersistFunc) *Session {
	return &Session{persist: persist}
}

func (s *Session) Current() (AuthInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.auth == nil {
		return AuthInfo{}, false
	}
	return *s.auth, true
}

func (s *Session) DID() string {
	auth, _ := s.Current()
	return auth.DID
}

func (s *Session) accessToken() string {
	auth, _ := s.Current()
	return auth.AccessJwt
}

// expiresSoon reports whether the access token is a JWT that expires within
// refreshMargin. Opaque tokens are left to the server to reject.
func (s *Session) expiresSoon(now time.Time) bool {
	_, claims, err := jwt.Parse(s.accessToken())
	if err != nil {
		return false
	}
	return claims.ExpiresWithin(refreshMargin, now)
}

func (s *Session) refreshToken() string {
	auth, _ := s.Current()
	return auth.RefreshJwt
}

func (s *Session) store(ctx context.Context, auth AuthInfo) error {
	s.mu.Lock()
	s.auth = &auth
	s.mu.Unlock()

	if s.persist == nil {
		return nil
	}
	if err := s.persist(ctx, auth); err != nil {
		return errors.Wrap(err, "failed to persist session")
	}
	return nil
}

type getSessionOutput struct {
	Handle string `json:"handle"`
	DID    string `json:"did"`
}

// Resume validates a previously persisted session, refreshing it when the
// access token has expired.
func (c *Client) Resume(ctx context.Context, saved AuthInfo) error {
	if c.session == nil {
		return errors.New("client has no session")
	}
	if saved.AccessJwt == "" || saved.RefreshJwt == "" {
		return domain.ErrNoSession
	}

	c.session.mu.Lock()
	c.session.auth = &saved
	c.session.mu.Unlock()

	var out getSessionOutput
	err := c.call(ctx, http.MethodGet, "com.atproto.server.getSession", nil, nil, &out)
	if err != nil {
		c.session.mu.Lock()
		c.session.auth = nil
		c.session.mu.Unlock()
		return errors.Wrap(err, "failed to resume session")
	}

	slog.InfoContext(ctx, "session resumed", slog.String("did", out.DID), slog.String("module", "client"))
	return nil
}

func (c *Client) Login(ctx context.Context, cred Credential) error {
	if c.session == nil {
		return errors.New("client has no session")
	}

	var auth AuthInfo
	err := c.do(ctx, http.MethodPost, "com.atproto.server.createSession", nil, cred, "", &auth)
	if err != nil {
		return errors.Wrap(err, "failed to create session")
	}
	if auth.AccessJwt == "" {
		return domain.ErrNoSession
	}

	slog.InfoContext(ctx, "session created", slog.String("did", auth.DID), slog.String("module", "client"))
	return c.session.store(ctx, auth)
}

func (c *Client) Refresh(ctx context.Context) error {
	if c.session == nil {
		return errors.New("client has no session")
	}

	refresh := c.session.refreshToken()
	if refresh == "" {
		return domain.ErrNoSession
	}

	var auth AuthInfo
	err := c.do(ctx, http.MethodPost, "com.atproto.server.refreshSession", nil, nil, refresh, &auth)
	if err != nil {
		return errors.Wrap(err, "failed to refresh session")
	}

	return c.session.store(ctx, auth)
}

// Authenticate resumes saved when possible and falls back to a fresh login.
func (c *Client) Authenticate(ctx context.Context, saved AuthInfo, cred Credential) error {
	err := c.Resume(ctx, saved)
	if err == nil {
		return nil
	}
	slog.WarnContext(ctx, "could not resume session, logging in", slog.String("error", err.Error()), slog.String("module", "client"))

	if err := c.Login(ctx, cred); err != nil {
		return errors.Wrap(domain.ErrNoSession, err.Error())
	}
	return nil
}
