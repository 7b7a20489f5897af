package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/goliatone/go-manual/internal/logging"
	"github.com/goliatone/go-manual/internal/users"
	"github.com/goliatone/go-manual/pkg/interfaces"
	"github.com/google/uuid"
)

// SessionCookie is the cookie that may carry the session token.
const SessionCookie = "manual_session"

// UserLookup reloads the user named by a token so role changes apply
// without reissuing tokens.
type UserLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*users.User, error)
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middleware)

// WithUserLookup enables reloading users on each request.
func WithUserLookup(lookup UserLookup) MiddlewareOption {
	return func(m *middleware) {
		m.lookup = lookup
	}
}

// WithMiddlewareLogger sets the logger.
func WithMiddlewareLogger(logger interfaces.Logger) MiddlewareOption {
	return func(m *middleware) {
		if logger != nil {
			m.logger = logger
		}
	}
}

type middleware struct {
	tokens *Tokens
	lookup UserLookup
	logger interfaces.Logger
}

// Middleware resolves the optional session token of each request. Requests
// without a token continue anonymously; invalid tokens are rejected with 401.
func Middleware(tokens *Tokens, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	m := &middleware{tokens: tokens, logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" || m.tokens == nil {
				next.ServeHTTP(w, r.WithContext(Anonymous(r.Context())))
				return
			}
			actor, err := m.resolve(r.Context(), raw)
			if err != nil {
				m.logger.Debug("auth.token.rejected", "path", r.URL.Path, "error", err)
				writeUnauthorized(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func (m *middleware) resolve(ctx context.Context, raw string) (Actor, error) {
	claims, err := m.tokens.Parse(raw)
	if err != nil {
		return Actor{}, err
	}
	userID, _ := claims.UserID()
	actor := Actor{UserID: userID, OpenID: claims.OpenID, Role: claims.Role}
	if m.lookup == nil {
		return actor, nil
	}
	user, err := m.lookup.Get(ctx, userID)
	if err != nil {
		var nf *users.NotFoundError
		if errors.As(err, &nf) {
			return Actor{}, ErrUnauthorized
		}
		return Actor{}, err
	}
	actor.OpenID = user.OpenID
	actor.Role = user.Role
	return actor, nil
}

func tokenFromRequest(r *http.Request) string {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(cookie.Value)
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": err.Error(),
	})
}
