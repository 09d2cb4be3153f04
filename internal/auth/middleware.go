package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"grubmarket/internal/logger"
	"grubmarket/internal/models"
)

type contextKey string

const actorKey contextKey = "actor"

// UserResolver loads the account a verified token was issued for. The token
// carries the id only; the account record is always re-read so role or
// password changes take effect immediately.
type UserResolver interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Middleware resolves bearer tokens to authenticated actors.
type Middleware struct {
	issuer   *TokenIssuer
	resolver UserResolver
	logger   *logger.Logger
}

// NewMiddleware creates the auth middleware.
func NewMiddleware(issuer *TokenIssuer, resolver UserResolver, log *logger.Logger) *Middleware {
	return &Middleware{
		issuer:   issuer,
		resolver: resolver,
		logger:   log,
	}
}

// Authenticate rejects requests without a valid bearer token and stashes the
// resolved actor in the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, err := m.issuer.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		user, err := m.resolver.GetUserByID(r.Context(), userID)
		if err != nil {
			m.logger.Error("auth_lookup_failed", "Failed to resolve token user", "", err, map[string]interface{}{
				"user_id": userID,
			})
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles allows only the listed roles through.
func (m *Middleware) RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "forbidden")
		})
	}
}

// ActorFrom returns the authenticated actor stored in the context.
func ActorFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(actorKey).(*models.User)
	return user, ok
}

// WithActor returns a context carrying the given actor. Used by tests and the
// middleware.
func WithActor(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, actorKey, user)
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
