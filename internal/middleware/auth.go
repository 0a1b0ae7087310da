package middleware

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey struct{}

var identityKey = contextKey{}

// IdentityResolver turns a bearer token into the identity it was issued for.
type IdentityResolver interface {
	Resolve(token string) (model.Identity, error)
}

// UserLookup confirms a token's subject still exists.
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFrom returns the authenticated caller stored by Authenticate.
func IdentityFrom(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(model.Identity)
	return identity, ok
}

// Authenticate requires a valid "Authorization: Bearer <token>" header whose
// subject is an existing user. The stored role wins over the token's claim.
func Authenticate(resolver IdentityResolver, users UserLookup, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "auth").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required")
				return
			}

			identity, err := resolver.Resolve(token)
			if err != nil {
				logger.Debug().Err(err).Str("path", r.URL.Path).Msg("invalid token")
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Invalid or expired token")
				return
			}

			user, err := users.GetByID(r.Context(), identity.UserID)
			if err != nil {
				logger.Error().Err(err).Str("user_id", identity.UserID.String()).Msg("failed to look up token subject")
				writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "Internal server error")
				return
			}
			if user == nil {
				logger.Warn().Str("user_id", identity.UserID.String()).Msg("token subject no longer exists")
				writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Invalid token")
				return
			}
			identity.Role = user.Role

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireAdmin rejects callers without the admin role. It must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		if !ok {
			writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "Authentication required")
			return
		}
		if !identity.IsAdmin() {
			writeError(w, r, http.StatusForbidden, model.ErrCodeForbidden, "Admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
