package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/itsatony/pillhub/internal/errors"
	"github.com/itsatony/pillhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type contextKey string

const userContextKey contextKey = "user"

// Authenticator checks UI credentials
type Authenticator interface {
	Authenticate(ctx context.Context, creds models.Credentials) (*models.User, error)
}

// BasicAuthMiddleware guards management routes with HTTP Basic credentials
type BasicAuthMiddleware struct {
	auth  Authenticator
	realm string
}

func NewBasicAuthMiddleware(auth Authenticator, realm string) *BasicAuthMiddleware {
	if realm == "" {
		realm = "pillhub"
	}
	return &BasicAuthMiddleware{auth: auth, realm: realm}
}

// Authenticate validates the credentials and adds the user to the request context
func (m *BasicAuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			m.challenge(w, errors.NewAuthError("no credentials provided", nil))
			return
		}

		user, err := m.auth.Authenticate(r.Context(), models.Credentials{Username: username, Password: password})
		if err != nil {
			if apiErr, ok := errors.As(err); ok && apiErr.Type != errors.ErrorTypeAuth {
				handleError(w, apiErr)
				return
			}
			m.challenge(w, errors.NewAuthError("invalid credentials", err))
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the authenticated user, if any
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

func (m *BasicAuthMiddleware) challenge(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+m.realm+`"`)
	handleError(w, err)
}

func handleError(w http.ResponseWriter, err *errors.APIError) {
	err.WithRequestID(nuts.NID("req", 12))
	nuts.L.Warnf("[Auth] %s", err.Error())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
}
