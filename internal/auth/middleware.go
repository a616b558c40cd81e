package auth

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/appctx"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/httpx"
)

var (
	errNotAuthenticated = apperror.Unauthorized("Not authenticated")
	errNoContext        = errors.New("request context not initialised")
)

// BearerToken extracts the token of an "Authorization: Bearer <token>"
// header. The scheme is case insensitive.
func BearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Middleware authenticates requests before they reach protected handlers.
type Middleware struct {
	authn  *Authenticator
	logger *zap.SugaredLogger
}

func NewMiddleware(authn *Authenticator, logger *zap.SugaredLogger) *Middleware {
	return &Middleware{authn: authn, logger: logger}
}

// Require rejects requests without a valid bearer token with a 401 and
// authenticates the request context otherwise.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := appctx.FromContext(r.Context())
		if !ok {
			httpx.WriteError(w, r, m.logger, errNoContext)
			return
		}
		raw, ok := BearerToken(r)
		if !ok {
			httpx.WriteError(w, r, m.logger, errNotAuthenticated)
			return
		}
		if _, err := m.authn.Authenticate(r.Context(), sess, raw); err != nil {
			if kind := KindOf(err); kind != 0 {
				m.logger.Debugw("authentication failed", "path", r.URL.Path, "kind", kind.String())
			}
			httpx.WriteError(w, r, m.logger, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
