package router

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/health"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/i18n"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/utilities"
)

// Prefix is the common path prefix of the API.
const Prefix = "/api/v1"

// Deps are the collaborators the route table is built from.
type Deps struct {
	Logger *zap.SugaredLogger
	DB     *sqlx.DB
	Bundle *i18n.Bundle
	IDs    *utilities.IDGenerator

	Auth  *auth.Handler
	Users *user.Handler
	Guard *auth.Middleware

	// LoginRateLimit is per minute and client; zero disables throttling.
	LoginRateLimit float64
	LoginRateBurst int
	// Proxies may set X-Forwarded-For for the throttle key.
	Proxies        TrustedProxies
}

// RegisterRoutes mounts HTTP handlers on an http.ServeMux and wraps it
// with the middleware chain.
func RegisterRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+Prefix+"/health", health.Handler)

	throttle := RateLimitMiddleware(d.LoginRateLimit, d.LoginRateBurst, d.Proxies, d.Logger)
	d.Auth.Routes(mux, Prefix, throttle)
	d.Users.Routes(mux, Prefix, d.Guard.Require)

	handler := ContextMiddleware(d.DB, d.Bundle)(mux)
	handler = SecurityHeadersMiddleware()(handler)
	handler = LoggingMiddleware(d.Logger)(handler)
	return RequestIDMiddleware(d.IDs)(handler)
}
