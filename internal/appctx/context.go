// Package appctx carries the per-request session: the persistence scope,
// the authenticated user and the request translator.
package appctx

import (
	"context"
	"fmt"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
)

// Translator renders message keys in the request language.
type Translator interface {
	SetLang(lang string)
	Translate(key string, args ...any) string
}

// Context is the capability set use cases rely on.
type Context interface {
	// Authenticate marks the session as acting on behalf of u.
	Authenticate(u *entity.User)
	SetLang(lang string)
	T(key string, args ...any) string
	CurrentUser() (*entity.User, bool)
	IsAuthenticated() bool
	Scope() *database.Scope
}

// AppContext is the Context created once per inbound request.
type AppContext struct {
	scope      *database.Scope
	user       *entity.User
	translator Translator
}

var _ Context = (*AppContext)(nil)

// New creates an unauthenticated context. translator may be nil.
func New(scope *database.Scope, translator Translator) *AppContext {
	return &AppContext{scope: scope, translator: translator}
}

// Authenticate sets the current user and records the actor id in the
// scope metadata for audit stamping.
func (c *AppContext) Authenticate(u *entity.User) {
	c.user = u
	if c.scope != nil && u != nil {
		c.scope.SetActorID(u.ID)
	}
}

// SetLang forwards to the translator, if any.
func (c *AppContext) SetLang(lang string) {
	if c.translator != nil {
		c.translator.SetLang(lang)
	}
}

// T translates key. Without a translator the key is formatted as is.
func (c *AppContext) T(key string, args ...any) string {
	if c.translator == nil {
		if len(args) == 0 {
			return key
		}
		return fmt.Sprintf(key, args...)
	}
	return c.translator.Translate(key, args...)
}

// CurrentUser returns the authenticated user.
func (c *AppContext) CurrentUser() (*entity.User, bool) {
	return c.user, c.user != nil
}

// IsAuthenticated reports whether Authenticate has been called.
func (c *AppContext) IsAuthenticated() bool { return c.user != nil }

// Scope returns the persistence scope of the request.
func (c *AppContext) Scope() *database.Scope { return c.scope }

type ctxKey struct{}

// WithContext stores c in ctx.
func WithContext(ctx context.Context, c Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the Context stored by WithContext.
func FromContext(ctx context.Context) (Context, bool) {
	c, ok := ctx.Value(ctxKey{}).(Context)
	return c, ok
}
