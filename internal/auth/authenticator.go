package auth

import (
	"context"
	"errors"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/appctx"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
)

// Authenticator turns a bearer token into an authenticated session.
type Authenticator struct {
	codec *TokenCodec
	users StoreFunc
}

// NewAuthenticator builds an Authenticator.
func NewAuthenticator(codec *TokenCodec, users StoreFunc) *Authenticator {
	return &Authenticator{codec: codec, users: users}
}

// Authenticate decodes raw, resolves its subject and marks sess as
// authenticated. Failures are ErrTokenExpired, ErrTokenInvalid or
// ErrUserNotFound; repository errors propagate unchanged.
func (a *Authenticator) Authenticate(ctx context.Context, sess appctx.Context, raw string) (appctx.Context, error) {
	claims, err := a.codec.Decode(raw)
	if err != nil {
		return nil, err
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, ErrTokenInvalid
	}
	u, err := a.users(sess.Scope()).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	sess.Authenticate(u)
	return sess, nil
}
