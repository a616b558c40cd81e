package auth

import (
	"context"
	"errors"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/appctx"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/auth/password"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
)

// UserStore is the read path the auth core needs from persistence.
// Lookups return entity.ErrNotFound when no user matches.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
}

// StoreFunc binds a UserStore to a request scope.
type StoreFunc func(scope *database.Scope) UserStore

// Verifier checks login credentials.
type Verifier struct {
	hasher password.Hasher
	users  StoreFunc
}

// NewVerifier builds a Verifier.
func NewVerifier(hasher password.Hasher, users StoreFunc) *Verifier {
	return &Verifier{hasher: hasher, users: users}
}

// VerifyLogin returns the user owning email when plaintext matches its
// stored hash. Unknown emails and wrong passwords both yield
// ErrInvalidCredentials. Other repository errors propagate unchanged.
func (v *Verifier) VerifyLogin(ctx context.Context, sess appctx.Context, email, plaintext string) (*entity.User, error) {
	u, err := v.users(sess.Scope()).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !v.hasher.Verify(plaintext, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
