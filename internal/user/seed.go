package user

import (
	"context"
	"errors"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/appctx"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
)

// SeedUsers are the demo accounts created by cmd/seed.
var SeedUsers = []NewUser{
	{Email: "user@example.com", Password: "password", FirstName: "John", LastName: "Doe"},
	{Email: "admin@example.com", Password: "password", FirstName: "Admin", LastName: "User"},
}

// EnsureUser creates in unless a user with its email exists. It reports
// whether a row was inserted.
func (s *UserService) EnsureUser(ctx context.Context, sess appctx.Context, in NewUser) (bool, error) {
	_, err := s.repos(sess.Scope()).GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, entity.ErrNotFound):
		return false, err
	}
	if _, err := s.CreateUser(ctx, sess, in); err != nil {
		return false, err
	}
	return true, nil
}
