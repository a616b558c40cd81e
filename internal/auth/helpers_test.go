package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/appctx"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/auth/password"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-account-go/pkg/database"
)

const testSecret = "test-secret"

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

var fastHasher = password.Bcrypt{Cost: bcrypt.MinCost}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func newTestCodec(t *testing.T, secret string) *TokenCodec {
	t.Helper()
	c, err := NewTokenCodec(Config{Secret: secret, AccessTTL: time.Hour, RefreshTTL: 7 * 24 * time.Hour})
	require.NoError(t, err)
	return c.WithClock(fixedClock(t0))
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockStore) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func storeOf(s UserStore) StoreFunc {
	return func(*database.Scope) UserStore { return s }
}

func newSession() *appctx.AppContext {
	return appctx.New(database.NewScope(nil), nil)
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := fastHasher.Hash(pw)
	require.NoError(t, err)
	return h
}
