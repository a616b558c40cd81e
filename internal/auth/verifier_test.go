package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
)

func TestVerifyLogin(t *testing.T) {
	u := &entity.User{ID: 7, Email: "user@example.com", PasswordHash: hashed(t, "password")}

	t.Run("correct password", func(t *testing.T) {
		store := &mockStore{}
		store.On("GetByEmail", mock.Anything, "user@example.com").Return(u, nil)

		got, err := NewVerifier(fastHasher, storeOf(store)).VerifyLogin(t.Context(), newSession(), "user@example.com", "password")
		require.NoError(t, err)
		assert.Same(t, u, got)
		store.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		store := &mockStore{}
		store.On("GetByEmail", mock.Anything, "user@example.com").Return(u, nil)

		_, err := NewVerifier(fastHasher, storeOf(store)).VerifyLogin(t.Context(), newSession(), "user@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		store := &mockStore{}
		store.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, entity.ErrNotFound)

		_, err := NewVerifier(fastHasher, storeOf(store)).VerifyLogin(t.Context(), newSession(), "ghost@example.com", "password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, ErrInvalidCredentials.Error(), err.Error())
	})

	t.Run("corrupted hash fails closed", func(t *testing.T) {
		store := &mockStore{}
		store.On("GetByEmail", mock.Anything, "user@example.com").
			Return(&entity.User{ID: 7, Email: "user@example.com", PasswordHash: "garbage"}, nil)

		_, err := NewVerifier(fastHasher, storeOf(store)).VerifyLogin(t.Context(), newSession(), "user@example.com", "password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("repository error propagates", func(t *testing.T) {
		boom := errors.New("connection refused")
		store := &mockStore{}
		store.On("GetByEmail", mock.Anything, "user@example.com").Return(nil, boom)

		_, err := NewVerifier(fastHasher, storeOf(store)).VerifyLogin(t.Context(), newSession(), "user@example.com", "password")
		assert.Same(t, boom, err)
	})
}
