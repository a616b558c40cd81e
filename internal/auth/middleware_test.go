package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/appctx"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer   abc", "abc", true},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		token, ok := BearerToken(r)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestRequireMiddleware(t *testing.T) {
	codec := newTestCodec(t, testSecret)
	store := &mockStore{}
	store.On("GetByID", mock.Anything, int64(42)).Return(&entity.User{ID: 42, Email: "user@example.com"}, nil)
	store.On("GetByID", mock.Anything, int64(99)).Return(nil, entity.ErrNotFound)
	mw := NewMiddleware(NewAuthenticator(codec, storeOf(store)), zap.NewNop().Sugar())

	var seen appctx.Context
	protected := mw.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = appctx.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	valid, err := codec.Issue("42", time.Hour)
	require.NoError(t, err)
	deleted, err := codec.Issue("99", time.Hour)
	require.NoError(t, err)
	expired, err := codec.WithClock(fixedClock(t0.Add(-2 * time.Hour))).Issue("42", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		detail string
	}{
		{name: "missing header", status: http.StatusUnauthorized, detail: "Not authenticated"},
		{name: "malformed", header: "Bearer nope", status: http.StatusUnauthorized, detail: "Invalid token"},
		{name: "expired", header: "Bearer " + expired, status: http.StatusUnauthorized, detail: "Token has expired"},
		{name: "deleted user", header: "Bearer " + deleted, status: http.StatusUnauthorized, detail: "User not found"},
		{name: "valid", header: "Bearer " + valid, status: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/user/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, withSession(req, newSession()))

			assert.Equal(t, tt.status, rec.Code)
			if tt.detail != "" {
				assert.JSONEq(t, `{"detail":"`+tt.detail+`"}`, rec.Body.String())
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
				assert.Nil(t, seen)
				return
			}
			require.NotNil(t, seen)
			assert.True(t, seen.IsAuthenticated())
		})
	}
}

func TestRequireWithoutContext(t *testing.T) {
	mw := NewMiddleware(NewAuthenticator(newTestCodec(t, testSecret), storeOf(&mockStore{})), zap.NewNop().Sugar())
	rec := httptest.NewRecorder()
	mw.Require(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Internal server error"}`, rec.Body.String())
}
