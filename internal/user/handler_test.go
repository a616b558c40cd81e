package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/appctx"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/user/entity"
)

func newTestMux(repo *mockRepo) *http.ServeMux {
	mux := http.NewServeMux()
	h := NewHandler(newService(repo), zap.NewNop().Sugar())
	h.Routes(mux, "/api/v1", func(next http.Handler) http.Handler { return next })
	return mux
}

func serve(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req = req.WithContext(appctx.WithContext(req.Context(), newSession()))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandlerGet(t *testing.T) {
	repo := &mockRepo{}
	repo.On("GetByID", mock.Anything, int64(1)).Return(&entity.User{ID: 1, Email: "u@example.com", PasswordHash: "secret-hash", FirstName: "U"}, nil)
	repo.On("GetByID", mock.Anything, int64(2)).Return(nil, entity.ErrNotFound)
	mux := newTestMux(repo)

	rec := serve(mux, http.MethodGet, "/api/v1/user/1/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-hash")
	var out UserDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "u@example.com", out.Email)

	rec = serve(mux, http.MethodGet, "/api/v1/user/2/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"User (2) not found"}`, rec.Body.String())

	rec = serve(mux, http.MethodGet, "/api/v1/user/abc/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerCreate(t *testing.T) {
	repo := &mockRepo{}
	repo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, entity.ErrNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.User).ID = 5
	}).Return(nil)
	mux := newTestMux(repo)

	rec := serve(mux, http.MethodPost, "/api/v1/user/", `{"email":"new@example.com","password":"pw","first_name":"New","last_name":"User"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var out UserDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, int64(5), out.ID)
	assert.Equal(t, "New User", out.FullName)

	rec = serve(mux, http.MethodPost, "/api/v1/user/", `{"email":"bad"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Detail map[string]string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Detail, "email")
	assert.Contains(t, body.Detail, "first_name")
}

func TestHandlerUpdate(t *testing.T) {
	repo := &mockRepo{}
	repo.On("GetByID", mock.Anything, int64(1)).Return(&entity.User{ID: 1, FirstName: "Old", LastName: "Name"}, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	mux := newTestMux(repo)

	rec := serve(mux, http.MethodPatch, "/api/v1/user/1/", `{"last_name":"Newer"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out UserDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Old", out.FirstName)
	assert.Equal(t, "Newer", out.LastName)

	rec = serve(mux, http.MethodPatch, "/api/v1/user/1/", `{"first_name":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlerDelete(t *testing.T) {
	repo := &mockRepo{}
	repo.On("GetByID", mock.Anything, int64(1)).Return(&entity.User{ID: 1}, nil)
	repo.On("Delete", mock.Anything, int64(1)).Return(nil)
	mux := newTestMux(repo)

	rec := serve(mux, http.MethodDelete, "/api/v1/user/1/", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHandlerSearch(t *testing.T) {
	repo := &mockRepo{}
	repo.On("Search", mock.Anything, entity.SearchFilter{Keyword: "jo", Email: "", Limit: 5, Offset: 10}).
		Return([]*entity.User{{ID: 1, Email: "jo@example.com"}}, 11, nil)
	repo.On("GetByIDs", mock.Anything, []int64(nil)).Return(map[int64]*entity.User{}, nil)
	mux := newTestMux(repo)

	rec := serve(mux, http.MethodGet, "/api/v1/user/?keyword=jo&limit=5&offset=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out UserListDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 11, out.Count)
	require.Len(t, out.Results, 1)

	for _, q := range []string{"limit=101", "limit=-1", "offset=-1", "limit=abc"} {
		rec = serve(mux, http.MethodGet, "/api/v1/user/?"+q, "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, q)
	}
}

func TestHandlerWithoutContext(t *testing.T) {
	mux := newTestMux(&mockRepo{})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/user/1/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
