package user

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/appctx"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/httpx"
)

var errNoContext = errors.New("request context not initialised")

// Handler exposes the user resource over HTTP. Every route expects an
// authenticated request context.
type Handler struct {
	svc    *UserService
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the routes on mux below prefix.
func (h *Handler) Routes(mux *http.ServeMux, prefix string, wrap func(http.Handler) http.Handler) {
	mux.Handle("GET "+prefix+"/user/{$}", wrap(http.HandlerFunc(h.Search)))
	mux.Handle("POST "+prefix+"/user/{$}", wrap(http.HandlerFunc(h.Create)))
	mux.Handle("GET "+prefix+"/user/{user_id}/{$}", wrap(http.HandlerFunc(h.Get)))
	mux.Handle("PATCH "+prefix+"/user/{user_id}/{$}", wrap(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE "+prefix+"/user/{user_id}/{$}", wrap(http.HandlerFunc(h.Delete)))
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	dto := SearchDTO{Keyword: q.Get("keyword"), Email: q.Get("email")}
	var err error
	if dto.Limit, err = intParam(q.Get("limit")); err != nil {
		h.fail(w, r, apperror.Validation(err))
		return
	}
	if dto.Offset, err = intParam(q.Get("offset")); err != nil {
		h.fail(w, r, apperror.Validation(err))
		return
	}
	if err := dto.Validate(); err != nil {
		h.fail(w, r, apperror.Validation(err))
		return
	}
	out, err := h.svc.Search(r.Context(), sess, dto)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var dto CreateUserDTO
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := dto.Validate(); err != nil {
		h.fail(w, r, apperror.Validation(err))
		return
	}
	out, err := h.svc.Create(r.Context(), sess, dto)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Infow("user created", "id", out.ID)
	httpx.WriteJSON(w, http.StatusCreated, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	out, err := h.svc.Get(r.Context(), sess, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	var dto UpdateUserDTO
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := dto.Validate(); err != nil {
		h.fail(w, r, apperror.Validation(err))
		return
	}
	out, err := h.svc.Update(r.Context(), sess, id, dto)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	id, ok := h.userID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), sess, id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Infow("user deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (appctx.Context, bool) {
	sess, ok := appctx.FromContext(r.Context())
	if !ok {
		h.fail(w, r, errNoContext)
		return nil, false
	}
	return sess, true
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("user_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.fail(w, r, apperror.NotFound("User (%s) not found", raw))
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpx.WriteError(w, r, h.logger, err)
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
