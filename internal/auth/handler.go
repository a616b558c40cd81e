package auth

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/appctx"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/httpx"
)

// Handler exposes login and registration.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the routes on mux below prefix. wrap decorates the
// login route, e.g. with throttling.
func (h *Handler) Routes(mux *http.ServeMux, prefix string, wrap func(http.Handler) http.Handler) {
	mux.Handle("POST "+prefix+"/auth/login/{$}", wrap(http.HandlerFunc(h.Login)))
	mux.Handle("POST "+prefix+"/auth/register/{$}", wrap(http.HandlerFunc(h.Register)))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	sess, ok := appctx.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, h.logger, errNoContext)
		return
	}
	var dto LoginDTO
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	if err := dto.Validate(); err != nil {
		httpx.WriteError(w, r, h.logger, apperror.Validation(err))
		return
	}
	out, err := h.svc.Login(r.Context(), sess, dto)
	if err != nil {
		h.logger.Debugw("login failed", "err", err)
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	sess, ok := appctx.FromContext(r.Context())
	if !ok {
		httpx.WriteError(w, r, h.logger, errNoContext)
		return
	}
	var dto RegisterDTO
	if err := httpx.DecodeJSON(r, &dto); err != nil {
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	if err := dto.Validate(); err != nil {
		httpx.WriteError(w, r, h.logger, apperror.Validation(err))
		return
	}
	out, err := h.svc.Register(r.Context(), sess, dto)
	if err != nil {
		h.logger.Debugw("register failed", "err", err)
		httpx.WriteError(w, r, h.logger, err)
		return
	}
	h.logger.Infow("user registered", "email", dto.Email)
	httpx.WriteJSON(w, http.StatusOK, out)
}
