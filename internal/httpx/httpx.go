// Package httpx holds the JSON request/response helpers shared by the
// feature handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-account-go/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-account-go/internal/appctx"
)

// maxBodyBytes bounds request bodies read by DecodeJSON.
const maxBodyBytes = 1 << 20

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Detail any `json:"detail"`
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads a JSON body into dst. Malformed bodies become a 422
// so they render like any other validation failure.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apperror.Validation(fmt.Errorf("invalid payload: %w", err))
	}
	return nil
}

// WriteError renders err. Coded errors keep their status and get their
// message translated through the request context; anything else is a
// logged 500.
func WriteError(w http.ResponseWriter, r *http.Request, logger *zap.SugaredLogger, err error) {
	sess, _ := appctx.FromContext(r.Context())
	translate := func(key string, args ...any) string {
		if sess == nil {
			return fmt.Sprintf(key, args...)
		}
		return sess.T(key, args...)
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Detail != nil {
		WriteJSON(w, appErr.Status, ErrorBody{Detail: detailOf(appErr.Detail)})
		return
	}
	var coded apperror.Coded
	if errors.As(err, &coded) {
		if coded.StatusCode() == http.StatusUnauthorized {
			w.Header().Set("WWW-Authenticate", "Bearer")
		}
		WriteJSON(w, coded.StatusCode(), ErrorBody{Detail: translate(coded.MessageKey(), coded.MessageArgs()...)})
		return
	}
	if logger != nil {
		logger.Errorw("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	WriteJSON(w, http.StatusInternalServerError, ErrorBody{Detail: translate("Internal server error")})
}

// detailOf keeps structured validation errors as JSON objects and
// flattens plain errors to their message.
func detailOf(v any) any {
	if m, ok := v.(json.Marshaler); ok {
		return m
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}
