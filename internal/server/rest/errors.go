package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/motek/internal/common"
	"github.com/dmitrijs2005/motek/internal/logging"
	"github.com/go-chi/render"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a service error to an HTTP status and a client-safe message.
// Storage details never reach the message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, "already exists"
	case errors.Is(err, common.ErrorRateLimited):
		return http.StatusTooManyRequests, "too many requests"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// fail renders err. Server-side faults are logged at error level; rate
// limiting is routine and stays at info.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)

	switch {
	case status >= http.StatusInternalServerError:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, logging.Err(err))
	case status == http.StatusTooManyRequests:
		s.logger.Info(r.Context(), "request rate limited", "path", r.URL.Path)
	default:
		s.logger.Debug(r.Context(), "request rejected", "path", r.URL.Path, "status", status, logging.Err(err))
	}

	writeError(w, r, status, msg)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}
