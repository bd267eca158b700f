package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/circlepack/pkg/errors"
)

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// StatusFor maps a pipeline error code to an HTTP status.
func StatusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidModel, errors.ErrCodeGeneration, errors.ErrCodeInfeasible:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeBackend, errors.ErrCodeValidation:
		return http.StatusBadGateway
	case errors.ErrCodeBusy:
		return http.StatusServiceUnavailable
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			// Client went away; nobody reads the body.
			code = errors.ErrCodeTimeout
		}
	}
	status := StatusFor(code)
	if status >= http.StatusInternalServerError {
		logger.Warn("request failed", "code", code, "err", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: errors.UserMessage(err)})
}
