package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/matchpulse/collector/internal/usecase"
)

const errorDomain = "matchpulse-collector"

type responseEnvelope struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
	Domain  string `json:"domain"`
}

type mappedError struct {
	HTTPStatus int
	Status     string
}

// writeJSON encodes through a pooled buffer so a failed encode never
// leaves a half-written body behind the already-sent status line.
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	_, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.B)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, responseEnvelope{Data: data})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	writeJSON(ctx, w, mapped.HTTPStatus, responseEnvelope{
		Error: &errorBody{
			Code:    mapped.HTTPStatus,
			Message: err.Error(),
			Status:  mapped.Status,
			Domain:  errorDomain,
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeJSON(ctx, w, http.StatusInternalServerError, responseEnvelope{
		Error: &errorBody{
			Code:    http.StatusInternalServerError,
			Message: "internal server error",
			Status:  "INTERNAL",
			Domain:  errorDomain,
		},
	})
}

func mapError(err error) mappedError {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return mappedError{HTTPStatus: http.StatusBadRequest, Status: "INVALID_ARGUMENT"}
	case errors.Is(err, usecase.ErrNotFound):
		return mappedError{HTTPStatus: http.StatusNotFound, Status: "NOT_FOUND"}
	case errors.Is(err, usecase.ErrPermission):
		return mappedError{HTTPStatus: http.StatusForbidden, Status: "PERMISSION_DENIED"}
	case errors.Is(err, usecase.ErrRateLimited):
		return mappedError{HTTPStatus: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED"}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{HTTPStatus: http.StatusServiceUnavailable, Status: "UNAVAILABLE"}
	default:
		return mappedError{HTTPStatus: http.StatusInternalServerError, Status: "INTERNAL"}
	}
}
