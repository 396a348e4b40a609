// Package httputil provides shared helpers for JSON HTTP handlers.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "github.com/lautaro2705-commits/asistente-personal/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to an HTTP status and writes a JSON error
// body. Internal errors omit the description so implementation detail never
// leaks to callers.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	var de *dErrors.Error
	if errors.As(err, &de) {
		code = de.Code
	}

	status := http.StatusInternalServerError
	errorCode := "internal_error"
	description := ""

	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		status = http.StatusBadRequest
		errorCode = string(code)
		description = errMessage(err)
	case dErrors.CodeNotFound:
		status = http.StatusNotFound
		errorCode = string(code)
		description = errMessage(err)
	case dErrors.CodeConflict:
		status = http.StatusConflict
		errorCode = string(code)
		description = errMessage(err)
	case dErrors.CodeUnauthorized:
		status = http.StatusUnauthorized
		errorCode = string(code)
		description = errMessage(err)
	case dErrors.CodeUnavailable:
		status = http.StatusServiceUnavailable
		errorCode = string(code)
	}

	body := map[string]string{"error": errorCode}
	if description != "" {
		body["error_description"] = description
	}
	WriteJSON(w, status, body)
}

func errMessage(err error) string {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// DecodeAndPrepare decodes the request body into T and writes a bad-request
// response on failure. The bool result reports whether decoding succeeded.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "malformed request body",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "malformed request body"))
		var zero T
		return zero, false
	}
	return req, true
}
