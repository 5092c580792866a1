package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kirillkom/claimsense/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	Failure   string `json:"failure,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// respondError maps err to a status and a message that is safe to show the claimant.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)

	var extractionErr *domain.ExtractionError
	if errors.As(err, &extractionErr) {
		slog.Warn("extraction_failed",
			"request_id", requestIDFromContext(r.Context()),
			"failure", string(extractionErr.Failure),
			"status_code", extractionErr.StatusCode,
			"error", err,
		)
		writeJSON(w, status, errorResponse{
			Error:     extractionErr.UserMessage(),
			Failure:   string(extractionErr.Failure),
			RequestID: requestIDFromContext(r.Context()),
		})
		return
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		msg := "internal server error"
		if status == http.StatusServiceUnavailable {
			msg = "service temporarily unavailable"
		}
		writeError(w, r, status, msg)
		return
	}
	writeError(w, r, status, cause(err).Error())
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, RequestID: requestIDFromContext(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// cause follows domain.WrapError chains to the operation-specific error.
func cause(err error) error {
	for {
		multi, ok := err.(interface{ Unwrap() []error })
		if !ok {
			return err
		}
		errs := multi.Unwrap()
		if len(errs) == 0 {
			return err
		}
		err = errs[len(errs)-1]
	}
}
