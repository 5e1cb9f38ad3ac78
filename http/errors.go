package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"agegroup/survey"
)

// requestError marks a malformed request that is not a survey input error.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return &requestError{err: err}
}

func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return true
	}
	// mime/multipart does not always wrap the reader error.
	return err != nil && strings.Contains(err.Error(), "request body too large")
}

type errorResponse struct {
	Error          string              `json:"error"`
	MissingColumns []string            `json:"missing_columns,omitempty"`
	InvalidFields  []survey.FieldError `json:"invalid_fields,omitempty"`
}

func newErrorResponse(err error) errorResponse {
	resp := errorResponse{Error: err.Error()}
	var missing *survey.MissingColumnsError
	if errors.As(err, &missing) {
		resp.MissingColumns = missing.Columns
	}
	var invalid *survey.InvalidRecordError
	if errors.As(err, &invalid) {
		resp.InvalidFields = invalid.Fields
	}
	return resp
}

// respondError renders err for the client. Input problems are 400s; anything
// else is logged and reported as a 500 without internal detail.
func (a *API) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	switch {
	case isBodyTooLarge(err):
		respondJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "upload too large"})
	case survey.IsUserError(err), errors.As(err, &reqErr):
		respondJSON(w, http.StatusBadRequest, newErrorResponse(err))
	default:
		a.logger.Error("prediction failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "prediction failed"})
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
