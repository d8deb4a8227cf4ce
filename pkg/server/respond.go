package server

import (
	"encoding/json"
	"errors"
	"net/http"

	bferrors "github.com/matzehuels/breadthfirst/pkg/errors"
	"github.com/matzehuels/breadthfirst/pkg/store"
)

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error     errorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

func errorBody(r *http.Request, code, message string) errorResponse {
	return errorResponse{
		Error:     errorDetail{Code: code, Message: message},
		RequestID: RequestID(r.Context()),
	}
}

func errNotFound(format string, args ...any) error {
	return bferrors.New(bferrors.ErrCodeNotFound, format, args...)
}

// writeError maps err to a status code and JSON error body. Internal errors
// are logged and reported without their cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		err = bferrors.Wrap(bferrors.ErrCodeLayoutNotFound, err, "layout not found")
	}

	code := bferrors.GetCode(err)
	if code == "" {
		code = bferrors.ErrCodeInternal
	}
	status := bferrors.HTTPStatus(err)
	message := bferrors.UserMessage(err)
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	writeJSON(w, status, errorBody(r, string(code), message))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
