package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	dErrors "dummyapi/pkg/domain-errors"
	"dummyapi/pkg/requestcontext"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path"`
	// Details lists per-field validation messages when the request was rejected
	// by struct validation.
	Details map[string][]string `json:"details,omitempty"`
}

// detailer is implemented by errors that carry per-field messages.
type detailer interface {
	Details() map[string][]string
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteText writes a plain text body.
func WriteText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body)) //nolint:errcheck // headers already sent
}

// WriteError centralizes domain error translation to HTTP responses.
// Unexpected errors become a 500 with a generic message so internals do not leak.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		status = DomainCodeToHTTPStatus(domainErr.Code)
		if status != http.StatusInternalServerError {
			message = domainErr.Error()
		}
	}

	body := ErrorResponse{
		Timestamp: requestcontext.Now(r.Context()).Format(time.RFC3339),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Path:      r.URL.Path,
	}
	var withDetails detailer
	if status == http.StatusBadRequest && errors.As(err, &withDetails) {
		body.Details = withDetails.Details()
	}
	WriteJSON(w, status, body)
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
// Validation and uniqueness failures share 406 Not Acceptable; existing
// clients depend on that status.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeInvalidArgument, dErrors.CodeConflict:
		return http.StatusNotAcceptable
	case dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
