package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "dummyapi/pkg/domain-errors"
	"dummyapi/pkg/requestcontext"
)

// MaxBodySize caps request bodies at 64 KB.
const MaxBodySize = 64 * 1024

// Normalizer is applied to a decoded body before validation.
type Normalizer interface {
	Normalize()
}

// Validator rejects a decoded body. A domain error keeps its code; any other
// error is reported as a bad request.
type Validator interface {
	Validate() error
}

// Decode reads a JSON body into T, then normalizes and validates it when T
// supports that. On failure the error response is already written.
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	ctx := r.Context()

	req := new(T)
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		WriteError(w, r, decodeErr(err))
		return nil, false
	}

	if err := prepare(req); err != nil {
		logger.WarnContext(ctx, "invalid request",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		var domainErr *dErrors.Error
		if !errors.As(err, &domainErr) {
			err = dErrors.New(dErrors.CodeBadRequest, err.Error())
		}
		WriteError(w, r, err)
		return nil, false
	}
	return req, true
}

func prepare(req any) error {
	if n, ok := req.(Normalizer); ok {
		n.Normalize()
	}
	if v, ok := req.(Validator); ok {
		return v.Validate()
	}
	return nil
}

func decodeErr(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	case errors.As(err, &tooLarge):
		return dErrors.New(dErrors.CodeBadRequest, "request body too large")
	default:
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
}
