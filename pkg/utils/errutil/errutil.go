package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lwalder/veille/pkg/utils/logging"
)

// Log records an error with its goerr context values and stack when present.
func Log(ctx context.Context, err error, msg string) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}
}

// HandleHTTP logs the error and writes a JSON error response. 5xx responses
// must never leak internal detail, so callers pass the client-facing body.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int, body any) {
	if err == nil {
		return
	}

	Log(ctx, err, "HTTP error")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if encodeErr := json.NewEncoder(w).Encode(body); encodeErr != nil {
		logging.From(ctx).Error("failed to encode error response", "error", encodeErr.Error())
	}
}
