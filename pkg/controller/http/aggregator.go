package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/lwalder/veille/pkg/domain/types"
	"github.com/lwalder/veille/pkg/usecase"
	"github.com/lwalder/veille/pkg/utils/errutil"
)

type errorResponse struct {
	Error            string             `json:"error"`
	Message          string             `json:"message,omitempty"`
	AvailableSources []types.SourceName `json:"available_sources,omitempty"`
	Timestamp        string             `json:"timestamp,omitempty"`
}

func (s *Server) aggregatorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		_, err := usecase.RequirePermission(types.PermissionRead)(
			s.uc.Auth.Authenticate(ctx, apiKeyFromRequest(r)))
		if err != nil {
			s.handleAuthError(ctx, w, err)
			return
		}

		query := r.URL.Query()
		limit := 0
		if raw := query.Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				limit = parsed
			}
		}

		envelope, err := s.uc.Aggregate.Aggregate(ctx, query.Get("sources"), query.Get("q"), limit)
		if err != nil {
			if errors.Is(err, usecase.ErrNoValidSources) {
				errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest, errorResponse{
					Error:            "No valid sources specified",
					AvailableSources: s.registry.ActiveNames(),
				})
				return
			}
			s.handleInternalError(ctx, w, err)
			return
		}

		// Edge caches may serve the merged result for 5 minutes and
		// revalidate in the background for 10 more
		w.Header().Set("Cache-Control", "s-maxage=300, stale-while-revalidate=600")
		writeJSON(w, http.StatusOK, envelope)
	}
}

func (s *Server) handleAuthError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrMissingCredential):
		errutil.HandleHTTP(ctx, w, err, http.StatusUnauthorized, errorResponse{
			Error:   "Unauthorized",
			Message: "API key required",
		})
	case errors.Is(err, usecase.ErrInvalidCredential):
		errutil.HandleHTTP(ctx, w, err, http.StatusUnauthorized, errorResponse{
			Error:   "Unauthorized",
			Message: "Invalid API key",
		})
	case errors.Is(err, usecase.ErrRateLimitExceeded):
		errutil.HandleHTTP(ctx, w, err, http.StatusTooManyRequests, errorResponse{
			Error:   "Too Many Requests",
			Message: "Hourly rate limit exceeded",
		})
	case errors.Is(err, usecase.ErrInsufficientPermission):
		errutil.HandleHTTP(ctx, w, err, http.StatusForbidden, errorResponse{
			Error:   "Forbidden",
			Message: "Insufficient permissions",
		})
	default:
		s.handleInternalError(ctx, w, err)
	}
}

// handleInternalError writes the 500 fallback. The underlying message is
// only exposed in dev mode.
func (s *Server) handleInternalError(ctx context.Context, w http.ResponseWriter, err error) {
	resp := errorResponse{
		Error:     "Internal server error",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if s.devMode {
		resp.Message = err.Error()
	}
	errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, resp)
}
