package http

import (
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lwalder/veille/pkg/domain/model"
	"github.com/lwalder/veille/pkg/domain/types"
	"github.com/lwalder/veille/pkg/usecase"
	"github.com/lwalder/veille/pkg/utils/errutil"
)

// monitorActions are the recognized values of the action query parameter
var monitorActions = []string{"health", "status", "config"}

// monitorHandler dispatches on the action query parameter. The health
// probe is anonymous; status needs read permission; the config report is
// restricted to holders of the config permission.
func (s *Server) monitorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		action := r.URL.Query().Get("action")
		if action == "" {
			action = "health"
		}

		switch action {
		case "health":
			s.handleHealth(w)
		case "status":
			s.handleStatus(w, r)
		case "config":
			s.handleConfigReport(w, r)
		default:
			errutil.HandleHTTP(r.Context(), w,
				goerr.New("unknown monitor action", goerr.V("action", action)),
				http.StatusBadRequest, map[string]any{
					"error":             "Unknown action",
					"available_actions": monitorActions,
				})
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   s.version,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := usecase.RequirePermission(types.PermissionRead)(
		s.uc.Auth.Authenticate(ctx, apiKeyFromRequest(r)))
	if err != nil {
		s.handleAuthError(ctx, w, err)
		return
	}

	type sourceStatus struct {
		DisplayName string `json:"display_name"`
		Enabled     bool   `json:"enabled"`
		Priority    int    `json:"priority"`
	}

	sources := make(map[types.SourceName]sourceStatus, s.registry.Len())
	for _, cfg := range s.registry.AllSources() {
		sources[cfg.Name] = sourceStatus{
			DisplayName: cfg.DisplayName,
			Enabled:     cfg.Enabled,
			Priority:    cfg.Priority,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "operational",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"version":        s.version,
		"role":           result.Role,
		"sources":        sources,
		"active_sources": s.registry.ActiveNames(),
		"environment": map[string]any{
			"dev_mode": s.devMode,
		},
	})
}

// handleConfigReport reports which upstream credentials are present, as
// booleans only. Secret values never appear in any response.
func (s *Server) handleConfigReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, err := usecase.RequirePermission(types.PermissionConfig)(
		s.uc.Auth.Authenticate(ctx, apiKeyFromRequest(r)))
	if err != nil {
		s.handleAuthError(ctx, w, err)
		return
	}

	type sourceConfigReport struct {
		Enabled       bool                  `json:"enabled"`
		Priority      int                   `json:"priority"`
		RateLimit     model.RateLimitPolicy `json:"rate_limit"`
		AuthType      model.AuthType        `json:"auth_type"`
		CredentialSet bool                  `json:"credential_set"`
	}

	sources := make(map[types.SourceName]sourceConfigReport, s.registry.Len())
	for _, cfg := range s.registry.AllSources() {
		report := sourceConfigReport{
			Enabled:   cfg.Enabled,
			Priority:  cfg.Priority,
			RateLimit: cfg.RateLimit,
			AuthType:  cfg.Auth.Type,
		}
		if cfg.Auth.Type == model.AuthTypeNone {
			report.CredentialSet = true
		} else if cfg.Auth.SecretEnv != "" {
			secret, ok := s.lookupEnv(cfg.Auth.SecretEnv)
			report.CredentialSet = ok && secret != ""
		}
		sources[cfg.Name] = report
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   s.version,
		"dev_mode":  s.devMode,
		"sources":   sources,
	})
}
