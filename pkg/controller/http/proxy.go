package http

import (
	"net/http"

	"github.com/lwalder/veille/pkg/service/transit"
	"github.com/lwalder/veille/pkg/utils/errutil"
)

// transitHandler proxies the next-departures widget. The upstream stop,
// line and destinations are fixed at startup, so the handler takes no
// parameters and needs no caller credential.
func (s *Server) transitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		passages, err := s.transit.NextDepartures(ctx)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, errorResponse{
				Error: "Transit service unavailable",
			})
			return
		}
		if passages == nil {
			passages = []transit.Passage{}
		}

		writeJSON(w, http.StatusOK, map[string]any{"passages": passages})
	}
}

// feedHandler proxies the recent posts of the configured account. The
// upstream payload is forwarded untouched.
func (s *Server) feedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		posts, err := s.feed.RecentPosts(ctx)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, errorResponse{
				Error: "Feed service unavailable",
			})
			return
		}

		writeJSON(w, http.StatusOK, posts)
	}
}
