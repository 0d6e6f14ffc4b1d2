package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/okian/xrelay/pkg/logger"
)

// ListHandler relays list-scoped resources.
type ListHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewListHandler creates a new list handler.
func NewListHandler(deps Dependencies, l logger.Logger) *ListHandler {
	return &ListHandler{deps: deps, logger: l}
}

// HandleTweets handles GET /api/list/tweets/{listId}?max_results= requests.
// max_results is optional and passed through without validation.
func (h *ListHandler) HandleTweets(w http.ResponseWriter, r *http.Request) {
	const endpoint = "list_tweets"
	ctx := r.Context()

	auth, err := requireAuthorization(r)
	if err != nil {
		writeFailure(ctx, h.logger, w, endpoint, err)
		return
	}

	listID := chi.URLParam(r, "listId")
	if v, err := url.PathUnescape(listID); err == nil {
		listID = v
	}

	resp, err := h.deps.ListTweets(ctx, auth, listID, r.URL.Query().Get("max_results"))
	if err != nil {
		writeFailure(ctx, h.logger, w, endpoint, err)
		return
	}
	writeRelayed(w, resp)
}
