package api

import (
	"net/http"

	"github.com/okian/xrelay/pkg/logger"
)

// UserHandler relays user-scoped resources.
type UserHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(deps Dependencies, l logger.Logger) *UserHandler {
	return &UserHandler{deps: deps, logger: l}
}

// HandleMe handles GET /api/user/me requests.
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	const endpoint = "user_me"
	ctx := r.Context()

	auth, err := requireAuthorization(r)
	if err != nil {
		writeFailure(ctx, h.logger, w, endpoint, err)
		return
	}

	resp, err := h.deps.CurrentUser(ctx, auth)
	if err != nil {
		writeFailure(ctx, h.logger, w, endpoint, err)
		return
	}
	writeRelayed(w, resp)
}

// HandleLists handles GET /api/user/lists?userId= requests.
// Authorization is checked before userId.
func (h *UserHandler) HandleLists(w http.ResponseWriter, r *http.Request) {
	const endpoint = "user_lists"
	ctx := r.Context()

	auth, err := requireAuthorization(r)
	if err != nil {
		writeFailure(ctx, h.logger, w, endpoint, err)
		return
	}
	userID, err := requireQuery(r, "userId")
	if err != nil {
		writeFailure(ctx, h.logger, w, endpoint, err)
		return
	}

	resp, err := h.deps.OwnedLists(ctx, auth, userID)
	if err != nil {
		writeFailure(ctx, h.logger, w, endpoint, err)
		return
	}
	writeRelayed(w, resp)
}
