package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkpress/internal/httputil"
	"inkpress/internal/model"
	"inkpress/internal/service"
	"inkpress/internal/transport/http/middleware"
)

// FollowHandler groups the user-to-user connection endpoints.
type FollowHandler struct {
	followService *service.FollowService
	feedService   *service.FeedService
}

func NewFollowHandler(followService *service.FollowService, feedService *service.FeedService) *FollowHandler {
	return &FollowHandler{
		followService: followService,
		feedService:   feedService,
	}
}

// ToggleFollow flips the viewer's follow edge to the named user.
// GET|POST /connect/follow/toggle/{username}
func (h *FollowHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	username := chi.URLParam(r, "username")

	result, err := h.followService.Toggle(r.Context(), identity.UserID, username)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteBadRequest(w, "Cannot follow yourself")
		default:
			httputil.WriteInternalError(w, "Failed to toggle follow")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, "Follow toggled", result)
}

// AuthorPosts returns one page of the named user's posts.
// GET /connect/{username}/posts/{page}
func (h *FollowHandler) AuthorPosts(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	page := parsePositiveInt(chi.URLParam(r, "page"), 1)

	feed, err := h.feedService.AuthorPosts(r.Context(), username, page, middleware.ViewerID(r.Context()))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to get posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, "Posts retrieved", feed)
}
