package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"inkpress/internal/httputil"
	"inkpress/internal/model"
	"inkpress/internal/service"
	"inkpress/internal/transport/http/middleware"
)

// PostHandler groups post, feed, comment and like endpoints.
type PostHandler struct {
	postService    *service.PostService
	feedService    *service.FeedService
	commentService *service.CommentService
}

func NewPostHandler(postService *service.PostService, feedService *service.FeedService, commentService *service.CommentService) *PostHandler {
	return &PostHandler{
		postService:    postService,
		feedService:    feedService,
		commentService: commentService,
	}
}

// Feed returns the filtered, sorted, paginated post listing. Works for
// anonymous viewers; authenticated viewers additionally get is_liked.
// GET /post?pageNumber=&tags=&keywords=&usernames=&startDate=&endDate=&orderBy=&asc=
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	params := parseFeedParams(r)

	feed, err := h.feedService.List(r.Context(), params, middleware.ViewerID(r.Context()))
	if err != nil {
		httputil.WriteInternalError(w, "Failed to get posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, "Posts retrieved", feed)
}

// GetByID returns one post with full content and its comments.
// GET /post/{postID}?relatedPosts=true
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	postID, err := parsePostID(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	includeRelated := r.URL.Query().Get("relatedPosts") == "true"

	detail, err := h.postService.GetByID(r.Context(), postID, middleware.ViewerID(r.Context()), includeRelated)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to get post")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, "Post retrieved", detail)
}

// Create stores a new post for the authenticated user.
// POST /post/create
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req model.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), identity.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTitleRequired):
			httputil.WriteBadRequest(w, "Title is required")
		case errors.Is(err, model.ErrContentRequired):
			httputil.WriteBadRequest(w, "Content is required")
		case errors.Is(err, model.ErrTitleTooLong):
			httputil.WriteBadRequest(w, "Title is too long")
		case errors.Is(err, model.ErrContentTooLong):
			httputil.WriteBadRequest(w, "Content is too long")
		default:
			httputil.WriteInternalError(w, "Failed to create post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, "Post created", post)
}

// CreateComment adds a comment to a post.
// POST /post/comment/create/{postID}
func (h *PostHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	postID, err := parsePostID(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.commentService.Create(r.Context(), postID, identity.UserID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrCommentContentRequired):
			httputil.WriteBadRequest(w, "Comment content is required")
		case errors.Is(err, model.ErrCommentContentTooLong):
			httputil.WriteBadRequest(w, "Comment is too long")
		default:
			httputil.WriteInternalError(w, "Failed to create comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, "Comment created", comment)
}

// ToggleLike flips the viewer's like on a post and returns the new
// state with the live count.
// POST /post/like/toggle/{postID}
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	postID, err := parsePostID(r)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	result, err := h.postService.ToggleLike(r.Context(), postID, identity.UserID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to toggle like")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, "Like toggled", result)
}

func parsePostID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
}
