package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"inkpress/internal/config"
	"inkpress/internal/httputil"
	"inkpress/internal/model"
	"inkpress/internal/service"
	"inkpress/internal/transport/http/middleware"
)

// UserHandler groups account and profile endpoints.
type UserHandler struct {
	userService  *service.UserService
	authService  *service.AuthService
	feedService  *service.FeedService
	mediaService *service.MediaService // nil when R2 is not configured
	config       *config.Config
}

func NewUserHandler(
	userService *service.UserService,
	authService *service.AuthService,
	feedService *service.FeedService,
	mediaService *service.MediaService,
	cfg *config.Config,
) *UserHandler {
	return &UserHandler{
		userService:  userService,
		authService:  authService,
		feedService:  feedService,
		mediaService: mediaService,
		config:       cfg,
	}
}

// Register handles multipart sign-up with optional avatar upload and
// default avatar fallback.
// POST /user/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	maxFormSize := int64(model.MaxAvatarSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequest(w, "Avatar exceeds 5MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	fullName := r.FormValue("full_name")

	if username == "" {
		httputil.WriteBadRequest(w, "Username is required")
		return
	}
	if email == "" {
		httputil.WriteBadRequest(w, "Email is required")
		return
	}
	if password == "" {
		httputil.WriteBadRequest(w, "Password is required")
		return
	}

	var avatarURL, avatarKey *string
	file, header, err := r.FormFile("avatar")
	switch {
	case err == nil:
		defer file.Close()
		if h.mediaService == nil {
			httputil.WriteBadRequest(w, "Avatar uploads are not enabled")
			return
		}
		upload, uploadErr := h.mediaService.UploadAvatar(r.Context(), file, header)
		if uploadErr != nil {
			switch {
			case errors.Is(uploadErr, model.ErrFileTooLarge):
				httputil.WriteBadRequest(w, "Avatar exceeds 5MB limit")
			case errors.Is(uploadErr, model.ErrInvalidImageType):
				httputil.WriteBadRequest(w, "Unsupported image type. Allowed: jpeg, png, gif, webp")
			default:
				httputil.WriteInternalError(w, "Failed to upload avatar")
			}
			return
		}
		avatarURL = &upload.URL
		avatarKey = &upload.Key
	case errors.Is(err, http.ErrMissingFile):
		if h.config.DefaultAvatarURL != "" {
			avatarURL = &h.config.DefaultAvatarURL
		}
		if h.config.DefaultAvatarKey != "" {
			avatarKey = &h.config.DefaultAvatarKey
		}
	default:
		httputil.WriteBadRequest(w, "Invalid avatar upload")
		return
	}

	req := model.RegisterRequest{
		Username:  username,
		Email:     email,
		Password:  password,
		FullName:  fullName,
		AvatarURL: avatarURL,
		AvatarKey: avatarKey,
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUsernameExists):
			httputil.WriteConflict(w, "Username already exists")
		case errors.Is(err, model.ErrEmailExists):
			httputil.WriteConflict(w, "Email already exists")
		default:
			httputil.WriteBadRequest(w, err.Error())
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, "User registered successfully", user)
}

// Login authenticates by username or email and issues the token pair as
// both httpOnly cookies (web) and response body fields (mobile).
// POST /user/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.UID == "" {
		httputil.WriteBadRequest(w, "Username or email is required")
		return
	}
	if req.Password == "" {
		httputil.WriteBadRequest(w, "Password is required")
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorized(w, "Invalid credentials")
			return
		}
		httputil.WriteInternalError(w, "Failed to login")
		return
	}

	tokenPair, err := h.authService.GenerateTokenPair(r.Context(), user.ID, user.Username)
	if err != nil {
		httputil.WriteInternalError(w, "Failed to generate tokens")
		return
	}

	h.setAuthCookies(w, tokenPair)

	response := model.LoginResponse{
		User:         user,
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}
	httputil.WriteJSON(w, http.StatusOK, "Login successful", response)
}

// Logout revokes the active refresh session and clears the auth
// cookies. Requires authentication.
// GET|POST /user/logout
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetIdentity(r.Context()); !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	refreshToken := h.refreshTokenFromRequest(r)
	if refreshToken != "" {
		if err := h.authService.RevokeRefreshToken(r.Context(), refreshToken); err != nil &&
			!errors.Is(err, model.ErrRefreshTokenNotFound) {
			httputil.WriteInternalError(w, "Failed to logout")
			return
		}
	}

	h.clearAuthCookies(w)
	httputil.WriteJSON(w, http.StatusOK, "Logged out successfully", nil)
}

// Refresh exchanges a valid refresh token for a new pair. The token is
// read from the refresh_token cookie, with a JSON body fallback for
// cookieless clients.
// GET /user/refresh-token
func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := h.refreshTokenFromRequest(r)
	if refreshToken == "" {
		httputil.WriteUnauthorized(w, "Refresh token is required")
		return
	}

	tokenPair, _, err := h.authService.RefreshTokens(r.Context(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrRefreshTokenNotFound):
			httputil.WriteUnauthorized(w, "Invalid refresh token")
		case errors.Is(err, model.ErrRefreshTokenExpired):
			httputil.WriteUnauthorized(w, "Refresh token has expired")
		default:
			httputil.WriteInternalError(w, "Failed to refresh tokens")
		}
		return
	}

	h.setAuthCookies(w, tokenPair)
	httputil.WriteJSON(w, http.StatusOK, "Tokens refreshed", tokenPair)
}

// Profile returns the authenticated user's own profile, optionally with
// their first page of posts.
// GET /user/profile?includePosts=true
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	h.writeProfile(w, r, identity.Username, &identity.UserID)
}

// PublicProfile returns any user's profile as seen by the viewer.
// GET /user/{username}
func (h *UserHandler) PublicProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	h.writeProfile(w, r, username, middleware.ViewerID(r.Context()))
}

func (h *UserHandler) writeProfile(w http.ResponseWriter, r *http.Request, username string, viewerID *int64) {
	profile, err := h.userService.GetProfile(r.Context(), username, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		httputil.WriteInternalError(w, "Failed to get profile")
		return
	}

	if r.URL.Query().Get("includePosts") == "true" {
		feed, err := h.feedService.AuthorPosts(r.Context(), username, 1, viewerID)
		if err != nil {
			httputil.WriteInternalError(w, "Failed to get posts")
			return
		}
		profile.Posts = feed.Posts
	}

	httputil.WriteJSON(w, http.StatusOK, "Profile retrieved", profile)
}

// Search finds users by username or full name.
// GET /user/search?query=...&page=1
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	pageNumber := parsePositiveInt(r.URL.Query().Get("page"), 1)

	result, err := h.userService.Search(r.Context(), query, pageNumber, h.config.PageSize, middleware.ViewerID(r.Context()))
	if err != nil {
		if errors.Is(err, model.ErrEmptyQuery) {
			httputil.WriteBadRequest(w, "Search query is required")
			return
		}
		httputil.WriteInternalError(w, "Failed to search users")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, "Search results", result)
}

// refreshTokenFromRequest reads the refresh token from its cookie, then
// falls back to a JSON body for clients that do not hold cookies.
func (h *UserHandler) refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("refresh_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var req model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

// setAuthCookies installs both tokens as httpOnly cookies for browser
// clients. SameSite=None with Secure allows the cross-origin frontend.
func (h *UserHandler) setAuthCookies(w http.ResponseWriter, pair *model.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   h.config.AccessTokenMaxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   h.config.RefreshTokenMaxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func (h *UserHandler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{"access_token", "refresh_token"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteNoneMode,
		})
	}
}
