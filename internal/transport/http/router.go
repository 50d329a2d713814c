package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"inkpress/internal/handler"
	"inkpress/internal/httputil"
	authmw "inkpress/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	UserHandler   *handler.UserHandler
	PostHandler   *handler.PostHandler
	FollowHandler *handler.FollowHandler
	JWTSecret     string
	CORSOrigins   []string
}

// NewRouter creates and configures a new Chi router with all route groups.
//
// Identity resolution runs on every route and never rejects; each
// handler decides whether the operation requires authentication. This
// keeps public reads (feed, profiles, single posts) and viewer
// enrichment (is_liked, is_following) on one code path.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(authmw.ResolveIdentity(cfg.JWTSecret))

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, "OK", map[string]string{"status": "ok"})
	})

	r.Route("/user", func(r chi.Router) {
		r.Post("/register", cfg.UserHandler.Register)
		r.Post("/login", cfg.UserHandler.Login)
		r.Get("/logout", cfg.UserHandler.Logout)
		r.Post("/logout", cfg.UserHandler.Logout)
		r.Get("/refresh-token", cfg.UserHandler.Refresh)
		r.Get("/profile", cfg.UserHandler.Profile)
		r.Get("/search", cfg.UserHandler.Search)
		r.Get("/{username}", cfg.UserHandler.PublicProfile)
	})

	r.Route("/post", func(r chi.Router) {
		r.Get("/", cfg.PostHandler.Feed)
		r.Post("/create", cfg.PostHandler.Create)
		r.Post("/comment/create/{postID}", cfg.PostHandler.CreateComment)
		r.Post("/like/toggle/{postID}", cfg.PostHandler.ToggleLike)
		r.Get("/{postID}", cfg.PostHandler.GetByID)
	})

	r.Route("/connect", func(r chi.Router) {
		// Both verbs kept for older clients that toggle via GET.
		r.Get("/follow/toggle/{username}", cfg.FollowHandler.ToggleFollow)
		r.Post("/follow/toggle/{username}", cfg.FollowHandler.ToggleFollow)
		r.Get("/{username}/posts/{page}", cfg.FollowHandler.AuthorPosts)
	})

	return r
}
