package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkpress/internal/cache"
	"inkpress/internal/config"
	"inkpress/internal/database"
	"inkpress/internal/handler"
	"inkpress/internal/queue"
	"inkpress/internal/redis"
	"inkpress/internal/repository"
	"inkpress/internal/service"
	"inkpress/internal/worker"
)

// Run wires the whole application and serves HTTP until SIGINT/SIGTERM.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Redis is optional: without it the feed always hits SQL and no
	// post_created events are published.
	var redisClient *redis.Client
	var recentPosts cache.RecentPosts
	var publisher queue.Publisher
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = redisClient.Ping(pingCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to reach redis: %w", err)
		}

		recentPosts = cache.NewRecentPosts(redisClient.Client)
		publisher = queue.NewPublisher(redisClient.Client)
		log.Println("[Server] Redis connected, feed cache and event stream enabled")
	} else {
		log.Println("[Server] REDIS_URL not set, running without feed cache")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)

	// Services
	userService := service.NewUserService(userRepo, followRepo)
	authService := service.NewAuthService(refreshTokenRepo, userRepo, cfg)
	feedService := service.NewFeedService(postRepo, userRepo, recentPosts, cfg.PageSize)
	postService := service.NewPostService(db, postRepo, commentRepo, userRepo, publisher)
	commentService := service.NewCommentService(commentRepo, postRepo)
	followService := service.NewFollowService(db, followRepo, userRepo)

	// Avatar storage is optional in the same way Redis is.
	var mediaService *service.MediaService
	if cfg.R2AccountID != "" {
		mediaService, err = service.NewMediaService(context.Background(), cfg)
		if err != nil {
			return fmt.Errorf("failed to create media service: %w", err)
		}
	} else {
		log.Println("[Server] R2 not configured, avatar uploads disabled")
	}

	// Handlers
	userHandler := handler.NewUserHandler(userService, authService, feedService, mediaService, cfg)
	postHandler := handler.NewPostHandler(postService, feedService, commentService)
	followHandler := handler.NewFollowHandler(followService, feedService)

	router := NewRouter(RouterConfig{
		UserHandler:   userHandler,
		PostHandler:   postHandler,
		FollowHandler: followHandler,
		JWTSecret:     cfg.JWTSecret,
		CORSOrigins:   cfg.CORSOrigins,
	})

	// Stream workers keep the recent-posts cache in step with writes.
	var workerManager *worker.Manager
	if redisClient != nil {
		consumer := queue.NewConsumer(redisClient.Client)
		workerManager = worker.NewManager(consumer, worker.NewHandler(recentPosts), worker.DefaultManagerConfig())
		if err := workerManager.Start(context.Background()); err != nil {
			return fmt.Errorf("failed to start workers: %w", err)
		}
	}

	// The sweep keeps the refresh_tokens table from accumulating rows
	// for sessions that were never refreshed again.
	sweeper := worker.NewTokenSweeper(refreshTokenRepo, worker.DefaultSweepInterval, worker.DefaultTokenRetention)
	sweeper.Start(context.Background())

	server := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		log.Printf("[Server] Received %v, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if workerManager != nil {
		workerManager.Stop()
	}
	sweeper.Stop()

	log.Println("[Server] Shutdown complete")
	return nil
}
