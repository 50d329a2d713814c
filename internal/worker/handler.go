package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"inkpress/internal/cache"
	"inkpress/internal/queue"
)

// Handler applies post events to the recent-posts cache.
type Handler struct {
	recent cache.RecentPosts
}

// NewHandler creates a new event handler.
func NewHandler(recent cache.RecentPosts) *Handler {
	return &Handler{recent: recent}
}

// HandleEvent routes an event to the appropriate handler based on type.
// Handlers are idempotent: replaying a delivered-but-unacked message is
// harmless (ZADD overwrites the same member/score).
func (h *Handler) HandleEvent(ctx context.Context, event queue.PostEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventPostCreated:
		err = h.handlePostCreated(ctx, event)
	default:
		log.Printf("[Handler] Unknown event type: %s", event.Type)
		return nil
	}

	if err != nil {
		log.Printf("[Handler] HandleEvent FAILED: type=%s err=%v duration=%v",
			event.Type, err, time.Since(startTime))
		return err
	}

	log.Printf("[Handler] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

// handlePostCreated adds the new post to the recent-posts hot list.
func (h *Handler) handlePostCreated(ctx context.Context, event queue.PostEvent) error {
	if event.PostID == 0 {
		return fmt.Errorf("post_created event missing post_id")
	}

	score := event.CreatedAt
	if score == 0 {
		score = event.Timestamp
	}

	if err := h.recent.AddPost(ctx, event.PostID, score); err != nil {
		return fmt.Errorf("add post %d to recent cache: %w", event.PostID, err)
	}
	return nil
}
