package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"inkpress/internal/repository"
)

const (
	// DefaultSweepInterval is how often expired refresh tokens are
	// cleared.
	DefaultSweepInterval = time.Hour

	// DefaultTokenRetention keeps expired tokens around briefly so a
	// refresh racing the sweep still gets a proper "expired" answer.
	DefaultTokenRetention = 24 * time.Hour
)

// TokenSweeper periodically deletes refresh tokens that expired longer
// than the retention window ago. Expired tokens are already rejected on
// refresh; the sweep only keeps the table from growing.
type TokenSweeper struct {
	tokens   repository.RefreshTokenRepository
	interval time.Duration
	retain   time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewTokenSweeper(tokens repository.RefreshTokenRepository, interval, retain time.Duration) *TokenSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if retain <= 0 {
		retain = DefaultTokenRetention
	}
	return &TokenSweeper{tokens: tokens, interval: interval, retain: retain}
}

// Start runs the sweep loop in a goroutine. Call Stop() to shut down.
func (s *TokenSweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.sweep(ctx)
		for {
			select {
			case <-ctx.Done():
				log.Printf("[TokenSweeper] Shutting down")
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

// Stop shuts down the sweep loop. Blocks until it has finished.
func (s *TokenSweeper) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *TokenSweeper) sweep(ctx context.Context) {
	deleted, err := s.tokens.DeleteExpired(ctx, s.retain)
	if err != nil {
		log.Printf("[TokenSweeper] Sweep FAILED: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[TokenSweeper] Sweep OK: deleted=%d", deleted)
	}
}
