package worker

import (
	"context"
	"testing"
	"time"

	"inkpress/internal/model"
)

type fakeTokenStore struct {
	swept chan time.Duration
}

func (f *fakeTokenStore) Replace(ctx context.Context, token *model.RefreshToken) error {
	return nil
}
func (f *fakeTokenStore) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	return nil, model.ErrRefreshTokenNotFound
}
func (f *fakeTokenStore) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	return nil
}
func (f *fakeTokenStore) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	f.swept <- olderThan
	return 1, nil
}

func TestTokenSweeperSweepsAndStops(t *testing.T) {
	store := &fakeTokenStore{swept: make(chan time.Duration, 8)}

	sweeper := NewTokenSweeper(store, 10*time.Millisecond, DefaultTokenRetention)
	sweeper.Start(context.Background())

	// One sweep runs immediately on start, then on every tick.
	for i := 0; i < 2; i++ {
		select {
		case retain := <-store.swept:
			if retain != DefaultTokenRetention {
				t.Errorf("retention = %v, want %v", retain, DefaultTokenRetention)
			}
		case <-time.After(time.Second):
			t.Fatalf("sweep %d never ran", i)
		}
	}

	sweeper.Stop()
}

func TestTokenSweeperDefaults(t *testing.T) {
	sweeper := NewTokenSweeper(&fakeTokenStore{}, 0, 0)

	if sweeper.interval != DefaultSweepInterval {
		t.Errorf("interval = %v, want %v", sweeper.interval, DefaultSweepInterval)
	}
	if sweeper.retain != DefaultTokenRetention {
		t.Errorf("retain = %v, want %v", sweeper.retain, DefaultTokenRetention)
	}
}
