package service

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"

	"inkpress/internal/model"
	"inkpress/internal/repository"
)

// FollowService owns the follow toggle between users.
type FollowService struct {
	runTx      txRunner
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(db *sqlx.DB, followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{runTx: sqlxTxRunner(db), followRepo: followRepo, userRepo: userRepo}
}

// Toggle flips the follow edge from the viewer to the named user inside
// one transaction. Following yourself is rejected.
func (s *FollowService) Toggle(ctx context.Context, followerID int64, targetUsername string) (*model.FollowToggleResponse, error) {
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}

	if target.ID == followerID {
		return nil, model.ErrCannotFollowSelf
	}

	var isFollowing bool
	err = s.runTx(ctx, func(tx *sqlx.Tx) error {
		inserted, err := s.followRepo.Create(ctx, tx, followerID, target.ID)
		if err != nil {
			return err
		}

		isFollowing = inserted
		if !inserted {
			if _, err := s.followRepo.Delete(ctx, tx, followerID, target.ID); err != nil {
				return err
			}
			isFollowing = false
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[FollowService] Toggle OK: follower_id=%d target=%s is_following=%v",
		followerID, targetUsername, isFollowing)

	return &model.FollowToggleResponse{IsFollowing: isFollowing}, nil
}
