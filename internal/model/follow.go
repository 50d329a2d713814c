package model

import (
	"errors"
	"time"
)

// Follow is the (follower, followee) edge. At most one edge exists per
// ordered pair, enforced by the primary key.
type Follow struct {
	FollowerID int64     `db:"follower_id" json:"follower_id"`
	FolloweeID int64     `db:"followee_id" json:"followee_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// FollowToggleResponse reports the post-toggle membership state.
type FollowToggleResponse struct {
	IsFollowing bool `json:"is_following"`
}

var (
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
