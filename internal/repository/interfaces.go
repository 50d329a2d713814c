package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"inkpress/internal/cache"
	"inkpress/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetByUID resolves a login identifier that may be a username or an
	// email address.
	GetByUID(ctx context.Context, uid string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Counts returns live follower/following/post counts from the edge
	// tables. Never cached.
	Counts(ctx context.Context, userID int64) (*model.UserCounts, error)
	Search(ctx context.Context, query string, limit, offset int) ([]model.UserSummary, error)
}

type RefreshTokenRepository interface {
	// Replace stores the token as the user's single active session,
	// removing any previous rows for that user.
	Replace(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}

type FollowRepository interface {
	// Create inserts the edge if absent. Returns true when a row was
	// actually inserted (false means the edge already existed).
	Create(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error)
	// Delete removes the edge. Returns true when a row was deleted.
	Delete(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error)
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	// CheckFollows batch-checks which of followeeIDs the follower follows.
	CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error)
}

type PostRepository interface {
	// Create inserts the post and attaches its tags (connect-or-create)
	// in one transaction.
	Create(ctx context.Context, userID int64, title, content string, tags []string) (*model.Post, []string, error)
	GetByID(ctx context.Context, postID int64) (*PostRow, error)
	Exists(ctx context.Context, postID int64) (bool, error)
	// Feed runs the assembled filter/sort/paginate query.
	Feed(ctx context.Context, params model.FeedParams) ([]PostRow, error)
	// FetchByIDs hydrates rows for the given IDs, preserving input order.
	FetchByIDs(ctx context.Context, postIDs []int64) ([]PostRow, error)
	// Related finds posts whose title contains the given title as a
	// case-insensitive substring or which share a tag name.
	Related(ctx context.Context, postID int64, title string, tags []string, limit int) ([]PostRow, error)
	// TagsForPosts batch-fetches tag names grouped by post ID.
	TagsForPosts(ctx context.Context, postIDs []int64) (map[int64][]string, error)
	// CheckLikes batch-checks which posts the user has liked.
	CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
	// RecentPostIDs returns (id, created_at unix) pairs for cache warming.
	RecentPostIDs(ctx context.Context, limit int) ([]cache.PostScore, error)
	// Like-edge methods used by the toggle transaction.
	InsertLike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error)
	DeleteLike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error)
	CountLikes(ctx context.Context, tx *sqlx.Tx, postID int64) (int, error)
}

type CommentRepository interface {
	Create(ctx context.Context, postID, userID int64, content string) (*model.Comment, error)
	GetByPostID(ctx context.Context, postID int64) ([]model.Comment, error)
}
