package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"inkpress/internal/cache"
	"inkpress/internal/model"
	"inkpress/internal/repository"
)

// Function-field mocks: tests set only the methods a case exercises.

// passthroughTx runs the transactional body without a database; the
// repo mocks ignore the tx argument.
func passthroughTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

type mockUserRepo struct {
	CreateFn           func(ctx context.Context, user *model.User) error
	GetByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	GetByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	GetByUIDFn         func(ctx context.Context, uid string) (*model.User, error)
	ExistsByUsernameFn func(ctx context.Context, username string) (bool, error)
	ExistsByEmailFn    func(ctx context.Context, email string) (bool, error)
	CountsFn           func(ctx context.Context, userID int64) (*model.UserCounts, error)
	SearchFn           func(ctx context.Context, query string, limit, offset int) ([]model.UserSummary, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return m.CreateFn(ctx, user)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return m.GetByIDFn(ctx, id)
}
func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.GetByUsernameFn(ctx, username)
}
func (m *mockUserRepo) GetByUID(ctx context.Context, uid string) (*model.User, error) {
	return m.GetByUIDFn(ctx, uid)
}
func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return m.ExistsByUsernameFn(ctx, username)
}
func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return m.ExistsByEmailFn(ctx, email)
}
func (m *mockUserRepo) Counts(ctx context.Context, userID int64) (*model.UserCounts, error) {
	return m.CountsFn(ctx, userID)
}
func (m *mockUserRepo) Search(ctx context.Context, query string, limit, offset int) ([]model.UserSummary, error) {
	return m.SearchFn(ctx, query, limit, offset)
}

type mockFollowRepo struct {
	CreateFn       func(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error)
	DeleteFn       func(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error)
	ExistsFn       func(ctx context.Context, followerID, followeeID int64) (bool, error)
	CheckFollowsFn func(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error)
}

func (m *mockFollowRepo) Create(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error) {
	return m.CreateFn(ctx, tx, followerID, followeeID)
}
func (m *mockFollowRepo) Delete(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error) {
	return m.DeleteFn(ctx, tx, followerID, followeeID)
}
func (m *mockFollowRepo) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return m.ExistsFn(ctx, followerID, followeeID)
}
func (m *mockFollowRepo) CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error) {
	return m.CheckFollowsFn(ctx, followerID, followeeIDs)
}

type mockPostRepo struct {
	CreateFn        func(ctx context.Context, userID int64, title, content string, tags []string) (*model.Post, []string, error)
	GetByIDFn       func(ctx context.Context, postID int64) (*repository.PostRow, error)
	ExistsFn        func(ctx context.Context, postID int64) (bool, error)
	FeedFn          func(ctx context.Context, params model.FeedParams) ([]repository.PostRow, error)
	FetchByIDsFn    func(ctx context.Context, postIDs []int64) ([]repository.PostRow, error)
	RelatedFn       func(ctx context.Context, postID int64, title string, tags []string, limit int) ([]repository.PostRow, error)
	TagsForPostsFn  func(ctx context.Context, postIDs []int64) (map[int64][]string, error)
	CheckLikesFn    func(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
	RecentPostIDsFn func(ctx context.Context, limit int) ([]cache.PostScore, error)
	InsertLikeFn    func(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error)
	DeleteLikeFn    func(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error)
	CountLikesFn    func(ctx context.Context, tx *sqlx.Tx, postID int64) (int, error)
}

func (m *mockPostRepo) Create(ctx context.Context, userID int64, title, content string, tags []string) (*model.Post, []string, error) {
	return m.CreateFn(ctx, userID, title, content, tags)
}
func (m *mockPostRepo) GetByID(ctx context.Context, postID int64) (*repository.PostRow, error) {
	return m.GetByIDFn(ctx, postID)
}
func (m *mockPostRepo) Exists(ctx context.Context, postID int64) (bool, error) {
	return m.ExistsFn(ctx, postID)
}
func (m *mockPostRepo) Feed(ctx context.Context, params model.FeedParams) ([]repository.PostRow, error) {
	return m.FeedFn(ctx, params)
}
func (m *mockPostRepo) FetchByIDs(ctx context.Context, postIDs []int64) ([]repository.PostRow, error) {
	return m.FetchByIDsFn(ctx, postIDs)
}
func (m *mockPostRepo) Related(ctx context.Context, postID int64, title string, tags []string, limit int) ([]repository.PostRow, error) {
	return m.RelatedFn(ctx, postID, title, tags, limit)
}
func (m *mockPostRepo) TagsForPosts(ctx context.Context, postIDs []int64) (map[int64][]string, error) {
	return m.TagsForPostsFn(ctx, postIDs)
}
func (m *mockPostRepo) CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	return m.CheckLikesFn(ctx, userID, postIDs)
}
func (m *mockPostRepo) RecentPostIDs(ctx context.Context, limit int) ([]cache.PostScore, error) {
	return m.RecentPostIDsFn(ctx, limit)
}
func (m *mockPostRepo) InsertLike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	return m.InsertLikeFn(ctx, tx, postID, userID)
}
func (m *mockPostRepo) DeleteLike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	return m.DeleteLikeFn(ctx, tx, postID, userID)
}
func (m *mockPostRepo) CountLikes(ctx context.Context, tx *sqlx.Tx, postID int64) (int, error) {
	return m.CountLikesFn(ctx, tx, postID)
}

type mockRecentPosts struct {
	AddPostFn func(ctx context.Context, postID, timestamp int64) error
	PageFn    func(ctx context.Context, offset, limit int) ([]int64, error)
	WarmFn    func(ctx context.Context, posts []cache.PostScore) error
	SizeFn    func(ctx context.Context) (int64, error)
	ExistsFn  func(ctx context.Context) (bool, error)
}

func (m *mockRecentPosts) AddPost(ctx context.Context, postID, timestamp int64) error {
	return m.AddPostFn(ctx, postID, timestamp)
}
func (m *mockRecentPosts) Page(ctx context.Context, offset, limit int) ([]int64, error) {
	return m.PageFn(ctx, offset, limit)
}
func (m *mockRecentPosts) Warm(ctx context.Context, posts []cache.PostScore) error {
	return m.WarmFn(ctx, posts)
}
func (m *mockRecentPosts) Size(ctx context.Context) (int64, error) {
	return m.SizeFn(ctx)
}
func (m *mockRecentPosts) Exists(ctx context.Context) (bool, error) {
	return m.ExistsFn(ctx)
}

type mockCommentRepo struct {
	CreateFn      func(ctx context.Context, postID, userID int64, content string) (*model.Comment, error)
	GetByPostIDFn func(ctx context.Context, postID int64) ([]model.Comment, error)
}

func (m *mockCommentRepo) Create(ctx context.Context, postID, userID int64, content string) (*model.Comment, error) {
	return m.CreateFn(ctx, postID, userID, content)
}
func (m *mockCommentRepo) GetByPostID(ctx context.Context, postID int64) ([]model.Comment, error) {
	return m.GetByPostIDFn(ctx, postID)
}

type mockRefreshTokenRepo struct {
	ReplaceFn           func(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHashFn   func(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	DeleteByTokenHashFn func(ctx context.Context, tokenHash string) error
	DeleteExpiredFn     func(ctx context.Context, olderThan time.Duration) (int64, error)
}

func (m *mockRefreshTokenRepo) Replace(ctx context.Context, token *model.RefreshToken) error {
	return m.ReplaceFn(ctx, token)
}
func (m *mockRefreshTokenRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	return m.FindByTokenHashFn(ctx, tokenHash)
}
func (m *mockRefreshTokenRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	return m.DeleteByTokenHashFn(ctx, tokenHash)
}
func (m *mockRefreshTokenRepo) DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error) {
	return m.DeleteExpiredFn(ctx, olderThan)
}
