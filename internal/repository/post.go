package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"inkpress/internal/cache"
	"inkpress/internal/model"
)

// PostRow is a fetched post with its author fields and live edge counts.
// like_count/comment_count come from correlated COUNT subqueries on the
// edge tables, so they can never drift from the stored edges.
type PostRow struct {
	model.Post
	Author       model.UserSummary `db:"author"`
	LikeCount    int               `db:"like_count"`
	CommentCount int               `db:"comment_count"`
}

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// postSelect is the shared projection for all post queries.
const postSelect = `
	SELECT p.id, p.user_id, p.title, p.content, p.created_at, p.updated_at,
	       u.id AS "author.id", u.username AS "author.username",
	       u.full_name AS "author.full_name", u.avatar_url AS "author.avatar_url",
	       (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id) AS like_count,
	       (SELECT COUNT(*) FROM post_comments c WHERE c.post_id = p.id) AS comment_count
	FROM posts p
	JOIN users u ON u.id = p.user_id`

// escapeLike neutralizes LIKE wildcards in user-supplied text before it is
// embedded in an ILIKE argument.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// buildFeedQuery assembles the feed SQL from FeedParams.
//
// Filter categories combine with AND; within tags/usernames the match is
// OR (ANY). Sort ties for the count orderings are broken by
// created_at DESC, id DESC so adjacent pages stay disjoint and contiguous
// under a stable order; `asc` flips only the primary key.
func buildFeedQuery(p model.FeedParams) (string, []interface{}) {
	var b strings.Builder
	b.WriteString(postSelect)

	args := []interface{}{p.StartDate, p.EndDate}
	b.WriteString(`
	WHERE p.created_at >= $1 AND p.created_at <= $2`)

	if len(p.Tags) > 0 {
		args = append(args, pq.Array(p.Tags))
		fmt.Fprintf(&b, `
	  AND EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
	              WHERE pt.post_id = p.id AND lower(t.name) = ANY($%d))`, len(args))
	}

	if p.Keywords != "" {
		args = append(args, "%"+escapeLike(p.Keywords)+"%")
		n := len(args)
		fmt.Fprintf(&b, `
	  AND (p.title ILIKE $%d OR p.content ILIKE $%d OR u.username ILIKE $%d)`, n, n, n)
	}

	if len(p.Usernames) > 0 {
		args = append(args, pq.Array(p.Usernames))
		fmt.Fprintf(&b, `
	  AND u.username = ANY($%d)`, len(args))
	}

	dir := "DESC"
	if p.Ascending {
		dir = "ASC"
	}
	switch p.OrderBy {
	case model.SortByLikes:
		fmt.Fprintf(&b, `
	ORDER BY like_count %s, p.created_at DESC, p.id DESC`, dir)
	case model.SortByComments:
		fmt.Fprintf(&b, `
	ORDER BY comment_count %s, p.created_at DESC, p.id DESC`, dir)
	default:
		fmt.Fprintf(&b, `
	ORDER BY p.created_at %s, p.id %s`, dir, dir)
	}

	args = append(args, p.PageSize, (p.PageNumber-1)*p.PageSize)
	fmt.Fprintf(&b, `
	LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	return b.String(), args
}

// Feed runs the assembled filter/sort/paginate query.
func (r *postRepository) Feed(ctx context.Context, params model.FeedParams) ([]PostRow, error) {
	query, args := buildFeedQuery(params)

	var rows []PostRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("feed query: %w", err)
	}
	return rows, nil
}

// Create inserts the post and attaches its tags in one transaction.
// Tags use connect-or-create semantics: existing names (case-insensitive)
// are reused, new ones inserted; tags are never deleted.
func (r *postRepository) Create(ctx context.Context, userID int64, title, content string, tags []string) (*model.Post, []string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var post model.Post
	query := `
		INSERT INTO posts (user_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, title, content, created_at, updated_at
	`
	if err := tx.GetContext(ctx, &post, query, userID, title, content); err != nil {
		return nil, nil, fmt.Errorf("insert post: %w", err)
	}

	attached, err := attachTags(ctx, tx, post.ID, tags)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &post, attached, nil
}

// GetByID retrieves a single post with author and live counts.
func (r *postRepository) GetByID(ctx context.Context, postID int64) (*PostRow, error) {
	query := postSelect + `
	WHERE p.id = $1`

	var row PostRow
	err := r.db.GetContext(ctx, &row, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &row, nil
}

// Exists checks if a post exists.
func (r *postRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

// FetchByIDs hydrates posts for the given IDs with authors and counts.
// Used when serving the default feed page from the recent-posts cache.
func (r *postRepository) FetchByIDs(ctx context.Context, postIDs []int64) ([]PostRow, error) {
	if len(postIDs) == 0 {
		return []PostRow{}, nil
	}

	query := postSelect + `
	WHERE p.id = ANY($1)`

	var rows []PostRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(postIDs)); err != nil {
		return nil, fmt.Errorf("get posts by ids: %w", err)
	}

	// Re-order rows to match input order (the cache defines the ordering).
	byID := make(map[int64]PostRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	ordered := make([]PostRow, 0, len(postIDs))
	for _, id := range postIDs {
		if row, ok := byID[id]; ok {
			ordered = append(ordered, row)
		}
	}

	return ordered, nil
}

// Related finds posts related to the given post: a different post whose
// title contains this title as a case-insensitive substring, or which
// shares at least one tag name. No relevance ranking beyond store order.
func (r *postRepository) Related(ctx context.Context, postID int64, title string, tags []string, limit int) ([]PostRow, error) {
	lowered := make([]string, len(tags))
	for i, t := range tags {
		lowered[i] = strings.ToLower(t)
	}

	query := postSelect + `
	WHERE p.id <> $1
	  AND (p.title ILIKE $2
	       OR EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id
	                  WHERE pt.post_id = p.id AND lower(t.name) = ANY($3)))
	LIMIT $4`

	var rows []PostRow
	err := r.db.SelectContext(ctx, &rows, query,
		postID, "%"+escapeLike(title)+"%", pq.Array(lowered), limit)
	if err != nil {
		return nil, fmt.Errorf("related posts: %w", err)
	}
	return rows, nil
}

// TagsForPosts batch-fetches tag names for multiple posts in one query.
func (r *postRepository) TagsForPosts(ctx context.Context, postIDs []int64) (map[int64][]string, error) {
	if len(postIDs) == 0 {
		return map[int64][]string{}, nil
	}

	query := `
		SELECT pt.post_id, t.name
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1)
		ORDER BY pt.post_id, t.name
	`
	type row struct {
		PostID int64  `db:"post_id"`
		Name   string `db:"name"`
	}
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(postIDs)); err != nil {
		return nil, fmt.Errorf("get post tags: %w", err)
	}

	result := make(map[int64][]string)
	for _, row := range rows {
		result[row.PostID] = append(result[row.PostID], row.Name)
	}
	return result, nil
}

// CheckLikes checks which posts the user has liked.
// Returns a map of post_id -> liked.
func (r *postRepository) CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	if len(postIDs) == 0 {
		return make(map[int64]bool), nil
	}

	query := `SELECT post_id FROM post_likes WHERE user_id = $1 AND post_id = ANY($2)`
	var likedIDs []int64
	err := r.db.SelectContext(ctx, &likedIDs, query, userID, pq.Array(postIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("check likes: %w", err)
	}

	result := make(map[int64]bool)
	for _, id := range postIDs {
		result[id] = false
	}
	for _, id := range likedIDs {
		result[id] = true
	}

	return result, nil
}

// RecentPostIDs returns the newest post IDs with creation timestamps,
// for warming the recent-posts cache.
func (r *postRepository) RecentPostIDs(ctx context.Context, limit int) ([]cache.PostScore, error) {
	query := `
		SELECT id, EXTRACT(EPOCH FROM created_at)::bigint as timestamp
		FROM posts
		ORDER BY created_at DESC
		LIMIT $1
	`
	type row struct {
		ID        int64 `db:"id"`
		Timestamp int64 `db:"timestamp"`
	}
	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("get recent post ids: %w", err)
	}

	posts := make([]cache.PostScore, len(rows))
	for i, r := range rows {
		posts[i] = cache.PostScore{PostID: r.ID, Timestamp: r.Timestamp}
	}
	return posts, nil
}

// InsertLike inserts a like edge if absent. The primary key on
// (user_id, post_id) makes the toggle race-safe: of two concurrent
// inserts only one reports an inserted row.
func (r *postRepository) InsertLike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	query := `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, post_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// DeleteLike removes a like edge, tolerant of it already being gone.
func (r *postRepository) DeleteLike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	result, err := tx.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// CountLikes recomputes the like count from the edge table.
func (r *postRepository) CountLikes(ctx context.Context, tx *sqlx.Tx, postID int64) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}
