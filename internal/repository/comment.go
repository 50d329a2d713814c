package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"inkpress/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment and returns it with author display fields.
func (r *commentRepository) Create(ctx context.Context, postID, userID int64, content string) (*model.Comment, error) {
	query := `
		INSERT INTO post_comments (post_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, user_id, content, created_at
	`
	var comment model.Comment
	if err := r.db.GetContext(ctx, &comment, query, postID, userID, content); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	var author model.UserSummary
	err := r.db.GetContext(ctx, &author, `
		SELECT id, username, full_name, avatar_url FROM users WHERE id = $1
	`, userID)
	if err == nil {
		comment.Author = &author
	}

	return &comment, nil
}

// GetByPostID returns all comments for a post, oldest first, each with
// its author's display fields.
func (r *commentRepository) GetByPostID(ctx context.Context, postID int64) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, c.content, c.created_at,
		       u.id AS "author.id", u.username AS "author.username",
		       u.full_name AS "author.full_name", u.avatar_url AS "author.avatar_url"
		FROM post_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC, c.id ASC
	`
	type commentWithAuthor struct {
		model.Comment
		AuthorRow model.UserSummary `db:"author"`
	}

	var rows []commentWithAuthor
	if err := r.db.SelectContext(ctx, &rows, query, postID); err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		comment := row.Comment
		author := row.AuthorRow
		comment.Author = &author
		comments[i] = comment
	}
	return comments, nil
}
