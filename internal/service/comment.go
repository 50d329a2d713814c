package service

import (
	"context"
	"log"
	"strings"

	"inkpress/internal/model"
	"inkpress/internal/repository"
)

// CommentService owns comment creation and listing.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

// Create validates and stores a comment on an existing post.
func (s *CommentService) Create(ctx context.Context, postID, userID int64, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, model.ErrCommentContentRequired
	}
	if len([]rune(content)) > model.MaxCommentLength {
		return nil, model.ErrCommentContentTooLong
	}

	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	comment, err := s.commentRepo.Create(ctx, postID, userID, content)
	if err != nil {
		log.Printf("[CommentService] Create FAILED: post_id=%d user_id=%d error=%v", postID, userID, err)
		return nil, err
	}

	log.Printf("[CommentService] Create OK: comment_id=%d post_id=%d", comment.ID, postID)
	return comment, nil
}
