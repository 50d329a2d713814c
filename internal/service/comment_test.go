package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"inkpress/internal/model"
)

func TestCommentCreateValidation(t *testing.T) {
	svc := NewCommentService(&mockCommentRepo{}, &mockPostRepo{})

	t.Run("empty content", func(t *testing.T) {
		_, err := svc.Create(context.Background(), 1, 1, "   ")
		if !errors.Is(err, model.ErrCommentContentRequired) {
			t.Errorf("err = %v, want ErrCommentContentRequired", err)
		}
	})

	t.Run("too long", func(t *testing.T) {
		_, err := svc.Create(context.Background(), 1, 1, strings.Repeat("a", model.MaxCommentLength+1))
		if !errors.Is(err, model.ErrCommentContentTooLong) {
			t.Errorf("err = %v, want ErrCommentContentTooLong", err)
		}
	})
}

func TestCommentCreateMissingPost(t *testing.T) {
	postRepo := &mockPostRepo{
		ExistsFn: func(ctx context.Context, postID int64) (bool, error) { return false, nil },
	}
	svc := NewCommentService(&mockCommentRepo{}, postRepo)

	if _, err := svc.Create(context.Background(), 404, 1, "hello"); !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("err = %v, want ErrPostNotFound", err)
	}
}

func TestCommentCreateTrimsContent(t *testing.T) {
	postRepo := &mockPostRepo{
		ExistsFn: func(ctx context.Context, postID int64) (bool, error) { return true, nil },
	}
	commentRepo := &mockCommentRepo{
		CreateFn: func(ctx context.Context, postID, userID int64, content string) (*model.Comment, error) {
			if content != "hello" {
				t.Errorf("content = %q, want trimmed %q", content, "hello")
			}
			return &model.Comment{ID: 1, PostID: postID, UserID: userID, Content: content}, nil
		},
	}
	svc := NewCommentService(commentRepo, postRepo)

	comment, err := svc.Create(context.Background(), 2, 3, "  hello  ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if comment.ID != 1 {
		t.Errorf("comment = %+v", comment)
	}
}
