package service

import (
	"context"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"

	"inkpress/internal/model"
	"inkpress/internal/queue"
	"inkpress/internal/repository"
)

// PostService owns post creation, detail retrieval and the like toggle.
type PostService struct {
	runTx       txRunner
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	publisher   queue.Publisher // nil when Redis is not configured
}

func NewPostService(
	db *sqlx.DB,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	publisher queue.Publisher,
) *PostService {
	return &PostService{
		runTx:       sqlxTxRunner(db),
		postRepo:    postRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
		publisher:   publisher,
	}
}

// Create validates and persists a new post with its tags, then emits a
// post_created event for the async cache maintainers.
func (s *PostService) Create(ctx context.Context, userID int64, req model.CreatePostRequest) (*model.PostView, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)

	if req.Title == "" {
		return nil, model.ErrTitleRequired
	}
	if req.Content == "" {
		return nil, model.ErrContentRequired
	}
	if len([]rune(req.Title)) > model.MaxTitleLength {
		return nil, model.ErrTitleTooLong
	}
	if len([]rune(req.Content)) > model.MaxContentLength {
		return nil, model.ErrContentTooLong
	}

	post, tags, err := s.postRepo.Create(ctx, userID, req.Title, req.Content, req.Tags)
	if err != nil {
		log.Printf("[PostService] Create FAILED: user_id=%d error=%v", userID, err)
		return nil, err
	}

	author, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Publish after commit; the feed cache picks it up asynchronously.
	if s.publisher != nil {
		event := queue.NewPostCreatedEvent(post.ID, userID, post.CreatedAt)
		if _, err := s.publisher.Publish(ctx, queue.StreamPosts, event); err != nil {
			// The post is committed; a lost event only delays the
			// cache, the next warm repairs it.
			log.Printf("[PostService] Publish post_created FAILED: post_id=%d error=%v", post.ID, err)
		}
	}

	log.Printf("[PostService] Create OK: post_id=%d user_id=%d tags=%d", post.ID, userID, len(tags))

	view := model.PostView{
		ID:      post.ID,
		Title:   post.Title,
		Content: post.Content,
		Author: model.UserSummary{
			ID:        author.ID,
			Username:  author.Username,
			FullName:  author.FullName,
			AvatarURL: author.AvatarURL,
		},
		Tags:      tags,
		CreatedAt: post.CreatedAt,
	}
	return &view, nil
}

// GetByID returns the full single-post view: untruncated content,
// comments in chronological order, and optionally related posts.
func (s *PostService) GetByID(ctx context.Context, postID int64, viewerID *int64, includeRelated bool) (*model.PostDetailResponse, error) {
	row, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	tags, err := s.postRepo.TagsForPosts(ctx, []int64{postID})
	if err != nil {
		return nil, err
	}

	isLiked := false
	if viewerID != nil {
		liked, err := s.postRepo.CheckLikes(ctx, *viewerID, []int64{postID})
		if err == nil {
			isLiked = liked[postID]
		}
	}

	comments, err := s.commentRepo.GetByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	detail := model.PostDetailResponse{
		Post:     ShapePost(*row, tags[postID], isLiked, false),
		Comments: comments,
		Related:  []model.PostView{},
	}

	if includeRelated {
		relatedRows, err := s.postRepo.Related(ctx, postID, row.Title, tags[postID], model.RelatedPostsLimit)
		if err != nil {
			// Related posts are an enrichment, not part of the
			// contract; the detail view still succeeds.
			log.Printf("[PostService] Related lookup FAILED: post_id=%d error=%v", postID, err)
		} else {
			related, err := s.shapeRelated(ctx, relatedRows, viewerID)
			if err != nil {
				return nil, err
			}
			detail.Related = related
		}
	}

	return &detail, nil
}

func (s *PostService) shapeRelated(ctx context.Context, rows []repository.PostRow, viewerID *int64) ([]model.PostView, error) {
	if len(rows) == 0 {
		return []model.PostView{}, nil
	}

	postIDs := make([]int64, len(rows))
	for i, row := range rows {
		postIDs[i] = row.ID
	}

	tags, err := s.postRepo.TagsForPosts(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	var liked map[int64]bool
	if viewerID != nil {
		liked, _ = s.postRepo.CheckLikes(ctx, *viewerID, postIDs)
	}

	related := make([]model.PostView, len(rows))
	for i, row := range rows {
		related[i] = ShapePost(row, tags[row.ID], liked[row.ID], true)
	}
	return related, nil
}

// ToggleLike flips the viewer's like on a post inside one transaction:
// insert if absent, delete if present. The returned count is recomputed
// in the same transaction, never read from a stored counter.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID int64) (*model.LikeToggleResponse, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	var result model.LikeToggleResponse
	err = s.runTx(ctx, func(tx *sqlx.Tx) error {
		inserted, err := s.postRepo.InsertLike(ctx, tx, postID, userID)
		if err != nil {
			return err
		}

		isLiked := inserted
		if !inserted {
			// Row already existed: this toggle removes it.
			if _, err := s.postRepo.DeleteLike(ctx, tx, postID, userID); err != nil {
				return err
			}
			isLiked = false
		}

		likeCount, err := s.postRepo.CountLikes(ctx, tx, postID)
		if err != nil {
			return err
		}

		result = model.LikeToggleResponse{IsLiked: isLiked, LikeCount: likeCount}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[PostService] ToggleLike OK: post_id=%d user_id=%d is_liked=%v", postID, userID, result.IsLiked)

	return &result, nil
}
