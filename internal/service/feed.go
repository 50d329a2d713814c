package service

import (
	"context"
	"log"
	"strings"
	"time"

	"inkpress/internal/cache"
	"inkpress/internal/model"
	"inkpress/internal/repository"
)

const (
	// CacheWarmLimit is the max posts fetched when warming the
	// recent-posts cache.
	CacheWarmLimit = 500
)

// FeedService assembles the paginated, filtered, sorted post listing.
type FeedService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	recent   cache.RecentPosts // nil when Redis is not configured
	pageSize int
}

func NewFeedService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	recent cache.RecentPosts,
	pageSize int,
) *FeedService {
	return &FeedService{
		postRepo: postRepo,
		userRepo: userRepo,
		recent:   recent,
		pageSize: pageSize,
	}
}

// List returns one feed page. Anonymous viewers get is_liked=false on
// every post. Content is truncated to the list display limit.
//
// The unfiltered default-order request is the hot path; when the
// recent-posts cache is available it serves the post IDs and the rows are
// hydrated from the database (counts always live). Every filtered or
// re-sorted request goes straight to SQL.
func (s *FeedService) List(ctx context.Context, params model.FeedParams, viewerID *int64) (*model.FeedResponse, error) {
	startTime := time.Now()

	if params.PageNumber <= 0 {
		params.PageNumber = 1
	}
	params.PageSize = s.pageSize

	var rows []repository.PostRow
	var err error

	if s.useRecentCache(params) {
		rows, err = s.listFromCache(ctx, params)
		if err != nil {
			log.Printf("[FeedService] Cache path failed, falling back to DB: %v", err)
			rows = nil
		}
	}

	if rows == nil {
		rows, err = s.postRepo.Feed(ctx, params)
		if err != nil {
			return nil, err
		}
	}

	posts, err := s.shapeRows(ctx, rows, viewerID, true)
	if err != nil {
		return nil, err
	}

	log.Printf("[FeedService] List OK: page=%d posts=%d duration=%v",
		params.PageNumber, len(posts), time.Since(startTime))

	return &model.FeedResponse{
		Posts:      posts,
		PageNumber: params.PageNumber,
		PageSize:   params.PageSize,
	}, nil
}

// AuthorPosts returns one page of a single author's posts.
func (s *FeedService) AuthorPosts(ctx context.Context, username string, pageNumber int, viewerID *int64) (*model.FeedResponse, error) {
	// Fail fast with 404 before querying an empty page.
	if _, err := s.userRepo.GetByUsername(ctx, username); err != nil {
		return nil, err
	}

	params := model.FeedParams{
		PageNumber: pageNumber,
		Usernames:  []string{username},
		StartDate:  time.Unix(0, 0),
		EndDate:    time.Now(),
	}
	return s.List(ctx, params, viewerID)
}

// useRecentCache reports whether the request is the default-order,
// unfiltered listing the hot list can serve.
func (s *FeedService) useRecentCache(p model.FeedParams) bool {
	if s.recent == nil {
		return false
	}
	if len(p.Tags) > 0 || p.Keywords != "" || len(p.Usernames) > 0 || p.Ascending {
		return false
	}
	if p.OrderBy == model.SortByLikes || p.OrderBy == model.SortByComments {
		return false
	}
	// An explicit date window needs the SQL predicate; the hot list
	// would return posts created after the bound.
	if p.StartDate.Unix() != 0 || p.EndDateSet {
		return false
	}
	// The hot list only holds the newest RecentPostsCap IDs.
	return p.PageNumber*p.PageSize <= cache.RecentPostsCap
}

// listFromCache serves a default feed page from the recent-posts hot
// list, warming it on miss. Returns nil rows to signal a fall-through.
func (s *FeedService) listFromCache(ctx context.Context, params model.FeedParams) ([]repository.PostRow, error) {
	exists, err := s.recent.Exists(ctx)
	if err != nil {
		return nil, err
	}

	if !exists {
		log.Printf("[FeedService] Recent cache miss, warming...")
		posts, err := s.postRepo.RecentPostIDs(ctx, CacheWarmLimit)
		if err != nil {
			return nil, err
		}
		if err := s.recent.Warm(ctx, posts); err != nil {
			return nil, err
		}
		if size, err := s.recent.Size(ctx); err == nil {
			log.Printf("[FeedService] Recent cache warmed: size=%d", size)
		}
	}

	offset := (params.PageNumber - 1) * params.PageSize
	postIDs, err := s.recent.Page(ctx, offset, params.PageSize)
	if err != nil {
		return nil, err
	}

	return s.postRepo.FetchByIDs(ctx, postIDs)
}

// shapeRows applies the response shaper to fetched rows: batch tag
// fetch, batch like check for the viewer, flattening and truncation.
func (s *FeedService) shapeRows(ctx context.Context, rows []repository.PostRow, viewerID *int64, truncate bool) ([]model.PostView, error) {
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
		liked, err = s.postRepo.CheckLikes(ctx, *viewerID, postIDs)
		if err != nil {
			// Like status is an enrichment; degrade to false rather
			// than failing the listing.
			log.Printf("[FeedService] CheckLikes failed: %v", err)
			liked = nil
		}
	}

	posts := make([]model.PostView, len(rows))
	for i, row := range rows {
		posts[i] = ShapePost(row, tags[row.ID], liked[row.ID], truncate)
	}
	return posts, nil
}

// ShapePost is the entity response shaper: it flattens a fetched row
// into the client-facing view model. Deterministic and side-effect-free;
// absent tags map to an empty slice, never null.
func ShapePost(row repository.PostRow, tags []string, isLiked, truncate bool) model.PostView {
	content := row.Content
	if truncate {
		content = TruncateContent(content, model.ListContentLimit)
	}
	if tags == nil {
		tags = []string{}
	}

	return model.PostView{
		ID:           row.ID,
		Title:        row.Title,
		Content:      content,
		Author:       row.Author,
		Tags:         tags,
		LikeCount:    row.LikeCount,
		CommentCount: row.CommentCount,
		IsLiked:      isLiked,
		CreatedAt:    row.CreatedAt,
	}
}

// TruncateContent cuts content to limit characters plus an ellipsis
// marker. The boundary is a character count, not a word boundary; runes
// are counted so multi-byte text is never split.
func TruncateContent(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "..."
}

// ParseFeedSort maps the orderBy query value to a FeedSort. Unknown
// values fall back to the default date ordering.
func ParseFeedSort(orderBy string) model.FeedSort {
	switch strings.ToLower(strings.TrimSpace(orderBy)) {
	case "likes":
		return model.SortByLikes
	case "comments":
		return model.SortByComments
	default:
		return model.SortByDate
	}
}
