package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"inkpress/internal/model"
	"inkpress/internal/repository"
)

func TestTruncateContent(t *testing.T) {
	cases := []struct {
		name    string
		content string
		limit   int
		want    string
	}{
		{"short stays intact", "hello", 10, "hello"},
		{"exact limit stays intact", "abcde", 5, "abcde"},
		{"over limit gets marker", "abcdef", 5, "abcde..."},
		{"empty", "", 5, ""},
		{"multibyte counts runes", "héllo wörld", 5, "héllo..."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateContent(tc.content, tc.limit); got != tc.want {
				t.Errorf("TruncateContent(%q, %d) = %q, want %q", tc.content, tc.limit, got, tc.want)
			}
		})
	}
}

func TestShapePost(t *testing.T) {
	fullName := "Alice Author"
	row := repository.PostRow{
		Post: model.Post{
			ID:        7,
			UserID:    3,
			Title:     "On Indexes",
			Content:   strings.Repeat("x", model.ListContentLimit+50),
			CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		Author:       model.UserSummary{ID: 3, Username: "alice", FullName: &fullName},
		LikeCount:    4,
		CommentCount: 2,
	}

	view := ShapePost(row, []string{"go", "sql"}, true, true)

	if view.ID != 7 || view.Title != "On Indexes" {
		t.Errorf("identity fields not carried over: %+v", view)
	}
	if len(view.Content) != model.ListContentLimit+3 {
		t.Errorf("list content should be truncated with marker, len=%d", len(view.Content))
	}
	if !strings.HasSuffix(view.Content, "...") {
		t.Errorf("truncated content must end with marker: %q", view.Content[len(view.Content)-10:])
	}
	if view.LikeCount != 4 || view.CommentCount != 2 {
		t.Errorf("counts not carried over: %+v", view)
	}
	if !view.IsLiked {
		t.Error("is_liked lost in shaping")
	}
	if len(view.Tags) != 2 {
		t.Errorf("tags = %v, want two", view.Tags)
	}
	if view.Author.Username != "alice" {
		t.Errorf("author = %+v", view.Author)
	}
}

func TestShapePostDetailKeepsFullContent(t *testing.T) {
	long := strings.Repeat("y", model.ListContentLimit*3)
	row := repository.PostRow{Post: model.Post{ID: 1, Content: long}}

	view := ShapePost(row, nil, false, false)

	if view.Content != long {
		t.Error("detail view must keep full content")
	}
	if view.Tags == nil {
		t.Error("absent tags must shape to empty slice, not nil")
	}
}

func TestParseFeedSort(t *testing.T) {
	cases := map[string]model.FeedSort{
		"likes":    model.SortByLikes,
		"Comments": model.SortByComments,
		"date":     model.SortByDate,
		"":         model.SortByDate,
		"bogus":    model.SortByDate,
	}
	for in, want := range cases {
		if got := ParseFeedSort(in); got != want {
			t.Errorf("ParseFeedSort(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFeedListShapesAndEnriches(t *testing.T) {
	rows := []repository.PostRow{
		{Post: model.Post{ID: 1, Content: "first"}, Author: model.UserSummary{ID: 10, Username: "a"}},
		{Post: model.Post{ID: 2, Content: "second"}, Author: model.UserSummary{ID: 11, Username: "b"}},
	}

	postRepo := &mockPostRepo{
		FeedFn: func(ctx context.Context, params model.FeedParams) ([]repository.PostRow, error) {
			if params.PageSize != 10 {
				t.Errorf("page size should come from config, got %d", params.PageSize)
			}
			return rows, nil
		},
		TagsForPostsFn: func(ctx context.Context, postIDs []int64) (map[int64][]string, error) {
			return map[int64][]string{1: {"go"}}, nil
		},
		CheckLikesFn: func(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
			return map[int64]bool{1: true, 2: false}, nil
		},
	}

	svc := NewFeedService(postRepo, &mockUserRepo{}, nil, 10)

	viewerID := int64(99)
	feed, err := svc.List(context.Background(), model.FeedParams{PageNumber: 1}, &viewerID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(feed.Posts) != 2 {
		t.Fatalf("posts = %d, want 2", len(feed.Posts))
	}
	if !feed.Posts[0].IsLiked || feed.Posts[1].IsLiked {
		t.Errorf("is_liked enrichment wrong: %+v", feed.Posts)
	}
	if len(feed.Posts[0].Tags) != 1 || len(feed.Posts[1].Tags) != 0 {
		t.Errorf("tag shaping wrong: %+v", feed.Posts)
	}
	if feed.Posts[1].Tags == nil {
		t.Error("posts without tags must get an empty slice")
	}
	if feed.PageNumber != 1 || feed.PageSize != 10 {
		t.Errorf("page echo wrong: %+v", feed)
	}
}

func TestFeedListAnonymousSkipsLikeCheck(t *testing.T) {
	postRepo := &mockPostRepo{
		FeedFn: func(ctx context.Context, params model.FeedParams) ([]repository.PostRow, error) {
			return []repository.PostRow{{Post: model.Post{ID: 1}}}, nil
		},
		TagsForPostsFn: func(ctx context.Context, postIDs []int64) (map[int64][]string, error) {
			return nil, nil
		},
		CheckLikesFn: func(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
			t.Fatal("CheckLikes must not run for anonymous viewers")
			return nil, nil
		},
	}

	svc := NewFeedService(postRepo, &mockUserRepo{}, nil, 10)

	feed, err := svc.List(context.Background(), model.FeedParams{}, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if feed.Posts[0].IsLiked {
		t.Error("anonymous viewer must see is_liked=false")
	}
}

func TestFeedListBoundedWindowSkipsCache(t *testing.T) {
	// The hot list only knows "newest first"; a request bounded by an
	// explicit endDate must take the SQL path so the date predicate
	// applies even when Redis is up.
	recent := &mockRecentPosts{
		ExistsFn: func(ctx context.Context) (bool, error) {
			t.Fatal("bounded-window request must not touch the recent cache")
			return false, nil
		},
	}

	endDate := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	postRepo := &mockPostRepo{
		FeedFn: func(ctx context.Context, params model.FeedParams) ([]repository.PostRow, error) {
			if !params.EndDate.Equal(endDate) {
				t.Errorf("endDate = %v, want %v", params.EndDate, endDate)
			}
			return nil, nil
		},
	}

	svc := NewFeedService(postRepo, &mockUserRepo{}, recent, 10)

	params := model.FeedParams{
		PageNumber: 1,
		StartDate:  time.Unix(0, 0),
		EndDate:    endDate,
		EndDateSet: true,
	}
	feed, err := svc.List(context.Background(), params, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(feed.Posts) != 0 {
		t.Errorf("posts = %v, want none inside the window", feed.Posts)
	}
}

func TestFeedListDefaultWindowUsesCache(t *testing.T) {
	// The implicit endDate=now default is not a real filter; it must not
	// knock the request off the hot path.
	recent := &mockRecentPosts{
		ExistsFn: func(ctx context.Context) (bool, error) { return true, nil },
		PageFn: func(ctx context.Context, offset, limit int) ([]int64, error) {
			return []int64{42}, nil
		},
	}

	postRepo := &mockPostRepo{
		FeedFn: func(ctx context.Context, params model.FeedParams) ([]repository.PostRow, error) {
			t.Fatal("default request should be served from the recent cache")
			return nil, nil
		},
		FetchByIDsFn: func(ctx context.Context, postIDs []int64) ([]repository.PostRow, error) {
			if len(postIDs) != 1 || postIDs[0] != 42 {
				t.Errorf("postIDs = %v, want [42]", postIDs)
			}
			return []repository.PostRow{{Post: model.Post{ID: 42}}}, nil
		},
		TagsForPostsFn: func(ctx context.Context, postIDs []int64) (map[int64][]string, error) {
			return nil, nil
		},
	}

	svc := NewFeedService(postRepo, &mockUserRepo{}, recent, 10)

	params := model.FeedParams{
		PageNumber: 1,
		StartDate:  time.Unix(0, 0),
		EndDate:    time.Now(),
	}
	feed, err := svc.List(context.Background(), params, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(feed.Posts) != 1 || feed.Posts[0].ID != 42 {
		t.Errorf("posts = %+v, want the cached post", feed.Posts)
	}
}

func TestFeedListEmptyPage(t *testing.T) {
	postRepo := &mockPostRepo{
		FeedFn: func(ctx context.Context, params model.FeedParams) ([]repository.PostRow, error) {
			return nil, nil
		},
	}

	svc := NewFeedService(postRepo, &mockUserRepo{}, nil, 10)

	feed, err := svc.List(context.Background(), model.FeedParams{PageNumber: 40}, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if feed.Posts == nil || len(feed.Posts) != 0 {
		t.Errorf("past-the-end page must be an empty array, got %v", feed.Posts)
	}
}

func TestAuthorPostsUnknownUser(t *testing.T) {
	userRepo := &mockUserRepo{
		GetByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return nil, model.ErrUserNotFound
		},
	}

	svc := NewFeedService(&mockPostRepo{}, userRepo, nil, 10)

	if _, err := svc.AuthorPosts(context.Background(), "ghost", 1, nil); err != model.ErrUserNotFound {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}
