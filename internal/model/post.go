package model

import (
	"errors"
	"time"
)

// Post represents a blog post row.
type Post struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PostView is the client-facing shape of a post: counts come from live
// edge-table counts, tags are flattened to names, and is_liked reflects
// the viewer (false for anonymous callers). In list views Content is
// truncated; single-post views carry the full text.
type PostView struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Content      string      `json:"content"`
	Author       UserSummary `json:"author"`
	Tags         []string    `json:"tags"`
	LikeCount    int         `json:"like_count"`
	CommentCount int         `json:"comment_count"`
	IsLiked      bool        `json:"is_liked"`
	CreatedAt    time.Time   `json:"created_at"`
}

// PostDetailResponse is the single-post payload with comments and the
// optional related posts list.
type PostDetailResponse struct {
	Post     PostView   `json:"post"`
	Comments []Comment  `json:"comments"`
	Related  []PostView `json:"related_posts,omitempty"`
}

// FeedResponse is the paginated feed payload.
type FeedResponse struct {
	Posts      []PostView `json:"posts"`
	PageNumber int        `json:"page_number"`
	PageSize   int        `json:"page_size"`
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// LikeToggleResponse reports the post-toggle membership state and the
// freshly recomputed count.
type LikeToggleResponse struct {
	IsLiked   bool `json:"is_liked"`
	LikeCount int  `json:"like_count"`
}

// FeedSort selects the feed ordering key.
type FeedSort string

const (
	SortByDate     FeedSort = "date"
	SortByLikes    FeedSort = "likes"
	SortByComments FeedSort = "comments"
)

// FeedParams are the assembled feed query parameters. Zero values mean
// "not filtered"; StartDate/EndDate are always populated by the handler
// (epoch start and now by default).
type FeedParams struct {
	PageNumber int
	PageSize   int
	Tags       []string // lowercased tag names, OR semantics
	Keywords   string   // matched against title OR content OR author username
	Usernames  []string // restricts to these authors, OR semantics
	StartDate  time.Time
	EndDate    time.Time
	EndDateSet bool // true when the client bounded the window explicitly
	OrderBy    FeedSort
	Ascending  bool
}

// Post constraints
const (
	MaxTitleLength   = 300
	MaxContentLength = 50000

	// ListContentLimit is the display truncation applied to Content in
	// list/feed views. Single-post views are never truncated.
	ListContentLimit = 200

	// RelatedPostsLimit caps the related-posts heuristic.
	RelatedPostsLimit = 5
)

// Post errors
var (
	ErrPostNotFound    = errors.New("post not found")
	ErrTitleRequired   = errors.New("post title is required")
	ErrContentRequired = errors.New("post content is required")
	ErrTitleTooLong    = errors.New("post title too long")
	ErrContentTooLong  = errors.New("post content too long")
)
