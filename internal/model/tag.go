package model

// Tag is a label attached to posts. Names are unique case-insensitively;
// tags are created on first use and never deleted.
type Tag struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

const MaxTagsPerPost = 10
