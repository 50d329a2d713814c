package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the posts stream
const (
	EventPostCreated = "post_created"
)

// Stream names
const (
	StreamPosts = "stream:posts"
)

// Consumer group name for post workers
const (
	ConsumerGroupPosts = "post_workers"
)

// PostEvent represents an event published to the posts stream.
type PostEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp when event occurred

	PostID    int64 `json:"post_id,omitempty"`
	AuthorID  int64 `json:"author_id,omitempty"`
	CreatedAt int64 `json:"created_at,omitempty"` // Post creation unix time (cache score)
}

// NewPostCreatedEvent creates an event for when a user publishes a post.
// The worker adds the post to the recent-posts cache.
func NewPostCreatedEvent(postID, authorID int64, createdAt time.Time) PostEvent {
	return PostEvent{
		Type:      EventPostCreated,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
		AuthorID:  authorID,
		CreatedAt: createdAt.Unix(),
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so the event is serialized to
// JSON in a "data" field.
func (e PostEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParsePostEvent parses a PostEvent from Redis stream message values.
func ParsePostEvent(values map[string]interface{}) (PostEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return PostEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event PostEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return PostEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
