package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// RecentPostsKey is the sorted set holding the newest post IDs,
	// scored by creation unix time.
	RecentPostsKey = "posts:recent"

	// RecentPostsCap is the maximum number of post IDs kept in the set.
	RecentPostsCap = 500

	// RecentPostsTTL expires an idle cache so it gets rewarmed.
	RecentPostsTTL = 7 * 24 * time.Hour
)

// PostScore represents a post with its timestamp score for caching.
type PostScore struct {
	PostID    int64
	Timestamp int64 // Unix timestamp
}

// RecentPosts is the hot list of newest post IDs backing the default,
// unfiltered feed page. It stores IDs only; counts and content are always
// hydrated from the database.
type RecentPosts interface {
	// AddPost adds a post to the hot list.
	// Pipeline: ZADD + ZREMRANGEBYRANK (maintain cap) + EXPIRE (refresh TTL).
	AddPost(ctx context.Context, postID, timestamp int64) error

	// Page returns post IDs for an offset page, newest first.
	Page(ctx context.Context, offset, limit int) ([]int64, error)

	// Warm bulk-inserts posts using a pipeline.
	Warm(ctx context.Context, posts []PostScore) error

	// Size returns the number of cached post IDs.
	Size(ctx context.Context) (int64, error)

	// Exists reports whether the hot list key exists. The service warms
	// the cache when this returns false.
	Exists(ctx context.Context) (bool, error)
}

// RedisRecentPosts implements RecentPosts on a Redis sorted set.
type RedisRecentPosts struct {
	client *redis.Client
}

// NewRecentPosts creates a RecentPosts backed by Redis.
func NewRecentPosts(client *redis.Client) RecentPosts {
	return &RedisRecentPosts{client: client}
}

// AddPost adds a post to the hot list using a pipeline.
func (c *RedisRecentPosts) AddPost(ctx context.Context, postID, timestamp int64) error {
	startTime := time.Now()

	pipe := c.client.Pipeline()

	pipe.ZAdd(ctx, RecentPostsKey, redis.Z{
		Score:  float64(timestamp),
		Member: strconv.FormatInt(postID, 10),
	})

	// Maintain cap: drop the oldest entries beyond RecentPostsCap.
	pipe.ZRemRangeByRank(ctx, RecentPostsKey, 0, int64(-RecentPostsCap-1))

	pipe.Expire(ctx, RecentPostsKey, RecentPostsTTL)

	_, err := pipe.Exec(ctx)
	if err != nil {
		log.Printf("[RecentPosts] AddPost FAILED: post=%d err=%v", postID, err)
		return fmt.Errorf("add post to recent set: %w", err)
	}

	log.Printf("[RecentPosts] AddPost OK: post=%d timestamp=%d duration=%v",
		postID, timestamp, time.Since(startTime))
	return nil
}

// Page returns post IDs for an offset page via ZREVRANGE.
func (c *RedisRecentPosts) Page(ctx context.Context, offset, limit int) ([]int64, error) {
	startTime := time.Now()

	members, err := c.client.ZRevRange(ctx, RecentPostsKey, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		log.Printf("[RecentPosts] Page FAILED: offset=%d limit=%d err=%v", offset, limit, err)
		return nil, fmt.Errorf("get recent page: %w", err)
	}

	// Refresh TTL on access
	c.client.Expire(ctx, RecentPostsKey, RecentPostsTTL)

	postIDs := make([]int64, len(members))
	for i, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			log.Printf("[RecentPosts] Page parse error: member=%q err=%v", m, err)
			return nil, fmt.Errorf("parse post id: %w", err)
		}
		postIDs[i] = id
	}

	log.Printf("[RecentPosts] Page OK: offset=%d returned=%d duration=%v",
		offset, len(postIDs), time.Since(startTime))
	return postIDs, nil
}

// Warm bulk-inserts posts into the hot list using a pipeline.
func (c *RedisRecentPosts) Warm(ctx context.Context, posts []PostScore) error {
	if len(posts) == 0 {
		log.Printf("[RecentPosts] Warm: posts=0 (nothing to warm)")
		return nil
	}

	startTime := time.Now()

	pipe := c.client.Pipeline()

	members := make([]redis.Z, len(posts))
	for i, p := range posts {
		members[i] = redis.Z{
			Score:  float64(p.Timestamp),
			Member: strconv.FormatInt(p.PostID, 10),
		}
	}
	pipe.ZAdd(ctx, RecentPostsKey, members...)
	pipe.ZRemRangeByRank(ctx, RecentPostsKey, 0, int64(-RecentPostsCap-1))
	pipe.Expire(ctx, RecentPostsKey, RecentPostsTTL)

	_, err := pipe.Exec(ctx)
	if err != nil {
		log.Printf("[RecentPosts] Warm FAILED: posts=%d err=%v", len(posts), err)
		return fmt.Errorf("warm recent set: %w", err)
	}

	log.Printf("[RecentPosts] Warm OK: posts=%d duration=%v", len(posts), time.Since(startTime))
	return nil
}

// Size returns the number of cached post IDs.
func (c *RedisRecentPosts) Size(ctx context.Context) (int64, error) {
	size, err := c.client.ZCard(ctx, RecentPostsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("get recent set size: %w", err)
	}
	return size, nil
}

// Exists checks if the hot list key exists.
func (c *RedisRecentPosts) Exists(ctx context.Context) (bool, error) {
	n, err := c.client.Exists(ctx, RecentPostsKey).Result()
	if err != nil {
		return false, fmt.Errorf("check recent set: %w", err)
	}
	return n > 0, nil
}
