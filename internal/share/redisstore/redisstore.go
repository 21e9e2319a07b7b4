// Package redisstore backs share links, click deduplication and click
// analytics with Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/starford/pinfall/internal/share"
)

// DefaultStream is the stream click events are appended to.
const DefaultStream = "share_clicks"

// Store implements share.Store with string keys under a prefix.
type Store struct {
	client *redis.Client
	prefix string
}

var _ share.Store = (*Store)(nil)

// New returns a Store whose keys are prefixed with prefix.
func New(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Put sets key with an expiry. A zero ttl keeps the key forever.
func (s *Store) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redisstore: set %s: %w", key, err)
	}
	return nil
}

// Get returns the value of key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redisstore: get %s: %w", key, err)
	}
	return v, true, nil
}

// Stream appends click events to a Redis stream.
type Stream struct {
	client *redis.Client
	name   string
	maxLen int64
}

var _ share.Analytics = (*Stream)(nil)

// NewStream returns a Stream writing to name. A positive maxLen caps the
// stream length.
func NewStream(client *redis.Client, name string, maxLen int64) *Stream {
	if name == "" {
		name = DefaultStream
	}
	return &Stream{client: client, name: name, maxLen: maxLen}
}

// Write implements share.Analytics.
func (s *Stream) Write(ctx context.Context, e share.ClickEvent) error {
	unique := "0"
	if e.Unique {
		unique = "1"
	}
	args := &redis.XAddArgs{
		Stream: s.name,
		Values: []any{
			"event", e.Name,
			"token", e.Token,
			"channel", e.Channel,
			"campaign", e.Campaign,
			"content_id", e.ContentID,
			"unique", unique,
			"ts", strconv.FormatInt(e.Timestamp.UnixMilli(), 10),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("redisstore: xadd: %w", err)
	}
	return nil
}
