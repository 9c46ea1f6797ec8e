package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// EventStreamKey returns the stream that carries events of the given type.
func (c *Client) EventStreamKey(eventType string) string {
	return c.key(eventStreamPrefix, eventType)
}

// AppendToStream adds an entry to a stream, trimming it to roughly maxLen
// entries when maxLen is positive. It returns the generated entry id.
func (c *Client) AppendToStream(ctx context.Context, stream string, values map[string]any, maxLen int64) (string, error) {
	if c.cmd == nil {
		return "", errNotInitialized
	}
	args := &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}
	if maxLen > 0 {
		args.MaxLen = maxLen
		args.Approx = true
	}
	return c.cmd.XAdd(ctx, args).Result()
}
