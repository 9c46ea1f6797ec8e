package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventStreamKey(t *testing.T) {
	client, _ := newTestClient(t)
	assert.Equal(t, "quotecart:events:order.created", client.EventStreamKey("order.created"))
}

func TestAppendToStream(t *testing.T) {
	client, srv := newTestClient(t)
	ctx := context.Background()
	stream := client.EventStreamKey("order.created")

	id, err := client.AppendToStream(ctx, stream, map[string]any{"event_id": "evt-1", "payload": `{"a":1}`}, 100)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = client.AppendToStream(ctx, stream, map[string]any{"event_id": "evt-2"}, 0)
	require.NoError(t, err)

	entries, err := srv.Stream(stream)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, id, entries[0].ID)
	assert.Equal(t, map[string]string{"event_id": "evt-1", "payload": `{"a":1}`}, pairs(entries[0].Values))
}

func pairs(values []string) map[string]string {
	out := make(map[string]string, len(values)/2)
	for i := 0; i+1 < len(values); i += 2 {
		out[values[i]] = values[i+1]
	}
	return out
}
