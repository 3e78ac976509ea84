package redisstream

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/talentflow/pkg/models"
)

func TestStreamKey(t *testing.T) {
	assert.Equal(t, "talentflow:activities:tenant-1:42", streamKey("tenant-1", "42"))
	assert.NotEqual(t, streamKey("a:b", "c"), streamKey("a", "b:c"))
}

func TestDecode(t *testing.T) {
	activity, err := decode(redis.XMessage{
		ID:     "1-0",
		Values: map[string]any{activityField: `{"id":"act-1","entity_id":"42","message":"hello"}`},
	})
	require.NoError(t, err)
	assert.Equal(t, "act-1", activity.ID)
	assert.Equal(t, "hello", activity.Message)

	_, err = decode(redis.XMessage{ID: "2-0", Values: map[string]any{"other": "x"}})
	require.Error(t, err)
}

func TestNewStore_InvalidURL(t *testing.T) {
	_, err := NewStore(context.Background(), "postgres://nope", slog.Default())
	require.Error(t, err)
}

func TestStore_AppendAndRead(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL is not set")
	}

	ctx := context.Background()

	store, err := NewStore(ctx, url, slog.Default(), WithMaxLen(100))
	require.NoError(t, err)

	defer store.Close()

	entity := "entity-" + time.Now().Format("150405.000000")

	t.Cleanup(func() {
		store.client.Del(context.Background(), streamKey("tenant-1", entity))
	})

	for i, message := range []string{"first", "second"} {
		err = store.AppendActivity(ctx, models.Activity{
			ID:        message,
			Owner:     "tenant-1",
			EntityID:  entity,
			Message:   message,
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	activities, err := store.ActivitiesByEntity(ctx, "tenant-1", entity)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, "first", activities[0].Message)
	assert.Equal(t, "second", activities[1].Message)

	others, err := store.ActivitiesByEntity(ctx, "tenant-2", entity)
	require.NoError(t, err)
	assert.Empty(t, others)
}
