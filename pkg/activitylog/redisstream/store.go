// Package redisstream keeps entity activity timelines in Redis streams, one stream per entity.
package redisstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/dukex/talentflow/pkg/models"
)

const (
	keyPrefix     = "talentflow:activities"
	activityField = "activity"
)

type Store struct {
	client redis.UniversalClient
	maxLen int64
	logger *slog.Logger
}

type Option func(*Store)

// WithMaxLen caps every entity stream at roughly n entries. Zero keeps everything.
func WithMaxLen(n int64) Option {
	return func(s *Store) {
		s.maxLen = n
	}
}

// NewStore connects to the redis:// or rediss:// url and checks the connection.
func NewStore(ctx context.Context, url string, logger *slog.Logger, opts ...Option) (*Store, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	store := NewStoreWithClient(redis.NewClient(options), logger, opts...)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = store.client.Ping(pingCtx).Err()
	if err != nil {
		_ = store.client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	store.logger.InfoContext(ctx, "Connected to Redis", "addr", options.Addr, "db", options.DB)

	return store, nil
}

func NewStoreWithClient(client redis.UniversalClient, logger *slog.Logger, opts ...Option) *Store {
	store := &Store{
		client: client,
		logger: logger.With("module", "redis_activity_store"),
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// AppendActivity adds activity to the end of its entity stream.
func (s *Store) AppendActivity(ctx context.Context, activity models.Activity) error {
	payload, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("failed to marshal activity %s: %w", activity.ID, err)
	}

	args := &redis.XAddArgs{
		Stream: streamKey(activity.Owner, activity.EntityID),
		Values: map[string]any{activityField: string(payload)},
	}

	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	err = s.client.XAdd(ctx, args).Err()
	if err != nil {
		return fmt.Errorf("failed to append activity %s: %w", activity.ID, err)
	}

	return nil
}

// ActivitiesByEntity returns the timeline of entityID, oldest first.
func (s *Store) ActivitiesByEntity(ctx context.Context, owner, entityID string) ([]models.Activity, error) {
	entries, err := s.client.XRange(ctx, streamKey(owner, entityID), "-", "+").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []models.Activity{}, nil
		}

		return nil, fmt.Errorf("failed to read activities of %s: %w", entityID, err)
	}

	activities := make([]models.Activity, 0, len(entries))

	for _, entry := range entries {
		activity, err := decode(entry)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping unreadable activity", "stream_id", entry.ID, "error", err)

			continue
		}

		activities = append(activities, activity)
	}

	return activities, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func decode(entry redis.XMessage) (models.Activity, error) {
	var activity models.Activity

	raw, ok := entry.Values[activityField].(string)
	if !ok {
		return activity, fmt.Errorf("entry has no %q field", activityField)
	}

	err := json.Unmarshal([]byte(raw), &activity)

	return activity, err
}

// streamKey escapes ':' in ids so owner and entity cannot collide.
func streamKey(owner, entityID string) string {
	escape := strings.NewReplacer(`\`, `\\`, ":", `\:`)

	return keyPrefix + ":" + escape.Replace(owner) + ":" + escape.Replace(entityID)
}
