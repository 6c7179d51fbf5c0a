package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/flarexio/faqbot/history"
)

const (
	historyKeyPrefix = keyPrefix + "history:" // faqbot:history:{user_id} -> list of record JSON, newest first
	queriesKey       = keyPrefix + "queries"  // sorted set of query -> times asked

	// maxRecords bounds each user's list; reads never need more than the
	// configured limit.
	maxRecords = 100
)

type HistoryRepository struct {
	client *redis.Client
}

func NewHistoryRepository(client *redis.Client) *HistoryRepository {
	return &HistoryRepository{client}
}

func (r *HistoryRepository) Append(ctx context.Context, record history.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	key := historyKeyPrefix + record.UserID

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, maxRecords-1)
	pipe.ZIncrBy(ctx, queriesKey, 1, record.Query)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}

	return nil
}

func (r *HistoryRepository) Recent(ctx context.Context, userID string, n int) ([]history.Record, error) {
	if n <= 0 {
		return []history.Record{}, nil
	}

	items, err := r.client.LRange(ctx, historyKeyPrefix+userID, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	records := make([]history.Record, 0, len(items))
	for _, item := range items {
		var record history.Record
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record: %w", err)
		}

		records = append(records, record)
	}

	return records, nil
}

func (r *HistoryRepository) Popular(ctx context.Context, filter string, n int) ([]string, error) {
	if n <= 0 {
		return []string{}, nil
	}

	if filter == "" {
		queries, err := r.client.ZRevRange(ctx, queriesKey, 0, int64(n-1)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to list queries: %w", err)
		}

		return queries, nil
	}

	queries, err := r.client.ZRevRange(ctx, queriesKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}

	filter = strings.ToLower(filter)

	suggestions := make([]string, 0, n)
	for _, query := range queries {
		if !strings.Contains(strings.ToLower(query), filter) {
			continue
		}

		suggestions = append(suggestions, query)
		if len(suggestions) == n {
			break
		}
	}

	return suggestions, nil
}
