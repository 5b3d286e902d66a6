package repository

import (
	"context"
	"fmt"

	redisapp "site_cms/internal/storage/redis"
)

// RemovalJournalKey is the Redis set holding blob ids awaiting deletion.
var RemovalJournalKey = redisapp.Key("blob_removals")

// RemovalJournal remembers blob ids that must be deleted from the blob store
// until the store confirms them.
type RemovalJournal interface {
	Add(ctx context.Context, ids ...string) error
	Ack(ctx context.Context, ids ...string) error
	Pending(ctx context.Context) ([]string, error)
}

type RedisRemovalJournal struct {
	Client *redisapp.Client
}

func NewRedisRemovalJournal(client *redisapp.Client) *RedisRemovalJournal {
	return &RedisRemovalJournal{Client: client}
}

func (j *RedisRemovalJournal) Add(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	if err := j.Client.SAdd(ctx, RemovalJournalKey, members(ids)...).Err(); err != nil {
		return fmt.Errorf("repository.RedisRemovalJournal.Add: %w", err)
	}

	return nil
}

func (j *RedisRemovalJournal) Ack(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	if err := j.Client.SRem(ctx, RemovalJournalKey, members(ids)...).Err(); err != nil {
		return fmt.Errorf("repository.RedisRemovalJournal.Ack: %w", err)
	}

	return nil
}

func (j *RedisRemovalJournal) Pending(ctx context.Context) ([]string, error) {
	ids, err := j.Client.SMembers(ctx, RemovalJournalKey).Result()
	if err != nil {
		return nil, fmt.Errorf("repository.RedisRemovalJournal.Pending: %w", err)
	}

	return ids, nil
}

// NopRemovalJournal is used when Redis is not configured.
type NopRemovalJournal struct{}

func (NopRemovalJournal) Add(context.Context, ...string) error { return nil }

func (NopRemovalJournal) Ack(context.Context, ...string) error { return nil }

func (NopRemovalJournal) Pending(context.Context) ([]string, error) { return nil, nil }

func members(ids []string) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
