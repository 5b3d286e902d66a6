package storage

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key the CMS writes.
const KeyPrefix = "cms"

const (
	dialTimeout = 5 * time.Second
	ioTimeout   = 3 * time.Second
)

type Client struct {
	*redis.Client
}

func NewClient(addr, password string, db int) *Client {
	return &Client{
		Client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			DialTimeout:  dialTimeout,
			ReadTimeout:  ioTimeout,
			WriteTimeout: ioTimeout,
		}),
	}
}

// Key joins parts under KeyPrefix: Key("blob_removals") is "cms:blob_removals".
func Key(parts ...string) string {
	return KeyPrefix + ":" + strings.Join(parts, ":")
}

func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}
