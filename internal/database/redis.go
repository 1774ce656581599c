package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis opens the redis client used for the grading summary cache and
// event fan-out. The connection is verified within ctx.
func ConnectRedis(ctx context.Context, url, clientName string) (*redis.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("redis url must not be empty")
	}

	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if options.ClientName == "" {
		options.ClientName = clientName
	}

	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to connect to redis at %s: %w", options.Addr, err)
	}

	return client, nil
}
