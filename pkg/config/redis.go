package config

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/hdwhdw/pathmap/pkg/pathutil"
)

const (
	// DefaultRedisAddr is the local CONFIG_DB endpoint
	DefaultRedisAddr = "localhost:6379"
	// DefaultRedisDB is the CONFIG_DB database index
	DefaultRedisDB = 4
	// DefaultRedisKey holds the default mapping rule
	DefaultRedisKey = "PATH_MAPPING|default"
)

// Redis hash fields
const (
	fieldLogicalBase      = "logical_base"
	fieldLogicalSeparator = "logical_separator"
	fieldFSBase           = "fs_base"
	fieldFSSeparator      = "fs_separator"
	fieldFileExtension    = "file_extension"
)

// HashReader is the subset of the Redis client used to read rules
type HashReader interface {
	HGetAll(ctx context.Context, key string) *redis.StringStringMapCmd
}

// NewRedisClient creates a client for the given Redis endpoint
func NewRedisClient(addr string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
}

// LoadRuleFromRedis reads a mapping rule stored as a Redis hash
func LoadRuleFromRedis(ctx context.Context, reader HashReader, key string) (pathutil.Rule, error) {
	fields, err := reader.HGetAll(ctx, key).Result()
	if err != nil {
		return pathutil.Rule{}, fmt.Errorf("failed to read %s from redis: %w", key, err)
	}
	if len(fields) == 0 {
		return pathutil.Rule{}, fmt.Errorf("mapping rule %s not found in redis", key)
	}

	return pathutil.Rule{
		LogicalBase:      fields[fieldLogicalBase],
		LogicalSeparator: fields[fieldLogicalSeparator],
		FSBase:           fields[fieldFSBase],
		FSSeparator:      fields[fieldFSSeparator],
		FileExtension:    fields[fieldFileExtension],
	}, nil
}
