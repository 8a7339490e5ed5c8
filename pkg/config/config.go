// Package config loads the mapping rule from a YAML file, a Redis hash, or a
// PathMapping custom resource, falling back to values given on the command line.
package config

import (
	"context"
	"fmt"

	"github.com/hdwhdw/pathmap/pkg/pathutil"
	"k8s.io/client-go/dynamic"
	"k8s.io/klog/v2"
)

// Options selects where the mapping rule comes from
type Options struct {
	// File is a YAML rule file; when set it is the only source consulted
	File string

	// RedisAddr enables reading the rule from a Redis hash
	RedisAddr string
	RedisDB   int
	RedisKey  string

	// Name enables reading the rule from a PathMapping resource
	Namespace  string
	Name       string
	KubeConfig string

	// Fallback is used when no other source yields a rule
	Fallback pathutil.Rule
}

type redisClient interface {
	HashReader
	Close() error
}

// resolver carries the client constructors so tests can replace them
type resolver struct {
	newRedis   func(addr string, db int) redisClient
	newDynamic func(kubeconfig string) (dynamic.Interface, error)
}

var defaultResolver = resolver{
	newRedis: func(addr string, db int) redisClient {
		return NewRedisClient(addr, db)
	},
	newDynamic: NewDynamicClient,
}

// Resolve returns the validated mapping rule selected by opts.
// Source order is file, Redis, PathMapping resource, then the fallback.
func Resolve(ctx context.Context, opts Options) (pathutil.Rule, error) {
	return defaultResolver.resolve(ctx, opts)
}

func (r resolver) resolve(ctx context.Context, opts Options) (pathutil.Rule, error) {
	rule, source, err := r.load(ctx, opts)
	if err != nil {
		return pathutil.Rule{}, err
	}

	rule = rule.WithDefaults()
	if err := rule.Validate(); err != nil {
		return pathutil.Rule{}, fmt.Errorf("invalid mapping rule from %s: %w", source, err)
	}

	klog.InfoS("Resolved mapping rule",
		"source", source,
		"logicalBase", rule.LogicalBase,
		"logicalSeparator", rule.LogicalSeparator,
		"fsBase", rule.FSBase,
		"fileExtension", rule.FileExtension)

	return rule, nil
}

func (r resolver) load(ctx context.Context, opts Options) (pathutil.Rule, string, error) {
	if opts.File != "" {
		rule, err := LoadRuleFile(opts.File)
		if err != nil {
			return pathutil.Rule{}, "", err
		}
		return rule, "file", nil
	}

	if opts.RedisAddr != "" {
		key := opts.RedisKey
		if key == "" {
			key = DefaultRedisKey
		}

		client := r.newRedis(opts.RedisAddr, opts.RedisDB)
		rule, err := LoadRuleFromRedis(ctx, client, key)
		if closeErr := client.Close(); closeErr != nil {
			klog.V(2).InfoS("Failed to close redis client", "error", closeErr)
		}
		if err == nil {
			return rule, "redis", nil
		}
		klog.InfoS("Failed to read mapping rule from Redis, trying next source",
			"error", err,
			"address", opts.RedisAddr,
			"key", key)
	}

	if opts.Name != "" {
		rule, err := r.loadFromCluster(ctx, opts)
		if err == nil {
			return rule, "kubernetes", nil
		}
		klog.InfoS("Failed to read PathMapping resource, using fallback",
			"error", err,
			"namespace", opts.Namespace,
			"name", opts.Name)
	}

	return opts.Fallback, "flags", nil
}

func (r resolver) loadFromCluster(ctx context.Context, opts Options) (pathutil.Rule, error) {
	client, err := r.newDynamic(opts.KubeConfig)
	if err != nil {
		return pathutil.Rule{}, err
	}

	namespace := opts.Namespace
	if namespace == "" {
		namespace = "default"
	}
	return LoadRuleFromCluster(ctx, client, namespace, opts.Name)
}
