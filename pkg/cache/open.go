package cache

import (
	"context"
	"fmt"
	"strings"
)

// Open returns the backend named by location:
//
//	""                        disabled (NullCache)
//	"none"                    disabled (NullCache)
//	"redis://..." "rediss://" RedisCache
//	"mongodb://..." "mongodb+srv://..." MongoCache
//	anything else             FileCache rooted at that directory
func Open(ctx context.Context, location string) (Cache, error) {
	switch {
	case location == "" || location == "none":
		return NewNullCache(), nil
	case strings.HasPrefix(location, "redis://"), strings.HasPrefix(location, "rediss://"):
		c, err := NewRedisCache(ctx, RedisConfig{URL: location})
		if err != nil {
			return nil, err
		}
		return c, nil
	case strings.HasPrefix(location, "mongodb://"), strings.HasPrefix(location, "mongodb+srv://"):
		c, err := NewMongoCache(ctx, MongoConfig{URI: location})
		if err != nil {
			return nil, err
		}
		return c, nil
	case strings.Contains(location, "://"):
		return nil, fmt.Errorf("unsupported cache location %q", location)
	}
	c, err := NewFileCache(location)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Describe returns a log-safe name for a cache backend.
func Describe(c Cache) string {
	switch c := c.(type) {
	case NullCache:
		return "disabled"
	case *FileCache:
		return "file:" + c.Dir()
	case *RedisCache:
		return "redis"
	case *MongoCache:
		return "mongo"
	}
	return fmt.Sprintf("%T", c)
}
