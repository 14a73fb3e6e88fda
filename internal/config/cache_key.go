package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentListKey returns the cache key for the roster ordered by name
func (r *CacheKeyStruct) StudentListKey() string {
	return "catalog:students"
}

// SubjectListKey returns the cache key for the subject catalog
func (r *CacheKeyStruct) SubjectListKey() string {
	return "catalog:subjects"
}

// IdempotencyKey returns the cache key holding a replayable response for a client key
func (r *CacheKeyStruct) IdempotencyKey(endpoint, key string) string {
	return fmt.Sprintf("idempotency:%s:%s", endpoint, key)
}

// IdempotencyLockKey returns the key guarding a request that is still in flight
func (r *CacheKeyStruct) IdempotencyLockKey(endpoint, key string) string {
	return fmt.Sprintf("idempotency:%s:%s:lock", endpoint, key)
}

var CacheKey = NewCacheKeyStruct()
