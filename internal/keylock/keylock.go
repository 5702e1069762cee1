// Package keylock serializes read-modify-write sequences per (user, feature)
// key while letting operations on distinct keys proceed in parallel.
package keylock

import (
	"hash/fnv"
	"strings"
	"sync"
)

const defaultShards = 128

// KeyMutex is a sharded lock table. Keys hash onto a fixed set of mutexes,
// so memory stays bounded regardless of how many keys are active.
type KeyMutex struct {
	shards []sync.Mutex
}

func NewKeyMutex(shards int) *KeyMutex {
	if shards <= 0 {
		shards = defaultShards
	}
	return &KeyMutex{shards: make([]sync.Mutex, shards)}
}

// Lock acquires the shard owning key and returns its release func.
func (m *KeyMutex) Lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	mu := &m.shards[h.Sum32()%uint32(len(m.shards))]
	mu.Lock()
	return mu.Unlock
}

// Key builds the canonical lock key for a (user, feature) pair.
func Key(userID, featureKey string) string {
	return strings.TrimSpace(userID) + "|" + strings.TrimSpace(featureKey)
}
