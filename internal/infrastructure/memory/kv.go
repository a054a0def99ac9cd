package memory

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	val       []byte
	expiresAt time.Time
}

// KV is an in-process byte store used when no Redis is configured.
type KV struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

func NewKV() *KV {
	return &KV{data: make(map[string]entry), now: time.Now}
}

func (k *KV) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	k.mu.RLock()
	e, ok := k.data[key]
	k.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if k.expired(e) {
		// the key may have been rewritten since the read lock was dropped
		k.mu.Lock()
		e, ok = k.data[key]
		if ok && k.expired(e) {
			delete(k.data, key)
			ok = false
		}
		k.mu.Unlock()
		if !ok {
			return nil, false, nil
		}
	}
	out := make([]byte, len(e.val))
	copy(out, e.val)
	return out, true, nil
}

func (k *KV) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !k.now().Before(e.expiresAt)
}

func (k *KV) SetBytes(_ context.Context, key string, val []byte, ttl time.Duration) error {
	e := entry{val: append([]byte(nil), val...)}
	if ttl > 0 {
		e.expiresAt = k.now().Add(ttl)
	}
	k.mu.Lock()
	k.data[key] = e
	k.mu.Unlock()
	return nil
}

func (k *KV) Delete(_ context.Context, keys ...string) error {
	k.mu.Lock()
	for _, key := range keys {
		delete(k.data, key)
	}
	k.mu.Unlock()
	return nil
}

func (k *KV) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.data)
}
