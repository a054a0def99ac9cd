// Package draft keeps in-progress wizard forms in durable storage so a
// reload can resume where the user left off.
package draft

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	"github.com/tixflow/listing-service/internal/logger"
	"github.com/tixflow/listing-service/internal/metrics"
)

// KV is the durable backend. GetBytes reports found=false for a missing key.
type KV interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Store is a best-effort keyed mirror of the wizard's state. Writes never
// fail the caller and unreadable entries read as absent.
type Store struct {
	kv  KV
	ttl time.Duration
}

func NewStore(kv KV, ttl time.Duration) *Store {
	return &Store{kv: kv, ttl: ttl}
}

// Session returns the view of the store owned by one browser session.
func (s *Store) Session(sessionID string) *SessionStore {
	return &SessionStore{store: s, prefix: "draft:" + sessionID + ":"}
}

// Save serializes value under key, replacing any previous entry.
func (s *Store) Save(ctx context.Context, key string, value any) {
	log := logger.Ctx(ctx)
	b, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("draft_encode_failed")
		metrics.RecordDraftWriteFailed("encode")
		return
	}
	if err := s.kv.SetBytes(ctx, key, b, s.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("draft_write_skipped")
		metrics.RecordDraftWriteFailed("backend")
		return
	}
	metrics.RecordDraftWrite()
}

// Load decodes the entry under key into dst. dst should already hold the
// caller's defaults: fields missing from an older record keep them. On a
// miss, a backend error or malformed data dst is left untouched and Load
// returns false.
func (s *Store) Load(ctx context.Context, key string, dst any) bool {
	b, found, err := s.kv.GetBytes(ctx, key)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("draft_read_failed")
		return false
	}
	if !found || len(b) == 0 {
		return false
	}
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false
	}
	// decode into a copy so a record that fails halfway leaves dst as it was
	scratch := reflect.New(rv.Elem().Type())
	scratch.Elem().Set(rv.Elem())
	if err := json.Unmarshal(b, scratch.Interface()); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("draft_malformed")
		return false
	}
	rv.Elem().Set(scratch.Elem())
	return true
}

// Exists reports whether key currently holds an entry.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, found, err := s.kv.GetBytes(ctx, key)
	return found, err
}

// Clear removes keys. Removing a missing key is not an error.
func (s *Store) Clear(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := s.kv.Delete(ctx, keys...); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Strs("keys", keys).Msg("draft_clear_failed")
	}
}

// SessionStore prefixes every logical key with its session namespace.
type SessionStore struct {
	store  *Store
	prefix string
}

func (s *SessionStore) Key(logical string) string { return s.prefix + logical }

func (s *SessionStore) Save(ctx context.Context, key string, value any) {
	s.store.Save(ctx, s.Key(key), value)
}

func (s *SessionStore) Load(ctx context.Context, key string, dst any) bool {
	return s.store.Load(ctx, s.Key(key), dst)
}

func (s *SessionStore) Exists(ctx context.Context, key string) (bool, error) {
	return s.store.Exists(ctx, s.Key(key))
}

func (s *SessionStore) Clear(ctx context.Context, keys ...string) {
	physical := make([]string, 0, len(keys))
	for _, k := range keys {
		physical = append(physical, s.Key(k))
	}
	s.store.Clear(ctx, physical...)
}
