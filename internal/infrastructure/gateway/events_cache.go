package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tixflow/listing-service/internal/domain"
	"github.com/tixflow/listing-service/internal/logger"
	"github.com/tixflow/listing-service/internal/metrics"
)

const eventsCacheKey = "events_cache"

// ByteCache is the subset of the KV backends the events cache needs.
type ByteCache interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type EventSource interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
}

// CachedEvents keeps the event list for ttl in front of GET /events.
// Cache failures fall back to the remote call.
type CachedEvents struct {
	src   EventSource
	cache ByteCache
	ttl   time.Duration
}

func NewCachedEvents(src EventSource, cache ByteCache, ttl time.Duration) *CachedEvents {
	return &CachedEvents{src: src, cache: cache, ttl: ttl}
}

func (c *CachedEvents) ListEvents(ctx context.Context) ([]domain.Event, error) {
	log := logger.Ctx(ctx)
	if b, found, err := c.cache.GetBytes(ctx, eventsCacheKey); err != nil {
		log.Warn().Err(err).Msg("events_cache_read_failed")
	} else if found {
		var events []domain.Event
		if err := json.Unmarshal(b, &events); err == nil {
			metrics.RecordEventsCache("hit")
			return events, nil
		}
		log.Warn().Msg("events_cache_malformed")
	}
	metrics.RecordEventsCache("miss")

	events, err := c.src.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(events); err == nil {
		if err := c.cache.SetBytes(ctx, eventsCacheKey, b, c.ttl); err != nil {
			log.Warn().Err(err).Msg("events_cache_write_failed")
		}
	}
	return events, nil
}

// Invalidate drops the cached list, e.g. after an event was created.
func (c *CachedEvents) Invalidate(ctx context.Context) {
	if err := c.cache.Delete(ctx, eventsCacheKey); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("events_cache_invalidate_failed")
	}
}
