// Package pricecache keeps the last price snapshot per fiat currency and
// serves it while fresh, or as a stale fallback when the feed fails.
package pricecache

import (
	"context"       // Request-scoped cancellation
	"encoding/json" // Raw snapshot payloads
	"strings"       // Currency normalization
	"time"          // TTL and clock

	"github.com/sirupsen/logrus"     // Structured logging
	"golang.org/x/sync/singleflight" // Miss coalescing
)

// Sources a Result can come from.
const (
	SourceCache = "cache"
	SourceLive  = "live"
	SourceStale = "stale"
)

const DefaultCurrency = "usd"

// Entry is one stored snapshot.
type Entry struct {
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Store persists entries by key. Load reports false when no entry exists,
// however old. Expiry is decided by Cache, not by the store.
type Store interface {
	Load(ctx context.Context, key string) (Entry, bool, error)
	Save(ctx context.Context, key string, e Entry) error
}

// Fetcher produces a fresh snapshot for a currency.
type Fetcher interface {
	Snapshot(ctx context.Context, currency string) (json.RawMessage, error)
}

type Result struct {
	Payload   json.RawMessage
	Source    string
	FetchedAt time.Time
}

func (r Result) Cached() bool { return r.Source == SourceCache }
func (r Result) Stale() bool  { return r.Source == SourceStale }

type Cache struct {
	store   Store
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time
	group   singleflight.Group
}

func New(store Store, fetcher Fetcher, ttl time.Duration) *Cache {
	return &Cache{store: store, fetcher: fetcher, ttl: ttl, now: time.Now}
}

// WithClock replaces the clock used for freshness checks.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Key returns the storage key for a currency.
func Key(currency string) string {
	return "crypto-prices-" + NormalizeCurrency(currency)
}

func NormalizeCurrency(currency string) string {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return DefaultCurrency
	}
	return currency
}

// Get returns the snapshot for currency. A fresh entry is served as is.
// Otherwise the feed is called; on failure a prior entry of any age is served
// as stale, and with no prior entry the feed error is returned unchanged.
func (c *Cache) Get(ctx context.Context, currency string) (Result, error) {
	currency = NormalizeCurrency(currency) // Lowercase, defaults to usd
	key := Key(currency)                   // One entry per currency
	log := logrus.WithField("key", key)

	entry, found, err := c.store.Load(ctx, key)
	if err != nil {
		log.WithError(err).Warn("price cache read failed, treating as miss")
		found = false
	}
	if found && c.now().Sub(entry.FetchedAt) < c.ttl {
		log.Debug("serving cached prices")
		return Result{Payload: entry.Payload, Source: SourceCache, FetchedAt: entry.FetchedAt}, nil
	}

	// Concurrent misses for one key share a single upstream call. The call is
	// detached from the caller so one disconnect does not fail the others.
	ch := c.group.DoChan(key, func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx) // Bounded by the feed timeout
		payload, err := c.fetcher.Snapshot(fetchCtx, currency)
		if err != nil {
			return nil, err
		}
		fresh := Entry{Payload: payload, FetchedAt: c.now()}
		if err := c.store.Save(fetchCtx, key, fresh); err != nil {
			log.WithError(err).Warn("price cache write failed")
		}
		return fresh, nil
	})
	var v any
	select {
	case <-ctx.Done():
		err = ctx.Err() // This caller gave up; the shared fetch carries on
	case res := <-ch:
		v, err = res.Val, res.Err
	}
	if err != nil {
		if found {
			log.WithError(err).Warn("price feed failed, serving stale prices")
			return Result{Payload: entry.Payload, Source: SourceStale, FetchedAt: entry.FetchedAt}, nil
		}
		log.WithError(err).Error("price feed failed with nothing cached")
		return Result{}, err
	}
	fresh := v.(Entry) // Shared result of the fetch
	log.Info("fetched live prices")
	return Result{Payload: fresh.Payload, Source: SourceLive, FetchedAt: fresh.FetchedAt}, nil
}
