// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

// Package stats serves the aggregate overview behind a small in-process
// TTL cache partitioned by visibility scope.
package stats

import (
	"sync"
	"time"

	"github.com/dossierd/dossierd/internal/metrics"
	"github.com/dossierd/dossierd/internal/models"
	"github.com/dossierd/dossierd/internal/visibility"
)

// cacheEntry is one partition's materialized overview.
type cacheEntry struct {
	overview    *models.Overview
	generatedAt time.Time
	expiresAt   time.Time
}

// Cache holds one overview per visibility partition. Roles with identical
// scope share an entry, so a cached elevated payload can never be served
// to a restricted caller. The lock guards only the map; recomputation runs
// unlocked, so a slow query never blocks hits on other partitions.
type Cache struct {
	mu      sync.Mutex
	entries map[visibility.Partition]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates an overview cache with the given TTL. The clock is
// time.Now; tests override it with WithClock.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[visibility.Partition]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the cache's clock and returns the cache.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Get returns the cached overview for the role's partition if it is still
// fresh.
func (c *Cache) Get(role string) (*models.Overview, models.OverviewMeta, bool) {
	partition := visibility.CachePartition(role)

	c.mu.Lock()
	entry, ok := c.entries[partition]
	c.mu.Unlock()

	if !ok || !c.now().Before(entry.expiresAt) {
		metrics.OverviewCacheMisses.Inc()
		return nil, models.OverviewMeta{}, false
	}

	metrics.OverviewCacheHits.Inc()
	return entry.overview, c.meta(entry, true), true
}

// Put stores a freshly computed overview for the role's partition and
// returns its cache metadata.
func (c *Cache) Put(role string, overview *models.Overview) models.OverviewMeta {
	partition := visibility.CachePartition(role)
	now := c.now()
	entry := cacheEntry{
		overview:    overview,
		generatedAt: now,
		expiresAt:   now.Add(c.ttl),
	}

	c.mu.Lock()
	c.entries[partition] = entry
	c.mu.Unlock()

	return c.meta(entry, false)
}

// Invalidate drops every partition's entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[visibility.Partition]cacheEntry)
}

func (c *Cache) meta(entry cacheEntry, hit bool) models.OverviewMeta {
	return models.OverviewMeta{
		CacheHit:    hit,
		GeneratedAt: entry.generatedAt,
		ExpiresAt:   entry.expiresAt,
		TTLSeconds:  int(c.ttl.Seconds()),
	}
}
