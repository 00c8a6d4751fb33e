// Dossierd - Role-Aware Records, Dossiers, and Audit API
// Copyright 2026 Dossierd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dossierd/dossierd

package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts per client IP. Idle entries are
// evicted so the map cannot grow without bound.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*loginLimiterEntry
	limit    rate.Limit
	burst    int
}

type loginLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// loginLimiterIdleTTL is how long an IP's limiter survives without attempts.
const loginLimiterIdleTTL = 10 * time.Minute

// NewLoginLimiter creates a limiter allowing perMinute attempts per IP,
// with a burst of the same size.
func NewLoginLimiter(perMinute int) *LoginLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &LoginLimiter{
		limiters: make(map[string]*loginLimiterEntry),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

// Allow reports whether the given IP may attempt a login now.
func (l *LoginLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.limiters[ip]
	if !ok {
		entry = &loginLimiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastSeen = now

	for key, e := range l.limiters {
		if now.Sub(e.lastSeen) > loginLimiterIdleTTL {
			delete(l.limiters, key)
		}
	}

	return entry.limiter.Allow()
}
