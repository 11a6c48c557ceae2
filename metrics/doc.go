// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics exposes Prometheus counters for submissions, uploads and
// leaderboard computation on GET /metrics.
package metrics
