// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/danielhkuo/votedeck/cliparse"
	"github.com/danielhkuo/votedeck/handlers"
	"github.com/danielhkuo/votedeck/metrics"
	"github.com/danielhkuo/votedeck/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(db, cfg, m)
	voteHandler := handlers.NewVoteHandler(db, cfg, m)
	resultsHandler := handlers.NewResultsHandler(db, cfg, m)

	// Vote submissions share one token bucket
	limitSubmissions := middleware.WithRateLimit(
		rate.NewLimiter(rate.Limit(cfg.SubmitRate), cfg.SubmitBurst),
		func() { m.ObserveSubmission(metrics.OutcomeRateLimited, 0) },
	)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus scrape endpoint
	mux.Handle("GET /metrics", m.Handler())

	// Catalog
	mux.HandleFunc("GET /topic", middleware.WithLogging(catalogHandler.GetTopic))
	mux.HandleFunc("POST /items", middleware.WithLogging(catalogHandler.CreateItem))
	mux.HandleFunc("GET /items", middleware.WithLogging(catalogHandler.ListItems))
	mux.HandleFunc("GET /items/{id}/image", middleware.WithLogging(catalogHandler.GetItemImage))

	// Voting
	mux.HandleFunc("POST /votes", middleware.WithLogging(limitSubmissions(voteHandler.SubmitVotes)))

	// Results (recomputed per request)
	mux.HandleFunc("GET /results", middleware.WithLogging(resultsHandler.GetResults))
	mux.HandleFunc("GET /results/distributions", middleware.WithLogging(resultsHandler.GetDistributions))
	mux.HandleFunc("GET /results/{item_id}", middleware.WithLogging(resultsHandler.GetItemResult))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("votedeck API v1"))
	})

	return mux
}
