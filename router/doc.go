// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the votedeck API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, metrics.New())

# Endpoints

Health and telemetry:

	GET /health  - Liveness
	GET /metrics - Prometheus metrics

Catalog:

	GET  /topic            - Round title
	POST /items            - Upload item (multipart)
	GET  /items            - List catalog
	GET  /items/{id}/image - Item image bytes

Voting (rate limited by SUBMIT_RATE / SUBMIT_BURST):

	POST /votes - Submit a vote batch

Results:

	GET /results               - Leaderboard
	GET /results/{item_id}     - One item's row
	GET /results/distributions - Score histograms

# Handler Initialization

The router creates handler instances with dependency injection:

	catalogHandler := handlers.NewCatalogHandler(db, cfg, m)
	voteHandler := handlers.NewVoteHandler(db, cfg, m)
	resultsHandler := handlers.NewResultsHandler(db, cfg, m)

All handlers receive the database connection, configuration and metrics.
*/
package router
