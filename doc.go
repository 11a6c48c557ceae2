// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the votedeck API server.

votedeck collects scores from -5 to +5 for a catalog of images and shows a
leaderboard computed from every vote cast so far.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=votedeck.db IP_HASH_SALT=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -ip-salt ...

A .env file in the working directory is loaded first.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - IP_HASH_SALT (--ip-salt): Secret for hashing submitter IPs

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - ROUND_TITLE (--title): Topic shown to voters
  - MAX_IMAGE_SIZE (--max-image): Upload cap (default: 8 MB)
  - RANK_METHOD (--rank): average or wilson
  - SUBMIT_RATE, SUBMIT_BURST: Vote submission rate limit

# Architecture

  - session: Voting session state machine (client side)
  - aggregate: Leaderboard computation and rank methods
  - client: HTTP client for the API, implements the session gateway
  - handlers: HTTP request handlers (catalog, votes, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, rate limiting, JSON helpers
  - metrics: Prometheus collectors
  - models: Request/response and domain types
  - identity: Voter id normalization, submission ids, IP hashing
  - db: Connections and goose migrations
  - cliparse: Configuration parsing

The cmd/voter program is the terminal voting client; cmd/seed loads a
catalog from a YAML manifest.
*/
package main
