// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the votedeck collection service.

# Handler Types

Each handler is a struct with database, config and metrics dependencies:

  - CatalogHandler: Item upload, catalog listing, images, round title
  - VoteHandler: Vote batch submission
  - ResultsHandler: Leaderboard, per-item results, score distributions

Handlers are created via constructor functions:

	catalog := handlers.NewCatalogHandler(db, cfg, m)

# Catalog

	POST /items            → CreateItem (multipart: description, image)
	GET  /items            → ListItems (ascending id)
	GET  /items/{id}/image → GetItemImage
	GET  /topic            → GetTopic (404 when no title is configured)

# Voting

	POST /votes → SubmitVotes

A batch carries one user_id and any subset of the catalog. Scores must lie
in -5..5, item ids must exist and appear once. Each accepted batch writes a
submission row (uuid, hashed IP, user agent) and upserts one vote per
(user_id, item_id). Items left out keep the user's earlier score.

# Results

	GET /results               → GetResults
	GET /results/{item_id}     → GetItemResult
	GET /results/distributions → GetDistributions

Results are recomputed from the full vote table on every request with
package aggregate. Concurrent reads share one database query.
*/
package handlers
