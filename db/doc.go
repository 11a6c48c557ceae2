// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and manages its schema.

# Connections

Open maps a database type to its driver and verifies the connection:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

  - sqlite: modernc.org/sqlite, one open connection, busy timeout and
    foreign keys enabled
  - postgres: github.com/lib/pq

# Migrations

Migrate applies the embedded goose migrations for the chosen dialect:

	if err := db.Migrate(ctx, conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call on every startup. Each dialect has its own directory under
migrations/ because column types differ (BYTEA vs BLOB, identity columns).

# Tables

  - item: Catalog entries (description, image bytes, MIME type)
  - submission: One row per POST /votes batch (audit record)
  - vote: Latest score per (user_id, item_id), range -5..5

# Relationships

	item 1──* vote
	submission 1──* vote

A later submission from the same user overwrites that user's earlier score
for the items it contains; items it omits keep their earlier vote.
*/
package db
