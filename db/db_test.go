// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenAndMigrate_SQLite(t *testing.T) {
	conn, err := Open(TypeSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	ctx := context.Background()
	if err := Migrate(ctx, conn, TypeSQLite); err != nil {
		t.Fatalf("first migrate: %v", err)
	}
	// Re-running must be a no-op
	if err := Migrate(ctx, conn, TypeSQLite); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	for _, table := range []string{"item", "submission", "vote"} {
		var name string
		err := conn.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestScoreCheckConstraint(t *testing.T) {
	conn, err := Open(TypeSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if err := Migrate(context.Background(), conn, TypeSQLite); err != nil {
		t.Fatal(err)
	}

	var itemID int64
	err = conn.QueryRow(
		`INSERT INTO item (description, image_bytes, image_mime) VALUES ($1, $2, $3) RETURNING id`,
		"cat", []byte{0x89}, "image/png",
	).Scan(&itemID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Exec(
		`INSERT INTO submission (id, user_id, vote_count) VALUES ($1, $2, $3)`, "s1", "bob", 1,
	); err != nil {
		t.Fatal(err)
	}

	_, err = conn.Exec(
		`INSERT INTO vote (user_id, item_id, score, submission_id) VALUES ($1, $2, $3, $4)`,
		"bob", itemID, 6, "s1",
	)
	if err == nil {
		t.Error("expected CHECK constraint to reject score 6")
	}

	_, err = conn.Exec(
		`INSERT INTO vote (user_id, item_id, score, submission_id) VALUES ($1, $2, $3, $4)`,
		"bob", itemID+100, 1, "s1",
	)
	if err == nil {
		t.Error("expected foreign key to reject unknown item")
	}
}

func TestOpen_UnknownType(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Error("expected error for unsupported type")
	}
	if err := Migrate(context.Background(), nil, "mysql"); err == nil {
		t.Error("expected error for unsupported type")
	}
}
