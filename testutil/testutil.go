// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"

	"github.com/danielhkuo/votedeck/cliparse"
	"github.com/danielhkuo/votedeck/db"
	"github.com/danielhkuo/votedeck/identity"
)

// PNGHeader is enough of a PNG for content sniffing
var PNGHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d}

// SetupTestDB creates a fresh SQLite database with the full schema.
// The file lives in t.TempDir and the connection closes with the test.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "votedeck.db")
	conn, err := db.Open(db.TypeSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(context.Background(), conn, db.TypeSQLite); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   ":memory:",
		DatabaseType:  db.TypeSQLite,
		IPHashSalt:    "test-ip-salt",
		RoundTitle:    "Test round",
		MaxImageBytes: 1 << 20,
		RankMethod:    "average",
		SubmitRate:    1000,
		SubmitBurst:   1000,
	}
}

// CreateTestItem inserts a catalog item with a tiny PNG and returns its id
func CreateTestItem(t *testing.T, conn *sql.DB, description string) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO item (description, image_bytes, image_mime)
		VALUES ($1, $2, $3)
		RETURNING id
	`, description, PNGHeader, "image/png").Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test item: %v", err)
	}

	return id
}

// SubmitTestVotes stores one batch for userID directly, bypassing HTTP,
// and returns the submission id
func SubmitTestVotes(t *testing.T, conn *sql.DB, userID string, votes map[int64]int) string {
	t.Helper()

	submissionID := identity.NewSubmissionID()
	_, err := conn.Exec(`
		INSERT INTO submission (id, user_id, vote_count)
		VALUES ($1, $2, $3)
	`, submissionID, userID, len(votes))
	if err != nil {
		t.Fatalf("Failed to create test submission: %v", err)
	}

	for itemID, score := range votes {
		_, err := conn.Exec(`
			INSERT INTO vote (user_id, item_id, score, submission_id)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, item_id) DO UPDATE
			SET score = excluded.score, submission_id = excluded.submission_id
		`, userID, itemID, score, submissionID)
		if err != nil {
			t.Fatalf("Failed to create test vote: %v", err)
		}
	}

	return submissionID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeUploadRequest builds a multipart POST /items request.
// An empty mime omits the part's Content-Type header.
func MakeUploadRequest(t *testing.T, description string, image []byte, mime string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("description", description); err != nil {
		t.Fatalf("Failed to write description: %v", err)
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="image"`)
		if mime != "" {
			h.Set("Content-Type", mime)
		}
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("Failed to create image part: %v", err)
		}
		part.Write(image)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/items", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
