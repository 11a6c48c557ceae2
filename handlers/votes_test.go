// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/danielhkuo/votedeck/identity"
	"github.com/danielhkuo/votedeck/metrics"
	"github.com/danielhkuo/votedeck/models"
	"github.com/danielhkuo/votedeck/testutil"
)

func score(s int) *models.Score {
	v := models.Score(s)
	return &v
}

func TestSubmitVotes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg, metrics.New())

	a := testutil.CreateTestItem(t, db, "A")
	b := testutil.CreateTestItem(t, db, "B")

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedMsg    string
	}{
		{
			name: "valid batch",
			body: models.SubmitVotesRequest{
				UserID: "alice",
				Votes:  []models.VoteIn{{ItemID: a, Score: score(5)}, {ItemID: b, Score: score(-5)}},
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "empty batch is accepted",
			body:           models.SubmitVotesRequest{UserID: "skipper", Votes: []models.VoteIn{}},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid JSON",
			body:           "not an object",
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid JSON",
		},
		{
			name:           "missing user_id",
			body:           models.SubmitVotesRequest{Votes: []models.VoteIn{{ItemID: a, Score: score(1)}}},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "user_id is required",
		},
		{
			name:           "blank user_id",
			body:           models.SubmitVotesRequest{UserID: "   ", Votes: []models.VoteIn{{ItemID: a, Score: score(1)}}},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "user_id is required",
		},
		{
			name:           "overlong user_id",
			body:           models.SubmitVotesRequest{UserID: strings.Repeat("x", identity.MaxLength+1)},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "user_id is too long",
		},
		{
			name:           "score above range",
			body:           models.SubmitVotesRequest{UserID: "bob", Votes: []models.VoteIn{{ItemID: a, Score: score(6)}}},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "score must be between -5 and 5",
		},
		{
			name:           "score below range",
			body:           models.SubmitVotesRequest{UserID: "bob", Votes: []models.VoteIn{{ItemID: a, Score: score(-6)}}},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "score must be between -5 and 5",
		},
		{
			name:           "missing score",
			body:           map[string]interface{}{"user_id": "bob", "votes": []map[string]int64{{"item_id": a}}},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "score is required",
		},
		{
			name: "duplicate item",
			body: models.SubmitVotesRequest{
				UserID: "bob",
				Votes:  []models.VoteIn{{ItemID: a, Score: score(1)}, {ItemID: a, Score: score(2)}},
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "duplicate item_id",
		},
		{
			name: "unknown item",
			body: models.SubmitVotesRequest{
				UserID: "bob",
				Votes:  []models.VoteIn{{ItemID: a, Score: score(1)}, {ItemID: 9999, Score: score(2)}},
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "One or more item_id do not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/votes", tt.body, map[string]string{"User-Agent": "votedeck-test"})
			w := httptest.NewRecorder()

			handler.SubmitVotes(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedStatus == http.StatusCreated {
				var resp models.SubmitVotesResponse
				testutil.AssertJSON(t, w, &resp)
				if _, err := uuid.Parse(resp.SubmissionID); err != nil {
					t.Errorf("Expected UUID submission_id, got %q", resp.SubmissionID)
				}
				return
			}

			var resp models.ErrorResponse
			testutil.AssertJSON(t, w, &resp)
			if !strings.Contains(resp.Message, tt.expectedMsg) {
				t.Errorf("Expected message containing %q, got %q", tt.expectedMsg, resp.Message)
			}
		})
	}

	// Rejected batches must not leave partial writes
	var bobVotes int
	if err := db.QueryRow(`SELECT COUNT(*) FROM vote WHERE user_id = 'bob'`).Scan(&bobVotes); err != nil {
		t.Fatal(err)
	}
	if bobVotes != 0 {
		t.Errorf("Expected no votes for rejected user, got %d", bobVotes)
	}
}

func TestSubmitVotes_LastWriteWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewVoteHandler(db, testutil.GetTestConfig(), metrics.New())

	a := testutil.CreateTestItem(t, db, "A")
	b := testutil.CreateTestItem(t, db, "B")

	submit := func(votes ...models.VoteIn) models.SubmitVotesResponse {
		t.Helper()
		req := testutil.MakeRequest("POST", "/votes", models.SubmitVotesRequest{UserID: "carol", Votes: votes}, nil)
		w := httptest.NewRecorder()
		handler.SubmitVotes(w, req)
		testutil.AssertStatus(t, w, http.StatusCreated)
		var resp models.SubmitVotesResponse
		testutil.AssertJSON(t, w, &resp)
		return resp
	}

	first := submit(models.VoteIn{ItemID: a, Score: score(3)}, models.VoteIn{ItemID: b, Score: score(-1)})
	if first.VoteCount != 2 {
		t.Errorf("Expected vote_count 2, got %d", first.VoteCount)
	}

	// Second batch only touches item a; b keeps its earlier vote
	second := submit(models.VoteIn{ItemID: a, Score: score(0)})
	if second.SubmissionID == first.SubmissionID {
		t.Error("Expected a fresh submission id per batch")
	}

	got := map[int64]int{}
	rows, err := db.Query(`SELECT item_id, score FROM vote WHERE user_id = 'carol'`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var s int
		if err := rows.Scan(&id, &s); err != nil {
			t.Fatal(err)
		}
		got[id] = s
	}

	if len(got) != 2 || got[a] != 0 || got[b] != -1 {
		t.Errorf("Expected {a:0, b:-1}, got %v", got)
	}

	var submissions int
	if err := db.QueryRow(`SELECT COUNT(*) FROM submission WHERE user_id = 'carol'`).Scan(&submissions); err != nil {
		t.Fatal(err)
	}
	if submissions != 2 {
		t.Errorf("Expected 2 submission records, got %d", submissions)
	}
}

func TestSubmitVotes_NormalizesUserAndRecordsAudit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewVoteHandler(db, cfg, metrics.New())
	a := testutil.CreateTestItem(t, db, "A")

	body := models.SubmitVotesRequest{UserID: "  dave  ", Votes: []models.VoteIn{{ItemID: a, Score: score(2)}}}
	req := testutil.MakeRequest("POST", "/votes", body, map[string]string{
		"User-Agent":      "votedeck-test/1.0",
		"X-Forwarded-For": "203.0.113.7",
	})
	w := httptest.NewRecorder()
	handler.SubmitVotes(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.SubmitVotesResponse
	testutil.AssertJSON(t, w, &resp)

	var userID, ipHash, userAgent string
	err := db.QueryRow(`
		SELECT user_id, ip_hash, user_agent FROM submission WHERE id = $1
	`, resp.SubmissionID).Scan(&userID, &ipHash, &userAgent)
	if err != nil {
		t.Fatalf("Failed to query submission: %v", err)
	}

	if userID != "dave" {
		t.Errorf("Expected trimmed user id 'dave', got %q", userID)
	}
	if ipHash != identity.HashIP("203.0.113.7", cfg.IPHashSalt) {
		t.Error("Expected hashed client IP on submission")
	}
	if userAgent != "votedeck-test/1.0" {
		t.Errorf("Unexpected user agent %q", userAgent)
	}
}
