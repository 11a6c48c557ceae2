// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/votedeck/models"
	"github.com/danielhkuo/votedeck/session"
)

type fakeAPI struct {
	catalog    []models.ItemMeta
	catalogErr error
	title      string
	titleErr   error
	rows       []models.ResultRow
	rowsErr    error
	submitErr  error

	submittedBy string
	submitted   models.VoteMap
}

func (f *fakeAPI) FetchCatalog(context.Context) ([]models.ItemMeta, error) {
	return f.catalog, f.catalogErr
}

func (f *fakeAPI) FetchRoundTitle(context.Context) (string, error) {
	return f.title, f.titleErr
}

func (f *fakeAPI) FetchAggregate(context.Context) ([]models.ResultRow, error) {
	return f.rows, f.rowsErr
}

func (f *fakeAPI) ImageURL(id int64) string {
	return fmt.Sprintf("http://test/items/%d/image", id)
}

func (f *fakeAPI) SubmitVotes(_ context.Context, id string, votes models.VoteMap) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submittedBy = id
	f.submitted = votes
	return nil
}

type memStore struct {
	nickname string
}

func (m *memStore) Load() (string, error) { return m.nickname, nil }
func (m *memStore) Save(n string) error { m.nickname = n; return nil }

func newFake() *fakeAPI {
	return &fakeAPI{
		catalog: []models.ItemMeta{{ID: 1, Description: "fox"}, {ID: 2, Description: "owl"}},
		title:   "Best animal",
		rows: []models.ResultRow{
			{ItemID: 1, Voters: 1, Score: 4, Average: 4, Pos: 1, Rank: 4},
			{ItemID: 2, Voters: 1, Score: -2, Average: -2, Neg: 1, Rank: -2},
		},
	}
}

func script(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func TestRun_FullRound(t *testing.T) {
	api := newFake()
	store := &memStore{}
	var out bytes.Buffer

	in := script(
		"",   // refused, nothing picked
		"7",  // out of range
		"3",  // fox = 3
		"",   // commit, on to owl
		"-",  // -1
		"-",  // -2
		"b",  // commits owl, back to fox showing 3
		"+",  // 4
		"",   // commit fox, owl recalls -2
		"",   // commit owl, finished
		"s",  // asks for nickname
		"  Zoe  ",
		"q",
	)

	err := run(context.Background(), api, store, in, &out, false)
	require.NoError(t, err)

	assert.Equal(t, models.VoteMap{1: 4, 2: -2}, api.submitted)
	assert.Equal(t, "Zoe", api.submittedBy)
	assert.Equal(t, "Zoe", store.nickname)

	text := out.String()
	assert.Contains(t, text, "Best animal")
	assert.Contains(t, text, "not now: no score selected")
	assert.Contains(t, text, "scores run from -5 to 5")
	assert.Contains(t, text, "[1/2] fox (http://test/items/1/image) score: +3")
	assert.Contains(t, text, "thanks Zoe")
	assert.Contains(t, text, "Score")
	assert.Contains(t, text, "fox")
	assert.NotContains(t, text, "\x1b[")
}

func TestRun_NudgeClamps(t *testing.T) {
	api := newFake()
	api.catalog = api.catalog[:1]
	store := &memStore{nickname: "amy"}
	var out bytes.Buffer

	err := run(context.Background(), api, store, script("5", "+", "+", "", "s", "q"), &out, false)
	require.NoError(t, err)
	assert.Equal(t, models.VoteMap{1: 5}, api.submitted)
	assert.Equal(t, "amy", api.submittedBy)
}

func TestRun_SubmitFailuresKeepSession(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rejected", &session.SubmissionRejectedError{Status: 400, Reason: "user_id is too long"}, "server refused the votes: user_id is too long"},
		{"server error", &session.SubmissionRejectedError{Status: 500, Reason: "Failed to save votes"}, "server refused the votes: Failed to save votes"},
		{"rate limited", &session.SubmissionRejectedError{Status: 429, Reason: "Too many submissions, slow down", RetryAfter: 3 * time.Second}, "server is busy, try s again in 3s"},
		{"unreachable", fmt.Errorf("%w: dial tcp", session.ErrTransportUnavailable), "server unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFake()
			api.catalog = api.catalog[:1]
			api.submitErr = tt.err
			var out bytes.Buffer

			err := run(context.Background(), api, &memStore{nickname: "amy"}, script("1", "", "s", "s", "q"), &out, false)
			require.NoError(t, err)
			assert.Equal(t, 2, strings.Count(out.String(), tt.want))
			assert.Nil(t, api.submitted)
		})
	}
}

func TestRun_ResultsUnavailableStillShowsHeaders(t *testing.T) {
	api := newFake()
	api.catalog = api.catalog[:1]
	api.rowsErr = errors.New("boom")
	var out bytes.Buffer

	err := run(context.Background(), api, &memStore{nickname: "amy"}, script("0", "", "s", "q"), &out, false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "results unavailable")
	assert.Contains(t, out.String(), "Score")
}

func TestRun_TitlePlaceholderOnError(t *testing.T) {
	api := newFake()
	api.title = "Untitled round"
	api.titleErr = errors.New("offline")
	var out bytes.Buffer

	err := run(context.Background(), api, &memStore{}, script("q"), &out, false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Untitled round")
}

func TestRun_CatalogFailure(t *testing.T) {
	api := newFake()
	api.catalogErr = fmt.Errorf("%w: refused", session.ErrTransportUnavailable)

	err := run(context.Background(), api, &memStore{}, script("q"), &bytes.Buffer{}, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrTransportUnavailable)
}

func TestRenderBoard(t *testing.T) {
	t.Run("empty still has headers", func(t *testing.T) {
		var out bytes.Buffer
		renderBoard(&out, nil, nil, palette{})
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 1)
		assert.Equal(t, []string{"#", "Item", "Score", "Avg", "Voters", "+", "-", "Rank"}, strings.Fields(lines[0]))
	})

	t.Run("rows in given order", func(t *testing.T) {
		var out bytes.Buffer
		rows := []models.ResultRow{
			{ItemID: 2, Voters: 2, Score: 6, Average: 3, Pos: 2, Rank: 3},
			{ItemID: 9, Voters: 1, Score: -1, Average: -1, Neg: 1, Rank: -1},
		}
		renderBoard(&out, rows, map[int64]string{2: "owl"}, palette{})
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, []string{"1", "owl", "+6", "3.00", "2", "2", "0", "3.000"}, strings.Fields(lines[1]))
		assert.Equal(t, []string{"2", "item", "9", "-1", "-1.00", "1", "0", "1", "-1.000"}, strings.Fields(lines[2]))
	})

	t.Run("colour wraps lines", func(t *testing.T) {
		var out bytes.Buffer
		renderBoard(&out, []models.ResultRow{{ItemID: 1, Voters: 1, Score: 2}}, nil, palette{enabled: true})
		assert.Contains(t, out.String(), "\x1b[32m")
		assert.Contains(t, out.String(), "\x1b[1m#")
	})
}

func TestFileStore(t *testing.T) {
	store := fileStore{path: filepath.Join(t.TempDir(), "votedeck", "nickname")}

	got, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, store.Save("  Zoe "))
	got, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "Zoe", got)
}
