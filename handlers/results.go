// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/votedeck/aggregate"
	"github.com/danielhkuo/votedeck/cliparse"
	"github.com/danielhkuo/votedeck/metrics"
	"github.com/danielhkuo/votedeck/middleware"
	"github.com/danielhkuo/votedeck/models"
)

type ResultsHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	metrics *metrics.Metrics
	rank    aggregate.RankFunc

	// coalesces concurrent corpus reads
	loads singleflight.Group
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config, m *metrics.Metrics) *ResultsHandler {
	rank, err := aggregate.RankerByName(cfg.RankMethod)
	if err != nil {
		slog.Warn("unknown rank method, using average", "rank_method", cfg.RankMethod)
		rank = aggregate.AverageRank
	}
	return &ResultsHandler{db: db, cfg: cfg, metrics: m, rank: rank}
}

// loadCorpus reads every stored vote grouped into one VoteMap per user
func loadCorpus(ctx context.Context, db *sql.DB) ([]models.VoteMap, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT user_id, item_id, score FROM vote ORDER BY user_id, item_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	corpus := []models.VoteMap{}
	var current models.VoteMap
	var lastUser string
	for rows.Next() {
		var userID string
		var itemID int64
		var score int
		if err := rows.Scan(&userID, &itemID, &score); err != nil {
			return nil, err
		}
		if current == nil || userID != lastUser {
			current = models.VoteMap{}
			corpus = append(corpus, current)
			lastUser = userID
		}
		current[itemID] = models.Score(score)
	}
	return corpus, rows.Err()
}

// voteGeneration advances after every committed vote batch
var voteGeneration atomic.Uint64

// corpusKey names the shared load for the current generation, so a read that
// starts after a commit never joins a load that started before it
func corpusKey() string {
	return "corpus/" + strconv.FormatUint(voteGeneration.Load(), 10)
}

// corpus returns the stored votes, sharing one query among concurrent callers
func (h *ResultsHandler) corpus(ctx context.Context) ([]models.VoteMap, error) {
	v, err, _ := h.loads.Do(corpusKey(), func() (any, error) {
		return loadCorpus(context.WithoutCancel(ctx), h.db)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.VoteMap), nil
}

// leaderboard recomputes the ranking from the full corpus
func (h *ResultsHandler) leaderboard(ctx context.Context) ([]models.ResultRow, error) {
	ctx, span := tracer.Start(ctx, "ResultsHandler.leaderboard")
	defer span.End()

	start := time.Now()
	corpus, err := h.corpus(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "corpus load failed")
		return nil, err
	}

	rows := aggregate.Compute(corpus, h.rank)
	h.metrics.ObserveAggregation(time.Since(start), len(rows))
	span.SetAttributes(
		attribute.Int("corpus.voters", len(corpus)),
		attribute.Int("results.rows", len(rows)),
	)
	return rows, nil
}

// GetResults handles GET /results
// Returns the leaderboard in presentation order (score desc, item id asc)
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	rows, err := h.leaderboard(r.Context())
	if err != nil {
		slog.Error("failed to compute results", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, rows)
}

// GetItemResult handles GET /results/{item_id}
func (h *ResultsHandler) GetItemResult(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(r.PathValue("item_id"), 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "item_id must be an integer")
		return
	}

	rows, err := h.leaderboard(r.Context())
	if err != nil {
		slog.Error("failed to compute results", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	for _, row := range rows {
		if row.ItemID == itemID {
			middleware.JSONResponse(w, http.StatusOK, row)
			return
		}
	}

	// No row: either the item does not exist or nobody voted on it
	var exists bool
	err = h.db.QueryRowContext(r.Context(), `
		SELECT EXISTS(SELECT 1 FROM item WHERE id = $1)
	`, itemID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query item", "error", err, "item_id", itemID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Item not found")
		return
	}
	middleware.ErrorResponse(w, http.StatusNotFound, "No votes for item")
}

// GetDistributions handles GET /results/distributions
func (h *ResultsHandler) GetDistributions(w http.ResponseWriter, r *http.Request) {
	corpus, err := h.corpus(r.Context())
	if err != nil {
		slog.Error("failed to load votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, aggregate.Distributions(corpus))
}
