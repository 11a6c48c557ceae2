// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/danielhkuo/votedeck/cliparse"
	"github.com/danielhkuo/votedeck/identity"
	"github.com/danielhkuo/votedeck/metrics"
	"github.com/danielhkuo/votedeck/middleware"
	"github.com/danielhkuo/votedeck/models"
)

var tracer = otel.Tracer("github.com/danielhkuo/votedeck/handlers")

var validate = newValidator()

// newValidator reports fields by their JSON names so messages match the wire format
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessage turns the first validator failure into a client message
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}
	fe := verrs[0]
	switch {
	case fe.Tag() == "required":
		return fe.Field() + " is required"
	case fe.Field() == "score":
		return fmt.Sprintf("score must be between %d and %d", models.MinScore, models.MaxScore)
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

type VoteHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	metrics *metrics.Metrics
}

func NewVoteHandler(db *sql.DB, cfg cliparse.Config, m *metrics.Metrics) *VoteHandler {
	return &VoteHandler{db: db, cfg: cfg, metrics: m}
}

// SubmitVotes handles POST /votes
// Stores or overwrites the user's score for every item in the batch
func (h *VoteHandler) SubmitVotes(w http.ResponseWriter, r *http.Request) {
	// Continue the caller's trace when it sent one
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := tracer.Start(ctx, "VoteHandler.SubmitVotes", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	reject := func(status int, message string) {
		h.metrics.ObserveSubmission(metrics.OutcomeInvalid, 0)
		span.SetStatus(codes.Error, message)
		middleware.ErrorResponse(w, status, message)
	}
	fail := func(err error, logMsg, message string) {
		slog.Error(logMsg, "error", err, "request_id", middleware.RequestID(ctx))
		h.metrics.ObserveSubmission(metrics.OutcomeError, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, message)
		middleware.ErrorResponse(w, http.StatusInternalServerError, message)
	}

	// Parse request
	var req models.SubmitVotesRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		reject(http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		reject(http.StatusBadRequest, validationMessage(err))
		return
	}

	userID, err := identity.Validate(req.UserID)
	if errors.Is(err, identity.ErrEmpty) {
		reject(http.StatusBadRequest, "user_id is required")
		return
	}
	if err != nil {
		reject(http.StatusBadRequest, "user_id "+strings.TrimPrefix(err.Error(), "identity "))
		return
	}

	// One score per item per batch
	seen := make(map[int64]bool, len(req.Votes))
	ids := make([]any, 0, len(req.Votes))
	for _, v := range req.Votes {
		if seen[v.ItemID] {
			reject(http.StatusBadRequest, fmt.Sprintf("duplicate item_id %d", v.ItemID))
			return
		}
		seen[v.ItemID] = true
		ids = append(ids, v.ItemID)
	}

	span.SetAttributes(attribute.Int("votes.count", len(req.Votes)))

	// Verify all items exist
	if len(ids) > 0 {
		placeholders := make([]string, len(ids))
		for i := range ids {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		}
		var existing int
		err := h.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM item WHERE id IN (`+strings.Join(placeholders, ", ")+`)`,
			ids...,
		).Scan(&existing)
		if err != nil {
			fail(err, "failed to verify items", "Database error")
			return
		}
		if existing != len(ids) {
			reject(http.StatusBadRequest, "One or more item_id do not exist")
			return
		}
	}

	// Audit fields
	submissionID := identity.NewSubmissionID()
	ipHash := identity.HashIP(middleware.GetClientIP(r), h.cfg.IPHashSalt)
	userAgent := r.UserAgent()

	// Begin transaction for UPSERT
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		fail(err, "failed to begin transaction", "Database error")
		return
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO submission (id, user_id, ip_hash, user_agent, vote_count)
		VALUES ($1, $2, $3, $4, $5)
	`, submissionID, userID, ipHash, userAgent, len(req.Votes))
	if err != nil {
		fail(err, "failed to insert submission", "Failed to submit votes")
		return
	}

	// Later batches overwrite earlier scores; items missing from this batch keep theirs
	for _, v := range req.Votes {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO vote (user_id, item_id, score, submission_id, updated_at)
			VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
			ON CONFLICT (user_id, item_id) DO UPDATE
			SET score = excluded.score,
			    submission_id = excluded.submission_id,
			    updated_at = excluded.updated_at
		`, userID, v.ItemID, int(*v.Score), submissionID)
		if err != nil {
			fail(err, "failed to upsert vote", "Failed to save votes")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		fail(err, "failed to commit transaction", "Failed to submit votes")
		return
	}
	voteGeneration.Add(1)

	h.metrics.ObserveSubmission(metrics.OutcomeAccepted, len(req.Votes))
	slog.Info("votes submitted",
		"submission_id", submissionID,
		"user_id", userID,
		"vote_count", len(req.Votes),
	)

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitVotesResponse{
		SubmissionID: submissionID,
		VoteCount:    len(req.Votes),
		Message:      "Votes recorded",
	})
}
