// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/danielhkuo/votedeck/models"
	"github.com/danielhkuo/votedeck/session"
)

// DefaultRoundTitle is shown when the server has no title or cannot be reached.
const DefaultRoundTitle = "Untitled round"

const defaultTimeout = 10 * time.Second

var tracer = otel.Tracer("github.com/danielhkuo/votedeck/client")

// APIError is a non-2xx answer from the server. RetryAfter is set when the
// server sent a Retry-After header in seconds.
type APIError struct {
	Status     int
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to the votedeck HTTP API. It implements session.Gateway.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ session.Gateway = (*Client)(nil)

// New returns a client for the API rooted at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// ImageURL is where the image for item id is served.
func (c *Client) ImageURL(id int64) string {
	return c.baseURL + "/items/" + strconv.FormatInt(id, 10) + "/image"
}

// FetchCatalog returns the items in presentation order. Every failure wraps
// session.ErrTransportUnavailable.
func (c *Client) FetchCatalog(ctx context.Context) ([]models.ItemMeta, error) {
	var items []models.ItemMeta
	if err := c.getJSON(ctx, "/items", &items); err != nil {
		return nil, fmt.Errorf("%w: fetch catalog: %w", session.ErrTransportUnavailable, err)
	}
	return items, nil
}

// FetchRoundTitle returns the configured round title. On failure it still
// returns DefaultRoundTitle so callers can render something.
func (c *Client) FetchRoundTitle(ctx context.Context) (string, error) {
	var topic models.TopicResponse
	err := c.getJSON(ctx, "/topic", &topic)

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
		return DefaultRoundTitle, nil
	case err != nil:
		return DefaultRoundTitle, fmt.Errorf("fetch round title: %w", err)
	case strings.TrimSpace(topic.Title) == "":
		return DefaultRoundTitle, nil
	}
	return topic.Title, nil
}

// FetchAggregate returns the leaderboard in presentation order. Every failure
// wraps session.ErrTransportUnavailable.
func (c *Client) FetchAggregate(ctx context.Context) ([]models.ResultRow, error) {
	var rows []models.ResultRow
	if err := c.getJSON(ctx, "/results", &rows); err != nil {
		return nil, fmt.Errorf("%w: fetch results: %w", session.ErrTransportUnavailable, err)
	}
	return rows, nil
}

// FetchDistributions returns the score histogram of every voted item.
func (c *Client) FetchDistributions(ctx context.Context) ([]models.VoteDistribution, error) {
	var dists []models.VoteDistribution
	if err := c.getJSON(ctx, "/results/distributions", &dists); err != nil {
		return nil, fmt.Errorf("%w: fetch distributions: %w", session.ErrTransportUnavailable, err)
	}
	return dists, nil
}

// SubmitVotes sends one voter's committed choices. Any non-2xx answer becomes
// *session.SubmissionRejectedError carrying the server's message unchanged;
// only a server that cannot be reached wraps session.ErrTransportUnavailable.
func (c *Client) SubmitVotes(ctx context.Context, identity string, votes models.VoteMap) error {
	ctx, span := tracer.Start(ctx, "Client.SubmitVotes", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.Int("votes.count", len(votes)))

	req := models.SubmitVotesRequest{UserID: identity, Votes: make([]models.VoteIn, 0, len(votes))}
	ids := make([]int64, 0, len(votes))
	for id := range votes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		s := votes[id]
		req.Votes = append(req.Votes, models.VoteIn{ItemID: id, Score: &s})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode votes: %w", err)
	}

	var resp models.SubmitVotesResponse
	err = c.do(ctx, http.MethodPost, "/votes", "application/json", bytes.NewReader(body), &resp)

	var apiErr *APIError
	switch {
	case err == nil:
		span.SetAttributes(attribute.String("submission.id", resp.SubmissionID))
		return nil
	case errors.As(err, &apiErr):
		span.SetAttributes(attribute.Int("http.status_code", apiErr.Status))
		span.SetStatus(codes.Error, apiErr.Message)
		return &session.SubmissionRejectedError{
			Status:     apiErr.Status,
			Reason:     apiErr.Message,
			RetryAfter: apiErr.RetryAfter,
		}
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return err
	}
}

// CreateItem uploads one catalog item and returns its id.
func (c *Client) CreateItem(ctx context.Context, description, filename string, image io.Reader, mime string) (int64, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("description", description); err != nil {
		return 0, err
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	if mime != "" {
		h.Set("Content-Type", mime)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return 0, fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return 0, err
	}

	var created models.ItemCreatedResponse
	if err := c.do(ctx, http.MethodPost, "/items", mw.FormDataContentType(), &buf, &created); err != nil {
		return 0, fmt.Errorf("create item: %w", err)
	}
	return created.ID, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, "", nil, out)
}

// do performs one request and decodes a JSON answer into out. Transport
// failures wrap session.ErrTransportUnavailable; non-2xx answers are *APIError.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", session.ErrTransportUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
		var payload models.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Message != "" {
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
