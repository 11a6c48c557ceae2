// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/votedeck/identity"
	"github.com/danielhkuo/votedeck/models"
	"github.com/danielhkuo/votedeck/session"
)

// api is the part of client.Client the voter needs
type api interface {
	session.Gateway
	FetchCatalog(ctx context.Context) ([]models.ItemMeta, error)
	FetchRoundTitle(ctx context.Context) (string, error)
	FetchAggregate(ctx context.Context) ([]models.ResultRow, error)
	ImageURL(id int64) string
}

const helpText = `commands:
  -5..5    pick a score        +/-   nudge the score by one
  <enter>  save and next       b     back
  c        clear pick          r     start over
  s        submit (when done)  f     refresh results
  q        quit`

type voter struct {
	api   api
	store nicknameStore
	in    *bufio.Scanner
	out   io.Writer
	color palette

	title   string
	catalog []models.ItemMeta
	names   map[int64]string
	sess    *session.Session
}

// run loads the round and drives one voting session until the user quits or
// input ends
func run(ctx context.Context, a api, store nicknameStore, in io.Reader, out io.Writer, color bool) error {
	v := &voter{
		api:   a,
		store: store,
		in:    bufio.NewScanner(in),
		out:   out,
		color: palette{enabled: color},
	}

	// Catalog and title are independent, fetch them together
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := a.FetchCatalog(gctx)
		v.catalog = items
		return err
	})
	g.Go(func() error {
		// The title is cosmetic; a placeholder comes back with any error
		title, err := a.FetchRoundTitle(gctx)
		if err != nil {
			slog.Warn("using placeholder round title", "error", err)
		}
		v.title = title
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load round: %w", err)
	}

	v.names = make(map[int64]string, len(v.catalog))
	for _, item := range v.catalog {
		v.names[item.ID] = item.Description
	}
	v.sess = session.New(v.catalog, a)

	fmt.Fprintln(out, v.color.bold(v.title))
	fmt.Fprintln(out, helpText)
	return v.loop(ctx)
}

func (v *voter) loop(ctx context.Context) error {
	for {
		v.prompt()
		if !v.in.Scan() {
			return v.in.Err()
		}
		cmd := strings.TrimSpace(v.in.Text())
		if cmd == "q" {
			return nil
		}
		if err := v.handle(ctx, cmd); err != nil {
			if errors.Is(err, session.ErrInvalidTransition) {
				fmt.Fprintln(v.out, "not now:", reasonOf(err))
				continue
			}
			return err
		}
	}
}

func (v *voter) prompt() {
	snap := v.sess.Snapshot()
	if snap.Phase == session.Finished {
		fmt.Fprintf(v.out, "done, %d of %d scored. s to submit, r to start over > ", len(snap.Committed), snap.Total)
		return
	}
	pick := "none"
	if snap.HasPending {
		pick = v.color.byScore(int(snap.Pending), snap.Pending.String())
	}
	fmt.Fprintf(v.out, "[%d/%d] %s (%s) score: %s > ",
		snap.Position+1, snap.Total, snap.Item.Description, v.api.ImageURL(snap.Item.ID), pick)
}

func (v *voter) handle(ctx context.Context, cmd string) error {
	switch cmd {
	case "":
		return v.sess.CommitAndAdvance()
	case "b":
		return v.sess.Retreat()
	case "c":
		return v.sess.ClearScore()
	case "r":
		return v.sess.Reset()
	case "+", "-":
		return v.nudge(cmd)
	case "s":
		return v.submit(ctx)
	case "f":
		v.showResults(ctx)
		return nil
	case "?", "h":
		fmt.Fprintln(v.out, helpText)
		return nil
	}

	n, err := strconv.Atoi(cmd)
	if err != nil {
		fmt.Fprintf(v.out, "unknown command %q, ? for help\n", cmd)
		return nil
	}
	if !models.Score(n).Valid() {
		fmt.Fprintf(v.out, "scores run from %d to %d\n", models.MinScore, models.MaxScore)
		return nil
	}
	return v.sess.SelectScore(models.Score(n))
}

// nudge moves the pending score by one, clamped to the scale. Starting
// without a pick counts from 0.
func (v *voter) nudge(dir string) error {
	snap := v.sess.Snapshot()
	next := models.Score(0)
	if snap.HasPending {
		next = snap.Pending
	}
	if dir == "+" {
		next = min(next+1, models.MaxScore)
	} else {
		next = max(next-1, models.MinScore)
	}
	return v.sess.SelectScore(next)
}

func (v *voter) submit(ctx context.Context) error {
	nickname, err := v.nickname()
	if err != nil {
		return err
	}
	if nickname == "" {
		fmt.Fprintln(v.out, "a nickname is needed to submit")
		return nil
	}

	err = v.sess.Submit(ctx, nickname)
	var rejected *session.SubmissionRejectedError
	switch {
	case err == nil:
		fmt.Fprintf(v.out, "thanks %s, votes saved\n", nickname)
		v.showResults(ctx)
	case errors.As(err, &rejected) && rejected.Status == http.StatusTooManyRequests:
		wait := "a moment"
		if rejected.RetryAfter > 0 {
			wait = rejected.RetryAfter.String()
		}
		fmt.Fprintf(v.out, "server is busy, try s again in %s\n", wait)
	case errors.As(err, &rejected):
		fmt.Fprintln(v.out, "server refused the votes:", rejected.Reason)
	case errors.Is(err, session.ErrTransportUnavailable):
		fmt.Fprintln(v.out, "server unreachable, try s again or r to start over")
	default:
		return err
	}
	return nil
}

// nickname returns the stored nickname, asking for one on first use
func (v *voter) nickname() (string, error) {
	saved, err := v.store.Load()
	if err != nil {
		slog.Warn("could not read saved nickname", "error", err)
	}
	if saved != "" {
		return saved, nil
	}

	fmt.Fprint(v.out, "nickname: ")
	if !v.in.Scan() {
		return "", v.in.Err()
	}
	nickname, err := identity.Validate(v.in.Text())
	if err != nil {
		fmt.Fprintln(v.out, "invalid nickname:", err)
		return "", nil
	}
	if err := v.store.Save(nickname); err != nil {
		slog.Warn("could not save nickname", "error", err)
	}
	return nickname, nil
}

// showResults prints the leaderboard; a failed fetch still prints the headers
func (v *voter) showResults(ctx context.Context) {
	rows, err := v.api.FetchAggregate(ctx)
	if err != nil {
		slog.Warn("results unavailable", "error", err)
		fmt.Fprintln(v.out, "results unavailable, f to retry")
		rows = nil
	}
	renderBoard(v.out, rows, v.names, v.color)
}

func reasonOf(err error) string {
	var te *session.TransitionError
	if errors.As(err, &te) {
		return te.Reason
	}
	return err.Error()
}
