// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/danielhkuo/votedeck/models"
)

// Phase is the coarse state of a voting session.
type Phase int

const (
	Browsing Phase = iota
	Finished
)

func (p Phase) String() string {
	switch p {
	case Browsing:
		return "browsing"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Gateway accepts a finished session's votes. Implementations report a
// business refusal as *SubmissionRejectedError and an unreachable backend
// as an error wrapping ErrTransportUnavailable.
type Gateway interface {
	SubmitVotes(ctx context.Context, identity string, votes models.VoteMap) error
}

// Session walks one voter through a catalog. All state transitions are
// synchronous; only Submit calls out and it holds no lock while doing so.
type Session struct {
	mu sync.Mutex

	catalog    []models.ItemMeta
	position   int
	pending    models.Score
	hasPending bool
	committed  models.VoteMap
	phase      Phase
	submitting bool

	gateway Gateway
}

// Snapshot is a read-only copy of session state.
type Snapshot struct {
	Phase      Phase
	Position   int
	Total      int
	Item       models.ItemMeta // zero value once Finished
	Pending    models.Score
	HasPending bool
	Committed  models.VoteMap
	Submitting bool
}

// New starts a session over catalog. The slice is not copied and must not be
// modified while the session is alive. An empty catalog yields a session that
// is already Finished with nothing committed.
func New(catalog []models.ItemMeta, gateway Gateway) *Session {
	s := &Session{
		catalog: catalog,
		gateway: gateway,
	}
	s.restart()
	return s
}

// restart must be called with mu held (or before the session is shared).
func (s *Session) restart() {
	s.position = 0
	s.pending = 0
	s.hasPending = false
	s.committed = make(models.VoteMap)
	s.phase = Browsing
	if len(s.catalog) == 0 {
		s.phase = Finished
	}
}

// SelectScore sets the pending score for the current item.
func (s *Session) SelectScore(v models.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != Browsing {
		return s.refuse("select", "no item is being shown")
	}
	if !v.Valid() {
		return s.refuse("select", fmt.Sprintf("score %d outside [%d, %d]", v, models.MinScore, models.MaxScore))
	}
	s.pending = v
	s.hasPending = true
	return nil
}

// ClearScore drops the pending score without touching committed votes.
func (s *Session) ClearScore() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != Browsing {
		return s.refuse("clear", "no item is being shown")
	}
	s.pending = 0
	s.hasPending = false
	return nil
}

// CommitAndAdvance records the pending score for the current item and moves
// forward. Committing on the last item finishes the session.
func (s *Session) CommitAndAdvance() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != Browsing {
		return s.refuse("advance", "no item is being shown")
	}
	if !s.hasPending {
		return s.refuse("advance", "no score selected")
	}

	s.committed[s.catalog[s.position].ID] = s.pending

	if s.position == len(s.catalog)-1 {
		s.phase = Finished
		s.pending = 0
		s.hasPending = false
		return nil
	}

	s.position++
	s.recall()
	return nil
}

// Retreat moves back one item. A visible pending score is committed first,
// so leaving an item in either direction keeps what the voter chose.
func (s *Session) Retreat() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != Browsing {
		return s.refuse("retreat", "no item is being shown")
	}
	if s.position == 0 {
		return s.refuse("retreat", "already at the first item")
	}

	if s.hasPending {
		s.committed[s.catalog[s.position].ID] = s.pending
	}
	s.position--
	s.recall()
	return nil
}

// Reset discards every committed score and returns to the first item. It
// is valid from any state, including after a failed submission, except while
// a submission is in flight.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return s.refuse("reset", "a submission is in flight")
	}
	s.restart()
	return nil
}

// Submit sends the committed votes through the gateway. It never changes
// session state; on failure the session stays Finished so the caller may
// retry or Reset.
func (s *Session) Submit(ctx context.Context, identity string) error {
	s.mu.Lock()
	if s.phase != Finished {
		err := s.refuse("submit", "voting is not finished")
		s.mu.Unlock()
		return err
	}
	if s.submitting {
		err := s.refuse("submit", "a submission is already in flight")
		s.mu.Unlock()
		return err
	}
	gateway := s.gateway
	if gateway == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: no gateway configured", ErrTransportUnavailable)
	}
	votes := s.committed.Clone()
	s.submitting = true
	s.mu.Unlock()

	err := gateway.SubmitVotes(ctx, identity, votes)

	s.mu.Lock()
	s.submitting = false
	s.mu.Unlock()

	return classify(err)
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Phase:      s.phase,
		Position:   s.position,
		Total:      len(s.catalog),
		Pending:    s.pending,
		HasPending: s.hasPending,
		Committed:  s.committed.Clone(),
		Submitting: s.submitting,
	}
	if s.phase == Browsing {
		snap.Item = s.catalog[s.position]
	}
	return snap
}

// Committed returns a copy of the committed votes.
func (s *Session) Committed() models.VoteMap {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.committed.Clone()
}

// recall loads the current item's committed score into pending, or clears
// pending when the item was never scored.
func (s *Session) recall() {
	s.pending, s.hasPending = s.committed[s.catalog[s.position].ID]
}

func (s *Session) refuse(op, reason string) error {
	return &TransitionError{Op: op, Phase: s.phase, Reason: reason}
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var rejected *SubmissionRejectedError
	if errors.As(err, &rejected) {
		return err
	}
	if errors.Is(err, ErrTransportUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransportUnavailable, err)
}
