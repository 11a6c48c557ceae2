// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session implements the voting session state machine.

# States

A session is either Browsing an item of the catalog or Finished:

	Browsing(0) ──advance──► Browsing(1) ──advance──► ... ──advance(last)──► Finished
	     ▲                        │
	     └────────retreat─────────┘
	any state ──Reset──► Browsing(0)

An empty catalog starts (and resets) directly into Finished.

# Operations

	s := session.New(catalog, gateway)
	s.SelectScore(3)       // pending score for the current item
	s.CommitAndAdvance()   // commit and move forward
	s.Retreat()            // commit a visible pending score, move back
	s.Reset()              // forget everything (refused while submitting)
	s.Submit(ctx, "nick")  // Finished only

Moving onto an item that was scored before recalls its score as pending;
moving onto a fresh item leaves pending empty.

# Errors

  - ErrInvalidTransition: a precondition was violated (*TransitionError)
  - *SubmissionRejectedError: the gateway refused the votes
  - ErrTransportUnavailable: the gateway could not be reached

None of them change session state.
*/
package session
