// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package identity handles voter identities and submission bookkeeping.

There is no account model: a voter is whatever nickname they type. The
server normalizes it before use:

	id, err := identity.Validate("  Aná ")  // "Aná" in NFC

# Helpers

  - Normalize: trim + Unicode NFC
  - Validate: Normalize, then reject empty, over-long, or control characters
  - NewSubmissionID: random UUID for a vote batch
  - HashIP: salted one-way hash of the submitter's IP for the audit record
*/
package identity
