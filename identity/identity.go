// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// MaxLength is the longest accepted voter identity, in runes.
const MaxLength = 64

var (
	ErrEmpty   = errors.New("identity is empty")
	ErrTooLong = errors.New("identity is too long")
)

// Normalize trims surrounding whitespace and folds the identity into NFC so
// that visually identical nicknames map to the same voter.
func Normalize(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}

// Validate normalizes raw and checks it is usable as a voter identity.
func Validate(raw string) (string, error) {
	id := Normalize(raw)
	if id == "" {
		return "", ErrEmpty
	}
	if len([]rune(id)) > MaxLength {
		return "", ErrTooLong
	}
	if strings.IndexFunc(id, unicode.IsControl) >= 0 {
		return "", errors.New("identity contains control characters")
	}
	return id, nil
}

// NewSubmissionID returns a fresh random id for a vote submission.
func NewSubmissionID() string {
	return uuid.NewString()
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// First 16 hex chars (64 bits) are enough to tell submitters apart
	return hex.EncodeToString(sum[:8])
}
