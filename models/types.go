// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "fmt"

// Score bounds
const (
	MinScore Score = -5
	MaxScore Score = 5
)

// Score is a single vote on the closed scale [MinScore, MaxScore].
// Zero is a neutral vote, not "no vote".
type Score int

// Valid reports whether s lies on the voting scale.
func (s Score) Valid() bool {
	return s >= MinScore && s <= MaxScore
}

func (s Score) String() string {
	return fmt.Sprintf("%+d", int(s))
}

// Scale returns every selectable score in ascending order.
func Scale() []Score {
	scale := make([]Score, 0, MaxScore-MinScore+1)
	for s := MinScore; s <= MaxScore; s++ {
		scale = append(scale, s)
	}
	return scale
}

// VoteMap holds one voter's committed scores keyed by item id.
type VoteMap map[int64]Score

// Clone returns an independent copy. A nil map clones to an empty one.
func (m VoteMap) Clone() VoteMap {
	out := make(VoteMap, len(m))
	for id, s := range m {
		out[id] = s
	}
	return out
}

// Request types

type VoteIn struct {
	ItemID int64  `json:"item_id" validate:"required"`
	Score  *Score `json:"score" validate:"required,min=-5,max=5"`
}

type SubmitVotesRequest struct {
	UserID string   `json:"user_id" validate:"required"`
	Votes  []VoteIn `json:"votes" validate:"dive"`
}

// Response types

type ItemCreatedResponse struct {
	ID int64 `json:"id"`
}

type SubmitVotesResponse struct {
	SubmissionID string `json:"submission_id"`
	VoteCount    int    `json:"vote_count"`
	Message      string `json:"message"`
}

type TopicResponse struct {
	Title string `json:"title"`
}

// Domain types

// ItemMeta is the catalog view of an item; image bytes are served separately.
type ItemMeta struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}

type Item struct {
	ItemMeta
	ImageMIME  string `json:"image_mime"`
	ImageBytes []byte `json:"-"`
}

// ResultRow is one leaderboard line. Average is only defined for Voters > 0,
// which is why items without votes never produce a row.
type ResultRow struct {
	ItemID  int64   `json:"item_id"`
	Voters  int     `json:"voters"`
	Score   int     `json:"score"`
	Average float64 `json:"average"`
	Pos     int     `json:"pos"`
	Neg     int     `json:"neg"`
	Rank    float64 `json:"rank"`
}

// VoteDistribution counts how many voters picked each score for an item.
type VoteDistribution struct {
	ItemID       int64         `json:"item_id"`
	Distribution map[Score]int `json:"distribution"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
