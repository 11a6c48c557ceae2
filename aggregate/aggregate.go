// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregate

import (
	"sort"

	"github.com/danielhkuo/votedeck/models"
)

// Stats are the per-item inputs a RankFunc may look at.
type Stats struct {
	Voters  int
	Score   int
	Average float64
	Pos     int
	Neg     int
}

// Compute folds every voter's VoteMap into one ResultRow per item that has
// at least one vote. Rows are ordered by Score descending, then ItemID
// ascending. rank may be nil, in which case Rank is left at zero.
//
// Compute is pure: the same corpus always yields identical rows.
func Compute(corpus []models.VoteMap, rank RankFunc) []models.ResultRow {
	byItem := make(map[int64]*Stats)
	for _, votes := range corpus {
		for itemID, score := range votes {
			st, ok := byItem[itemID]
			if !ok {
				st = &Stats{}
				byItem[itemID] = st
			}
			st.Voters++
			st.Score += int(score)
			switch {
			case score > 0:
				st.Pos++
			case score < 0:
				st.Neg++
			}
		}
	}

	rows := make([]models.ResultRow, 0, len(byItem))
	for itemID, st := range byItem {
		st.Average = float64(st.Score) / float64(st.Voters)
		row := models.ResultRow{
			ItemID:  itemID,
			Voters:  st.Voters,
			Score:   st.Score,
			Average: st.Average,
			Pos:     st.Pos,
			Neg:     st.Neg,
		}
		if rank != nil {
			row.Rank = rank(*st)
		}
		rows = append(rows, row)
	}

	SortRows(rows)
	return rows
}

// SortRows puts rows in leaderboard order: higher Score first, ties broken
// by ascending ItemID.
func SortRows(rows []models.ResultRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].ItemID < rows[j].ItemID
	})
}

// Distributions counts, for each voted item, how many voters chose each
// score. Only scores that were chosen at least once appear. Ordered by ItemID.
func Distributions(corpus []models.VoteMap) []models.VoteDistribution {
	byItem := make(map[int64]map[models.Score]int)
	for _, votes := range corpus {
		for itemID, score := range votes {
			hist, ok := byItem[itemID]
			if !ok {
				hist = make(map[models.Score]int)
				byItem[itemID] = hist
			}
			hist[score]++
		}
	}

	out := make([]models.VoteDistribution, 0, len(byItem))
	for itemID, hist := range byItem {
		out = append(out, models.VoteDistribution{ItemID: itemID, Distribution: hist})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}
