// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package aggregate turns submitted votes into a leaderboard.

# Algorithm

For every item id found in the corpus of VoteMaps:

  - voters: number of VoteMaps containing the item
  - score: sum of those votes
  - average: score / voters
  - pos / neg: counts of votes above / below zero (zero counts toward neither)
  - rank: RankFunc(Stats), passed through untouched

Items nobody voted on are omitted rather than zero-filled.

# Ordering

Rows are sorted by score descending, ties by item id ascending:

	rows := aggregate.Compute(corpus, aggregate.AverageRank)

# Rankers

The rank column is supplied by the caller. Built-ins, selectable by name:

  - average: mean score
  - wilson: Wilson lower bound of the positive share
*/
package aggregate
