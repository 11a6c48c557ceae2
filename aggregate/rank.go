// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregate

import (
	"fmt"
	"math"
	"sort"
)

// RankFunc turns an item's statistics into the opaque rank value carried on
// each ResultRow. It must be deterministic. Leaderboard order never depends
// on it.
type RankFunc func(Stats) float64

// Ranker names
const (
	RankAverage = "average"
	RankWilson  = "wilson"
)

var rankers = map[string]RankFunc{
	RankAverage: AverageRank,
	RankWilson:  WilsonRank,
}

// RankerByName resolves a configured ranker. An empty name selects
// RankAverage.
func RankerByName(name string) (RankFunc, error) {
	if name == "" {
		name = RankAverage
	}
	fn, ok := rankers[name]
	if !ok {
		return nil, fmt.Errorf("unknown rank method %q (want one of %v)", name, RankerNames())
	}
	return fn, nil
}

// RankerNames lists the known ranker names in sorted order.
func RankerNames() []string {
	names := make([]string, 0, len(rankers))
	for name := range rankers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AverageRank ranks by mean score.
func AverageRank(s Stats) float64 {
	return s.Average
}

// wilsonZ is the normal quantile for a 95% interval.
const wilsonZ = 1.96

// WilsonRank is the lower bound of the Wilson score interval for the share
// of positive votes among non-neutral votes. Items with only neutral votes
// rank 0.
func WilsonRank(s Stats) float64 {
	n := float64(s.Pos + s.Neg)
	if n == 0 {
		return 0
	}
	p := float64(s.Pos) / n
	z2 := wilsonZ * wilsonZ
	centre := p + z2/(2*n)
	spread := wilsonZ * math.Sqrt((p*(1-p)+z2/(4*n))/n)
	return (centre - spread) / (1 + z2/n)
}
