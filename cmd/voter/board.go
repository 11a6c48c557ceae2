// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/danielhkuo/votedeck/models"
)

const boardHeaders = "#\tItem\tScore\tAvg\tVoters\t+\t-\tRank\t"

// palette colours output when stdout is a terminal. The decision is made
// once in main, so each colour is forced on or off instead of following
// color.NoColor.
type palette struct {
	enabled bool
}

func (p palette) paint(attr color.Attribute, text string) string {
	c := color.New(attr)
	if p.enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(text)
}

func (p palette) bold(text string) string { return p.paint(color.Bold, text) }

// byScore colours positive text green and negative red
func (p palette) byScore(v int, text string) string {
	switch {
	case v > 0:
		return p.paint(color.FgGreen, text)
	case v < 0:
		return p.paint(color.FgRed, text)
	default:
		return text
	}
}

// renderBoard prints the leaderboard. Rows may be empty; headers are always shown.
func renderBoard(out io.Writer, rows []models.ResultRow, names map[int64]string, p palette) {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, boardHeaders)
	for i, r := range rows {
		name, ok := names[r.ItemID]
		if !ok {
			name = "item " + strconv.FormatInt(r.ItemID, 10)
		}
		fmt.Fprintf(tw, "%d\t%s\t%+d\t%.2f\t%d\t%d\t%d\t%.3f\t\n",
			i+1, name, r.Score, r.Average, r.Voters, r.Pos, r.Neg, r.Rank)
	}
	tw.Flush()

	// Colour whole lines after alignment so escape codes do not skew columns
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " ")
		if i == 0 {
			fmt.Fprintln(out, p.bold(line))
			continue
		}
		fmt.Fprintln(out, p.byScore(rows[i-1].Score, line))
	}
}
