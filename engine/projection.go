// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"fmt"
	"strings"
)

// InningLine is one inning column of the line score.
type InningLine struct {
	Inning   int `json:"inning"`
	AwayRuns int `json:"awayRuns"`
	HomeRuns int `json:"homeRuns"`
}

// LineScore is the per-inning run tally.
type LineScore struct {
	Innings []InningLine `json:"innings"`
	Away    int          `json:"away"`
	Home    int          `json:"home"`
}

// BuildLineScore folds the active events into a line score.
func BuildLineScore(events []GameEvent) LineScore {
	var ls LineScore
	byInning := map[int]*InningLine{}
	maxInning := 0

	for _, ev := range ActiveEvents(events) {
		line, ok := byInning[ev.Inning]
		if !ok {
			line = &InningLine{Inning: ev.Inning}
			byInning[ev.Inning] = line
		}
		if ev.Inning > maxInning {
			maxInning = ev.Inning
		}
		if ev.Half == HalfTop {
			line.AwayRuns += ev.RunsScored
			ls.Away += ev.RunsScored
		} else {
			line.HomeRuns += ev.RunsScored
			ls.Home += ev.RunsScored
		}
	}
	for i := 1; i <= maxInning; i++ {
		if line, ok := byInning[i]; ok {
			ls.Innings = append(ls.Innings, *line)
		} else {
			ls.Innings = append(ls.Innings, InningLine{Inning: i})
		}
	}
	return ls
}

// Format renders the line score as a fixed-width table.
func (ls LineScore) Format() string {
	var b strings.Builder
	b.WriteString("      ")
	for _, in := range ls.Innings {
		fmt.Fprintf(&b, "%3d", in.Inning)
	}
	b.WriteString("    R\n")
	b.WriteString("Away  ")
	for _, in := range ls.Innings {
		fmt.Fprintf(&b, "%3d", in.AwayRuns)
	}
	fmt.Fprintf(&b, "  %3d\n", ls.Away)
	b.WriteString("Home  ")
	for _, in := range ls.Innings {
		fmt.Fprintf(&b, "%3d", in.HomeRuns)
	}
	fmt.Fprintf(&b, "  %3d\n", ls.Home)
	return b.String()
}

// BoxScoreRow is one batter's tally.
type BoxScoreRow struct {
	PlayerID string `json:"playerId"`
	AB       int    `json:"ab"`
	Runs     int    `json:"r"`
	Hits     int    `json:"h"`
	RBI      int    `json:"rbi"`
}

// BuildBoxScore tallies batting lines from the active events, keyed by
// batter, in first-appearance order.
func BuildBoxScore(events []GameEvent) []BoxScoreRow {
	rows := map[string]*BoxScoreRow{}
	var order []string

	active := ActiveEvents(events)
	for _, ev := range active {
		if ev.BatterID == "" {
			continue
		}
		row, ok := rows[ev.BatterID]
		if !ok {
			row = &BoxScoreRow{PlayerID: ev.BatterID}
			rows[ev.BatterID] = row
			order = append(order, ev.BatterID)
		}
		// Walks, hit-by-pitch and sacrifices are not at-bats.
		if !ev.Outcome.IsWalk() && ev.Outcome != OutcomeSacrificeFly && ev.Outcome != OutcomeSacrificeBunt && ev.Outcome.EndsAtBat() {
			row.AB++
		}
		if ev.Outcome.IsHit() {
			row.Hits++
		}
		row.RBI += ev.RunsScored
	}

	// Credit runs to the runners who scored: a runner on base before
	// the play and gone after it, who was not put out, scored.
	for _, ev := range active {
		scored := scoredRunners(ev)
		for _, id := range scored {
			if row, ok := rows[id]; ok {
				row.Runs++
			}
		}
	}

	out := make([]BoxScoreRow, 0, len(order))
	for _, id := range order {
		out = append(out, *rows[id])
	}
	return out
}

// scoredRunners lists the players credited with a run on an event. The
// event's explicit scorer list wins; otherwise attribution is inferred
// from the before/after occupancy, skipping runners the play retired.
func scoredRunners(ev GameEvent) []string {
	if ev.RunsScored == 0 {
		return nil
	}
	if len(ev.ScoredRunnerIDs) > 0 {
		return ev.ScoredRunnerIDs
	}
	var vanished []string
	for _, b := range []Base{Third, Second, First} {
		id := ev.RunnersBefore.At(b)
		if id != "" && ev.RunnersAfter.Find(id) == BaseNone {
			vanished = append(vanished, id)
		}
	}
	// Outs not charged to the batter retired runners; the default
	// calculator retires lead runners first.
	retired := ev.OutsAfter - ev.OutsBefore
	if batterOut(ev.Outcome) {
		retired--
	}
	if retired > 0 {
		if retired > len(vanished) {
			retired = len(vanished)
		}
		vanished = vanished[retired:]
	}
	if ev.Outcome == OutcomeHomeRun && ev.BatterID != "" {
		vanished = append(vanished, ev.BatterID)
	}
	if len(vanished) > ev.RunsScored {
		vanished = vanished[:ev.RunsScored]
	}
	return vanished
}

// batterOut reports whether the outcome charges an out to the batter.
func batterOut(o Outcome) bool {
	switch o {
	case OutcomeGroundout, OutcomeFlyout, OutcomeLineout, OutcomePopOut,
		OutcomeStrikeoutSwinging, OutcomeStrikeoutLooking,
		OutcomeDoublePlay, OutcomeTriplePlay,
		OutcomeSacrificeFly, OutcomeSacrificeBunt:
		return true
	}
	return false
}

// Describe renders a human-readable one-liner for the recent-plays feed.
func Describe(ev GameEvent) string {
	var desc string
	switch ev.Outcome {
	case OutcomeSingle:
		desc = "single"
	case OutcomeDouble:
		desc = "double"
	case OutcomeTriple:
		desc = "triple"
	case OutcomeHomeRun:
		desc = "home run"
	case OutcomeGroundout:
		desc = "groundout"
	case OutcomeFlyout:
		desc = "flyout"
	case OutcomeLineout:
		desc = "lineout"
	case OutcomePopOut:
		desc = "pop out"
	case OutcomeStrikeoutSwinging:
		desc = "strikeout swinging"
	case OutcomeStrikeoutLooking:
		desc = "strikeout looking"
	case OutcomeDoublePlay:
		desc = "double play"
	case OutcomeTriplePlay:
		desc = "triple play"
	case OutcomeWalk:
		desc = "walk"
	case OutcomeIntentionalWalk:
		desc = "intentional walk"
	case OutcomeHitByPitch:
		desc = "hit by pitch"
	case OutcomeError:
		desc = "reached on error"
	case OutcomeFieldersChoice:
		desc = "fielder's choice"
	case OutcomeSacrificeFly:
		desc = "sacrifice fly"
	case OutcomeSacrificeBunt:
		desc = "sacrifice bunt"
	case OutcomeStolenBase:
		desc = "stolen base"
	case OutcomeCaughtStealing:
		desc = "caught stealing"
	case OutcomeWildPitch:
		desc = "wild pitch"
	case OutcomePassedBall:
		desc = "passed ball"
	case OutcomeBalk:
		desc = "balk"
	case OutcomePickedOff:
		desc = "picked off"
	default:
		desc = string(ev.Outcome)
	}
	if ev.FieldingSequence != "" {
		desc = fmt.Sprintf("%s (%s)", desc, ev.FieldingSequence)
	}
	if ev.BatterID != "" {
		desc = fmt.Sprintf("%s: %s", ev.BatterID, desc)
	}
	if ev.RunsScored > 0 {
		plural := "run scores"
		if ev.RunsScored > 1 {
			plural = "runs score"
		}
		desc = fmt.Sprintf("%s, %d %s", desc, ev.RunsScored, plural)
	}
	half := "Top"
	if ev.Half == HalfBottom {
		half = "Bot"
	}
	return fmt.Sprintf("[%s %d] %s", half, ev.Inning, desc)
}

// RecentPlays returns descriptions of the last n active events, newest
// first.
func RecentPlays(events []GameEvent, n int) []string {
	active := ActiveEvents(events)
	if n > len(active) {
		n = len(active)
	}
	out := make([]string, 0, n)
	for i := len(active) - 1; i >= len(active)-n; i-- {
		out = append(out, Describe(active[i]))
	}
	return out
}
