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
	"errors"
	"sort"
)

var ErrNoActiveEvents = errors.New("no active events to undo")

// GameEvent is one row of the append-only play log. Events are immutable
// once committed; undo sets Deleted, reconciliation updates Consensus.
type GameEvent struct {
	ID       string     `json:"id"`
	GameID   string     `json:"gameId"`
	Sequence int        `json:"sequenceNumber"`
	Inning   int        `json:"inning"`
	Half     InningHalf `json:"inningHalf"`

	BatterID  string `json:"batterId,omitempty"`
	PitcherID string `json:"pitcherId,omitempty"`

	Outcome Outcome `json:"outcome"`

	OutsBefore    int         `json:"outsBefore"`
	OutsAfter     int         `json:"outsAfter"`
	RunsScored    int         `json:"runsScored"`
	RunnersBefore BaseRunners `json:"runnersBefore"`
	RunnersAfter  BaseRunners `json:"runnersAfter"`

	// ScoredRunnerIDs names the players credited with RunsScored, when
	// the producer knows them. Projections fall back to occupancy
	// inference otherwise.
	ScoredRunnerIDs []string `json:"scoredRunnerIds,omitempty"`

	HitLocation      int    `json:"hitLocation,omitempty"`
	FieldingSequence string `json:"fieldingSequence,omitempty"`
	Note             string `json:"note,omitempty"`

	Balls         int    `json:"balls,omitempty"`
	Strikes       int    `json:"strikes,omitempty"`
	PitchSequence string `json:"pitchSequence,omitempty"`

	Deleted bool `json:"isDeleted,omitempty"`

	// Reconciliation metadata, owned by the log service.
	Consensus          Consensus `json:"consensus,omitempty"`
	CounterpartOutcome Outcome   `json:"counterpartOutcome,omitempty"`
}

// DerivedState is the projection of the active-event log: the current
// half-inning's base/out state plus the running score. It is always
// recomputed from the log, never stored.
type DerivedState struct {
	Inning  int
	Half    InningHalf
	Outs    int
	Runners BaseRunners

	AwayRuns int
	HomeRuns int

	// ActiveCount is the number of non-deleted events in the whole log.
	// Consumers use it to detect that the log changed underneath them.
	ActiveCount int
}

// ActiveEvents filters out soft-deleted events and returns the rest
// ordered by sequence number.
func ActiveEvents(events []GameEvent) []GameEvent {
	active := make([]GameEvent, 0, len(events))
	for _, ev := range events {
		if !ev.Deleted {
			active = append(active, ev)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].Sequence < active[j].Sequence
	})
	return active
}

// DeriveState folds the event log into the current game state. The
// current half-inning is the one of the last active event; only events
// from that half-inning contribute to base/out state. An empty log
// yields the top of the first inning with nobody on and nobody out.
func DeriveState(events []GameEvent) DerivedState {
	state := DerivedState{Inning: 1, Half: HalfTop}

	active := ActiveEvents(events)
	state.ActiveCount = len(active)
	if len(active) == 0 {
		return state
	}

	for _, ev := range active {
		switch ev.Half {
		case HalfTop:
			state.AwayRuns += ev.RunsScored
		case HalfBottom:
			state.HomeRuns += ev.RunsScored
		}
	}

	last := active[len(active)-1]
	state.Inning = last.Inning
	state.Half = last.Half
	state.Outs = last.OutsAfter
	state.Runners = last.RunnersAfter
	return state
}

// BatterIndex derives the index into the sorted batting order for the
// current half-inning: the number of active events carrying a batter in
// that half-inning, modulo the lineup size. Returns 0 when the lineup
// size is unknown.
func BatterIndex(events []GameEvent, lineupSize int) int {
	if lineupSize <= 0 {
		return 0
	}
	active := ActiveEvents(events)
	if len(active) == 0 {
		return 0
	}
	last := active[len(active)-1]
	n := 0
	for _, ev := range active {
		if ev.Inning == last.Inning && ev.Half == last.Half && ev.BatterID != "" {
			n++
		}
	}
	return n % lineupSize
}

// batterIndexAt counts batter events within a specific half-inning,
// for contexts that may sit ahead of the last committed event.
func batterIndexAt(events []GameEvent, inning int, half InningHalf, lineupSize int) int {
	if lineupSize <= 0 {
		return 0
	}
	n := 0
	for _, ev := range ActiveEvents(events) {
		if ev.Inning == inning && ev.Half == half && ev.BatterID != "" {
			n++
		}
	}
	return n % lineupSize
}

// LastActive returns the most recent active event, the undo target.
func LastActive(events []GameEvent) (GameEvent, error) {
	active := ActiveEvents(events)
	if len(active) == 0 {
		return GameEvent{}, ErrNoActiveEvents
	}
	return active[len(active)-1], nil
}

// NextContext returns the (inning, half, outs, runners) context for a
// new event given the current derived state. Three outs roll the game
// into the next half-inning with a clean slate.
func NextContext(state DerivedState) (int, InningHalf, int, BaseRunners) {
	if state.Outs < 3 {
		return state.Inning, state.Half, state.Outs, state.Runners
	}
	if state.Half == HalfTop {
		return state.Inning, HalfBottom, 0, BaseRunners{}
	}
	return state.Inning + 1, HalfTop, 0, BaseRunners{}
}
