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
	"reflect"
	"testing"
)

// playEvent builds a committed event by running the calculator against
// the state derived from the existing log.
func playEvent(t *testing.T, events []GameEvent, batter string, outcome Outcome) GameEvent {
	t.Helper()
	state := DeriveState(events)
	inning, half, outs, runners := NextContext(state)
	res := ComputeOutcome(outs, runners, batter, outcome, 0, BaseNone)
	return GameEvent{
		ID:            fmt.Sprintf("ev-%d", len(events)+1),
		GameID:        "g1",
		Sequence:      len(events) + 1,
		Inning:        inning,
		Half:          half,
		BatterID:      batter,
		Outcome:       outcome,
		OutsBefore:    outs,
		OutsAfter:     res.Outs,
		RunsScored:    res.Runs,
		RunnersBefore: runners,
		RunnersAfter:  res.Runners,
	}
}

func TestDeriveStateEmptyLog(t *testing.T) {
	state := DeriveState(nil)
	if state.Inning != 1 || state.Half != HalfTop || state.Outs != 0 || !state.Runners.Empty() {
		t.Errorf("empty log state: %+v", state)
	}
}

func TestDeriveStateScoresByHalf(t *testing.T) {
	var events []GameEvent
	events = append(events, playEvent(t, events, "a1", OutcomeHomeRun))
	events = append(events, playEvent(t, events, "a2", OutcomeFlyout))
	events = append(events, playEvent(t, events, "a3", OutcomeGroundout))
	events = append(events, playEvent(t, events, "a4", OutcomePopOut))
	// Bottom half starts after three outs.
	events = append(events, playEvent(t, events, "h1", OutcomeHomeRun))

	state := DeriveState(events)
	if state.Half != HalfBottom || state.Inning != 1 {
		t.Fatalf("expected bottom 1, got %s %d", state.Half, state.Inning)
	}
	if state.AwayRuns != 1 || state.HomeRuns != 1 {
		t.Errorf("score %d-%d, want 1-1", state.AwayRuns, state.HomeRuns)
	}
	if state.Outs != 0 {
		t.Errorf("outs = %d, want 0 in new half", state.Outs)
	}
}

func TestPriorHalfInningNeverLeaksRunners(t *testing.T) {
	var events []GameEvent
	events = append(events, playEvent(t, events, "a1", OutcomeSingle))
	events = append(events, playEvent(t, events, "a2", OutcomeFlyout))
	events = append(events, playEvent(t, events, "a3", OutcomeLineout))
	events = append(events, playEvent(t, events, "a4", OutcomePopOut))
	events = append(events, playEvent(t, events, "h1", OutcomeWalk))

	state := DeriveState(events)
	want := BaseRunners{First: "h1"}
	if state.Runners != want {
		t.Errorf("runners %+v, want %+v", state.Runners, want)
	}
}

func TestUndoRestoresPriorState(t *testing.T) {
	var events []GameEvent
	batters := []string{"a1", "a2", "a3"}
	outcomes := []Outcome{OutcomeSingle, OutcomeDouble, OutcomeWalk}

	var states []DerivedState
	for i := range batters {
		states = append(states, DeriveState(events))
		events = append(events, playEvent(t, events, batters[i], outcomes[i]))
	}

	// Undo back to each prior state, newest first.
	for i := len(events) - 1; i >= 0; i-- {
		last, err := LastActive(events)
		if err != nil {
			t.Fatalf("LastActive: %v", err)
		}
		for j := range events {
			if events[j].ID == last.ID {
				events[j].Deleted = true
			}
		}
		got := DeriveState(events)
		want := states[i]
		if got.Outs != want.Outs || got.Runners != want.Runners ||
			got.AwayRuns != want.AwayRuns || got.HomeRuns != want.HomeRuns {
			t.Errorf("undo to %d: got %+v, want %+v", i, got, want)
		}
	}

	if _, err := LastActive(events); err != ErrNoActiveEvents {
		t.Errorf("empty log LastActive err = %v, want ErrNoActiveEvents", err)
	}
}

func TestDeriveStateIdempotent(t *testing.T) {
	var events []GameEvent
	events = append(events, playEvent(t, events, "a1", OutcomeSingle))
	events = append(events, playEvent(t, events, "a2", OutcomeDouble))

	first := DeriveState(events)
	second := DeriveState(events)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("derivation not idempotent: %+v vs %+v", first, second)
	}
	if BatterIndex(events, 9) != BatterIndex(events, 9) {
		t.Error("batter index not idempotent")
	}
}

func TestBatterIndexSkipsBaserunningEvents(t *testing.T) {
	var events []GameEvent
	events = append(events, playEvent(t, events, "a1", OutcomeSingle))
	// A steal carries no batter and must not advance the order.
	events = append(events, playEvent(t, events, "", OutcomeStolenBase))
	if got := BatterIndex(events, 9); got != 1 {
		t.Errorf("batter index = %d, want 1", got)
	}

	// Wraps modulo the lineup size.
	for i := 0; i < 8; i++ {
		events = append(events, playEvent(t, events, fmt.Sprintf("a%d", i+2), OutcomeSingle))
	}
	if got := BatterIndex(events, 9); got != 0 {
		t.Errorf("batter index after full order = %d, want 0", got)
	}
}
