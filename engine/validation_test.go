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
	"strings"
	"testing"

	"github.com/google/uuid"
)

func validEvent() GameEvent {
	return GameEvent{
		ID:            uuid.NewString(),
		GameID:        "g1",
		Inning:        1,
		Half:          HalfTop,
		BatterID:      "a1",
		Outcome:       OutcomeSingle,
		OutsBefore:    0,
		OutsAfter:     0,
		RunnersBefore: BaseRunners{},
		RunnersAfter:  BaseRunners{First: "a1"},
	}
}

func TestValidateEventAcceptsGoodEvent(t *testing.T) {
	ev := validEvent()
	if err := ValidateEvent(&ev); err != nil {
		t.Fatalf("ValidateEvent: %v", err)
	}
}

func TestValidateEventRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GameEvent)
	}{
		{"bad id", func(ev *GameEvent) { ev.ID = "not-a-uuid" }},
		{"unknown outcome", func(ev *GameEvent) { ev.Outcome = "infield_homer" }},
		{"zero inning", func(ev *GameEvent) { ev.Inning = 0 }},
		{"bad half", func(ev *GameEvent) { ev.Half = "middle" }},
		{"outs out of range", func(ev *GameEvent) { ev.OutsAfter = 4 }},
		{"outs decrease", func(ev *GameEvent) { ev.OutsBefore = 2; ev.OutsAfter = 1 }},
		{"negative runs", func(ev *GameEvent) { ev.RunsScored = -1 }},
		{"bad hit location", func(ev *GameEvent) { ev.HitLocation = 12 }},
		{"missing batter", func(ev *GameEvent) { ev.BatterID = "" }},
		{"duplicate runner", func(ev *GameEvent) {
			ev.RunnersAfter = BaseRunners{First: "a1", Third: "a1"}
		}},
		{"ball count", func(ev *GameEvent) { ev.Balls = 7 }},
		{"more scorers than runs", func(ev *GameEvent) {
			ev.ScoredRunnerIDs = []string{"a2"}
		}},
		{"long note", func(ev *GameEvent) { ev.Note = strings.Repeat("x", 300) }},
	}
	for _, tc := range tests {
		ev := validEvent()
		tc.mutate(&ev)
		if err := ValidateEvent(&ev); err == nil {
			t.Errorf("%s: no error", tc.name)
		}
	}
}

func TestValidateEventBaserunningNeedsNoBatter(t *testing.T) {
	ev := validEvent()
	ev.BatterID = ""
	ev.Outcome = OutcomeStolenBase
	ev.RunnersBefore = BaseRunners{First: "a1"}
	ev.RunnersAfter = BaseRunners{Second: "a1"}
	if err := ValidateEvent(&ev); err != nil {
		t.Fatalf("ValidateEvent: %v", err)
	}
}
