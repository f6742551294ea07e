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

import "testing"

func TestOutOutcomesIncrementAndClamp(t *testing.T) {
	outOutcomes := []Outcome{
		OutcomeGroundout, OutcomeFlyout, OutcomeLineout, OutcomePopOut,
		OutcomeStrikeoutSwinging, OutcomeStrikeoutLooking,
	}
	runners := BaseRunners{First: "r1", Third: "r3"}
	for _, o := range outOutcomes {
		for outs := 0; outs <= 2; outs++ {
			res := ComputeOutcome(outs, runners, "b", o, 0, BaseNone)
			if res.Outs != outs+1 {
				t.Errorf("%s at %d outs: got %d, want %d", o, outs, res.Outs, outs+1)
			}
			if res.Runners != runners {
				t.Errorf("%s: runners changed: %+v", o, res.Runners)
			}
			if res.Runs != 0 {
				t.Errorf("%s: unexpected runs %d", o, res.Runs)
			}
		}
	}

	// Clamp: never 4.
	res := ComputeOutcome(2, runners, "b", OutcomeDoublePlay, 0, BaseNone)
	if res.Outs != 3 {
		t.Errorf("double play at 2 outs: got %d outs, want 3", res.Outs)
	}
}

func TestWalkForcedAdvancement(t *testing.T) {
	tests := []struct {
		name    string
		before  BaseRunners
		after   BaseRunners
		runs    int
	}{
		{"bases empty", BaseRunners{}, BaseRunners{First: "bat"}, 0},
		{"first only", BaseRunners{First: "r1"},
			BaseRunners{First: "bat", Second: "r1"}, 0},
		{"first and second", BaseRunners{First: "r1", Second: "r2"},
			BaseRunners{First: "bat", Second: "r1", Third: "r2"}, 0},
		{"loaded", BaseRunners{First: "r1", Second: "r2", Third: "r3"},
			BaseRunners{First: "bat", Second: "r1", Third: "r2"}, 1},
		{"second only, no force", BaseRunners{Second: "r2"},
			BaseRunners{First: "bat", Second: "r2"}, 0},
		{"third only, no force", BaseRunners{Third: "r3"},
			BaseRunners{First: "bat", Third: "r3"}, 0},
	}
	for _, o := range []Outcome{OutcomeWalk, OutcomeIntentionalWalk, OutcomeHitByPitch} {
		for _, tc := range tests {
			res := ComputeOutcome(1, tc.before, "bat", o, 0, BaseNone)
			if res.Runners != tc.after {
				t.Errorf("%s %s: got %+v, want %+v", o, tc.name, res.Runners, tc.after)
			}
			if res.Runs != tc.runs {
				t.Errorf("%s %s: got %d runs, want %d", o, tc.name, res.Runs, tc.runs)
			}
			if res.Outs != 1 {
				t.Errorf("%s %s: outs changed to %d", o, tc.name, res.Outs)
			}
		}
	}
}

func TestHomeRunClearsBasesAndScoresAll(t *testing.T) {
	res := ComputeOutcome(1, BaseRunners{Second: "r2"}, "bat", OutcomeHomeRun, 0, BaseNone)
	if res.Runs != 2 {
		t.Errorf("got %d runs, want 2", res.Runs)
	}
	if !res.Runners.Empty() {
		t.Errorf("bases not cleared: %+v", res.Runners)
	}

	res = ComputeOutcome(0, BaseRunners{First: "a", Second: "b", Third: "c"}, "bat", OutcomeHomeRun, 0, BaseNone)
	if res.Runs != 4 {
		t.Errorf("grand slam: got %d runs, want 4", res.Runs)
	}
}

func TestTripleAndDouble(t *testing.T) {
	res := ComputeOutcome(0, BaseRunners{First: "r1", Second: "r2"}, "bat", OutcomeTriple, 0, BaseNone)
	if res.Runs != 2 {
		t.Errorf("triple: got %d runs, want 2", res.Runs)
	}
	want := BaseRunners{Third: "bat"}
	if res.Runners != want {
		t.Errorf("triple: got %+v, want %+v", res.Runners, want)
	}

	res = ComputeOutcome(0, BaseRunners{First: "r1", Third: "r3"}, "bat", OutcomeDouble, 0, BaseNone)
	if res.Runs != 1 {
		t.Errorf("double: got %d runs, want 1", res.Runs)
	}
	want = BaseRunners{Second: "bat", Third: "r1"}
	if res.Runners != want {
		t.Errorf("double: got %+v, want %+v", res.Runners, want)
	}
}

func TestSingleHitZoneAdvancement(t *testing.T) {
	before := BaseRunners{First: "r1"}

	// Outfield single: runners take two bases.
	res := ComputeOutcome(0, before, "bat", OutcomeSingle, PosCenterField, BaseNone)
	want := BaseRunners{First: "bat", Third: "r1"}
	if res.Runners != want {
		t.Errorf("outfield single: got %+v, want %+v", res.Runners, want)
	}

	// Infield single: one base.
	res = ComputeOutcome(0, before, "bat", OutcomeSingle, PosSecondBase, BaseNone)
	want = BaseRunners{First: "bat", Second: "r1"}
	if res.Runners != want {
		t.Errorf("infield single: got %+v, want %+v", res.Runners, want)
	}

	// Unknown zone behaves like infield.
	res = ComputeOutcome(0, before, "bat", OutcomeSingle, 0, BaseNone)
	if res.Runners != want {
		t.Errorf("zoneless single: got %+v, want %+v", res.Runners, want)
	}
}

func TestDoublePlayVictimSelection(t *testing.T) {
	before := BaseRunners{First: "r1", Second: "r2"}

	// Default victim is the lead runner.
	res := ComputeOutcome(0, before, "bat", OutcomeDoublePlay, 0, BaseNone)
	if res.Outs != 2 {
		t.Errorf("got %d outs, want 2", res.Outs)
	}
	if res.Runners.Second != "" {
		t.Errorf("lead runner not cleared: %+v", res.Runners)
	}
	if res.Runners.First != "r1" {
		t.Errorf("trailing runner moved: %+v", res.Runners)
	}
	if res.Runners.Occupied() != before.Occupied()-1 {
		t.Errorf("expected exactly one base cleared, got %+v", res.Runners)
	}

	// Explicit victim.
	res = ComputeOutcome(0, before, "bat", OutcomeDoublePlay, 0, First)
	if res.Runners.First != "" || res.Runners.Second != "r2" {
		t.Errorf("explicit victim: got %+v", res.Runners)
	}

	// Victim pointing at an empty base falls back to the lead runner.
	res = ComputeOutcome(0, before, "bat", OutcomeDoublePlay, 0, Third)
	if res.Runners.Second != "" {
		t.Errorf("empty-base victim fallback: got %+v", res.Runners)
	}
}

func TestTriplePlayLeavesRunnersForCaller(t *testing.T) {
	before := BaseRunners{First: "r1", Second: "r2"}
	res := ComputeOutcome(0, before, "bat", OutcomeTriplePlay, 0, BaseNone)
	if res.Outs != 3 {
		t.Errorf("got %d outs, want 3", res.Outs)
	}
	if res.Runners != before {
		t.Errorf("runners changed: %+v", res.Runners)
	}
}

func TestSacrificeFly(t *testing.T) {
	res := ComputeOutcome(1, BaseRunners{First: "r1", Third: "r3"}, "bat", OutcomeSacrificeFly, 0, BaseNone)
	if res.Outs != 2 {
		t.Errorf("got %d outs, want 2", res.Outs)
	}
	if res.Runs != 1 {
		t.Errorf("got %d runs, want 1", res.Runs)
	}
	want := BaseRunners{First: "r1"}
	if res.Runners != want {
		t.Errorf("got %+v, want %+v", res.Runners, want)
	}

	// Nobody on third: just an out.
	res = ComputeOutcome(1, BaseRunners{First: "r1"}, "bat", OutcomeSacrificeFly, 0, BaseNone)
	if res.Runs != 0 || res.Runners.First != "r1" {
		t.Errorf("no runner on third: got runs=%d runners=%+v", res.Runs, res.Runners)
	}
}

func TestErrorAndFieldersChoice(t *testing.T) {
	for _, o := range []Outcome{OutcomeError, OutcomeFieldersChoice} {
		res := ComputeOutcome(0, BaseRunners{Third: "r3"}, "bat", o, 0, BaseNone)
		if res.Runs != 1 {
			t.Errorf("%s: got %d runs, want 1", o, res.Runs)
		}
		if res.Runners.First != "bat" {
			t.Errorf("%s: batter not on first: %+v", o, res.Runners)
		}
	}
}

func TestBaserunningDefaults(t *testing.T) {
	before := BaseRunners{First: "r1"}

	res := ComputeOutcome(1, before, "", OutcomeCaughtStealing, 0, BaseNone)
	if res.Outs != 2 || res.Runners != before {
		t.Errorf("caught stealing: got outs=%d runners=%+v", res.Outs, res.Runners)
	}

	res = ComputeOutcome(1, before, "", OutcomeStolenBase, 0, BaseNone)
	if res.Outs != 1 || res.Runners != before || res.Runs != 0 {
		t.Errorf("stolen base: got %+v", res)
	}
}
