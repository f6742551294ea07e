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

// BaseRunners holds the three base slots. An empty string means the base
// is unoccupied. Never more than one player per slot.
type BaseRunners struct {
	First  string `json:"first,omitempty"`
	Second string `json:"second,omitempty"`
	Third  string `json:"third,omitempty"`
}

// Empty reports whether no base is occupied.
func (r BaseRunners) Empty() bool {
	return r.First == "" && r.Second == "" && r.Third == ""
}

// Occupied returns the number of occupied bases.
func (r BaseRunners) Occupied() int {
	n := 0
	if r.First != "" {
		n++
	}
	if r.Second != "" {
		n++
	}
	if r.Third != "" {
		n++
	}
	return n
}

// At returns the occupant of a base slot, or "" for BaseNone/Home.
func (r BaseRunners) At(b Base) string {
	switch b {
	case First:
		return r.First
	case Second:
		return r.Second
	case Third:
		return r.Third
	}
	return ""
}

// Set places a player on a base slot. Setting Home or BaseNone is a no-op.
func (r *BaseRunners) Set(b Base, playerID string) {
	switch b {
	case First:
		r.First = playerID
	case Second:
		r.Second = playerID
	case Third:
		r.Third = playerID
	}
}

// Find returns the base a player occupies, or BaseNone.
func (r BaseRunners) Find(playerID string) Base {
	if playerID == "" {
		return BaseNone
	}
	switch playerID {
	case r.First:
		return First
	case r.Second:
		return Second
	case r.Third:
		return Third
	}
	return BaseNone
}

// LeadRunner returns the occupied base closest to home, or BaseNone.
func (r BaseRunners) LeadRunner() Base {
	switch {
	case r.Third != "":
		return Third
	case r.Second != "":
		return Second
	case r.First != "":
		return First
	}
	return BaseNone
}

// PlayResult is the calculator's output: the defaults for a play before
// any operator override.
type PlayResult struct {
	Outs    int         `json:"outs"`
	Runs    int         `json:"runs"`
	Runners BaseRunners `json:"runners"`
}

func clampOuts(outs int) int {
	if outs < 0 {
		return 0
	}
	if outs > 3 {
		return 3
	}
	return outs
}

// outfieldZone reports whether a hit location is in the outfield (7-9).
func outfieldZone(zone int) bool {
	return zone >= PosLeftField && zone <= PosRightField
}

// ComputeOutcome maps the current base/out state and a play outcome to the
// resulting outs, runs scored, and base occupancy. It is deterministic and
// has no side effects; the caller may override any field before commit.
//
// batter is the batter's player id ("" for pure baserunning events).
// hitZone is the fielding position number of the hit location (0 if
// unknown). dpVictim selects which runner a double play retires
// (BaseNone picks the lead runner).
func ComputeOutcome(outs int, runners BaseRunners, batter string, outcome Outcome, hitZone int, dpVictim Base) PlayResult {
	res := PlayResult{Outs: outs, Runners: runners}

	switch outcome {
	case OutcomeGroundout, OutcomeFlyout, OutcomeLineout, OutcomePopOut,
		OutcomeStrikeoutSwinging, OutcomeStrikeoutLooking:
		res.Outs = clampOuts(outs + 1)

	case OutcomeDoublePlay:
		res.Outs = clampOuts(outs + 2)
		res.Runners.Set(resolveDPVictim(runners, dpVictim), "")

	case OutcomeTriplePlay:
		res.Outs = clampOuts(outs + 3)

	case OutcomeHomeRun:
		res.Runs = runners.Occupied() + 1
		res.Runners = BaseRunners{}

	case OutcomeTriple:
		res.Runs, res.Runners = advanceAll(runners, 3, batter, Third)

	case OutcomeDouble:
		res.Runs, res.Runners = advanceAll(runners, 2, batter, Second)

	case OutcomeSingle:
		adv := 1
		if outfieldZone(hitZone) {
			adv = 2
		}
		res.Runs, res.Runners = advanceAll(runners, adv, batter, First)

	case OutcomeError, OutcomeFieldersChoice:
		res.Runs, res.Runners = advanceAll(runners, 1, batter, First)

	case OutcomeSacrificeFly:
		res.Outs = clampOuts(outs + 1)
		if runners.Third != "" {
			res.Runs = 1
			res.Runners.Third = ""
		}

	case OutcomeSacrificeBunt:
		res.Outs = clampOuts(outs + 1)
		res.Runs, res.Runners = advanceAll(runners, 1, "", BaseNone)

	case OutcomeWalk, OutcomeIntentionalWalk, OutcomeHitByPitch:
		res.Runs, res.Runners = forceAdvance(runners, batter)

	case OutcomeCaughtStealing, OutcomePickedOff:
		// The retired runner is chosen by the operator during staging.
		res.Outs = clampOuts(outs + 1)

	case OutcomeStolenBase, OutcomeWildPitch, OutcomePassedBall, OutcomeBalk:
		// Default is no movement; destinations are operator-supplied.
	}

	return res
}

// resolveDPVictim picks the runner a double play retires: the requested
// base when occupied, otherwise the lead runner.
func resolveDPVictim(runners BaseRunners, victim Base) Base {
	if victim == BaseNone || runners.At(victim) == "" {
		return runners.LeadRunner()
	}
	return victim
}

// advanceAll moves every existing runner forward n bases, scoring any
// runner driven past third, then places the batter on batterBase
// (Home or beyond scores the batter, BaseNone leaves the batter out of
// the play). Returns runs scored and the resulting occupancy.
func advanceAll(runners BaseRunners, n int, batter string, batterBase Base) (int, BaseRunners) {
	var after BaseRunners
	runs := 0

	move := func(from Base, playerID string) {
		if playerID == "" {
			return
		}
		target := int(from) + n
		if target >= int(Home) {
			runs++
			return
		}
		after.Set(Base(target), playerID)
	}

	// Lead runner first so slots free up in order.
	move(Third, runners.Third)
	move(Second, runners.Second)
	move(First, runners.First)

	if batter != "" && batterBase != BaseNone {
		if batterBase >= Home {
			runs++
		} else {
			after.Set(batterBase, batter)
		}
	}
	return runs, after
}

// forceAdvance applies walk semantics: the batter takes first and each
// runner moves up only while the chain of occupied bases from first is
// unbroken.
func forceAdvance(runners BaseRunners, batter string) (int, BaseRunners) {
	after := runners
	runs := 0
	switch {
	case after.First == "":
		after.First = batter
	case after.Second == "":
		after.Second, after.First = after.First, batter
	case after.Third == "":
		after.Third, after.Second, after.First = after.Second, after.First, batter
	default:
		runs = 1
		after.Third, after.Second, after.First = after.Second, after.First, batter
	}
	return runs, after
}
