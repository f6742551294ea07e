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

// InningHalf identifies which team is at bat.
type InningHalf string

const (
	HalfTop    InningHalf = "top"
	HalfBottom InningHalf = "bottom"
)

// Base identifies one of the three base slots.
type Base int

const (
	BaseNone Base = 0
	First    Base = 1
	Second   Base = 2
	Third    Base = 3
	// Home is not a slot; a runner reaching it scores.
	Home Base = 4
)

// Outcome is the closed set of play result categories.
type Outcome string

// Hits
const (
	OutcomeSingle  Outcome = "single"
	OutcomeDouble  Outcome = "double"
	OutcomeTriple  Outcome = "triple"
	OutcomeHomeRun Outcome = "home_run"
)

// Outs
const (
	OutcomeGroundout         Outcome = "groundout"
	OutcomeFlyout            Outcome = "flyout"
	OutcomeLineout           Outcome = "lineout"
	OutcomePopOut            Outcome = "pop_out"
	OutcomeStrikeoutSwinging Outcome = "strikeout_swinging"
	OutcomeStrikeoutLooking  Outcome = "strikeout_looking"
	OutcomeDoublePlay        Outcome = "double_play"
	OutcomeTriplePlay        Outcome = "triple_play"
)

// Walks
const (
	OutcomeWalk            Outcome = "walk"
	OutcomeIntentionalWalk Outcome = "intentional_walk"
	OutcomeHitByPitch      Outcome = "hit_by_pitch"
)

// Other batted-ball results
const (
	OutcomeError          Outcome = "error"
	OutcomeFieldersChoice Outcome = "fielders_choice"
	OutcomeSacrificeFly   Outcome = "sacrifice_fly"
	OutcomeSacrificeBunt  Outcome = "sacrifice_bunt"
)

// Baserunning events (no batter involved)
const (
	OutcomeStolenBase     Outcome = "stolen_base"
	OutcomeCaughtStealing Outcome = "caught_stealing"
	OutcomeWildPitch      Outcome = "wild_pitch"
	OutcomePassedBall     Outcome = "passed_ball"
	OutcomeBalk           Outcome = "balk"
	OutcomePickedOff      Outcome = "picked_off"
)

// allOutcomes is the membership set used by validation.
var allOutcomes = map[Outcome]bool{
	OutcomeSingle: true, OutcomeDouble: true, OutcomeTriple: true, OutcomeHomeRun: true,
	OutcomeGroundout: true, OutcomeFlyout: true, OutcomeLineout: true, OutcomePopOut: true,
	OutcomeStrikeoutSwinging: true, OutcomeStrikeoutLooking: true,
	OutcomeDoublePlay: true, OutcomeTriplePlay: true,
	OutcomeWalk: true, OutcomeIntentionalWalk: true, OutcomeHitByPitch: true,
	OutcomeError: true, OutcomeFieldersChoice: true,
	OutcomeSacrificeFly: true, OutcomeSacrificeBunt: true,
	OutcomeStolenBase: true, OutcomeCaughtStealing: true, OutcomeWildPitch: true,
	OutcomePassedBall: true, OutcomeBalk: true, OutcomePickedOff: true,
}

// IsHit reports whether the outcome credits the batter with a hit.
func (o Outcome) IsHit() bool {
	switch o {
	case OutcomeSingle, OutcomeDouble, OutcomeTriple, OutcomeHomeRun:
		return true
	}
	return false
}

// IsWalk reports whether the outcome is in the walk category
// (forced-advancement semantics).
func (o Outcome) IsWalk() bool {
	switch o {
	case OutcomeWalk, OutcomeIntentionalWalk, OutcomeHitByPitch:
		return true
	}
	return false
}

// IsStrikeout reports whether the outcome ends the at-bat on strikes.
func (o Outcome) IsStrikeout() bool {
	return o == OutcomeStrikeoutSwinging || o == OutcomeStrikeoutLooking
}

// IsBaserunning reports whether the outcome is a pure baserunning event,
// recorded without a batter.
func (o Outcome) IsBaserunning() bool {
	switch o {
	case OutcomeStolenBase, OutcomeCaughtStealing, OutcomeWildPitch,
		OutcomePassedBall, OutcomeBalk, OutcomePickedOff:
		return true
	}
	return false
}

// EndsAtBat reports whether the outcome consumes the batter's turn.
func (o Outcome) EndsAtBat() bool {
	return !o.IsBaserunning()
}

// Consensus is the reconciliation status between two independently
// recorded accounts of the same play. It is owned by the log service;
// the engine only carries it.
type Consensus string

const (
	ConsensusPending  Consensus = "pending"
	ConsensusAgreed   Consensus = "agreed"
	ConsensusDisputed Consensus = "disputed"
	ConsensusFlagged  Consensus = "flagged"
	ConsensusResolved Consensus = "resolved"
)

// SubKind identifies the substitution workflow variant.
type SubKind string

const (
	SubPinchHit      SubKind = "pinch_hit"
	SubPinchRun      SubKind = "pinch_run"
	SubPitcherChange SubKind = "pitcher_change"
)

// Fielding positions, standard scorekeeping numbers.
const (
	PosPitcher     = 1
	PosCatcher     = 2
	PosFirstBase   = 3
	PosSecondBase  = 4
	PosThirdBase   = 5
	PosShortstop   = 6
	PosLeftField   = 7
	PosCenterField = 8
	PosRightField  = 9
)
