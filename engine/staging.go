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

import "sort"

// StagedPlay holds a provisionally selected outcome together with the
// calculator's defaults, and lets the operator adjust runs, outs and
// runner destinations before the play commits.
type StagedPlay struct {
	Outcome  Outcome
	Batter   string
	Pitcher  string
	HitZone  int
	DPVictim Base

	// Context the play was staged against.
	Inning     int
	Half       InningHalf
	OutsBefore int
	Before     BaseRunners

	// Adjustable result, seeded by ComputeOutcome.
	Result PlayResult

	FieldingSequence string
	Note             string

	// scored tracks runners sent home through destination adjustments,
	// so re-selecting home is a no-op and moving them back un-scores.
	// removed tracks runners taken off the bases without scoring, so
	// run attribution never credits a retired runner.
	scored  map[string]bool
	removed map[string]bool
}

// NewStagedPlay seeds a staged play from the calculator defaults.
func NewStagedPlay(outcome Outcome, batter, pitcher string, inning int, half InningHalf, outs int, runners BaseRunners, hitZone int) *StagedPlay {
	p := &StagedPlay{
		Outcome:    outcome,
		Batter:     batter,
		Pitcher:    pitcher,
		HitZone:    hitZone,
		Inning:     inning,
		Half:       half,
		OutsBefore: outs,
		Before:     runners,
		Result:     ComputeOutcome(outs, runners, batter, outcome, hitZone, BaseNone),
		scored:     make(map[string]bool),
		removed:    make(map[string]bool),
	}
	p.markDPVictim(BaseNone)
	return p
}

func (p *StagedPlay) markDPVictim(victim Base) {
	if p.Outcome != OutcomeDoublePlay {
		return
	}
	if id := p.Before.At(resolveDPVictim(p.Before, victim)); id != "" {
		p.removed[id] = true
	}
}

// clone returns an independent duplicate safe to hand across goroutines.
func (p *StagedPlay) clone() *StagedPlay {
	c := *p
	c.scored = make(map[string]bool, len(p.scored))
	for id := range p.scored {
		c.scored[id] = true
	}
	c.removed = make(map[string]bool, len(p.removed))
	for id := range p.removed {
		c.removed[id] = true
	}
	return &c
}

// AutoCommits reports whether the outcome is unambiguous and skips
// staging entirely: home runs, triples, the walk category, or any play
// starting with the bases empty.
func (p *StagedPlay) AutoCommits() bool {
	switch p.Outcome {
	case OutcomeHomeRun, OutcomeTriple:
		return true
	}
	if p.Outcome.IsWalk() {
		return true
	}
	return p.Before.Empty()
}

// SetDPVictim re-runs the calculator with an explicit double-play
// victim, discarding prior runner adjustments.
func (p *StagedPlay) SetDPVictim(victim Base) {
	p.DPVictim = victim
	p.Result = ComputeOutcome(p.OutsBefore, p.Before, p.Batter, p.Outcome, p.HitZone, victim)
	p.scored = make(map[string]bool)
	p.removed = make(map[string]bool)
	p.markDPVictim(victim)
}

// AdjustOuts applies an operator out-count delta, clamped to [0,3].
func (p *StagedPlay) AdjustOuts(delta int) {
	p.Result.Outs = clampOuts(p.Result.Outs + delta)
}

// AdjustRuns applies an operator run-count delta, floored at zero.
func (p *StagedPlay) AdjustRuns(delta int) {
	p.Result.Runs += delta
	if p.Result.Runs < 0 {
		p.Result.Runs = 0
	}
}

// MoveRunner sets a runner's destination. Home scores the runner once
// and clears their base; moving a scored runner back onto a base
// un-scores them. Moving onto an occupied base is rejected.
func (p *StagedPlay) MoveRunner(playerID string, dest Base) bool {
	if playerID == "" {
		return false
	}
	if dest == Home {
		if p.scored[playerID] {
			return true // already home, no-op
		}
		if from := p.Result.Runners.Find(playerID); from != BaseNone {
			p.Result.Runners.Set(from, "")
		}
		delete(p.removed, playerID)
		p.scored[playerID] = true
		p.Result.Runs++
		return true
	}
	if dest < First || dest > Third {
		return false
	}
	if occupant := p.Result.Runners.At(dest); occupant != "" && occupant != playerID {
		return false
	}
	if p.scored[playerID] {
		delete(p.scored, playerID)
		if p.Result.Runs > 0 {
			p.Result.Runs--
		}
	} else if from := p.Result.Runners.Find(playerID); from != BaseNone {
		p.Result.Runners.Set(from, "")
	}
	delete(p.removed, playerID)
	p.Result.Runners.Set(dest, playerID)
	return true
}

// RemoveRunner takes a runner off the bases without scoring them, e.g.
// a baserunning out chosen during staging.
func (p *StagedPlay) RemoveRunner(playerID string) bool {
	from := p.Result.Runners.Find(playerID)
	if from == BaseNone {
		return false
	}
	p.Result.Runners.Set(from, "")
	p.removed[playerID] = true
	return true
}

// Scorers lists the players credited with the staged play's runs, lead
// runner first: everyone on base before the play who is neither on base
// after it nor retired, the batter on a home run, then any remaining
// operator-scored players.
func (p *StagedPlay) Scorers() []string {
	var out []string
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, b := range []Base{Third, Second, First} {
		id := p.Before.At(b)
		if id != "" && p.Result.Runners.Find(id) == BaseNone && !p.removed[id] {
			add(id)
		}
	}
	if p.Outcome == OutcomeHomeRun {
		add(p.Batter)
	}
	rest := make([]string, 0, len(p.scored))
	for id := range p.scored {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		add(id)
	}
	if len(out) > p.Result.Runs {
		out = out[:p.Result.Runs]
	}
	return out
}

// Event materializes the staged play into a GameEvent ready for commit.
// The count tracker's state, if any, is recorded on the event.
func (p *StagedPlay) Event(gameID string, balls, strikes int, pitchSeq string) GameEvent {
	return GameEvent{
		GameID:           gameID,
		Inning:           p.Inning,
		Half:             p.Half,
		BatterID:         p.Batter,
		PitcherID:        p.Pitcher,
		Outcome:          p.Outcome,
		OutsBefore:       p.OutsBefore,
		OutsAfter:        p.Result.Outs,
		RunsScored:       p.Result.Runs,
		RunnersBefore:    p.Before,
		RunnersAfter:     p.Result.Runners,
		ScoredRunnerIDs:  p.Scorers(),
		HitLocation:      p.HitZone,
		FieldingSequence: p.FieldingSequence,
		Note:             p.Note,
		Balls:            balls,
		Strikes:          strikes,
		PitchSequence:    pitchSeq,
	}
}
