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

import "strings"

// Pitch call codes, as recorded in the pitch sequence string.
const (
	PitchBall           = "B"
	PitchCalledStrike   = "C"
	PitchSwingingStrike = "S"
	PitchFoul           = "F"
)

// CountTracker accumulates balls, strikes and fouls for the active
// at-bat and auto-resolves it when a threshold is crossed. Balls show
// 0-3 (the fourth is a walk) and strikes 0-2 (the third is a strikeout;
// a foul at two strikes does not add a strike).
type CountTracker struct {
	balls   int
	strikes int
	pitches []string
}

// Balls returns the visible ball count.
func (c *CountTracker) Balls() int { return c.balls }

// Strikes returns the visible strike count.
func (c *CountTracker) Strikes() int { return c.strikes }

// Sequence returns the ordered pitch calls of the at-bat, e.g. "BCFS".
func (c *CountTracker) Sequence() string { return strings.Join(c.pitches, "") }

// Reset clears the count for the next batter.
func (c *CountTracker) Reset() {
	c.balls = 0
	c.strikes = 0
	c.pitches = nil
}

// Ball records a ball. If the count was already at three balls the
// at-bat resolves to a walk and the returned ok is true; the caller
// must read Sequence before the next Reset.
func (c *CountTracker) Ball() (Outcome, bool) {
	c.pitches = append(c.pitches, PitchBall)
	if c.balls >= 3 {
		return OutcomeWalk, true
	}
	c.balls++
	return "", false
}

// Strike records a called or swinging strike. At two strikes the at-bat
// resolves to the matching strikeout outcome.
func (c *CountTracker) Strike(swinging bool) (Outcome, bool) {
	code := PitchCalledStrike
	if swinging {
		code = PitchSwingingStrike
	}
	c.pitches = append(c.pitches, code)
	if c.strikes >= 2 {
		if swinging {
			return OutcomeStrikeoutSwinging, true
		}
		return OutcomeStrikeoutLooking, true
	}
	c.strikes++
	return "", false
}

// Foul records a foul ball. It counts as a strike only below two
// strikes; it never resolves the at-bat.
func (c *CountTracker) Foul() {
	c.pitches = append(c.pitches, PitchFoul)
	if c.strikes < 2 {
		c.strikes++
	}
}
