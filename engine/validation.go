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
	"regexp"
)

// uuidRegex is a regex for standard UUIDs (8-4-4-4-12 hex digits)
var uuidRegex = regexp.MustCompile(`^[a-fA-F0-9]{8}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{4}-[a-fA-F0-9]{12}$`)

// isValidUUID checks if the string is a valid UUID.
func isValidUUID(id string) bool {
	return uuidRegex.MatchString(id)
}

// validateStringLen checks if the string length is within the limit.
func validateStringLen(s string, max int, name string) error {
	if len(s) > max {
		return fmt.Errorf("%s too long (max %d chars)", name, max)
	}
	return nil
}

func validatePlayerID(id, name string) error {
	if id == "" {
		return nil
	}
	return validateStringLen(id, 50, name)
}

// ValidateEvent checks a play event before it is appended to the log.
// It is run locally before any remote call, and again by the local
// service on commit.
func ValidateEvent(ev *GameEvent) error {
	if !isValidUUID(ev.ID) {
		return fmt.Errorf("invalid event ID: %s", ev.ID)
	}
	if !allOutcomes[ev.Outcome] {
		return fmt.Errorf("unknown outcome: %s", ev.Outcome)
	}
	if ev.Inning < 1 {
		return fmt.Errorf("invalid inning: %d", ev.Inning)
	}
	if ev.Half != HalfTop && ev.Half != HalfBottom {
		return fmt.Errorf("invalid inning half: %s", ev.Half)
	}
	if ev.OutsBefore < 0 || ev.OutsBefore > 3 {
		return fmt.Errorf("invalid outs before: %d", ev.OutsBefore)
	}
	if ev.OutsAfter < 0 || ev.OutsAfter > 3 {
		return fmt.Errorf("invalid outs after: %d", ev.OutsAfter)
	}
	if ev.OutsAfter < ev.OutsBefore {
		return fmt.Errorf("outs cannot decrease within a play: %d -> %d", ev.OutsBefore, ev.OutsAfter)
	}
	if ev.RunsScored < 0 {
		return fmt.Errorf("invalid runs scored: %d", ev.RunsScored)
	}
	if ev.HitLocation < 0 || ev.HitLocation > 9 {
		return fmt.Errorf("invalid hit location: %d", ev.HitLocation)
	}
	if ev.BatterID == "" && ev.Outcome.EndsAtBat() {
		return fmt.Errorf("outcome %s requires a batter", ev.Outcome)
	}
	if err := validatePlayerID(ev.BatterID, "batterId"); err != nil {
		return err
	}
	if err := validatePlayerID(ev.PitcherID, "pitcherId"); err != nil {
		return err
	}
	if err := validateRunners(ev.RunnersBefore, "runnersBefore"); err != nil {
		return err
	}
	if err := validateRunners(ev.RunnersAfter, "runnersAfter"); err != nil {
		return err
	}
	if len(ev.ScoredRunnerIDs) > ev.RunsScored {
		return fmt.Errorf("more scored runners (%d) than runs scored (%d)", len(ev.ScoredRunnerIDs), ev.RunsScored)
	}
	for _, id := range ev.ScoredRunnerIDs {
		if err := validatePlayerID(id, "scoredRunnerIds"); err != nil {
			return err
		}
	}
	if ev.Balls < 0 || ev.Balls > 4 {
		return fmt.Errorf("invalid ball count: %d", ev.Balls)
	}
	if ev.Strikes < 0 || ev.Strikes > 3 {
		return fmt.Errorf("invalid strike count: %d", ev.Strikes)
	}
	if err := validateStringLen(ev.PitchSequence, 50, "pitchSequence"); err != nil {
		return err
	}
	if err := validateStringLen(ev.FieldingSequence, 20, "fieldingSequence"); err != nil {
		return err
	}
	return validateStringLen(ev.Note, 200, "note")
}

// validateRunners rejects the same player occupying two slots.
func validateRunners(r BaseRunners, name string) error {
	for _, b := range []Base{First, Second, Third} {
		if err := validatePlayerID(r.At(b), name); err != nil {
			return err
		}
	}
	if r.First != "" && (r.First == r.Second || r.First == r.Third) {
		return fmt.Errorf("%s: player %s occupies two bases", name, r.First)
	}
	if r.Second != "" && r.Second == r.Third {
		return fmt.Errorf("%s: player %s occupies two bases", name, r.Second)
	}
	return nil
}
