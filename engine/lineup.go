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

// LineupEntry is one roster row for a game. A batting order of zero
// means the player is on the bench; a fielding position of zero means
// no defensive assignment. ExitedInning is zero while the player is
// still in the game.
type LineupEntry struct {
	PlayerID         string `json:"playerId"`
	TeamID           string `json:"teamId"`
	BattingOrder     int    `json:"battingOrder,omitempty"`
	FieldingPosition int    `json:"fieldingPosition,omitempty"`
	EnteredInning    int    `json:"enteredInning"`
	ExitedInning     int    `json:"exitedInning,omitempty"`

	// Reentered marks a player who already used their one re-entry;
	// a second exit is terminal.
	Reentered bool `json:"reentered,omitempty"`
}

// Active reports whether the player is currently in the game.
func (e LineupEntry) Active() bool { return e.ExitedInning == 0 }

// Lineup is one team's roster snapshot for a game. Entries are never
// deleted; substitutions mutate order/position/exit fields.
type Lineup struct {
	TeamID  string        `json:"teamId"`
	Entries []LineupEntry `json:"entries"`
}

// Vacancy is a batting-order/fielding-position slot left empty because
// its occupant was reassigned elsewhere.
type Vacancy struct {
	BattingOrder     int
	FieldingPosition int
}

// Entry returns a pointer to the row for a player, or nil.
func (l *Lineup) Entry(playerID string) *LineupEntry {
	for i := range l.Entries {
		if l.Entries[i].PlayerID == playerID {
			return &l.Entries[i]
		}
	}
	return nil
}

// ActiveStarters returns the players currently holding a batting-order
// slot, sorted by batting order.
func (l *Lineup) ActiveStarters() []LineupEntry {
	var out []LineupEntry
	for _, e := range l.Entries {
		if e.Active() && e.BattingOrder > 0 {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].BattingOrder < out[j].BattingOrder
	})
	return out
}

// Bench returns active roster players without a batting-order slot.
func (l *Lineup) Bench() []LineupEntry {
	var out []LineupEntry
	for _, e := range l.Entries {
		if e.Active() && e.BattingOrder == 0 {
			out = append(out, e)
		}
	}
	return out
}

// Exited returns players who have left the game, the re-entry pool.
func (l *Lineup) Exited() []LineupEntry {
	var out []LineupEntry
	for _, e := range l.Entries {
		if !e.Active() {
			out = append(out, e)
		}
	}
	return out
}

// Pitcher returns the active player at position 1, or nil.
func (l *Lineup) Pitcher() *LineupEntry {
	for i := range l.Entries {
		if l.Entries[i].Active() && l.Entries[i].FieldingPosition == PosPitcher {
			return &l.Entries[i]
		}
	}
	return nil
}

// AtOrder returns the active player in a batting-order slot, or nil if
// the slot is vacant.
func (l *Lineup) AtOrder(order int) *LineupEntry {
	for i := range l.Entries {
		if l.Entries[i].Active() && l.Entries[i].BattingOrder == order {
			return &l.Entries[i]
		}
	}
	return nil
}

// Batter returns the player due up given a derived batter index into
// the active starters.
func (l *Lineup) Batter(index int) *LineupEntry {
	starters := l.ActiveStarters()
	if len(starters) == 0 {
		return nil
	}
	e := starters[index%len(starters)]
	return l.Entry(e.PlayerID)
}

// clone returns a deep copy the substitution workflow can mutate
// provisionally.
func (l *Lineup) clone() *Lineup {
	c := &Lineup{TeamID: l.TeamID, Entries: make([]LineupEntry, len(l.Entries))}
	copy(c.Entries, l.Entries)
	return c
}
