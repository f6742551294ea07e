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
	"context"
	"errors"
	"fmt"
)

var ErrGameNotFound = errors.New("game not found")

// RejectionError is a rejection from the log service, surfaced verbatim
// to the operator. The engine never auto-retries one.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("log service rejected request: %s", e.Reason)
}

// GameSummary is the feed's headline view of a game.
type GameSummary struct {
	GameID   string     `json:"gameId"`
	Status   string     `json:"status"`
	Inning   int        `json:"inning"`
	Half     InningHalf `json:"inningHalf"`
	AwayRuns int        `json:"awayRuns"`
	HomeRuns int        `json:"homeRuns"`
}

// GameSnapshot is one delivery of the push/pull state feed: the game
// summary, the full event list, and both lineup snapshots. The engine
// re-derives current state from it whenever one arrives.
type GameSnapshot struct {
	Summary GameSummary `json:"summary"`
	Events  []GameEvent `json:"events"`
	Away    *Lineup     `json:"away"`
	Home    *Lineup     `json:"home"`
}

// BattingLineup returns the lineup of the team at bat in the given
// half-inning (top: away, bottom: home).
func (s *GameSnapshot) BattingLineup(half InningHalf) *Lineup {
	if half == HalfTop {
		return s.Away
	}
	return s.Home
}

// LogService is the external transactional log the engine is a client
// of. Every mutation is a synchronous round trip; the service, not
// local memory, is the ordering authority.
type LogService interface {
	// Snapshot returns the current authoritative game state.
	Snapshot(ctx context.Context, gameID string) (*GameSnapshot, error)

	// CommitPlay appends one event. The service assigns the sequence
	// number, and the event ID when the caller left it empty.
	CommitPlay(ctx context.Context, gameID string, ev GameEvent) error

	// UndoLastPlay soft-deletes the most recent active event.
	UndoLastPlay(ctx context.Context, gameID string) error

	// Substitute replaces outgoing with incoming in the outgoing
	// player's batting slot at the given fielding position.
	Substitute(ctx context.Context, gameID, teamID, outgoingID, incomingID string, fieldingPosition, inning int) error

	// SwapFieldingPositions exchanges two starters' fielding
	// assignments without touching the batting order.
	SwapFieldingPositions(ctx context.Context, gameID, teamID, playerA, playerB string) error

	// FillVacantPosition assigns a player to a vacant slot.
	FillVacantPosition(ctx context.Context, gameID, teamID, playerID string, battingOrder, fieldingPosition, inning int) error

	// Subscribe registers for push snapshots. The returned cancel
	// function releases the subscription.
	Subscribe(gameID string) (<-chan *GameSnapshot, func())
}
