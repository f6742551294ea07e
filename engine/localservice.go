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
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/c2FmZQ/storage"
	"github.com/google/uuid"
)

// storedGame is the on-disk record of one game's log and lineups.
type storedGame struct {
	ID           string             `json:"id"`
	Status       string             `json:"status"`
	AwayTeamID   string             `json:"awayTeamId"`
	HomeTeamID   string             `json:"homeTeamId"`
	Events       []GameEvent        `json:"events"`
	Lineups      map[string]*Lineup `json:"lineups"`
	NextSequence int                `json:"nextSequence"`
}

func (g *storedGame) normalize() {
	if g.Lineups == nil {
		g.Lineups = make(map[string]*Lineup)
	}
	if g.Events == nil {
		g.Events = make([]GameEvent, 0)
	}
	if g.NextSequence == 0 {
		g.NextSequence = 1
	}
}

// LocalService is an in-process LogService backed by encrypted data
// files. It is the reference implementation used by tests and offline
// scoring; a remote deployment replaces it with RemoteService.
type LocalService struct {
	DataDir string
	Debug   bool
	storage *storage.Storage

	mu    sync.Map // gameID -> *sync.RWMutex
	cache sync.Map // gameID -> *storedGame

	dirtyMu sync.Mutex
	dirty   map[string]bool

	subMu sync.Mutex
	subs  map[string][]chan *GameSnapshot
}

// NewLocalService creates a LocalService persisting under dataDir.
func NewLocalService(dataDir string, s *storage.Storage) *LocalService {
	return &LocalService{
		DataDir: dataDir,
		storage: s,
		dirty:   make(map[string]bool),
		subs:    make(map[string][]chan *GameSnapshot),
	}
}

func (ls *LocalService) lock(gameID string) *sync.RWMutex {
	m, _ := ls.mu.LoadOrStore(gameID, &sync.RWMutex{})
	return m.(*sync.RWMutex)
}

func gameFilename(gameID string) string {
	return filepath.Join("games", fmt.Sprintf("%s.json", url.PathEscape(gameID)))
}

// CreateGame registers a new game with its two lineups.
func (ls *LocalService) CreateGame(gameID, awayTeamID, homeTeamID string, away, home *Lineup) error {
	mutex := ls.lock(gameID)
	mutex.Lock()
	defer mutex.Unlock()

	if _, ok := ls.cache.Load(gameID); ok {
		return fmt.Errorf("game %s already exists", gameID)
	}
	g := &storedGame{
		ID:         gameID,
		Status:     "in_progress",
		AwayTeamID: awayTeamID,
		HomeTeamID: homeTeamID,
		Lineups: map[string]*Lineup{
			awayTeamID: away,
			homeTeamID: home,
		},
		NextSequence: 1,
	}
	g.normalize()
	ls.cache.Store(gameID, g)
	ls.markDirty(gameID)
	return nil
}

// loadLocked returns the game, reading it from disk on a cache miss.
// The caller must hold the game's mutex.
func (ls *LocalService) loadLocked(gameID string) (*storedGame, error) {
	if val, ok := ls.cache.Load(gameID); ok {
		return val.(*storedGame), nil
	}
	if ls.storage == nil {
		return nil, ErrGameNotFound
	}
	var g storedGame
	if err := ls.storage.ReadDataFile(gameFilename(gameID), &g); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("ReadDataFile: %w", err)
	}
	g.normalize()
	ls.cache.Store(gameID, &g)
	if ls.Debug {
		log.Printf("LocalService: loaded game %s from disk (%d events)", gameID, len(g.Events))
	}
	return &g, nil
}

func (ls *LocalService) markDirty(gameID string) {
	ls.dirtyMu.Lock()
	ls.dirty[gameID] = true
	ls.dirtyMu.Unlock()
}

// Flush persists one game to disk if it is dirty.
func (ls *LocalService) Flush(gameID string) error {
	ls.dirtyMu.Lock()
	if !ls.dirty[gameID] {
		ls.dirtyMu.Unlock()
		return nil
	}
	ls.dirtyMu.Unlock()

	if ls.storage == nil {
		return nil
	}

	mutex := ls.lock(gameID)
	mutex.Lock()
	defer mutex.Unlock()

	val, ok := ls.cache.Load(gameID)
	if !ok {
		return fmt.Errorf("game %s marked dirty but not found in cache", gameID)
	}
	if err := ls.storage.SaveDataFile(gameFilename(gameID), val.(*storedGame)); err != nil {
		return fmt.Errorf("storage.SaveDataFile: %w", err)
	}
	ls.dirtyMu.Lock()
	delete(ls.dirty, gameID)
	ls.dirtyMu.Unlock()
	return nil
}

// FlushAll persists every dirty game.
func (ls *LocalService) FlushAll() error {
	ls.dirtyMu.Lock()
	ids := make([]string, 0, len(ls.dirty))
	for id := range ls.dirty {
		ids = append(ids, id)
	}
	ls.dirtyMu.Unlock()

	for _, id := range ids {
		if err := ls.Flush(id); err != nil {
			return fmt.Errorf("failed to flush game %s: %w", id, err)
		}
	}
	return nil
}

// snapshotLocked builds a feed snapshot from the stored game. The
// caller must hold the game's mutex.
func (ls *LocalService) snapshotLocked(g *storedGame) *GameSnapshot {
	state := DeriveState(g.Events)
	snap := &GameSnapshot{
		Summary: GameSummary{
			GameID:   g.ID,
			Status:   g.Status,
			Inning:   state.Inning,
			Half:     state.Half,
			AwayRuns: state.AwayRuns,
			HomeRuns: state.HomeRuns,
		},
		Events: append([]GameEvent(nil), g.Events...),
	}
	if away := g.Lineups[g.AwayTeamID]; away != nil {
		snap.Away = away.clone()
	}
	if home := g.Lineups[g.HomeTeamID]; home != nil {
		snap.Home = home.clone()
	}
	return snap
}

// Snapshot implements LogService.
func (ls *LocalService) Snapshot(ctx context.Context, gameID string) (*GameSnapshot, error) {
	mutex := ls.lock(gameID)
	mutex.RLock()
	defer mutex.RUnlock()

	g, err := ls.loadLocked(gameID)
	if err != nil {
		return nil, err
	}
	return ls.snapshotLocked(g), nil
}

// CommitPlay implements LogService. The service assigns the sequence
// number and, when missing, the event ID; consensus starts pending.
func (ls *LocalService) CommitPlay(ctx context.Context, gameID string, ev GameEvent) error {
	mutex := ls.lock(gameID)
	mutex.Lock()

	g, err := ls.loadLocked(gameID)
	if err != nil {
		mutex.Unlock()
		return err
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	ev.GameID = gameID
	ev.Deleted = false
	ev.Consensus = ConsensusPending
	if err := ValidateEvent(&ev); err != nil {
		mutex.Unlock()
		return &RejectionError{Reason: err.Error()}
	}
	ev.Sequence = g.NextSequence
	g.NextSequence++
	g.Events = append(g.Events, ev)
	snap := ls.snapshotLocked(g)
	mutex.Unlock()

	ls.markDirty(gameID)
	ls.broadcast(gameID, snap)
	return nil
}

// UndoLastPlay implements LogService: soft-deletes the most recent
// active event. Sequence numbers are never reassigned.
func (ls *LocalService) UndoLastPlay(ctx context.Context, gameID string) error {
	mutex := ls.lock(gameID)
	mutex.Lock()

	g, err := ls.loadLocked(gameID)
	if err != nil {
		mutex.Unlock()
		return err
	}
	last, err := LastActive(g.Events)
	if err != nil {
		mutex.Unlock()
		return &RejectionError{Reason: err.Error()}
	}
	for i := range g.Events {
		if g.Events[i].ID == last.ID {
			g.Events[i].Deleted = true
		}
	}
	snap := ls.snapshotLocked(g)
	mutex.Unlock()

	ls.markDirty(gameID)
	ls.broadcast(gameID, snap)
	return nil
}

// Substitute implements LogService: the outgoing player exits and the
// incoming player occupies the outgoing player's batting slot at the
// given position.
func (ls *LocalService) Substitute(ctx context.Context, gameID, teamID, outgoingID, incomingID string, fieldingPosition, inning int) error {
	if outgoingID == incomingID {
		return &RejectionError{Reason: "player cannot replace themselves"}
	}
	return ls.mutateLineup(gameID, teamID, func(l *Lineup) error {
		out := l.Entry(outgoingID)
		if out == nil || !out.Active() || out.BattingOrder == 0 {
			return fmt.Errorf("outgoing player %s is not an active starter", outgoingID)
		}
		in := l.Entry(incomingID)
		if in == nil {
			return fmt.Errorf("incoming player %s is not on the roster", incomingID)
		}
		if !in.Active() && in.Reentered {
			return fmt.Errorf("player %s already used re-entry", incomingID)
		}

		if !in.Active() {
			in.Reentered = true
		}
		prevOrder := 0
		if in.Active() {
			prevOrder = in.BattingOrder
		}
		out.ExitedInning = inning
		in.BattingOrder = out.BattingOrder
		in.FieldingPosition = fieldingPosition
		in.ExitedInning = 0
		if prevOrder == 0 {
			in.EnteredInning = inning
		}
		return nil
	})
}

// SwapFieldingPositions implements LogService.
func (ls *LocalService) SwapFieldingPositions(ctx context.Context, gameID, teamID, playerA, playerB string) error {
	return ls.mutateLineup(gameID, teamID, func(l *Lineup) error {
		a := l.Entry(playerA)
		b := l.Entry(playerB)
		if a == nil || b == nil || !a.Active() || !b.Active() {
			return fmt.Errorf("both players must be active to swap positions")
		}
		a.FieldingPosition, b.FieldingPosition = b.FieldingPosition, a.FieldingPosition
		return nil
	})
}

// FillVacantPosition implements LogService.
func (ls *LocalService) FillVacantPosition(ctx context.Context, gameID, teamID, playerID string, battingOrder, fieldingPosition, inning int) error {
	return ls.mutateLineup(gameID, teamID, func(l *Lineup) error {
		if occupant := l.AtOrder(battingOrder); occupant != nil {
			return fmt.Errorf("batting slot %d is not vacant", battingOrder)
		}
		e := l.Entry(playerID)
		if e == nil {
			return fmt.Errorf("player %s is not on the roster", playerID)
		}
		if !e.Active() {
			if e.Reentered {
				return fmt.Errorf("player %s already used re-entry", playerID)
			}
			e.Reentered = true
		}
		e.BattingOrder = battingOrder
		e.FieldingPosition = fieldingPosition
		e.EnteredInning = inning
		e.ExitedInning = 0
		return nil
	})
}

func (ls *LocalService) mutateLineup(gameID, teamID string, fn func(*Lineup) error) error {
	mutex := ls.lock(gameID)
	mutex.Lock()

	g, err := ls.loadLocked(gameID)
	if err != nil {
		mutex.Unlock()
		return err
	}
	l, ok := g.Lineups[teamID]
	if !ok {
		mutex.Unlock()
		return &RejectionError{Reason: fmt.Sprintf("team %s is not in game %s", teamID, gameID)}
	}
	if err := fn(l); err != nil {
		mutex.Unlock()
		return &RejectionError{Reason: err.Error()}
	}
	snap := ls.snapshotLocked(g)
	mutex.Unlock()

	ls.markDirty(gameID)
	ls.broadcast(gameID, snap)
	return nil
}

// Subscribe implements LogService.
func (ls *LocalService) Subscribe(gameID string) (<-chan *GameSnapshot, func()) {
	ch := make(chan *GameSnapshot, 8)
	ls.subMu.Lock()
	ls.subs[gameID] = append(ls.subs[gameID], ch)
	ls.subMu.Unlock()

	cancel := func() {
		ls.subMu.Lock()
		defer ls.subMu.Unlock()
		subs := ls.subs[gameID]
		for i, c := range subs {
			if c == ch {
				ls.subs[gameID] = append(subs[:i], subs[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

func (ls *LocalService) broadcast(gameID string, snap *GameSnapshot) {
	ls.subMu.Lock()
	defer ls.subMu.Unlock()
	for _, ch := range ls.subs[gameID] {
		select {
		case ch <- snap:
		default:
			// A slow consumer re-derives from the next snapshot.
			log.Printf("Warning: subscriber channel full, dropping update for game %s", gameID)
		}
	}
}
