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
	"testing"
	"time"

	"github.com/c2FmZQ/storage"
)

func testEvent(batter string, outcome Outcome, snapEvents []GameEvent) GameEvent {
	state := DeriveState(snapEvents)
	inning, half, outs, runners := NextContext(state)
	res := ComputeOutcome(outs, runners, batter, outcome, 0, BaseNone)
	return GameEvent{
		Inning:        inning,
		Half:          half,
		BatterID:      batter,
		Outcome:       outcome,
		OutsBefore:    outs,
		OutsAfter:     res.Outs,
		RunsScored:    res.Runs,
		RunnersBefore: runners,
		RunnersAfter:  res.Runners,
	}
}

func TestLocalServiceAssignsSequenceAndIDs(t *testing.T) {
	ls, _ := newSubGame(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		snap, _ := ls.Snapshot(ctx, "g1")
		ev := testEvent("away-1", OutcomeSingle, snap.Events)
		if err := ls.CommitPlay(ctx, "g1", ev); err != nil {
			t.Fatalf("CommitPlay %d: %v", i, err)
		}
	}
	snap, _ := ls.Snapshot(ctx, "g1")
	if len(snap.Events) != 3 {
		t.Fatalf("got %d events, want 3", len(snap.Events))
	}
	for i, ev := range snap.Events {
		if ev.Sequence != i+1 {
			t.Errorf("event %d sequence = %d", i, ev.Sequence)
		}
		if !isValidUUID(ev.ID) {
			t.Errorf("event %d id = %q", i, ev.ID)
		}
		if ev.Consensus != ConsensusPending {
			t.Errorf("event %d consensus = %s", i, ev.Consensus)
		}
	}
}

func TestLocalServiceUndoSoftDeletes(t *testing.T) {
	ls, _ := newSubGame(t)
	ctx := context.Background()

	snap, _ := ls.Snapshot(ctx, "g1")
	if err := ls.CommitPlay(ctx, "g1", testEvent("away-1", OutcomeDouble, snap.Events)); err != nil {
		t.Fatalf("CommitPlay: %v", err)
	}
	if err := ls.UndoLastPlay(ctx, "g1"); err != nil {
		t.Fatalf("UndoLastPlay: %v", err)
	}
	snap, _ = ls.Snapshot(ctx, "g1")
	if len(snap.Events) != 1 || !snap.Events[0].Deleted {
		t.Fatalf("undo did not soft-delete: %+v", snap.Events)
	}

	// Undo with nothing active is a rejection, not a crash.
	err := ls.UndoLastPlay(ctx, "g1")
	var rej *RejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("second undo err = %v, want RejectionError", err)
	}

	// A new commit reuses no sequence number.
	snap, _ = ls.Snapshot(ctx, "g1")
	if err := ls.CommitPlay(ctx, "g1", testEvent("away-1", OutcomeSingle, snap.Events)); err != nil {
		t.Fatalf("CommitPlay after undo: %v", err)
	}
	snap, _ = ls.Snapshot(ctx, "g1")
	if snap.Events[1].Sequence != 2 {
		t.Errorf("sequence after undo = %d, want 2", snap.Events[1].Sequence)
	}
}

func TestLocalServiceRejectsInvalidEvent(t *testing.T) {
	ls, _ := newSubGame(t)
	ctx := context.Background()

	ev := GameEvent{Inning: 0, Half: "middle", Outcome: "home_run_derby"}
	err := ls.CommitPlay(ctx, "g1", ev)
	var rej *RejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("err = %v, want RejectionError", err)
	}
}

func TestLocalServicePersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	s := storage.New(dir, nil)

	ls := NewLocalService(dir, s)
	away := testLineup("away", 1)
	home := testLineup("home", 1)
	if err := ls.CreateGame("g1", "away", "home", away, home); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	ctx := context.Background()
	snap, _ := ls.Snapshot(ctx, "g1")
	if err := ls.CommitPlay(ctx, "g1", testEvent("away-1", OutcomeHomeRun, snap.Events)); err != nil {
		t.Fatalf("CommitPlay: %v", err)
	}
	if err := ls.FlushAll(); err != nil {
		t.Fatalf("FlushAll: %v", err)
	}

	ls2 := NewLocalService(dir, s)
	snap, err := ls2.Snapshot(ctx, "g1")
	if err != nil {
		t.Fatalf("Snapshot after reload: %v", err)
	}
	if len(snap.Events) != 1 || snap.Events[0].Outcome != OutcomeHomeRun {
		t.Errorf("reloaded events: %+v", snap.Events)
	}
	if snap.Summary.AwayRuns != 1 {
		t.Errorf("reloaded summary: %+v", snap.Summary)
	}
	if snap.Away == nil || snap.Away.Entry("away-1") == nil {
		t.Error("reloaded lineup missing")
	}
}

func TestLocalServiceUnknownGame(t *testing.T) {
	ls := NewLocalService(t.TempDir(), nil)
	if _, err := ls.Snapshot(context.Background(), "missing"); err != ErrGameNotFound {
		t.Errorf("err = %v, want ErrGameNotFound", err)
	}
}

func TestLocalServiceBroadcastsToSubscribers(t *testing.T) {
	ls, _ := newSubGame(t)
	ctx := context.Background()

	ch, cancel := ls.Subscribe("g1")
	defer cancel()

	snap, _ := ls.Snapshot(ctx, "g1")
	if err := ls.CommitPlay(ctx, "g1", testEvent("away-1", OutcomeWalk, snap.Events)); err != nil {
		t.Fatalf("CommitPlay: %v", err)
	}

	select {
	case update := <-ch:
		if len(update.Events) != 1 || update.Events[0].Outcome != OutcomeWalk {
			t.Errorf("pushed snapshot: %+v", update.Events)
		}
	case <-time.After(time.Second):
		t.Fatal("no push update received")
	}
}
