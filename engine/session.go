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
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultCommitDelay is the auto-commit countdown for a staged play.
	DefaultCommitDelay = 5 * time.Second

	// DefaultRefreshInterval is the background re-derivation period
	// that covers missed push notifications.
	DefaultRefreshInterval = 30 * time.Second
)

var (
	ErrNoStagedPlay  = errors.New("no play is staged")
	ErrPlayStaged    = errors.New("a staged play is pending")
	ErrSessionClosed = errors.New("session closed")
	ErrNoLineup      = errors.New("lineup not available")
)

// SessionOptions tunes a scoring session.
type SessionOptions struct {
	CommitDelay     time.Duration
	RefreshInterval time.Duration
}

// sessionRequest is one operation executed on the session goroutine.
type sessionRequest struct {
	fn    func() error
	reply chan error
}

// Session is the single-threaded scoring actor for one game. All state
// lives on the run goroutine; public methods post requests to it. The
// only concurrent actors are the remote log service and its push feed.
type Session struct {
	svc    LogService
	gameID string
	opts   SessionOptions

	requests  chan sessionRequest
	updates   <-chan *GameSnapshot
	cancelSub func()
	done      chan struct{}
	closeOnce sync.Once

	// Owned by the run goroutine.
	snap   *GameSnapshot
	state  DerivedState
	count  CountTracker
	staged *StagedPlay

	// stageToken invalidates scheduled auto-commits: every adjustment
	// bumps it, so a countdown that fired for an older token is stale.
	stageToken  uint64
	commitTimer *time.Timer

	// runnerOverrides lets a pinch runner be shown atop inherited base
	// occupancy; reset whenever the active-event count changes.
	runnerOverrides map[Base]string
}

// NewSession loads the game from the log service, subscribes to its
// push feed and starts the session goroutine.
func NewSession(ctx context.Context, svc LogService, gameID string, opts SessionOptions) (*Session, error) {
	if opts.CommitDelay <= 0 {
		opts.CommitDelay = DefaultCommitDelay
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	snap, err := svc.Snapshot(ctx, gameID)
	if err != nil {
		return nil, err
	}
	updates, cancel := svc.Subscribe(gameID)
	s := &Session{
		svc:             svc,
		gameID:          gameID,
		opts:            opts,
		requests:        make(chan sessionRequest, 16),
		updates:         updates,
		cancelSub:       cancel,
		done:            make(chan struct{}),
		runnerOverrides: make(map[Base]string),
	}
	s.applySnapshot(snap)
	go s.run()
	return s, nil
}

// Close stops the session goroutine and releases the subscription.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.cancelSub()
	})
}

func (s *Session) run() {
	refresh := time.NewTicker(s.opts.RefreshInterval)
	defer refresh.Stop()

	for {
		select {
		case req := <-s.requests:
			err := req.fn()
			if req.reply != nil {
				req.reply <- err
			}
		case snap, ok := <-s.updates:
			if !ok {
				// A closed feed channel stays ready in select; disable
				// the arm and let the refresh ticker carry the session.
				s.updates = nil
				continue
			}
			if snap != nil {
				s.applySnapshot(snap)
			}
		case <-refresh.C:
			// Tolerates missed push notifications. Skipped while a
			// play is staged so a pull cannot race the countdown.
			if s.staged == nil {
				s.pullSnapshot()
			}
		case <-s.done:
			s.stopTimer()
			return
		}
	}
}

// do runs fn on the session goroutine and waits for the result.
func (s *Session) do(fn func() error) error {
	reply := make(chan error, 1)
	select {
	case s.requests <- sessionRequest{fn: fn, reply: reply}:
	case <-s.done:
		return ErrSessionClosed
	}
	select {
	case err := <-reply:
		return err
	case <-s.done:
		return ErrSessionClosed
	}
}

// post runs fn on the session goroutine without waiting.
func (s *Session) post(fn func() error) {
	select {
	case s.requests <- sessionRequest{fn: fn}:
	case <-s.done:
	}
}

func (s *Session) pullSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	snap, err := s.svc.Snapshot(ctx, s.gameID)
	if err != nil {
		log.Printf("Session %s: background refresh failed: %v", s.gameID, err)
		return
	}
	s.applySnapshot(snap)
}

func (s *Session) applySnapshot(snap *GameSnapshot) {
	prev := s.state.ActiveCount
	s.snap = snap
	s.state = DeriveState(snap.Events)
	if s.state.ActiveCount != prev {
		// Stale cosmetic overrides must not survive a commit or undo.
		s.runnerOverrides = make(map[Base]string)
	}
}

// State returns the current derived game state.
func (s *Session) State() DerivedState {
	var state DerivedState
	s.do(func() error {
		state = s.state
		return nil
	})
	return state
}

// Snapshot returns the last authoritative snapshot.
func (s *Session) Snapshot() *GameSnapshot {
	var snap *GameSnapshot
	s.do(func() error {
		snap = s.snap
		return nil
	})
	return snap
}

// Staged returns an independent copy of the staged play, or nil.
// Mutating the copy never touches the session-owned play.
func (s *Session) Staged() *StagedPlay {
	var staged *StagedPlay
	s.do(func() error {
		if s.staged != nil {
			staged = s.staged.clone()
		}
		return nil
	})
	return staged
}

// Count returns the visible ball-strike count.
func (s *Session) Count() (balls, strikes int) {
	s.do(func() error {
		balls, strikes = s.count.Balls(), s.count.Strikes()
		return nil
	})
	return balls, strikes
}

// battingContext resolves the next event's context plus the due batter
// and the opposing pitcher from the lineup snapshots.
func (s *Session) battingContext() (inning int, half InningHalf, outs int, runners BaseRunners, batter, pitcher string) {
	inning, half, outs, runners = NextContext(s.state)
	batting := s.snap.BattingLineup(half)
	fielding := s.snap.BattingLineup(otherHalf(half))
	if batting != nil {
		idx := batterIndexAt(s.snap.Events, inning, half, len(batting.ActiveStarters()))
		if b := batting.Batter(idx); b != nil {
			batter = b.PlayerID
		}
	}
	if fielding != nil {
		if p := fielding.Pitcher(); p != nil {
			pitcher = p.PlayerID
		}
	}
	return
}

func otherHalf(h InningHalf) InningHalf {
	if h == HalfTop {
		return HalfBottom
	}
	return HalfTop
}

// Pitch records a ball, strike or foul for the active at-bat. When the
// count crosses a threshold the resolved outcome commits immediately
// with the at-bat's pitch metadata.
func (s *Session) Pitch(code string) error {
	return s.do(func() error {
		if s.staged != nil {
			return ErrPlayStaged
		}
		var outcome Outcome
		var resolved bool
		switch code {
		case PitchBall:
			outcome, resolved = s.count.Ball()
		case PitchCalledStrike:
			outcome, resolved = s.count.Strike(false)
		case PitchSwingingStrike:
			outcome, resolved = s.count.Strike(true)
		case PitchFoul:
			s.count.Foul()
		default:
			return errors.New("unknown pitch code: " + code)
		}
		if !resolved {
			return nil
		}
		inning, half, outs, runners, batter, pitcher := s.battingContext()
		play := NewStagedPlay(outcome, batter, pitcher, inning, half, outs, runners, 0)
		return s.commitPlay(play)
	})
}

// SelectOutcome stages a play outcome. Unambiguous outcomes commit
// immediately; the rest start the auto-commit countdown.
func (s *Session) SelectOutcome(outcome Outcome, hitZone int) error {
	return s.do(func() error {
		if s.staged != nil {
			return ErrPlayStaged
		}
		inning, half, outs, runners, batter, pitcher := s.battingContext()
		if outcome.IsBaserunning() {
			batter = ""
		}
		play := NewStagedPlay(outcome, batter, pitcher, inning, half, outs, runners, hitZone)
		if play.AutoCommits() {
			return s.commitPlay(play)
		}
		s.staged = play
		s.resetCountdown()
		return nil
	})
}

// adjust mutates the staged play and restarts the countdown at its full
// duration.
func (s *Session) adjust(fn func(*StagedPlay) error) error {
	return s.do(func() error {
		if s.staged == nil {
			return ErrNoStagedPlay
		}
		if err := fn(s.staged); err != nil {
			return err
		}
		s.resetCountdown()
		return nil
	})
}

// AdjustRuns applies a run delta to the staged play.
func (s *Session) AdjustRuns(delta int) error {
	return s.adjust(func(p *StagedPlay) error {
		p.AdjustRuns(delta)
		return nil
	})
}

// AdjustOuts applies an out delta to the staged play.
func (s *Session) AdjustOuts(delta int) error {
	return s.adjust(func(p *StagedPlay) error {
		p.AdjustOuts(delta)
		return nil
	})
}

// MoveRunner sets a staged runner destination.
func (s *Session) MoveRunner(playerID string, dest Base) error {
	return s.adjust(func(p *StagedPlay) error {
		if !p.MoveRunner(playerID, dest) {
			return errors.New("invalid runner destination")
		}
		return nil
	})
}

// SetDoublePlayVictim re-runs the calculator with an explicit victim.
func (s *Session) SetDoublePlayVictim(victim Base) error {
	return s.adjust(func(p *StagedPlay) error {
		p.SetDPVictim(victim)
		return nil
	})
}

// SetFieldingSequence annotates the staged play, e.g. "6-4-3".
func (s *Session) SetFieldingSequence(seq string) error {
	return s.adjust(func(p *StagedPlay) error {
		p.FieldingSequence = seq
		return nil
	})
}

// SetNote attaches free text to the staged play.
func (s *Session) SetNote(note string) error {
	return s.adjust(func(p *StagedPlay) error {
		p.Note = note
		return nil
	})
}

// Commit commits the staged play now.
func (s *Session) Commit() error {
	return s.do(func() error {
		if s.staged == nil {
			return ErrNoStagedPlay
		}
		return s.commitPlay(s.staged)
	})
}

// Cancel discards the staged play and clears the countdown. It has no
// other side effects.
func (s *Session) Cancel() error {
	return s.do(func() error {
		if s.staged == nil {
			return ErrNoStagedPlay
		}
		s.staged = nil
		s.stopTimer()
		return nil
	})
}

// resetCountdown restarts the auto-commit countdown at its full
// duration and invalidates any previously scheduled commit.
func (s *Session) resetCountdown() {
	s.stageToken++
	token := s.stageToken
	s.stopTimer()
	s.commitTimer = time.AfterFunc(s.opts.CommitDelay, func() {
		s.post(func() error {
			if s.staged == nil || token != s.stageToken {
				return nil
			}
			if err := s.commitPlay(s.staged); err != nil {
				log.Printf("Session %s: auto-commit failed: %v", s.gameID, err)
			}
			return nil
		})
	})
}

func (s *Session) stopTimer() {
	if s.commitTimer != nil {
		s.commitTimer.Stop()
		s.commitTimer = nil
	}
}

// commitPlay runs the synchronous commit round trip. On success the
// staged play and count are cleared and state is re-derived from the
// authoritative log; on failure staged state is left untouched so the
// operator can retry or abandon.
func (s *Session) commitPlay(play *StagedPlay) error {
	ev := play.Event(s.gameID, s.count.Balls(), s.count.Strikes(), s.count.Sequence())
	ev.ID = uuid.NewString()
	if err := ValidateEvent(&ev); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.svc.CommitPlay(ctx, s.gameID, ev); err != nil {
		return err
	}

	s.staged = nil
	s.stopTimer()
	s.stageToken++
	if play.Outcome.EndsAtBat() {
		s.count.Reset()
	}
	s.pullSnapshot()
	return nil
}

// Undo soft-deletes the most recent active play. Attempting to undo
// with no active events is rejected locally.
func (s *Session) Undo() error {
	return s.do(func() error {
		if s.state.ActiveCount == 0 {
			return ErrNoActiveEvents
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.svc.UndoLastPlay(ctx, s.gameID); err != nil {
			return err
		}
		s.pullSnapshot()
		return nil
	})
}

// SetRunnerOverride records a cosmetic pinch-runner display atop the
// inherited base occupancy. Overrides reset on the next log change.
func (s *Session) SetRunnerOverride(base Base, playerID string) error {
	return s.do(func() error {
		if base < First || base > Third {
			return errors.New("invalid base")
		}
		s.runnerOverrides[base] = playerID
		return nil
	})
}

// RunnerOverrides returns the current cosmetic overrides.
func (s *Session) RunnerOverrides() map[Base]string {
	out := make(map[Base]string)
	s.do(func() error {
		for b, id := range s.runnerOverrides {
			out[b] = id
		}
		return nil
	})
	return out
}

// BeginSubstitution opens a substitution workflow for a team using the
// latest lineup snapshot.
func (s *Session) BeginSubstitution(kind SubKind, teamID, outgoingID string, allowReentry bool) (*SubWorkflow, error) {
	var w *SubWorkflow
	err := s.do(func() error {
		lineup := s.lineupFor(teamID)
		if lineup == nil {
			return ErrNoLineup
		}
		inning, _, _, _ := NextContext(s.state)
		var err error
		w, err = NewSubWorkflow(s.svc, s.gameID, lineup, kind, outgoingID, inning, allowReentry)
		return err
	})
	return w, err
}

func (s *Session) lineupFor(teamID string) *Lineup {
	if s.snap == nil {
		return nil
	}
	if s.snap.Away != nil && s.snap.Away.TeamID == teamID {
		return s.snap.Away
	}
	if s.snap.Home != nil && s.snap.Home.TeamID == teamID {
		return s.snap.Home
	}
	return nil
}
