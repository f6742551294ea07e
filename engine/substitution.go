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

// SubStep is the workflow's current state.
type SubStep string

const (
	StepSelect      SubStep = "select"
	StepPitcherDest SubStep = "pitcher_dest"
	StepFillVacancy SubStep = "fill_vacancy"
	StepDone        SubStep = "done"
)

var (
	ErrNoCandidates  = errors.New("no eligible substitution candidates")
	ErrWrongStep     = errors.New("operation not valid in current workflow step")
	ErrNotEligible   = errors.New("player is not an eligible candidate")
	ErrCannotAbandon = errors.New("workflow already executed a substitution")
)

// SubWorkflow drives one substitution through its steps:
// select -> (pitcher_dest) -> (fill_vacancy) -> done.
//
// The workflow operates on its own copy of the lineup, applying each
// confirmed mutation after the corresponding log-service call succeeds.
// The authoritative lineup still arrives through the next snapshot.
type SubWorkflow struct {
	svc    LogService
	gameID string
	kind   SubKind
	inning int

	// allowReentry permits previously exited players to return; a
	// player may re-enter once, after which their exit is terminal.
	allowReentry bool

	lineup   *Lineup
	outgoing LineupEntry
	step     SubStep

	// pendingIncoming holds the fielding starter chosen to become
	// pitcher while the pitcher_dest decision is open.
	pendingIncoming LineupEntry

	// vacancy is set if and only if step is fill_vacancy.
	vacancy *Vacancy
}

// NewSubWorkflow validates the outgoing player and the candidate pool
// and opens the workflow at the select step. No remote call is made.
func NewSubWorkflow(svc LogService, gameID string, lineup *Lineup, kind SubKind, outgoingID string, inning int, allowReentry bool) (*SubWorkflow, error) {
	entry := lineup.Entry(outgoingID)
	if entry == nil || !entry.Active() || entry.BattingOrder == 0 {
		return nil, fmt.Errorf("outgoing player %s is not an active starter", outgoingID)
	}
	if kind == SubPitcherChange && entry.FieldingPosition != PosPitcher {
		return nil, fmt.Errorf("outgoing player %s is not the pitcher", outgoingID)
	}
	w := &SubWorkflow{
		svc:          svc,
		gameID:       gameID,
		kind:         kind,
		inning:       inning,
		allowReentry: allowReentry,
		lineup:       lineup.clone(),
		outgoing:     *entry,
		step:         StepSelect,
	}
	if len(w.Candidates()) == 0 {
		return nil, ErrNoCandidates
	}
	return w, nil
}

// Step returns the workflow's current state.
func (w *SubWorkflow) Step() SubStep { return w.step }

// Vacancy returns the slot awaiting the fill_vacancy decision, or nil.
func (w *SubWorkflow) Vacancy() *Vacancy { return w.vacancy }

// Lineup returns the workflow's working copy of the lineup.
func (w *SubWorkflow) Lineup() *Lineup { return w.lineup }

// reentryPool returns exited players still eligible to return.
func (w *SubWorkflow) reentryPool() []LineupEntry {
	if !w.allowReentry {
		return nil
	}
	var out []LineupEntry
	for _, e := range w.lineup.Exited() {
		if !e.Reentered {
			out = append(out, e)
		}
	}
	return out
}

// Candidates returns the eligible incoming players for the select step:
// the bench, the remaining lineup starters, and (re-entry permitting)
// previously exited players.
func (w *SubWorkflow) Candidates() []LineupEntry {
	var out []LineupEntry
	out = append(out, w.lineup.Bench()...)
	for _, e := range w.lineup.ActiveStarters() {
		if e.PlayerID != w.outgoing.PlayerID {
			out = append(out, e)
		}
	}
	out = append(out, w.reentryPool()...)
	return out
}

// VacancyCandidates returns the players the vacated slot may be offered
// to: the bench and the re-entry pool, including anyone who exited
// earlier within this same workflow.
func (w *SubWorkflow) VacancyCandidates() []LineupEntry {
	var out []LineupEntry
	out = append(out, w.lineup.Bench()...)
	out = append(out, w.reentryPool()...)
	return out
}

func (w *SubWorkflow) isCandidate(playerID string) bool {
	for _, e := range w.Candidates() {
		if e.PlayerID == playerID {
			return true
		}
	}
	return false
}

// Select chooses the incoming player. pos is the target fielding
// position; it is forced to pitcher for a pitching change. Choosing a
// fielding starter for a pitching change defers execution and moves to
// the pitcher_dest step; every other choice executes the substitution
// immediately.
func (w *SubWorkflow) Select(ctx context.Context, incomingID string, pos int) error {
	if w.step != StepSelect {
		return ErrWrongStep
	}
	if !w.isCandidate(incomingID) {
		return ErrNotEligible
	}
	incoming := w.lineup.Entry(incomingID)

	if w.kind == SubPitcherChange {
		pos = PosPitcher
		if incoming.Active() && incoming.BattingOrder > 0 {
			w.pendingIncoming = *incoming
			w.step = StepPitcherDest
			return nil
		}
	}
	return w.execute(ctx, incomingID, pos)
}

// ChoosePitcherDest resolves a pitching change that pulled a fielding
// starter onto the mound. swap keeps the outgoing pitcher in the game
// at the incoming player's old position; otherwise the old pitcher is
// benched and the vacated position must be offered.
func (w *SubWorkflow) ChoosePitcherDest(ctx context.Context, swap bool) error {
	if w.step != StepPitcherDest {
		return ErrWrongStep
	}
	if swap {
		if err := w.svc.SwapFieldingPositions(ctx, w.gameID, w.lineup.TeamID, w.outgoing.PlayerID, w.pendingIncoming.PlayerID); err != nil {
			return err
		}
		a := w.lineup.Entry(w.outgoing.PlayerID)
		b := w.lineup.Entry(w.pendingIncoming.PlayerID)
		a.FieldingPosition, b.FieldingPosition = b.FieldingPosition, a.FieldingPosition
		w.step = StepDone
		return nil
	}
	return w.execute(ctx, w.pendingIncoming.PlayerID, PosPitcher)
}

// execute performs the exit+occupy substitution through the log
// service, applies it to the working lineup, and decides whether a
// vacancy remains to be filled.
func (w *SubWorkflow) execute(ctx context.Context, incomingID string, pos int) error {
	if err := w.svc.Substitute(ctx, w.gameID, w.lineup.TeamID, w.outgoing.PlayerID, incomingID, pos, w.inning); err != nil {
		return err
	}

	incoming := w.lineup.Entry(incomingID)
	prevOrder := 0
	prevPos := 0
	if incoming.Active() {
		prevOrder = incoming.BattingOrder
		prevPos = incoming.FieldingPosition
	} else {
		incoming.Reentered = true
	}

	out := w.lineup.Entry(w.outgoing.PlayerID)
	out.ExitedInning = w.inning

	incoming.BattingOrder = out.BattingOrder
	incoming.FieldingPosition = pos
	incoming.ExitedInning = 0
	if incoming.EnteredInning == 0 || prevOrder == 0 {
		incoming.EnteredInning = w.inning
	}

	// A starter pulled from elsewhere in the lineup frees exactly one
	// prior slot.
	if prevOrder > 0 && prevOrder != out.BattingOrder {
		w.vacancy = &Vacancy{BattingOrder: prevOrder, FieldingPosition: prevPos}
		w.step = StepFillVacancy
		return nil
	}
	w.step = StepDone
	return nil
}

// FillVacancy assigns a player to the vacated slot.
func (w *SubWorkflow) FillVacancy(ctx context.Context, playerID string) error {
	if w.step != StepFillVacancy {
		return ErrWrongStep
	}
	eligible := false
	for _, e := range w.VacancyCandidates() {
		if e.PlayerID == playerID {
			eligible = true
			break
		}
	}
	if !eligible {
		return ErrNotEligible
	}
	if err := w.svc.FillVacantPosition(ctx, w.gameID, w.lineup.TeamID, playerID, w.vacancy.BattingOrder, w.vacancy.FieldingPosition, w.inning); err != nil {
		return err
	}
	e := w.lineup.Entry(playerID)
	if !e.Active() {
		e.Reentered = true
	}
	e.BattingOrder = w.vacancy.BattingOrder
	e.FieldingPosition = w.vacancy.FieldingPosition
	e.EnteredInning = w.inning
	e.ExitedInning = 0
	w.vacancy = nil
	w.step = StepDone
	return nil
}

// SkipVacancy leaves the vacated slot empty and completes the workflow.
func (w *SubWorkflow) SkipVacancy() error {
	if w.step != StepFillVacancy {
		return ErrWrongStep
	}
	w.vacancy = nil
	w.step = StepDone
	return nil
}

// Abandon discards the workflow. It is only permitted before the first
// substitution call has executed; after that only a further
// substitution or an undo of the event stream can reverse it.
func (w *SubWorkflow) Abandon() error {
	switch w.step {
	case StepSelect, StepPitcherDest:
		w.step = StepDone
		return nil
	}
	return ErrCannotAbandon
}
