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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WebSocket message types shared with the log service.
const (
	MsgTypeJoin       = "JOIN"
	MsgTypeAction     = "ACTION"
	MsgTypeSyncUpdate = "SYNC_UPDATE"
	MsgTypeError      = "ERROR"
)

// Action types accepted by the log service's action endpoint.
const (
	ActionPlayResult   = "PLAY_RESULT"
	ActionUndo         = "UNDO"
	ActionSubstitution = "SUBSTITUTION"
	ActionPositionSwap = "POSITION_SWAP"
	ActionFillVacancy  = "FILL_VACANCY"
)

const (
	remotePongWait   = 60 * time.Second
	remotePingPeriod = (remotePongWait * 9) / 10
)

// wsMessage is one frame of the push feed.
type wsMessage struct {
	Type     string          `json:"type"`
	GameID   string          `json:"gameId,omitempty"`
	Snapshot *GameSnapshot   `json:"snapshot,omitempty"`
	Action   json.RawMessage `json:"action,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// logAction is the action envelope the service's log endpoint accepts.
type logAction struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp int64       `json:"timestamp"`
}

// RemoteOptions configures a RemoteService client.
type RemoteOptions struct {
	// BaseURL is the service root, e.g. "https://score.example.com".
	BaseURL string

	// AuthToken is the bearer JWT, sent as the auth cookie.
	AuthToken string

	// CookieName overrides the auth cookie name.
	CookieName string

	HTTPClient *http.Client
}

// RemoteService is the LogService client for a remote deployment. All
// mutations are synchronous HTTP round trips to the action endpoint;
// the push feed arrives over a websocket per subscribed game.
type RemoteService struct {
	opts   RemoteOptions
	client *http.Client
}

// NewRemoteService creates a remote log-service client.
func NewRemoteService(opts RemoteOptions) *RemoteService {
	if opts.CookieName == "" {
		opts.CookieName = "skorekeeper_auth"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &RemoteService{opts: opts, client: client}
}

// checkToken rejects requests carrying an expired credential before any
// network round trip. The service verifies the signature; the client
// only honors exp locally.
func (rs *RemoteService) checkToken() error {
	if rs.opts.AuthToken == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rs.opts.AuthToken, claims); err != nil {
		return fmt.Errorf("malformed auth token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("auth token: %w", err)
	}
	if exp != nil && exp.Before(time.Now()) {
		return fmt.Errorf("auth token expired at %s", exp.Time.Format(time.RFC3339))
	}
	return nil
}

func (rs *RemoteService) addAuth(h http.Header) {
	if rs.opts.AuthToken != "" {
		h.Add("Cookie", rs.opts.CookieName+"="+rs.opts.AuthToken)
	}
}

// postAction sends one action to the log endpoint. A non-2xx response
// is surfaced verbatim as a RejectionError and never retried.
func (rs *RemoteService) postAction(ctx context.Context, gameID, actionType string, payload interface{}) error {
	if err := rs.checkToken(); err != nil {
		return err
	}
	action := logAction{
		ID:        uuid.NewString(),
		Type:      actionType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
	body, err := json.Marshal(action)
	if err != nil {
		return err
	}
	u := fmt.Sprintf("%s/api/games/%s/action", strings.TrimRight(rs.opts.BaseURL, "/"), url.PathEscape(gameID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	rs.addAuth(req.Header)

	resp, err := rs.client.Do(req)
	if err != nil {
		return fmt.Errorf("log service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrGameNotFound
	}
	var e struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(data, &e) == nil && e.Error != "" {
		return &RejectionError{Reason: e.Error}
	}
	return &RejectionError{Reason: fmt.Sprintf("status %d", resp.StatusCode)}
}

// Snapshot implements LogService.
func (rs *RemoteService) Snapshot(ctx context.Context, gameID string) (*GameSnapshot, error) {
	if err := rs.checkToken(); err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/api/games/%s/state", strings.TrimRight(rs.opts.BaseURL, "/"), url.PathEscape(gameID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	rs.addAuth(req.Header)

	resp, err := rs.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("log service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrGameNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &RejectionError{Reason: fmt.Sprintf("status %d", resp.StatusCode)}
	}
	var snap GameSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	return &snap, nil
}

// CommitPlay implements LogService.
func (rs *RemoteService) CommitPlay(ctx context.Context, gameID string, ev GameEvent) error {
	ev.GameID = gameID
	return rs.postAction(ctx, gameID, ActionPlayResult, ev)
}

// UndoLastPlay implements LogService.
func (rs *RemoteService) UndoLastPlay(ctx context.Context, gameID string) error {
	return rs.postAction(ctx, gameID, ActionUndo, struct{}{})
}

// Substitute implements LogService.
func (rs *RemoteService) Substitute(ctx context.Context, gameID, teamID, outgoingID, incomingID string, fieldingPosition, inning int) error {
	return rs.postAction(ctx, gameID, ActionSubstitution, map[string]interface{}{
		"teamId":           teamID,
		"outgoingPlayerId": outgoingID,
		"incomingPlayerId": incomingID,
		"fieldingPosition": fieldingPosition,
		"inning":           inning,
	})
}

// SwapFieldingPositions implements LogService.
func (rs *RemoteService) SwapFieldingPositions(ctx context.Context, gameID, teamID, playerA, playerB string) error {
	return rs.postAction(ctx, gameID, ActionPositionSwap, map[string]interface{}{
		"teamId":  teamID,
		"playerA": playerA,
		"playerB": playerB,
	})
}

// FillVacantPosition implements LogService.
func (rs *RemoteService) FillVacantPosition(ctx context.Context, gameID, teamID, playerID string, battingOrder, fieldingPosition, inning int) error {
	return rs.postAction(ctx, gameID, ActionFillVacancy, map[string]interface{}{
		"teamId":           teamID,
		"playerId":         playerID,
		"battingOrder":     battingOrder,
		"fieldingPosition": fieldingPosition,
		"inning":           inning,
	})
}

// Subscribe implements LogService: it dials the push feed, joins the
// game and forwards SYNC_UPDATE snapshots. An ACTION frame without an
// embedded snapshot triggers a pull. The channel closes when the feed
// drops; the session's background refresh covers the gap.
func (rs *RemoteService) Subscribe(gameID string) (<-chan *GameSnapshot, func()) {
	ch := make(chan *GameSnapshot, 8)
	done := make(chan struct{})

	wsURL, err := url.Parse(strings.TrimRight(rs.opts.BaseURL, "/") + "/api/ws")
	if err == nil {
		switch wsURL.Scheme {
		case "https":
			wsURL.Scheme = "wss"
		default:
			wsURL.Scheme = "ws"
		}
		q := wsURL.Query()
		q.Set("gameId", gameID)
		wsURL.RawQuery = q.Encode()
	}
	if err != nil || rs.checkToken() != nil {
		close(ch)
		return ch, func() {}
	}

	header := http.Header{}
	rs.addAuth(header)

	go rs.feedLoop(gameID, wsURL.String(), header, ch, done)

	var once sync.Once
	cancel := func() {
		once.Do(func() { close(done) })
	}
	return ch, cancel
}

func (rs *RemoteService) feedLoop(gameID, wsURL string, header http.Header, ch chan *GameSnapshot, done chan struct{}) {
	defer close(ch)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		log.Printf("RemoteService: feed dial failed for game %s: %v", gameID, err)
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(wsMessage{Type: MsgTypeJoin, GameID: gameID}); err != nil {
		log.Printf("RemoteService: JOIN failed for game %s: %v", gameID, err)
		return
	}

	conn.SetReadDeadline(time.Now().Add(remotePongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(remotePongWait))
		return nil
	})

	// Ping keepalive and cancellation watcher.
	go func() {
		ticker := time.NewTicker(remotePingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			case <-done:
				conn.Close()
				return
			}
		}
	}()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			select {
			case <-done:
			default:
				log.Printf("RemoteService: feed closed for game %s: %v", gameID, err)
			}
			return
		}
		switch msg.Type {
		case MsgTypeSyncUpdate:
			if msg.Snapshot != nil {
				rs.deliver(ch, done, msg.Snapshot)
			}
		case MsgTypeAction:
			// Incremental event without a snapshot: pull the full state.
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			snap, err := rs.Snapshot(ctx, gameID)
			cancel()
			if err != nil {
				log.Printf("RemoteService: pull after ACTION failed for game %s: %v", gameID, err)
				continue
			}
			rs.deliver(ch, done, snap)
		case MsgTypeError:
			log.Printf("RemoteService: feed error for game %s: %s", gameID, msg.Error)
		}
	}
}

func (rs *RemoteService) deliver(ch chan *GameSnapshot, done chan struct{}, snap *GameSnapshot) {
	select {
	case ch <- snap:
	case <-done:
	default:
		// Drop on a full buffer; the background refresh catches up.
	}
}
