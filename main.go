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

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/c2FmZQ/storage"
	"github.com/c2FmZQ/storage/crypto"

	"github.com/Big-Ragu/Battersup-sub000/engine"
)

var (
	serverURL      = flag.String("server", "", "Base URL of the log service; empty runs against local storage")
	authToken      = flag.String("auth-token", "", "JWT credential for the log service")
	authCookieName = flag.String("auth-cookie-name", "skorekeeper_auth", "Name of the cookie carrying the JWT")
	gameID         = flag.String("game", "", "Game ID to score (REQUIRED)")
	dataDir        = flag.String("data-dir", "data", "Directory for local game data")
	commitDelay    = flag.Duration("commit-delay", engine.DefaultCommitDelay, "Countdown before a staged play auto-commits")
	refreshEvery   = flag.Duration("refresh", engine.DefaultRefreshInterval, "Background state refresh interval")
)

// main connects a scoring session to the configured log service and
// follows the game, printing the line score as updates arrive.
func main() {
	flag.Parse()

	if *gameID == "" {
		log.Fatal("--game is required")
	}

	var svc engine.LogService
	if *serverURL != "" {
		svc = engine.NewRemoteService(engine.RemoteOptions{
			BaseURL:    *serverURL,
			AuthToken:  *authToken,
			CookieName: *authCookieName,
		})
	} else {
		var masterKey crypto.MasterKey
		if passphrase := os.Getenv("SK_MASTER_KEY"); passphrase != "" {
			keyFile := filepath.Join(*dataDir, "master.key")
			os.MkdirAll(*dataDir, 0755)

			var err error
			masterKey, err = crypto.ReadMasterKey([]byte(passphrase), keyFile)
			if err != nil {
				if os.IsNotExist(err) {
					log.Println("Initializing new master encryption key...")
					masterKey, err = crypto.CreateMasterKey()
					if err != nil {
						log.Fatalf("Failed to create master key: %v", err)
					}
					if err := masterKey.Save([]byte(passphrase), keyFile); err != nil {
						log.Fatalf("Failed to save master key: %v", err)
					}
				} else {
					log.Fatalf("Failed to read master key: %v", err)
				}
			}
		} else {
			log.Println("Warning: No SK_MASTER_KEY provided. Data will be stored UNENCRYPTED.")
		}
		store := storage.New(*dataDir, masterKey)
		store.EnableCompression(true)
		local := engine.NewLocalService(*dataDir, store)
		defer func() {
			if err := local.FlushAll(); err != nil {
				log.Printf("Flush error: %v", err)
			}
		}()
		svc = local
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	session, err := engine.NewSession(ctx, svc, *gameID, engine.SessionOptions{
		CommitDelay:     *commitDelay,
		RefreshInterval: *refreshEvery,
	})
	cancel()
	if err != nil {
		log.Fatalf("Failed to open game %s: %v", *gameID, err)
	}
	defer session.Close()

	// Follow the push feed on a second subscription so the session's
	// own consumption of updates is undisturbed.
	feed, cancelFeed := svc.Subscribe(*gameID)
	defer cancelFeed()

	printState(session.Snapshot())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case snap, ok := <-feed:
			if !ok {
				log.Println("Push feed closed; relying on periodic refresh.")
				feed = nil
				continue
			}
			printState(snap)
		case <-stop:
			log.Println("Shutting down...")
			return
		}
	}
}

func printState(snap *engine.GameSnapshot) {
	if snap == nil {
		return
	}
	events := engine.ActiveEvents(snap.Events)
	fmt.Println(engine.BuildLineScore(events).Format())
	for _, line := range engine.RecentPlays(events, 3) {
		fmt.Println("  " + line)
	}
}
