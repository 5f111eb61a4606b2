package main

import (
	"time"

	"github.com/ravoni/battlegrid/internal/logging"
	"github.com/ravoni/battlegrid/internal/service"
)

// startStaleScanner periodically closes encounters that have seen no
// actions for longer than idleFor. A zero idleFor disables the scanner.
func startStaleScanner(repo service.StaleRepo, hub service.Broadcaster, idleFor time.Duration) {
	if idleFor <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			closed := service.CloseStaleEncounters(repo, hub, time.Now(), idleFor)
			if closed > 0 {
				logging.Info("closed stale encounters", logging.Fields{"count": closed})
			}
		}
	}()
}
