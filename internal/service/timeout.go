package service

import (
	"time"

	"github.com/ravoni/battlegrid/internal/constants"
	"github.com/ravoni/battlegrid/internal/logging"
	"github.com/ravoni/battlegrid/internal/storage"
)

// StaleRepo is the repository surface the stale-encounter scanner needs
// on top of the encounter operations.
type StaleRepo interface {
	EncounterRepo
	FindStaleEncounters(now time.Time, idleFor time.Duration) ([]storage.EncounterRecord, error)
}

// CloseStaleEncounters ends encounters that have seen no action for
// idleFor. One failing encounter never stops the sweep. Returns how many
// encounters were closed.
func CloseStaleEncounters(repo StaleRepo, hub Broadcaster, now time.Time, idleFor time.Duration) int {
	stale, err := repo.FindStaleEncounters(now, idleFor)
	if err != nil {
		logging.Error("stale encounter scan failed", err, nil)
		return 0
	}
	closed := 0
	for _, rec := range stale {
		_, _, err := EndCombat(repo, hub, rec.EncounterUUID, "Combat ended due to inactivity.", now)
		if err != nil {
			logging.Error("failed to close stale encounter", err, logging.Fields{constants.LogFieldEncounterID: rec.EncounterUUID})
			continue
		}
		logging.Info("closed stale encounter", logging.Fields{constants.LogFieldEncounterID: rec.EncounterUUID})
		closed++
	}
	return closed
}
