package service

import (
	"time"

	"github.com/ravoni/battlegrid/internal/encounter"
)

// StartCombat sorts the roster into initiative order, activates the
// encounter and broadcasts the opening snapshot.
func StartCombat(repo EncounterRepo, hub Broadcaster, encounterUUID string, now time.Time) (encounter.Encounter, error) {
	rec, e, err := loadEncounter(repo, encounterUUID)
	if err != nil {
		return encounter.Encounter{}, err
	}
	e, err = e.StartCombat(now)
	if err != nil {
		return encounter.Encounter{}, ErrEncounterNotPreparing
	}
	e = e.AppendLog(combatStartEntry(e))
	if err := saveEncounter(repo, rec, e, now); err != nil {
		return encounter.Encounter{}, err
	}
	publishSnapshot(hub, e)
	return e, nil
}
