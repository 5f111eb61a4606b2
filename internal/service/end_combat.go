package service

import (
	"time"

	"github.com/ravoni/battlegrid/internal/combat"
	"github.com/ravoni/battlegrid/internal/constants"
	"github.com/ravoni/battlegrid/internal/encounter"
	"github.com/ravoni/battlegrid/internal/logging"
)

// EndTurn advances the initiative order and broadcasts the new snapshot.
func EndTurn(repo EncounterRepo, hub Broadcaster, encounterUUID string, now time.Time) (encounter.Encounter, error) {
	rec, e, err := loadEncounter(repo, encounterUUID)
	if err != nil {
		return encounter.Encounter{}, err
	}
	if e.Status != encounter.StatusActive {
		return encounter.Encounter{}, ErrEncounterNotActive
	}
	e = e.EndTurn()
	if err := saveEncounter(repo, rec, e, now); err != nil {
		return encounter.Encounter{}, err
	}
	publishSnapshot(hub, e)
	return e, nil
}

// EndCombat closes the encounter, syncs surviving state back to the
// character sheets and broadcasts the final snapshot.
func EndCombat(repo EncounterRepo, hub Broadcaster, encounterUUID, reason string, now time.Time) (encounter.Encounter, encounter.Summary, error) {
	rec, e, err := loadEncounter(repo, encounterUUID)
	if err != nil {
		return encounter.Encounter{}, encounter.Summary{}, err
	}
	e, err = e.EndCombat(reason, now)
	if err != nil {
		return encounter.Encounter{}, encounter.Summary{}, ErrEncounterAlreadyEnded
	}
	syncCharacters(repo, e)
	if err := saveEncounter(repo, rec, e, now); err != nil {
		return encounter.Encounter{}, encounter.Summary{}, err
	}
	publishSnapshot(hub, e)
	return e, e.CombatSummary(), nil
}

// GetSummary reports the end-of-combat summary for any encounter.
func GetSummary(repo EncounterRepo, encounterUUID string) (encounter.Summary, error) {
	_, e, err := loadEncounter(repo, encounterUUID)
	if err != nil {
		return encounter.Summary{}, err
	}
	return e.CombatSummary(), nil
}

// RemoveCombatant takes a combatant out of the encounter (fled or
// dismissed) and broadcasts the change.
func RemoveCombatant(repo EncounterRepo, hub Broadcaster, encounterUUID, combatantID string, now time.Time) (encounter.Encounter, error) {
	rec, e, err := loadEncounter(repo, encounterUUID)
	if err != nil {
		return encounter.Encounter{}, err
	}
	out, ok := e.RemoveCombatant(combatantID)
	if !ok {
		return encounter.Encounter{}, ErrCombatantNotFound
	}
	if err := saveEncounter(repo, rec, out, now); err != nil {
		return encounter.Encounter{}, err
	}
	publishSnapshot(hub, out)
	return out, nil
}

// syncCharacters writes combat-end HP back to the source character rows.
// Failures are logged and swallowed; combat resolution never rolls back.
func syncCharacters(repo EncounterRepo, e encounter.Encounter) {
	groups := [][]combat.Combatant{e.InitiativeOrder, e.Defeated, e.Fled}
	for _, group := range groups {
		for _, c := range group {
			if c.SourceKind != "character" {
				continue
			}
			ch, err := repo.GetCharacterByID(c.SourceID)
			if err != nil || ch == nil {
				logging.Error("failed to load character for sync", err, logging.Fields{
					constants.LogFieldCombatantID: c.ID,
					constants.LogFieldCharacterID: c.SourceID,
				})
				continue
			}
			hp := c.CurrentHP
			if hp < 0 {
				hp = 0
			}
			ch.CurrentHP = hp
			if err := repo.SaveCharacter(ch); err != nil {
				logging.Error("failed to sync character HP", err, logging.Fields{constants.LogFieldCharacterID: ch.ID})
			}
		}
	}
}
