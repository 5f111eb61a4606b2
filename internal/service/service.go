// Package service orchestrates encounters over persistence, broadcast and
// narration collaborators. The combat engine itself is pure; everything
// with a side effect lives here, and side effects run strictly after the
// in-memory encounter value is updated.
package service

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/ravoni/battlegrid/internal/encounter"
	"github.com/ravoni/battlegrid/internal/storage"
)

var (
	ErrEncounterNotFound     = errors.New("encounter not found")
	ErrEncounterNotPreparing = errors.New("encounter is not accepting combatants")
	ErrEncounterNotActive    = errors.New("encounter is not active")
	ErrEncounterAlreadyEnded = errors.New("encounter already ended")
	ErrCharacterNotFound     = errors.New("character not found")
	ErrMonsterNotFound       = errors.New("monster not found in bestiary")
	ErrCombatantNotFound     = errors.New("combatant not found in this encounter")
	ErrNotCombatantsTurn     = errors.New("it is not that combatant's turn")
	ErrActorIncapacitated    = errors.New("combatant is incapacitated and can only roll death saves")
	ErrNoTarget              = errors.New("no valid target specified")
	ErrNotDying              = errors.New("death saves are only rolled at 0 HP")
	ErrNoSpellSlot           = errors.New("no spell slots remaining at the required level")
	ErrUnknownAction         = errors.New("unknown action type")
)

// EncounterRepo is the minimal repository interface required by the
// encounter operations.
type EncounterRepo interface {
	GetCharacterByID(id uint) (*storage.Character, error)
	SaveCharacter(c *storage.Character) error
	CreateEncounter(rec *storage.EncounterRecord) error
	GetEncounterByUUID(uuid string) (*storage.EncounterRecord, error)
	UpdateEncounter(rec *storage.EncounterRecord) error
	AppendActionLog(encounterRecordID uint, entries []storage.ActionLogRecord) error
}

// Broadcaster pushes events to encounter watchers. Satisfied by
// *broadcast.Hub; a nil Broadcaster disables broadcasting.
type Broadcaster interface {
	Publish(encounterID string, event interface{})
}

func encodeState(e encounter.Encounter) ([]byte, error) {
	return json.Marshal(e)
}

func decodeState(raw []byte) (encounter.Encounter, error) {
	var e encounter.Encounter
	if err := json.Unmarshal(raw, &e); err != nil {
		return encounter.Encounter{}, err
	}
	return e, nil
}

// loadEncounter fetches a record and decodes its snapshot.
func loadEncounter(repo EncounterRepo, encounterUUID string) (*storage.EncounterRecord, encounter.Encounter, error) {
	rec, err := repo.GetEncounterByUUID(encounterUUID)
	if err != nil || rec == nil {
		return nil, encounter.Encounter{}, ErrEncounterNotFound
	}
	e, err := decodeState(rec.State)
	if err != nil {
		return nil, encounter.Encounter{}, err
	}
	return rec, e, nil
}

// saveEncounter re-encodes the snapshot and syncs the mirror columns.
func saveEncounter(repo EncounterRepo, rec *storage.EncounterRecord, e encounter.Encounter, now time.Time) error {
	state, err := encodeState(e)
	if err != nil {
		return err
	}
	rec.State = state
	rec.Status = string(e.Status)
	rec.Round = e.Round
	rec.LastActionAt = now
	return repo.UpdateEncounter(rec)
}
