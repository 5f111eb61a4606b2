package storage

import "time"

type Repository interface {
	GetCharacterByID(id uint) (*Character, error)
	GetCharactersByCampaign(campaignID uint) ([]Character, error)
	// SaveCharacter persists combat-affecting state (HP, spell slots)
	// back to the character sheet.
	SaveCharacter(c *Character) error

	CreateEncounter(rec *EncounterRecord) error
	GetEncounterByUUID(uuid string) (*EncounterRecord, error)
	UpdateEncounter(rec *EncounterRecord) error
	// AppendActionLog writes structured log rows for an encounter.
	AppendActionLog(encounterRecordID uint, entries []ActionLogRecord) error

	// FindStaleEncounters returns active or preparing encounters whose
	// last action is older than idleFor at the provided time. The caller
	// decides how to resolve them (typically ending the combat with an
	// inactivity reason).
	FindStaleEncounters(now time.Time, idleFor time.Duration) ([]EncounterRecord, error)

	UpsertUser(email, uuid, name string) error
	GetUserByEmail(email string) (*User, error)
}
