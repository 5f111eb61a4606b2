package service

import (
	"strconv"
	"time"

	"github.com/ravoni/battlegrid/internal/combat"
	"github.com/ravoni/battlegrid/internal/config"
	"github.com/ravoni/battlegrid/internal/dice"
	"github.com/ravoni/battlegrid/internal/encounter"
	"github.com/ravoni/battlegrid/internal/stats"
	"github.com/ravoni/battlegrid/internal/storage"
)

// CreateEncounter opens a new encounter in the preparing phase and
// persists its first snapshot.
func CreateEncounter(repo EncounterRepo, campaignID, sessionID uint, now time.Time) (encounter.Encounter, error) {
	e := encounter.New(strconv.FormatUint(uint64(campaignID), 10), strconv.FormatUint(uint64(sessionID), 10))
	state, err := encodeState(e)
	if err != nil {
		return encounter.Encounter{}, err
	}
	rec := &storage.EncounterRecord{
		EncounterUUID: e.ID,
		CampaignID:    campaignID,
		SessionID:     sessionID,
		Status:        string(e.Status),
		State:         state,
		LastActionAt:  now,
	}
	if err := repo.CreateEncounter(rec); err != nil {
		return encounter.Encounter{}, err
	}
	return e, nil
}

// GetEncounter loads the current snapshot.
func GetEncounter(repo EncounterRepo, encounterUUID string) (encounter.Encounter, error) {
	_, e, err := loadEncounter(repo, encounterUUID)
	return e, err
}

// AddParty rolls initiative for the given characters and appends them to
// a preparing encounter. The rolled values are returned for logging.
func AddParty(repo EncounterRepo, r dice.Roller, encounterUUID string, characterIDs []uint, now time.Time) (encounter.Encounter, []encounter.InitiativeRoll, error) {
	rec, e, err := loadEncounter(repo, encounterUUID)
	if err != nil {
		return encounter.Encounter{}, nil, err
	}
	if e.Status != encounter.StatusPreparing {
		return encounter.Encounter{}, nil, ErrEncounterNotPreparing
	}

	combatants := make([]combat.Combatant, 0, len(characterIDs))
	for _, id := range characterIDs {
		ch, err := repo.GetCharacterByID(id)
		if err != nil || ch == nil {
			return encounter.Encounter{}, nil, ErrCharacterNotFound
		}
		combatants = append(combatants, stats.CombatantFromCharacter(ch, 0))
	}

	e, rolls := e.AddCombatants(r, combatants...)
	if err := saveEncounter(repo, rec, e, now); err != nil {
		return encounter.Encounter{}, nil, err
	}
	return e, rolls, nil
}

// AddMonsters instantiates bestiary statblocks (by name, repeated names
// allowed) and appends them to a preparing encounter.
func AddMonsters(repo EncounterRepo, r dice.Roller, bestiary map[string]config.Statblock, encounterUUID string, names []string, now time.Time) (encounter.Encounter, []encounter.InitiativeRoll, error) {
	rec, e, err := loadEncounter(repo, encounterUUID)
	if err != nil {
		return encounter.Encounter{}, nil, err
	}
	if e.Status != encounter.StatusPreparing {
		return encounter.Encounter{}, nil, ErrEncounterNotPreparing
	}

	combatants := make([]combat.Combatant, 0, len(names))
	counts := make(map[string]int, len(names))
	for _, name := range names {
		sb, ok := bestiary[config.BestiaryKey(name)]
		if !ok {
			return encounter.Encounter{}, nil, ErrMonsterNotFound
		}
		c := stats.CombatantFromStatblock(sb, 0)
		counts[sb.Name]++
		if n := counts[sb.Name]; n > 1 {
			c.Name = sb.Name + " " + strconv.Itoa(n)
		}
		combatants = append(combatants, c)
	}

	e, rolls := e.AddCombatants(r, combatants...)
	if err := saveEncounter(repo, rec, e, now); err != nil {
		return encounter.Encounter{}, nil, err
	}
	return e, rolls, nil
}
