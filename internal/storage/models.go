package storage

import (
	"time"

	"gorm.io/gorm"
)

// Character is the persisted character sheet the engine projects combat
// stats from. Combat-relevant fields only; campaign bookkeeping lives with
// the upstream campaign service.
type Character struct {
	gorm.Model
	CampaignID uint   `json:"campaign_id" gorm:"index"`
	Name       string `json:"name"`
	// Kind is "player_character" or "npc".
	Kind  string `json:"kind"`
	Level int    `json:"level"`

	MaxHP      int `json:"max_hp"`
	CurrentHP  int `json:"current_hp"`
	ArmorClass int `json:"armor_class"`
	Speed      int `json:"speed"`

	DexMod int `json:"dex_mod"`
	WisMod int `json:"wis_mod"`
	ConMod int `json:"con_mod"`

	StealthMod       int `json:"stealth_mod"`
	SpellAttackBonus int `json:"spell_attack_bonus"`

	WeaponName        string `json:"weapon_name"`
	WeaponAttackBonus int    `json:"weapon_attack_bonus"`
	WeaponDamageDice  string `json:"weapon_damage_dice"`
	WeaponDamageType  string `json:"weapon_damage_type"`
	WeaponRanged      bool   `json:"weapon_ranged"`
	WeaponMagical     bool   `json:"weapon_magical"`

	Spells []CharacterSpell `json:"spells"`
	// SlotsJSON holds remaining spell slots per level as a JSON object,
	// e.g. {"1":4,"2":2}. Level 0 (cantrips) is never stored.
	SlotsJSON string `json:"slots_json" gorm:"column:slots_json"`
}

// CharacterSpell is one prepared spell on a character sheet.
type CharacterSpell struct {
	gorm.Model
	CharacterID    uint   `json:"-" gorm:"index"`
	Name           string `json:"name"`
	Level          int    `json:"level"`
	RequiresAttack bool   `json:"requires_attack"`
	SaveDC         int    `json:"save_dc"`
	SaveAbility    string `json:"save_ability"`
	Healing        bool   `json:"healing"`
	Dice           string `json:"dice"`
	DamageType     string `json:"damage_type"`
}

// EncounterRecord persists one encounter: metadata columns for querying
// plus the full engine state as a JSON snapshot. The snapshot is the
// source of truth while the encounter runs; the columns mirror it for
// cheap listing and the stale-encounter scanner.
type EncounterRecord struct {
	gorm.Model
	EncounterUUID string `json:"encounter_uuid" gorm:"uniqueIndex"`
	CampaignID    uint   `json:"campaign_id" gorm:"index"`
	SessionID     uint   `json:"session_id"`
	Status        string `json:"status"`
	Round         int    `json:"round"`
	State         []byte `json:"-" gorm:"type:blob"`

	LogEntries []ActionLogRecord `json:"log_entries"`

	// LastActionAt drives the stale-encounter scanner.
	LastActionAt time.Time `json:"last_action_at"`
}

// ActionLogRecord is one structured action-log row, written after every
// resolved action so the log outlives the encounter snapshot.
type ActionLogRecord struct {
	gorm.Model
	EncounterRecordID uint   `json:"-" gorm:"index"`
	Round             int    `json:"round"`
	Actor             string `json:"actor"`
	ActionType        string `json:"action_type"`
	Targets           string `json:"targets"`
	Damage            int    `json:"damage"`
	Healing           int    `json:"healing"`
	Outcome           string `json:"outcome"`
}

// User stores unique player identity for session login.
type User struct {
	gorm.Model
	PlayerUUID  string `gorm:"index"`
	DisplayName string
	Email       string `gorm:"uniqueIndex"`
}

// Unify global users table name as "player_profiles"
func (User) TableName() string { return "player_profiles" }
