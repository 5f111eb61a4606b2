package combat

// CombatantType distinguishes how death and death saves are handled.
type CombatantType string

const (
	TypePlayerCharacter CombatantType = "player_character"
	TypeNPC             CombatantType = "npc"
	TypeMonster         CombatantType = "monster"
)

// DamageType is a damage tag matched against resistance/immunity/
// vulnerability sets (e.g. "slashing", "fire").
type DamageType string

// Well-known condition names. Conditions are matched by name,
// case-insensitively, so free-form names from spell effects still work.
const (
	ConditionIncapacitated = "Incapacitated"
	ConditionParalyzed     = "Paralyzed"
	ConditionPetrified     = "Petrified"
	ConditionStunned       = "Stunned"
	ConditionUnconscious   = "Unconscious"
	ConditionProne         = "Prone"
	ConditionDodging       = "Dodging"
	ConditionDisengaging   = "Disengaging"
	ConditionHelped        = "Helped"
	ConditionBlessed       = "Blessed"
	ConditionGuided        = "Guided"
	ConditionShielded      = "Shielded"
)

// DurationType controls when a condition expires.
type DurationType string

const (
	// DurationTurns expires after a number of the owner's turns.
	DurationTurns DurationType = "turns"
	// DurationRounds is decremented at round boundaries by a future
	// round hook; EndTurn never touches it.
	DurationRounds DurationType = "rounds"
	// DurationPermanent never auto-expires.
	DurationPermanent DurationType = "permanent"
	// DurationUntilSave expires when a saving throw succeeds; it is
	// never removed by turn count.
	DurationUntilSave DurationType = "until_save"
)

// Expiry marks which turn boundary removes a turn-scoped condition.
type Expiry string

const (
	ExpiryStartOfTurn Expiry = "start_of_turn"
	ExpiryEndOfTurn   Expiry = "end_of_turn"
)

// ConditionDuration is a plain-data duration descriptor.
type ConditionDuration struct {
	Type        DurationType `json:"type"`
	Value       int          `json:"value,omitempty"`
	EndsAt      Expiry       `json:"ends_at,omitempty"`
	SaveDC      int          `json:"save_dc,omitempty"`
	SaveAbility string       `json:"save_ability,omitempty"`
}

// ActiveCondition is a named status effect. Conditions carry no behavior;
// mechanical effects are applied when the condition is granted and
// name-based classification answers questions like "is incapacitated".
type ActiveCondition struct {
	Name     string            `json:"name"`
	Source   string            `json:"source"`
	Duration ConditionDuration `json:"duration"`
}

// DeathSaves tallies death saving throws. Only meaningful for
// player-character combatants at 0 HP.
type DeathSaves struct {
	Successes int `json:"successes"`
	Failures  int `json:"failures"`
}

// WeaponProfile is the attack a combatant falls back to when the caller
// does not supply explicit attack parameters (typically monsters, whose
// statblock is not reachable after projection).
type WeaponProfile struct {
	Name        string     `json:"name"`
	AttackBonus int        `json:"attack_bonus"`
	DamageDice  string     `json:"damage_dice"`
	DamageType  DamageType `json:"damage_type"`
	Ranged      bool       `json:"ranged"`
	Magical     bool       `json:"magical"`
}

// Combatant is one participant in an encounter. It is mutated as a
// replacement value: resolvers copy it, change the copy, and hand it back
// through an ActionResult.
type Combatant struct {
	ID   string        `json:"id"`
	Name string        `json:"name"`
	Type CombatantType `json:"type"`

	Initiative int `json:"initiative"`
	DexMod     int `json:"dex_mod"`
	WisMod     int `json:"wis_mod"`
	ConMod     int `json:"con_mod"`

	CurrentHP   int `json:"current_hp"`
	MaxHP       int `json:"max_hp"`
	TemporaryHP int `json:"temporary_hp"`
	ArmorClass  int `json:"armor_class"`
	Speed       int `json:"speed"`

	Conditions []ActiveCondition `json:"conditions"`

	// Per-turn resources, reset at the start of the combatant's turn.
	ActionUsed          bool `json:"action_used"`
	BonusActionUsed     bool `json:"bonus_action_used"`
	ReactionUsed        bool `json:"reaction_used"`
	MovementRemaining   int  `json:"movement_remaining"`
	FreeInteractionUsed bool `json:"free_interaction_used"`

	DeathSaves      *DeathSaves `json:"death_saves,omitempty"`
	ConcentratingOn string      `json:"concentrating_on,omitempty"`

	Resistances     []DamageType `json:"resistances,omitempty"`
	Immunities      []DamageType `json:"immunities,omitempty"`
	Vulnerabilities []DamageType `json:"vulnerabilities,omitempty"`

	Weapon WeaponProfile `json:"weapon"`

	// Back-reference to the external record this combatant was built
	// from ("character" or "monster").
	SourceID   uint   `json:"source_id"`
	SourceKind string `json:"source_kind"`
}

// LogEntry is one structured record in the encounter action log.
type LogEntry struct {
	Round      int      `json:"round"`
	Actor      string   `json:"actor"`
	ActionType string   `json:"action_type"`
	Targets    []string `json:"targets,omitempty"`
	Damage     int      `json:"damage,omitempty"`
	Healing    int      `json:"healing,omitempty"`
	Rolls      []int    `json:"rolls,omitempty"`
	Outcome    string   `json:"outcome"`
}
