// Package stats projects external character and monster records into the
// fields the combat engine needs. It is the only place that knows the
// shape of upstream data; the engine's Combatant model never does.
package stats

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ravoni/battlegrid/internal/combat"
	"github.com/ravoni/battlegrid/internal/config"
	"github.com/ravoni/battlegrid/internal/storage"
)

// Spell is the engine-facing view of one prepared spell.
type Spell struct {
	Name           string
	Level          int
	RequiresAttack bool
	SaveDC         int
	SaveAbility    string
	Healing        bool
	Dice           string
	DamageType     combat.DamageType
}

// CombatStats is the projection of a character record consumed by the
// action resolvers and the spell-casting orchestration.
type CombatStats struct {
	Weapon           combat.WeaponProfile
	Spells           []Spell
	StealthMod       int
	SpellAttackBonus int
	// Slots maps spell level to remaining uses. Level 0 (cantrips) is
	// never tracked; cantrips are always available.
	Slots map[int]int
}

// ResolveCombatStats builds the engine projection from a character row.
func ResolveCombatStats(ch *storage.Character) CombatStats {
	cs := CombatStats{
		Weapon: combat.WeaponProfile{
			Name:        ch.WeaponName,
			AttackBonus: ch.WeaponAttackBonus,
			DamageDice:  ch.WeaponDamageDice,
			DamageType:  combat.DamageType(ch.WeaponDamageType),
			Ranged:      ch.WeaponRanged,
			Magical:     ch.WeaponMagical,
		},
		StealthMod:       ch.StealthMod,
		SpellAttackBonus: ch.SpellAttackBonus,
		Slots:            DecodeSlots(ch.SlotsJSON),
	}
	for _, sp := range ch.Spells {
		cs.Spells = append(cs.Spells, Spell{
			Name:           sp.Name,
			Level:          sp.Level,
			RequiresAttack: sp.RequiresAttack,
			SaveDC:         sp.SaveDC,
			SaveAbility:    sp.SaveAbility,
			Healing:        sp.Healing,
			Dice:           sp.Dice,
			DamageType:     combat.DamageType(sp.DamageType),
		})
	}
	return cs
}

// FindSpell looks a spell up by name, case-insensitively.
func FindSpell(cs CombatStats, name string) (Spell, bool) {
	for _, sp := range cs.Spells {
		if strings.EqualFold(sp.Name, name) {
			return sp, true
		}
	}
	return Spell{}, false
}

// HasSpellSlot reports whether a slot of the given level remains.
// Cantrips (level 0) always report available.
func HasSpellSlot(cs CombatStats, level int) bool {
	if level <= 0 {
		return true
	}
	return cs.Slots[level] > 0
}

// ConsumeSpellSlot returns a copy of the stats with one slot of the given
// level spent. Cantrips consume nothing. The boolean is false when no
// slot was available.
func ConsumeSpellSlot(cs CombatStats, level int) (CombatStats, bool) {
	if level <= 0 {
		return cs, true
	}
	if cs.Slots[level] <= 0 {
		return cs, false
	}
	out := cs
	out.Slots = make(map[int]int, len(cs.Slots))
	for k, v := range cs.Slots {
		out.Slots[k] = v
	}
	out.Slots[level]--
	return out, true
}

// DecodeSlots parses the slots column ({"1":4,"2":2}) into a level map.
// Malformed data yields an empty map (no slots) rather than an error.
func DecodeSlots(raw string) map[int]int {
	slots := make(map[int]int)
	if strings.TrimSpace(raw) == "" {
		return slots
	}
	var byLevel map[string]int
	if err := json.Unmarshal([]byte(raw), &byLevel); err != nil {
		return slots
	}
	for k, v := range byLevel {
		lvl, err := strconv.Atoi(k)
		if err != nil || lvl <= 0 {
			continue
		}
		slots[lvl] = v
	}
	return slots
}

// EncodeSlots is the inverse of DecodeSlots, used when syncing consumed
// slots back to the character row.
func EncodeSlots(slots map[int]int) string {
	byLevel := make(map[string]int, len(slots))
	for lvl, v := range slots {
		byLevel[strconv.Itoa(lvl)] = v
	}
	b, err := json.Marshal(byLevel)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// CombatantFromCharacter constructs a Combatant from a character sheet
// and a rolled initiative value.
func CombatantFromCharacter(ch *storage.Character, initiative int) combat.Combatant {
	kind := combat.TypePlayerCharacter
	if ch.Kind == string(combat.TypeNPC) {
		kind = combat.TypeNPC
	}
	cs := ResolveCombatStats(ch)
	c := combat.Combatant{
		ID:         uuid.NewString(),
		Name:       ch.Name,
		Type:       kind,
		Initiative: initiative,
		DexMod:     ch.DexMod,
		WisMod:     ch.WisMod,
		ConMod:     ch.ConMod,
		CurrentHP:  ch.CurrentHP,
		MaxHP:      ch.MaxHP,
		ArmorClass: ch.ArmorClass,
		Speed:      ch.Speed,
		Weapon:     cs.Weapon,
		SourceID:   ch.ID,
		SourceKind: "character",
	}
	if kind == combat.TypePlayerCharacter {
		c.DeathSaves = &combat.DeathSaves{}
	}
	c.MovementRemaining = c.Speed
	return c
}

// CombatantFromStatblock constructs a monster Combatant from a bestiary
// statblock and a rolled initiative value.
func CombatantFromStatblock(sb config.Statblock, initiative int) combat.Combatant {
	c := combat.Combatant{
		ID:         uuid.NewString(),
		Name:       sb.Name,
		Type:       combat.TypeMonster,
		Initiative: initiative,
		DexMod:     sb.DexMod,
		WisMod:     sb.WisMod,
		ConMod:     sb.ConMod,
		CurrentHP:  sb.HitPoints,
		MaxHP:      sb.HitPoints,
		ArmorClass: sb.ArmorClass,
		Speed:      sb.Speed,
		Weapon: combat.WeaponProfile{
			Name:        sb.Attack.Name,
			AttackBonus: sb.Attack.Bonus,
			DamageDice:  sb.Attack.DamageDice,
			DamageType:  combat.DamageType(sb.Attack.DamageType),
			Ranged:      sb.Attack.Ranged,
		},
		SourceKind: "monster",
	}
	for _, t := range sb.Resistances {
		c.Resistances = append(c.Resistances, combat.DamageType(t))
	}
	for _, t := range sb.Immunities {
		c.Immunities = append(c.Immunities, combat.DamageType(t))
	}
	for _, t := range sb.Vulnerabilities {
		c.Vulnerabilities = append(c.Vulnerabilities, combat.DamageType(t))
	}
	c.MovementRemaining = c.Speed
	return c
}
