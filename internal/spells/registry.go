// Package spells maps spell names to mechanical effect functions. Effects
// operate on a combatant roster by value and return an updated roster plus
// a description. Unregistered names return ok=false so the caller can fall
// back to generic flavor text with no state change.
package spells

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ravoni/battlegrid/internal/combat"
	"github.com/ravoni/battlegrid/internal/dice"
	"github.com/ravoni/battlegrid/internal/keys"
)

// Result is the outcome of applying a registered spell effect.
type Result struct {
	Roster      []combat.Combatant
	Description string
}

type effectFunc func(r dice.Roller, roster []combat.Combatant, caster combat.Combatant, targets []string) Result

var registry = map[string]effectFunc{
	"shield":          applyShield,
	"shield_of_faith": applyShieldOfFaith,
	"bless":           applyBless,
	"guidance":        applyGuidance,
	"sleep":           applySleep,
	"spare_the_dying": applySpareTheDying,
}

// IsRegistered reports whether a spell name has a mechanical effect.
func IsRegistered(name string) bool {
	_, ok := registry[keys.SpellKey(name)]
	return ok
}

// Apply runs the effect registered under name (case-insensitive) against
// the roster. casterID must identify a roster member. targets are
// combatant IDs; effects that default to self tolerate an empty list.
// ok is false when the name is not registered or the caster is missing;
// the roster is returned unchanged in that case.
func Apply(r dice.Roller, name string, roster []combat.Combatant, casterID string, targets []string) (Result, bool) {
	fn, ok := registry[keys.SpellKey(name)]
	if !ok {
		return Result{Roster: roster}, false
	}
	ci := indexByID(roster, casterID)
	if ci < 0 {
		return Result{Roster: roster}, false
	}
	return fn(r, roster, roster[ci], targets), true
}

func indexByID(roster []combat.Combatant, id string) int {
	for i := range roster {
		if roster[i].ID == id {
			return i
		}
	}
	return -1
}

// replace swaps the combatant with the same ID in a fresh copy of the roster.
func replace(roster []combat.Combatant, updated ...combat.Combatant) []combat.Combatant {
	out := make([]combat.Combatant, len(roster))
	copy(out, roster)
	for _, u := range updated {
		if i := indexByID(out, u.ID); i >= 0 {
			out[i] = u
		}
	}
	return out
}

func concentrationDuration() combat.ConditionDuration {
	// Concentration effects last up to a minute; round bookkeeping is the
	// caller's concern, endTurn never touches rounds-typed durations.
	return combat.ConditionDuration{Type: combat.DurationRounds, Value: 10}
}

func applyShield(_ dice.Roller, roster []combat.Combatant, caster combat.Combatant, _ []string) Result {
	out := caster
	out.ArmorClass += 5
	out = out.WithCondition(combat.ActiveCondition{
		Name:     combat.ConditionShielded,
		Source:   caster.Name,
		Duration: combat.ConditionDuration{Type: combat.DurationTurns, Value: 1, EndsAt: combat.ExpiryStartOfTurn},
	})
	return Result{
		Roster:      replace(roster, out),
		Description: fmt.Sprintf("%s casts Shield, raising AC to %d", caster.Name, out.ArmorClass),
	}
}

func applyShieldOfFaith(_ dice.Roller, roster []combat.Combatant, caster combat.Combatant, targets []string) Result {
	target := caster
	if len(targets) > 0 {
		if i := indexByID(roster, targets[0]); i >= 0 {
			target = roster[i]
		}
	}
	target.ArmorClass += 2
	target = target.WithCondition(combat.ActiveCondition{
		Name:     combat.ConditionShielded,
		Source:   caster.Name,
		Duration: concentrationDuration(),
	})
	updatedCaster := caster
	if target.ID == caster.ID {
		updatedCaster = target
	}
	updatedCaster.ConcentratingOn = "Shield of Faith"
	return Result{
		Roster:      replace(roster, target, updatedCaster),
		Description: fmt.Sprintf("%s casts Shield of Faith on %s (+2 AC)", caster.Name, target.Name),
	}
}

func applyBless(_ dice.Roller, roster []combat.Combatant, caster combat.Combatant, targets []string) Result {
	if len(targets) > 3 {
		targets = targets[:3]
	}
	updated := make([]combat.Combatant, 0, len(targets)+1)
	blessed := make([]string, 0, len(targets))
	for _, id := range targets {
		i := indexByID(roster, id)
		if i < 0 {
			continue
		}
		t := roster[i].WithCondition(combat.ActiveCondition{
			Name:     combat.ConditionBlessed,
			Source:   caster.Name,
			Duration: concentrationDuration(),
		})
		updated = append(updated, t)
		blessed = append(blessed, t.Name)
	}
	updatedCaster := caster
	updatedCaster.ConcentratingOn = "Bless"
	updated = append(updated, updatedCaster)
	desc := fmt.Sprintf("%s casts Bless", caster.Name)
	if len(blessed) > 0 {
		desc = fmt.Sprintf("%s casts Bless on %s", caster.Name, strings.Join(blessed, ", "))
	}
	return Result{Roster: replace(roster, updated...), Description: desc}
}

func applyGuidance(_ dice.Roller, roster []combat.Combatant, caster combat.Combatant, targets []string) Result {
	target := caster
	if len(targets) > 0 {
		if i := indexByID(roster, targets[0]); i >= 0 {
			target = roster[i]
		}
	}
	target = target.WithCondition(combat.ActiveCondition{
		Name:     combat.ConditionGuided,
		Source:   caster.Name,
		Duration: concentrationDuration(),
	})
	return Result{
		Roster:      replace(roster, target),
		Description: fmt.Sprintf("%s casts Guidance on %s", caster.Name, target.Name),
	}
}

func applySleep(r dice.Roller, roster []combat.Combatant, caster combat.Combatant, _ []string) Result {
	pool := dice.Roll(r, "5d8", false)
	remaining := pool.Total

	// Enemies are combatants whose type differs from the caster's,
	// weakest first.
	enemies := make([]int, 0, len(roster))
	for i := range roster {
		if roster[i].Type != caster.Type && !roster[i].IsDead() {
			enemies = append(enemies, i)
		}
	}
	sort.SliceStable(enemies, func(a, b int) bool {
		return roster[enemies[a]].CurrentHP < roster[enemies[b]].CurrentHP
	})

	updated := make([]combat.Combatant, 0, len(enemies))
	asleep := make([]string, 0, len(enemies))
	for _, i := range enemies {
		hp := roster[i].CurrentHP
		if hp > remaining {
			break
		}
		remaining -= hp
		t := roster[i].WithCondition(combat.ActiveCondition{
			Name:     combat.ConditionUnconscious,
			Source:   caster.Name,
			Duration: concentrationDuration(),
		})
		updated = append(updated, t)
		asleep = append(asleep, t.Name)
	}

	desc := fmt.Sprintf("%s casts Sleep (%d HP of effect) but no one falls asleep", caster.Name, pool.Total)
	if len(asleep) > 0 {
		desc = fmt.Sprintf("%s casts Sleep (%d HP of effect): %s fall unconscious", caster.Name, pool.Total, strings.Join(asleep, ", "))
		if len(asleep) == 1 {
			desc = fmt.Sprintf("%s casts Sleep (%d HP of effect): %s falls unconscious", caster.Name, pool.Total, asleep[0])
		}
	}
	return Result{Roster: replace(roster, updated...), Description: desc}
}

func applySpareTheDying(_ dice.Roller, roster []combat.Combatant, caster combat.Combatant, targets []string) Result {
	if len(targets) == 0 {
		return Result{Roster: roster, Description: fmt.Sprintf("%s casts Spare the Dying but has no target", caster.Name)}
	}
	i := indexByID(roster, targets[0])
	if i < 0 {
		return Result{Roster: roster, Description: fmt.Sprintf("%s casts Spare the Dying but the target is gone", caster.Name)}
	}
	target := roster[i]
	if target.CurrentHP != 0 || target.DeathSaves == nil {
		return Result{
			Roster:      roster,
			Description: fmt.Sprintf("%s casts Spare the Dying on %s, but %s is not dying", caster.Name, target.Name, target.Name),
		}
	}
	saves := *target.DeathSaves
	saves.Successes = 3
	target.DeathSaves = &saves
	return Result{
		Roster:      replace(roster, target),
		Description: fmt.Sprintf("%s casts Spare the Dying: %s is stabilized", caster.Name, target.Name),
	}
}
