package engine

import (
	"fmt"

	"github.com/ravoni/battlegrid/internal/combat"
	"github.com/ravoni/battlegrid/internal/dice"
)

// turnScoped is the duration for conditions that last until the start of
// the owner's next turn (Dodge, Disengage, Help).
func turnScoped() combat.ConditionDuration {
	return combat.ConditionDuration{Type: combat.DurationTurns, Value: 1, EndsAt: combat.ExpiryStartOfTurn}
}

// ResolveDash adds the actor's speed to the remaining-movement pool and
// consumes the action.
func ResolveDash(actor combat.Combatant) ActionResult {
	out := actor
	out.ActionUsed = true
	out.MovementRemaining += out.Speed
	desc := fmt.Sprintf("%s dashes, gaining %d feet of movement", actor.Name, actor.Speed)
	return ActionResult{
		Updated:     []combat.Combatant{out},
		Log:         combat.LogEntry{Actor: actor.Name, ActionType: string(ActionDash), Outcome: desc},
		Description: desc,
		EndsTurn:    true,
	}
}

// ResolveDodge applies the Dodging condition to self until the actor's
// next turn starts. The condition is a log fact; attackers decide
// advantage explicitly.
func ResolveDodge(actor combat.Combatant) ActionResult {
	out := actor
	out.ActionUsed = true
	out = out.WithCondition(combat.ActiveCondition{
		Name:     combat.ConditionDodging,
		Source:   actor.Name,
		Duration: turnScoped(),
	})
	desc := fmt.Sprintf("%s takes the Dodge action", actor.Name)
	return ActionResult{
		Updated:     []combat.Combatant{out},
		Log:         combat.LogEntry{Actor: actor.Name, ActionType: string(ActionDodge), Outcome: desc},
		Description: desc,
		EndsTurn:    true,
	}
}

// ResolveDisengage marks the actor as avoiding opportunity attacks for
// the rest of the turn.
func ResolveDisengage(actor combat.Combatant) ActionResult {
	out := actor
	out.ActionUsed = true
	out = out.WithCondition(combat.ActiveCondition{
		Name:     combat.ConditionDisengaging,
		Source:   actor.Name,
		Duration: turnScoped(),
	})
	desc := fmt.Sprintf("%s disengages, avoiding opportunity attacks", actor.Name)
	return ActionResult{
		Updated:     []combat.Combatant{out},
		Log:         combat.LogEntry{Actor: actor.Name, ActionType: string(ActionDisengage), Outcome: desc},
		Description: desc,
		EndsTurn:    true,
	}
}

// ResolveHelp grants assistance on the target's next attack or ability
// check. The help type is free text ("attack", "ability_check", ...).
func ResolveHelp(actor, target combat.Combatant, helpType string) ActionResult {
	out := actor
	out.ActionUsed = true
	if helpType == "" {
		helpType = "attack"
	}
	updatedTarget := target.WithCondition(combat.ActiveCondition{
		Name:     combat.ConditionHelped,
		Source:   actor.Name,
		Duration: turnScoped(),
	})
	desc := fmt.Sprintf("%s helps %s with their next %s", actor.Name, target.Name, helpType)
	return ActionResult{
		Updated:     []combat.Combatant{out, updatedTarget},
		Log:         combat.LogEntry{Actor: actor.Name, ActionType: string(ActionHelp), Targets: []string{target.Name}, Outcome: desc},
		Description: desc,
		EndsTurn:    true,
	}
}

// hideThreshold is the advisory stealth DC used when the caller supplies
// none. Success is a log fact only; it grants no mechanical invisibility.
const hideThreshold = 10

// ResolveHide rolls a stealth check. When dc is zero the advisory
// threshold is used.
func ResolveHide(r dice.Roller, actor combat.Combatant, stealthMod, dc int) ActionResult {
	out := actor
	out.ActionUsed = true
	if dc <= 0 {
		dc = hideThreshold
	}
	roll := dice.D20(r)
	total := roll + stealthMod
	var desc string
	if total >= dc {
		desc = fmt.Sprintf("%s hides (stealth %d vs DC %d)", actor.Name, total, dc)
	} else {
		desc = fmt.Sprintf("%s fails to hide (stealth %d vs DC %d)", actor.Name, total, dc)
	}
	return ActionResult{
		Updated:     []combat.Combatant{out},
		Log:         combat.LogEntry{Actor: actor.Name, ActionType: string(ActionHide), Rolls: []int{roll}, Outcome: desc},
		Description: desc,
		EndsTurn:    true,
	}
}

// ResolveReady records a trigger and a readied action without resolving
// anything now; the player declares the readied action explicitly when
// the trigger occurs.
func ResolveReady(actor combat.Combatant, trigger, readied string) ActionResult {
	out := actor
	out.ActionUsed = true
	desc := fmt.Sprintf("%s readies an action: %s (trigger: %s)", actor.Name, readied, trigger)
	return ActionResult{
		Updated:     []combat.Combatant{out},
		Log:         combat.LogEntry{Actor: actor.Name, ActionType: string(ActionReady), Outcome: desc},
		Description: desc,
		EndsTurn:    true,
	}
}

// ResolveMove spends movement from the remaining pool, clamped at zero.
// Movement does not end the turn; it may be split around other actions.
func ResolveMove(actor combat.Combatant, distance int) ActionResult {
	out := actor
	if distance < 0 {
		distance = 0
	}
	moved := distance
	if moved > out.MovementRemaining {
		moved = out.MovementRemaining
	}
	out.MovementRemaining -= moved
	desc := fmt.Sprintf("%s moves %d feet (%d remaining)", actor.Name, moved, out.MovementRemaining)
	return ActionResult{
		Updated:     []combat.Combatant{out},
		Log:         combat.LogEntry{Actor: actor.Name, ActionType: string(ActionMove), Outcome: desc},
		Description: desc,
	}
}

// ResolveStandUp clears the Prone condition if present. Standing consumes
// movement rather than the action, so the turn continues.
func ResolveStandUp(actor combat.Combatant) ActionResult {
	out := actor
	var desc string
	if out.HasCondition(combat.ConditionProne) {
		out = out.WithoutCondition(combat.ConditionProne)
		half := out.Speed / 2
		if out.MovementRemaining < half {
			out.MovementRemaining = 0
		} else {
			out.MovementRemaining -= half
		}
		desc = fmt.Sprintf("%s stands up", actor.Name)
	} else {
		desc = fmt.Sprintf("%s is not prone", actor.Name)
	}
	return ActionResult{
		Updated:     []combat.Combatant{out},
		Log:         combat.LogEntry{Actor: actor.Name, ActionType: string(ActionStandUp), Outcome: desc},
		Description: desc,
	}
}

// ResolveDeathSave rolls one death saving throw for a combatant at 0 HP.
// A natural 1 counts as two failures; a natural 20 restores 1 HP and
// clears the tally; 2-9 is a failure; 10-19 is a success. Three failures
// kill, three successes stabilize.
func ResolveDeathSave(r dice.Roller, actor combat.Combatant) ActionResult {
	out := actor
	if out.DeathSaves == nil {
		out.DeathSaves = &combat.DeathSaves{}
	} else {
		saved := *out.DeathSaves
		out.DeathSaves = &saved
	}

	roll := dice.D20(r)
	var desc string
	switch {
	case roll == 20:
		out.CurrentHP = 1
		out.DeathSaves = &combat.DeathSaves{}
		desc = fmt.Sprintf("%s rolls a natural 20 on a death save and regains consciousness with 1 HP", actor.Name)
	case roll == 1:
		out.DeathSaves.Failures += 2
		desc = fmt.Sprintf("%s rolls a natural 1 on a death save: two failures (%d/3)", actor.Name, out.DeathSaves.Failures)
	case roll >= 10:
		out.DeathSaves.Successes++
		desc = fmt.Sprintf("%s succeeds on a death save (%d/3)", actor.Name, out.DeathSaves.Successes)
	default:
		out.DeathSaves.Failures++
		desc = fmt.Sprintf("%s fails a death save (%d/3)", actor.Name, out.DeathSaves.Failures)
	}

	if out.DeathSaves.Failures >= 3 {
		desc = fmt.Sprintf("%s has failed three death saves and dies", actor.Name)
	} else if out.DeathSaves.Successes >= 3 {
		desc = fmt.Sprintf("%s is stable", actor.Name)
	}

	return ActionResult{
		Updated:     []combat.Combatant{out},
		Log:         combat.LogEntry{Actor: actor.Name, ActionType: string(ActionDeathSave), Rolls: []int{roll}, Outcome: desc},
		Description: desc,
		EndsTurn:    true,
	}
}
