// Package engine resolves declared combat actions. Each resolver takes
// the acting combatant (and targets) by value and reports effects through
// an ActionResult; resolvers never reach into the encounter. The caller
// validates turn ownership before invoking a resolver and folds the
// updated combatants back into the encounter afterwards.
package engine

import "github.com/ravoni/battlegrid/internal/combat"

// ActionKind identifies a declared action type.
type ActionKind string

const (
	ActionAttack    ActionKind = "attack"
	ActionDash      ActionKind = "dash"
	ActionDodge     ActionKind = "dodge"
	ActionDisengage ActionKind = "disengage"
	ActionHelp      ActionKind = "help"
	ActionHide      ActionKind = "hide"
	ActionReady     ActionKind = "ready"
	ActionMove      ActionKind = "move"
	ActionStandUp   ActionKind = "stand_up"
	ActionDeathSave ActionKind = "death_save"
	ActionCastSpell ActionKind = "cast_spell"
)

// ActionResult is the uniform output of every resolver: the combatants
// whose fields changed (full replacement values), one structured log
// entry, and a human-readable description. Whether the action ends the
// actor's turn is reported so the caller knows to advance.
type ActionResult struct {
	Updated     []combat.Combatant
	Log         combat.LogEntry
	Description string
	EndsTurn    bool
}
