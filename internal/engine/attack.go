package engine

import (
	"fmt"

	"github.com/ravoni/battlegrid/internal/combat"
	"github.com/ravoni/battlegrid/internal/dice"
)

// AttackParams describes one attack roll. Advantage/disadvantage are
// explicit caller flags: conditions like Dodging are log facts and are
// not consulted here.
type AttackParams struct {
	WeaponName  string
	AttackBonus int
	DamageDice  string
	DamageType  combat.DamageType
	Mode        dice.Mode
	// Ranged and Magical are log metadata only; they do not gate to-hit.
	Ranged  bool
	Magical bool
}

// ResolveAttack rolls d20 + attack bonus against the target's AC. A
// natural 20 always hits and doubles the damage dice; a natural 1 always
// misses. On a hit, damage is resolved against the target's
// resistance/immunity/vulnerability tags. Attacking consumes the action
// and ends the actor's turn.
func ResolveAttack(r dice.Roller, actor, target combat.Combatant, p AttackParams) ActionResult {
	natural, d20Rolls := dice.D20With(r, p.Mode)
	attackTotal := natural + p.AttackBonus
	crit := natural == 20
	fumble := natural == 1
	hit := crit || (!fumble && attackTotal >= target.ArmorClass)

	out := actor
	out.ActionUsed = true

	weapon := p.WeaponName
	if weapon == "" {
		weapon = "attack"
	}

	if !hit {
		desc := fmt.Sprintf("%s misses %s with %s (rolled %d vs AC %d)", actor.Name, target.Name, weapon, attackTotal, target.ArmorClass)
		if fumble {
			desc = fmt.Sprintf("%s fumbles the %s against %s (natural 1)", actor.Name, weapon, target.Name)
		}
		return ActionResult{
			Updated: []combat.Combatant{out},
			Log: combat.LogEntry{
				Actor:      actor.Name,
				ActionType: string(ActionAttack),
				Targets:    []string{target.Name},
				Rolls:      d20Rolls,
				Outcome:    desc,
			},
			Description: desc,
			EndsTurn:    true,
		}
	}

	dmgRoll := dice.Roll(r, p.DamageDice, crit)
	updatedTarget, dealt := combat.ApplyDamage(target, dmgRoll.Total, p.DamageType)

	desc := fmt.Sprintf("%s hits %s with %s for %d %s damage", actor.Name, target.Name, weapon, dealt, p.DamageType)
	if crit {
		desc = fmt.Sprintf("%s critically hits %s with %s for %d %s damage", actor.Name, target.Name, weapon, dealt, p.DamageType)
	}
	if dealt != dmgRoll.Total {
		desc += fmt.Sprintf(" (%d before adjustment)", dmgRoll.Total)
	}

	return ActionResult{
		Updated: []combat.Combatant{out, updatedTarget},
		Log: combat.LogEntry{
			Actor:      actor.Name,
			ActionType: string(ActionAttack),
			Targets:    []string{target.Name},
			Damage:     dealt,
			Rolls:      append(d20Rolls, dmgRoll.Rolls...),
			Outcome:    desc,
		},
		Description: desc,
		EndsTurn:    true,
	}
}
