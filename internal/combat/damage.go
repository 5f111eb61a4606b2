package combat

func containsType(tags []DamageType, t DamageType) bool {
	for _, tag := range tags {
		if tag == t {
			return true
		}
	}
	return false
}

// AdjustDamage applies immunity, resistance and vulnerability multipliers
// for the given damage type. Resistance halves (rounded down), vulnerability
// doubles, immunity zeroes.
func AdjustDamage(c Combatant, amount int, damageType DamageType) int {
	switch {
	case containsType(c.Immunities, damageType):
		return 0
	case containsType(c.Resistances, damageType):
		return amount / 2
	case containsType(c.Vulnerabilities, damageType):
		return amount * 2
	default:
		return amount
	}
}

// ApplyDamage returns a copy of the combatant with the adjusted damage
// applied. Temporary HP is consumed before current HP; current HP never
// drops below zero. The second return value is the adjusted damage amount
// (after resistance/vulnerability/immunity) for logging.
func ApplyDamage(c Combatant, amount int, damageType DamageType) (Combatant, int) {
	out := c
	if amount < 0 {
		amount = 0
	}
	dmg := AdjustDamage(c, amount, damageType)
	remaining := dmg
	if out.TemporaryHP > 0 {
		absorbed := remaining
		if absorbed > out.TemporaryHP {
			absorbed = out.TemporaryHP
		}
		out.TemporaryHP -= absorbed
		remaining -= absorbed
	}
	out.CurrentHP -= remaining
	if out.CurrentHP < 0 {
		out.CurrentHP = 0
	}
	return out, dmg
}

// ApplyHealing returns a copy with current HP increased without exceeding
// max, plus the amount actually applied (which may be less than requested).
// A downed player character that regains HP stops dying: the death-save
// tally resets.
func ApplyHealing(c Combatant, amount int) (Combatant, int) {
	out := c
	if amount < 0 {
		amount = 0
	}
	applied := amount
	if out.CurrentHP+applied > out.MaxHP {
		applied = out.MaxHP - out.CurrentHP
	}
	if applied < 0 {
		applied = 0
	}
	wasDown := out.CurrentHP <= 0
	out.CurrentHP += applied
	if wasDown && out.CurrentHP > 0 && out.DeathSaves != nil {
		out.DeathSaves = &DeathSaves{}
	}
	return out, applied
}

// GrantTemporaryHP returns a copy with temporary HP set. Temporary HP does
// not stack: a new grant only replaces a smaller existing pool.
func GrantTemporaryHP(c Combatant, amount int) Combatant {
	out := c
	if amount > out.TemporaryHP {
		out.TemporaryHP = amount
	}
	return out
}
