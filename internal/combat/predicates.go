package combat

import "strings"

// Condition names that block taking actions entirely.
var incapacitatingConditions = map[string]struct{}{
	strings.ToLower(ConditionIncapacitated): {},
	strings.ToLower(ConditionParalyzed):     {},
	strings.ToLower(ConditionPetrified):     {},
	strings.ToLower(ConditionStunned):       {},
	strings.ToLower(ConditionUnconscious):   {},
}

// Condition names that additionally block reactions.
var reactionBlockingConditions = map[string]struct{}{
	strings.ToLower(ConditionPetrified):   {},
	strings.ToLower(ConditionUnconscious): {},
	strings.ToLower(ConditionParalyzed):   {},
	strings.ToLower(ConditionStunned):     {},
}

// HasCondition reports whether a condition with the given name is active
// (case-insensitive exact match).
func (c Combatant) HasCondition(name string) bool {
	for _, cond := range c.Conditions {
		if strings.EqualFold(cond.Name, name) {
			return true
		}
	}
	return false
}

// WithCondition returns a copy with the condition added. Adding a
// condition already present by name replaces its duration/source.
func (c Combatant) WithCondition(cond ActiveCondition) Combatant {
	out := c
	out.Conditions = make([]ActiveCondition, 0, len(c.Conditions)+1)
	replaced := false
	for _, existing := range c.Conditions {
		if strings.EqualFold(existing.Name, cond.Name) {
			out.Conditions = append(out.Conditions, cond)
			replaced = true
			continue
		}
		out.Conditions = append(out.Conditions, existing)
	}
	if !replaced {
		out.Conditions = append(out.Conditions, cond)
	}
	return out
}

// WithoutCondition returns a copy with every condition of that name removed.
func (c Combatant) WithoutCondition(name string) Combatant {
	out := c
	out.Conditions = make([]ActiveCondition, 0, len(c.Conditions))
	for _, existing := range c.Conditions {
		if strings.EqualFold(existing.Name, name) {
			continue
		}
		out.Conditions = append(out.Conditions, existing)
	}
	return out
}

// ResetTurnResources returns a copy with action/bonus/reaction flags
// cleared, movement restored to full speed and the free object
// interaction made available again. Called when the combatant's turn starts.
func (c Combatant) ResetTurnResources() Combatant {
	out := c
	out.ActionUsed = false
	out.BonusActionUsed = false
	out.ReactionUsed = false
	out.MovementRemaining = c.Speed
	out.FreeInteractionUsed = false
	return out
}

// IsIncapacitated reports whether the combatant is prevented from taking
// actions. A combatant at 0 HP is unconscious (or dead) and always counts
// as incapacitated, condition list or not.
func (c Combatant) IsIncapacitated() bool {
	if c.CurrentHP <= 0 {
		return true
	}
	for _, cond := range c.Conditions {
		if _, ok := incapacitatingConditions[strings.ToLower(cond.Name)]; ok {
			return true
		}
	}
	return false
}

// CanTakeReaction reports whether the combatant may still react this round.
func (c Combatant) CanTakeReaction() bool {
	if c.ReactionUsed || c.CurrentHP <= 0 {
		return false
	}
	for _, cond := range c.Conditions {
		if _, ok := reactionBlockingConditions[strings.ToLower(cond.Name)]; ok {
			return false
		}
	}
	return true
}

// IsDead reports permanent death. Monsters and NPCs die at 0 HP;
// player characters die only after three failed death saves.
func (c Combatant) IsDead() bool {
	if c.CurrentHP > 0 {
		return false
	}
	if c.Type == TypePlayerCharacter {
		return c.DeathSaves != nil && c.DeathSaves.Failures >= 3
	}
	return true
}

// IsStable reports whether a downed player character no longer needs to
// roll death saves. Monsters are never stable; they are dead or alive.
func (c Combatant) IsStable() bool {
	if c.Type != TypePlayerCharacter || c.CurrentHP > 0 {
		return false
	}
	return c.DeathSaves != nil && c.DeathSaves.Successes >= 3
}
