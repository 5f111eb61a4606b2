package engine

import (
	"testing"

	"github.com/ravoni/battlegrid/internal/combat"
)

// scriptedRoller returns queued Intn results in order, so tests control
// every die. Remember Intn(n) is zero-based: a queued 19 is a natural 20.
type scriptedRoller struct {
	values []int
	next   int
}

func (s *scriptedRoller) Intn(n int) int {
	if s.next >= len(s.values) {
		return 0
	}
	v := s.values[s.next]
	s.next++
	if v >= n {
		v = n - 1
	}
	return v
}

func fighter() combat.Combatant {
	return combat.Combatant{
		ID:                "c1",
		Name:              "Sera",
		Type:              combat.TypePlayerCharacter,
		CurrentHP:         20,
		MaxHP:             20,
		ArmorClass:        15,
		Speed:             30,
		MovementRemaining: 30,
	}
}

func goblin() combat.Combatant {
	return combat.Combatant{
		ID:         "m1",
		Name:       "Goblin",
		Type:       combat.TypeMonster,
		CurrentHP:  7,
		MaxHP:      7,
		ArmorClass: 13,
		Speed:      30,
	}
}

func TestResolveAttackHit(t *testing.T) {
	// d20 = 12, damage d8 = 5
	r := &scriptedRoller{values: []int{11, 4}}
	res := ResolveAttack(r, fighter(), goblin(), AttackParams{
		WeaponName:  "longsword",
		AttackBonus: 5,
		DamageDice:  "1d8+3",
		DamageType:  combat.DamageType("slashing"),
	})
	if !res.EndsTurn {
		t.Fatal("attack should end the turn")
	}
	if len(res.Updated) != 2 {
		t.Fatalf("expected actor and target updated, got %d", len(res.Updated))
	}
	if !res.Updated[0].ActionUsed {
		t.Error("actor action not consumed")
	}
	target := res.Updated[1]
	if target.CurrentHP != 7-8 && target.CurrentHP != 0 {
		t.Errorf("unexpected target HP %d", target.CurrentHP)
	}
	if res.Log.Damage != 8 {
		t.Errorf("expected 8 damage logged, got %d", res.Log.Damage)
	}
}

func TestResolveAttackMiss(t *testing.T) {
	// d20 = 5, total 10 vs AC 13
	r := &scriptedRoller{values: []int{4}}
	res := ResolveAttack(r, fighter(), goblin(), AttackParams{AttackBonus: 5, DamageDice: "1d8+3", DamageType: combat.DamageType("slashing")})
	if len(res.Updated) != 1 {
		t.Fatalf("miss should only update the actor, got %d combatants", len(res.Updated))
	}
	if res.Log.Damage != 0 {
		t.Errorf("miss logged %d damage", res.Log.Damage)
	}
}

func TestResolveAttackNaturalTwenty(t *testing.T) {
	// d20 = 20 auto-hits even against absurd AC, and doubles the dice:
	// 2d6 rolled as 4 dice here.
	r := &scriptedRoller{values: []int{19, 2, 2, 2, 2}}
	target := goblin()
	target.ArmorClass = 99
	target.CurrentHP = 30
	target.MaxHP = 30
	res := ResolveAttack(r, fighter(), target, AttackParams{AttackBonus: 0, DamageDice: "2d6+1", DamageType: combat.DamageType("piercing")})
	if len(res.Updated) != 2 {
		t.Fatal("critical hit should damage the target")
	}
	if got := res.Updated[1].CurrentHP; got != 30-13 {
		t.Errorf("expected 13 crit damage (4x3 + 1), target HP %d", got)
	}
}

func TestResolveAttackNaturalOne(t *testing.T) {
	// d20 = 1 auto-misses even with a huge bonus.
	r := &scriptedRoller{values: []int{0}}
	res := ResolveAttack(r, fighter(), goblin(), AttackParams{AttackBonus: 50, DamageDice: "1d8", DamageType: combat.DamageType("slashing")})
	if len(res.Updated) != 1 {
		t.Fatal("natural 1 should miss")
	}
}

func TestResolveAttackResistance(t *testing.T) {
	r := &scriptedRoller{values: []int{11, 7}} // d20=12, 1d8=8 -> 11 slashing
	target := goblin()
	target.CurrentHP = 20
	target.MaxHP = 20
	target.Resistances = []combat.DamageType{combat.DamageType("slashing")}
	res := ResolveAttack(r, fighter(), target, AttackParams{AttackBonus: 5, DamageDice: "1d8+3", DamageType: combat.DamageType("slashing")})
	if got := res.Updated[1].CurrentHP; got != 20-5 {
		t.Errorf("resistance should halve 11 to 5, target HP %d", got)
	}
}

func TestResolveDash(t *testing.T) {
	res := ResolveDash(fighter())
	c := res.Updated[0]
	if c.MovementRemaining != 60 {
		t.Errorf("dash should add speed, got %d", c.MovementRemaining)
	}
	if !c.ActionUsed || !res.EndsTurn {
		t.Error("dash consumes the action and ends the turn")
	}
}

func TestResolveDodgeAppliesCondition(t *testing.T) {
	res := ResolveDodge(fighter())
	c := res.Updated[0]
	if !c.HasCondition(combat.ConditionDodging) {
		t.Fatal("dodging condition missing")
	}
	cond := c.Conditions[0]
	if cond.Duration.Type != combat.DurationTurns || cond.Duration.EndsAt != combat.ExpiryStartOfTurn {
		t.Errorf("dodge should last until the actor's next turn starts: %+v", cond.Duration)
	}
}

func TestResolveDisengageAppliesCondition(t *testing.T) {
	res := ResolveDisengage(fighter())
	if !res.Updated[0].HasCondition(combat.ConditionDisengaging) {
		t.Error("disengaging condition missing")
	}
}

func TestResolveHelpMarksTarget(t *testing.T) {
	res := ResolveHelp(fighter(), goblin(), "")
	if len(res.Updated) != 2 {
		t.Fatalf("help updates actor and target, got %d", len(res.Updated))
	}
	if !res.Updated[1].HasCondition(combat.ConditionHelped) {
		t.Error("target should carry the helped marker")
	}
}

func TestResolveHideOutcomes(t *testing.T) {
	// 14 + 2 = 16 vs DC 10: hidden
	r := &scriptedRoller{values: []int{13}}
	res := ResolveHide(r, fighter(), 2, 0)
	if res.Description == "" || !res.Updated[0].ActionUsed {
		t.Error("hide should consume the action")
	}
	// 3 + 2 = 5 vs DC 10: fails, but still only a log fact
	r = &scriptedRoller{values: []int{2}}
	res = ResolveHide(r, fighter(), 2, 0)
	if len(res.Log.Rolls) != 1 {
		t.Error("hide should log the stealth roll")
	}
}

func TestResolveMoveClampsAndKeepsTurn(t *testing.T) {
	res := ResolveMove(fighter(), 20)
	if res.EndsTurn {
		t.Error("movement must not end the turn")
	}
	if got := res.Updated[0].MovementRemaining; got != 10 {
		t.Errorf("expected 10 feet remaining, got %d", got)
	}
	res = ResolveMove(res.Updated[0], 50)
	if got := res.Updated[0].MovementRemaining; got != 0 {
		t.Errorf("movement should clamp at zero, got %d", got)
	}
}

func TestResolveStandUp(t *testing.T) {
	c := fighter().WithCondition(combat.ActiveCondition{Name: combat.ConditionProne, Duration: combat.ConditionDuration{Type: combat.DurationPermanent}})
	res := ResolveStandUp(c)
	out := res.Updated[0]
	if out.HasCondition(combat.ConditionProne) {
		t.Error("prone should be cleared")
	}
	if out.MovementRemaining != 15 {
		t.Errorf("standing costs half speed, remaining %d", out.MovementRemaining)
	}
	if res.EndsTurn {
		t.Error("standing up must not end the turn")
	}
}

func TestResolveDeathSaveThresholds(t *testing.T) {
	downed := fighter()
	downed.CurrentHP = 0
	downed.DeathSaves = &combat.DeathSaves{}

	// natural 20: back to 1 HP, tally cleared
	res := ResolveDeathSave(&scriptedRoller{values: []int{19}}, downed)
	out := res.Updated[0]
	if out.CurrentHP != 1 {
		t.Errorf("natural 20 should restore 1 HP, got %d", out.CurrentHP)
	}
	if out.DeathSaves.Successes != 0 || out.DeathSaves.Failures != 0 {
		t.Error("natural 20 should clear the tally")
	}

	// natural 1: two failures at once
	res = ResolveDeathSave(&scriptedRoller{values: []int{0}}, downed)
	if got := res.Updated[0].DeathSaves.Failures; got != 2 {
		t.Errorf("natural 1 counts as two failures, got %d", got)
	}

	// 9 is a failure, 10 a success
	res = ResolveDeathSave(&scriptedRoller{values: []int{8}}, downed)
	if got := res.Updated[0].DeathSaves.Failures; got != 1 {
		t.Errorf("9 should be one failure, got %d", got)
	}
	res = ResolveDeathSave(&scriptedRoller{values: []int{9}}, downed)
	if got := res.Updated[0].DeathSaves.Successes; got != 1 {
		t.Errorf("10 should be one success, got %d", got)
	}

	// third failure kills
	dying := downed
	dying.DeathSaves = &combat.DeathSaves{Failures: 2}
	res = ResolveDeathSave(&scriptedRoller{values: []int{3}}, dying)
	if !res.Updated[0].IsDead() {
		t.Error("third failure should kill a player character")
	}

	// third success stabilizes
	stabilizing := downed
	stabilizing.DeathSaves = &combat.DeathSaves{Successes: 2}
	res = ResolveDeathSave(&scriptedRoller{values: []int{15}}, stabilizing)
	if !res.Updated[0].IsStable() {
		t.Error("third success should stabilize")
	}
}

func TestDeathSaveDoesNotMutateInput(t *testing.T) {
	downed := fighter()
	downed.CurrentHP = 0
	downed.DeathSaves = &combat.DeathSaves{}
	_ = ResolveDeathSave(&scriptedRoller{values: []int{0}}, downed)
	if downed.DeathSaves.Failures != 0 {
		t.Error("resolver must copy the death-save tally, not mutate it")
	}
}
