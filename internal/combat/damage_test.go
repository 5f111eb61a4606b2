package combat

import "testing"

func TestApplyDamage_Resistance(t *testing.T) {
	c := Combatant{Type: TypeMonster, CurrentHP: 20, MaxHP: 20, Resistances: []DamageType{"fire"}}
	out, dealt := ApplyDamage(c, 11, "fire")
	if dealt != 5 {
		t.Fatalf("resistance should floor-halve 11 to 5, got %d", dealt)
	}
	if out.CurrentHP != 15 {
		t.Fatalf("expected 15 HP, got %d", out.CurrentHP)
	}
}

func TestApplyDamage_Immunity(t *testing.T) {
	c := Combatant{Type: TypeMonster, CurrentHP: 20, MaxHP: 20, Immunities: []DamageType{"poison"}}
	out, dealt := ApplyDamage(c, 50, "poison")
	if dealt != 0 || out.CurrentHP != 20 {
		t.Fatalf("immunity should zero damage, got dealt=%d hp=%d", dealt, out.CurrentHP)
	}
}

func TestApplyDamage_VulnerabilityClampsAtZero(t *testing.T) {
	c := Combatant{Type: TypeMonster, CurrentHP: 10, MaxHP: 10, Vulnerabilities: []DamageType{"cold"}}
	out, dealt := ApplyDamage(c, 8, "cold")
	if dealt != 16 {
		t.Fatalf("vulnerability should double 8 to 16, got %d", dealt)
	}
	if out.CurrentHP != 0 {
		t.Fatalf("HP must clamp at 0, got %d", out.CurrentHP)
	}
}

func TestApplyDamage_TemporaryHPConsumedFirst(t *testing.T) {
	c := Combatant{Type: TypePlayerCharacter, CurrentHP: 10, MaxHP: 10, TemporaryHP: 5}
	out, _ := ApplyDamage(c, 7, "slashing")
	if out.TemporaryHP != 0 {
		t.Fatalf("temp HP should be fully consumed, got %d", out.TemporaryHP)
	}
	if out.CurrentHP != 8 {
		t.Fatalf("only the overflow should hit current HP: want 8, got %d", out.CurrentHP)
	}

	c = Combatant{Type: TypePlayerCharacter, CurrentHP: 10, MaxHP: 10, TemporaryHP: 5}
	out, _ = ApplyDamage(c, 3, "slashing")
	if out.TemporaryHP != 2 || out.CurrentHP != 10 {
		t.Fatalf("small hits should only erode temp HP: temp=%d hp=%d", out.TemporaryHP, out.CurrentHP)
	}
}

func TestApplyHealing_CapsAtMax(t *testing.T) {
	c := Combatant{Type: TypePlayerCharacter, CurrentHP: 8, MaxHP: 10}
	out, applied := ApplyHealing(c, 6)
	if applied != 2 {
		t.Fatalf("expected 2 applied, got %d", applied)
	}
	if out.CurrentHP != 10 {
		t.Fatalf("expected full HP, got %d", out.CurrentHP)
	}
}

func TestApplyHealing_ClearsDeathSaves(t *testing.T) {
	c := Combatant{Type: TypePlayerCharacter, CurrentHP: 0, MaxHP: 10, DeathSaves: &DeathSaves{Successes: 1, Failures: 2}}
	out, applied := ApplyHealing(c, 4)
	if applied != 4 || out.CurrentHP != 4 {
		t.Fatalf("expected 4 HP restored, got applied=%d hp=%d", applied, out.CurrentHP)
	}
	if out.DeathSaves.Successes != 0 || out.DeathSaves.Failures != 0 {
		t.Fatalf("regaining HP should reset the death-save tally: %+v", out.DeathSaves)
	}
}

func TestGrantTemporaryHP_NoStacking(t *testing.T) {
	c := Combatant{TemporaryHP: 6}
	if out := GrantTemporaryHP(c, 4); out.TemporaryHP != 6 {
		t.Fatalf("smaller grant should not replace larger pool, got %d", out.TemporaryHP)
	}
	if out := GrantTemporaryHP(c, 9); out.TemporaryHP != 9 {
		t.Fatalf("larger grant should replace pool, got %d", out.TemporaryHP)
	}
}
