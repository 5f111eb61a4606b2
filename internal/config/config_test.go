package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeFile(t, "battlegrid_config.json", `{}`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerAddress != ":8080" {
		t.Fatalf("expected default address, got %q", cfg.ServerAddress)
	}
	if cfg.BestiaryPath != "./bestiary.yaml" {
		t.Fatalf("expected default bestiary path, got %q", cfg.BestiaryPath)
	}
}

func TestLoadBestiary(t *testing.T) {
	path := writeFile(t, "bestiary.yaml", `
monsters:
  - name: Goblin
    hit_points: 7
    armor_class: 15
    speed: 30
    dex_mod: 2
    attack:
      name: Scimitar
      bonus: 4
      damage_dice: 1d6+2
      damage_type: slashing
  - name: Skeleton
    hit_points: 13
    armor_class: 13
    speed: 30
    dex_mod: 2
    vulnerabilities: [bludgeoning]
    immunities: [poison]
    attack:
      name: Shortsword
      bonus: 4
      damage_dice: 1d6+2
      damage_type: piercing
`)
	bestiary, err := LoadBestiary(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	gob, ok := bestiary["goblin"]
	if !ok {
		t.Fatalf("expected goblin keyed lowercase")
	}
	if gob.Attack.DamageDice != "1d6+2" {
		t.Fatalf("unexpected attack dice %q", gob.Attack.DamageDice)
	}
	if len(bestiary["skeleton"].Vulnerabilities) != 1 {
		t.Fatalf("expected skeleton vulnerability parsed")
	}
}

func TestLoadBestiary_DuplicateName(t *testing.T) {
	path := writeFile(t, "bestiary.yaml", `
monsters:
  - name: Goblin
    hit_points: 7
  - name: goblin
    hit_points: 7
`)
	if _, err := LoadBestiary(path); err == nil {
		t.Fatalf("expected duplicate-name error")
	}
}

func TestLoadBestiary_Empty(t *testing.T) {
	path := writeFile(t, "bestiary.yaml", `monsters: []`)
	if _, err := LoadBestiary(path); err == nil {
		t.Fatalf("expected error for empty bestiary")
	}
}
