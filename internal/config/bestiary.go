package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// StatblockAttack is the monster's default attack routine.
type StatblockAttack struct {
	Name       string `yaml:"name"`
	Bonus      int    `yaml:"bonus"`
	DamageDice string `yaml:"damage_dice"`
	DamageType string `yaml:"damage_type"`
	Ranged     bool   `yaml:"ranged"`
}

// Statblock describes one monster in the bestiary file.
type Statblock struct {
	Name       string          `yaml:"name"`
	HitPoints  int             `yaml:"hit_points"`
	ArmorClass int             `yaml:"armor_class"`
	Speed      int             `yaml:"speed"`
	DexMod     int             `yaml:"dex_mod"`
	WisMod     int             `yaml:"wis_mod"`
	ConMod     int             `yaml:"con_mod"`
	Attack     StatblockAttack `yaml:"attack"`

	Resistances     []string `yaml:"resistances"`
	Immunities      []string `yaml:"immunities"`
	Vulnerabilities []string `yaml:"vulnerabilities"`
}

type bestiaryFile struct {
	Monsters []Statblock `yaml:"monsters"`
}

// BestiaryKey canonicalizes a monster name for bestiary lookup.
func BestiaryKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// LoadBestiary reads the YAML bestiary at path and returns statblocks
// keyed by lowercase monster name. It requires a non-empty `monsters`
// list with unique names.
func LoadBestiary(path string) (map[string]Statblock, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bestiary file %s: %w", path, err)
	}
	var bf bestiaryFile
	if err := yaml.Unmarshal(b, &bf); err != nil {
		return nil, fmt.Errorf("failed to parse bestiary file %s: %w", path, err)
	}
	if len(bf.Monsters) == 0 {
		return nil, fmt.Errorf("bestiary file %s: monsters list is empty (provide a 'monsters' array)", path)
	}

	out := make(map[string]Statblock, len(bf.Monsters))
	for _, sb := range bf.Monsters {
		name := strings.TrimSpace(sb.Name)
		if name == "" {
			return nil, fmt.Errorf("bestiary file %s: monster entry missing 'name'", path)
		}
		key := BestiaryKey(name)
		if _, exists := out[key]; exists {
			return nil, fmt.Errorf("bestiary file %s: duplicate monster name '%s'", path, name)
		}
		if sb.HitPoints <= 0 {
			return nil, fmt.Errorf("bestiary file %s: monster '%s' must have positive hit_points", path, name)
		}
		out[key] = sb
	}
	return out, nil
}
