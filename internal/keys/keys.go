package keys

import (
	"sort"
	"strings"
)

// SpellKey canonicalizes a spell name for registry lookup. Behavior:
// trims, lower-cases and replaces spaces with underscores, so
// "Spare the Dying" and "spare the dying" resolve to the same entry.
func SpellKey(name string) string {
	s := strings.TrimSpace(name)
	return strings.ToLower(strings.ReplaceAll(s, " ", "_"))
}

// OutcomeKeyFromNames produces a canonical key for a set of combatant
// names, used to deduplicate concurrent narration requests for the same
// action. Parts are trimmed, lower-cased, sorted and joined with
// underscore so ordering never changes the key.
func OutcomeKeyFromNames(names []string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		s := strings.TrimSpace(n)
		if s == "" {
			continue
		}
		s = strings.ToLower(strings.ReplaceAll(s, " ", "_"))
		parts = append(parts, s)
	}
	sort.Strings(parts)
	return strings.Join(parts, "_")
}
