// Package encounter holds the combat encounter state machine: a roster in
// initiative order with a round counter and a single live turn index.
// Every method is a transformation on an Encounter value; persistence and
// broadcasting happen in the caller, strictly after the value is updated.
package encounter

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ravoni/battlegrid/internal/combat"
	"github.com/ravoni/battlegrid/internal/dice"
)

// Status is the encounter lifecycle phase. Transitions are one-way:
// preparing -> active -> ended.
type Status string

const (
	StatusPreparing Status = "preparing"
	StatusActive    Status = "active"
	StatusEnded     Status = "ended"
)

var (
	ErrNotPreparing = errors.New("encounter is not in the preparing phase")
	ErrNotActive    = errors.New("encounter is not active")
	ErrAlreadyEnded = errors.New("encounter has already ended")
)

// Verdict is the outcome of the auto-end check.
type Verdict string

const (
	VerdictContinue   Verdict = "continue"
	VerdictPartyWins  Verdict = "party_wins"
	VerdictEnemiesWin Verdict = "enemies_win"
)

// Encounter is the full combat state. It serializes to JSON as the
// persisted snapshot, so every field that must survive a restart is
// exported and tagged.
type Encounter struct {
	ID                   string             `json:"id"`
	CampaignID           string             `json:"campaign_id"`
	SessionID            string             `json:"session_id"`
	Status               Status             `json:"status"`
	Round                int                `json:"round"`
	CurrentTurnIndex     int                `json:"current_turn_index"`
	InitiativeOrder      []combat.Combatant `json:"initiative_order"`
	Defeated             []combat.Combatant `json:"defeated"`
	Fled                 []combat.Combatant `json:"fled"`
	MonstersEverPresent  bool               `json:"monsters_ever_present"`
	EnvironmentalEffects []string           `json:"environmental_effects,omitempty"`
	Lighting             string             `json:"lighting,omitempty"`
	LairActions          []string           `json:"lair_actions,omitempty"`
	Log                  []combat.LogEntry  `json:"log"`
	StartedAt            *time.Time         `json:"started_at,omitempty"`
	EndedAt              *time.Time         `json:"ended_at,omitempty"`
}

// New returns an empty encounter in the preparing phase.
func New(campaignID, sessionID string) Encounter {
	return Encounter{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		SessionID:  sessionID,
		Status:     StatusPreparing,
	}
}

// InitiativeRoll records one rolled initiative value for logging.
type InitiativeRoll struct {
	CombatantID string `json:"combatant_id"`
	Name        string `json:"name"`
	Roll        int    `json:"roll"`
	Modifier    int    `json:"modifier"`
	Total       int    `json:"total"`
}

// AddCombatants rolls initiative (d20 + dexterity modifier) for each
// combatant and appends them to the roster. The rolled values are
// returned so the caller can log them.
func (e Encounter) AddCombatants(r dice.Roller, cs ...combat.Combatant) (Encounter, []InitiativeRoll) {
	out := e
	out.InitiativeOrder = append([]combat.Combatant{}, e.InitiativeOrder...)
	rolls := make([]InitiativeRoll, 0, len(cs))
	for _, c := range cs {
		roll := dice.D20(r)
		c.Initiative = roll + c.DexMod
		if c.Type == combat.TypeMonster {
			out.MonstersEverPresent = true
		}
		out.InitiativeOrder = append(out.InitiativeOrder, c)
		rolls = append(rolls, InitiativeRoll{
			CombatantID: c.ID,
			Name:        c.Name,
			Roll:        roll,
			Modifier:    c.DexMod,
			Total:       c.Initiative,
		})
	}
	return out, rolls
}

// StartCombat sorts the roster by initiative descending (dexterity
// modifier breaks ties, also descending), sets round 1 and hands the
// first combatant its turn resources.
func (e Encounter) StartCombat(now time.Time) (Encounter, error) {
	if e.Status != StatusPreparing {
		return e, ErrNotPreparing
	}
	out := e
	out.InitiativeOrder = append([]combat.Combatant{}, e.InitiativeOrder...)
	sort.SliceStable(out.InitiativeOrder, func(a, b int) bool {
		ca, cb := out.InitiativeOrder[a], out.InitiativeOrder[b]
		if ca.Initiative != cb.Initiative {
			return ca.Initiative > cb.Initiative
		}
		return ca.DexMod > cb.DexMod
	})
	out.Status = StatusActive
	out.Round = 1
	out.CurrentTurnIndex = 0
	if len(out.InitiativeOrder) > 0 {
		out.InitiativeOrder[0] = out.InitiativeOrder[0].ResetTurnResources()
	}
	t := now
	out.StartedAt = &t
	return out, nil
}

// CurrentCombatant returns the turn holder, if any.
func (e Encounter) CurrentCombatant() (combat.Combatant, bool) {
	if e.Status != StatusActive || e.CurrentTurnIndex < 0 || e.CurrentTurnIndex >= len(e.InitiativeOrder) {
		return combat.Combatant{}, false
	}
	return e.InitiativeOrder[e.CurrentTurnIndex], true
}

// EndTurn advances to the next living combatant, wrapping to index 0 and
// incrementing the round on wraparound. Turn-scoped conditions expire
// here: end_of_turn durations tick down on the combatant whose turn just
// ended, start_of_turn durations are cleared on the combatant whose turn
// begins. Durations of kind rounds, permanent or until_save are never
// touched. With an empty or fully dead roster the encounter is returned
// unchanged.
func (e Encounter) EndTurn() Encounter {
	if e.Status != StatusActive || len(e.InitiativeOrder) == 0 {
		return e
	}
	out := e
	out.InitiativeOrder = append([]combat.Combatant{}, e.InitiativeOrder...)

	if out.CurrentTurnIndex >= 0 && out.CurrentTurnIndex < len(out.InitiativeOrder) {
		ender := out.InitiativeOrder[out.CurrentTurnIndex]
		out.InitiativeOrder[out.CurrentTurnIndex] = expireConditions(ender, combat.ExpiryEndOfTurn)
	}

	next, round, ok := nextLivingIndex(out.InitiativeOrder, out.CurrentTurnIndex, out.Round)
	if !ok {
		return e
	}
	out.CurrentTurnIndex = next
	out.Round = round

	starter := out.InitiativeOrder[next]
	starter = expireConditions(starter, combat.ExpiryStartOfTurn)
	out.InitiativeOrder[next] = starter.ResetTurnResources()
	return out
}

// expireConditions ticks turn-scoped durations at the given boundary.
// A value of 1 is fully consumed; larger values decrement. A turns
// duration with no boundary marker expires at the end of the owner's turn.
func expireConditions(c combat.Combatant, boundary combat.Expiry) combat.Combatant {
	if len(c.Conditions) == 0 {
		return c
	}
	out := c
	out.Conditions = make([]combat.ActiveCondition, 0, len(c.Conditions))
	for _, cond := range c.Conditions {
		endsAt := cond.Duration.EndsAt
		if endsAt == "" {
			endsAt = combat.ExpiryEndOfTurn
		}
		if cond.Duration.Type != combat.DurationTurns || endsAt != boundary {
			out.Conditions = append(out.Conditions, cond)
			continue
		}
		cond.Duration.Value--
		if cond.Duration.Value > 0 {
			out.Conditions = append(out.Conditions, cond)
		}
	}
	return out
}

func nextLivingIndex(roster []combat.Combatant, from, round int) (int, int, bool) {
	n := len(roster)
	idx := from
	for step := 0; step < n; step++ {
		idx++
		if idx >= n {
			idx = 0
			round++
		}
		if !roster[idx].IsDead() {
			return idx, round, true
		}
	}
	return 0, 0, false
}

// UpdateCombatant replaces the roster entry with the same ID. A monster
// replacement at 0 HP is instead moved to the defeated list, with the
// turn index adjusted so the live turn holder is preserved. An unknown
// ID is a no-op returning the encounter unchanged, so callers can detect
// "nothing happened" by comparison.
func (e Encounter) UpdateCombatant(updated combat.Combatant) Encounter {
	i := e.indexOf(updated.ID)
	if i < 0 {
		return e
	}
	out := e
	out.InitiativeOrder = append([]combat.Combatant{}, e.InitiativeOrder...)

	if updated.Type == combat.TypeMonster && updated.CurrentHP <= 0 {
		out.Defeated = append(append([]combat.Combatant{}, e.Defeated...), updated)
		out.InitiativeOrder = append(out.InitiativeOrder[:i], out.InitiativeOrder[i+1:]...)
		out.CurrentTurnIndex = adjustIndexAfterRemoval(out.CurrentTurnIndex, i, len(out.InitiativeOrder))
		return out
	}

	out.InitiativeOrder[i] = updated
	return out
}

// RemoveCombatant takes a combatant out of the fight without marking it
// defeated (fled, banished, dismissed). Reports whether the ID was found.
func (e Encounter) RemoveCombatant(id string) (Encounter, bool) {
	i := e.indexOf(id)
	if i < 0 {
		return e, false
	}
	out := e
	out.Fled = append(append([]combat.Combatant{}, e.Fled...), e.InitiativeOrder[i])
	out.InitiativeOrder = append(append([]combat.Combatant{}, e.InitiativeOrder[:i]...), e.InitiativeOrder[i+1:]...)
	out.CurrentTurnIndex = adjustIndexAfterRemoval(out.CurrentTurnIndex, i, len(out.InitiativeOrder))
	return out, true
}

func adjustIndexAfterRemoval(current, removed, newLen int) int {
	if newLen == 0 {
		return 0
	}
	if removed < current {
		current--
	}
	if current >= newLen {
		current = 0
	}
	return current
}

func (e Encounter) indexOf(id string) int {
	for i := range e.InitiativeOrder {
		if e.InitiativeOrder[i].ID == id {
			return i
		}
	}
	return -1
}

// ShouldCombatEnd checks the auto-end rule. With no monster ever added,
// combat never auto-ends; the caller must end it explicitly.
func (e Encounter) ShouldCombatEnd() Verdict {
	livingMonsters := 0
	livingPlayers := 0
	for _, c := range e.InitiativeOrder {
		if c.IsDead() {
			continue
		}
		switch c.Type {
		case combat.TypeMonster:
			livingMonsters++
		case combat.TypePlayerCharacter:
			livingPlayers++
		}
	}
	if e.MonstersEverPresent && livingMonsters == 0 {
		return VerdictPartyWins
	}
	if anyPlayerEver(e) && livingPlayers == 0 {
		return VerdictEnemiesWin
	}
	return VerdictContinue
}

func anyPlayerEver(e Encounter) bool {
	for _, c := range e.InitiativeOrder {
		if c.Type == combat.TypePlayerCharacter {
			return true
		}
	}
	for _, c := range e.Fled {
		if c.Type == combat.TypePlayerCharacter {
			return true
		}
	}
	return false
}

// EndCombat closes the encounter with a system-authored log entry
// carrying the reason.
func (e Encounter) EndCombat(reason string, now time.Time) (Encounter, error) {
	if e.Status == StatusEnded {
		return e, ErrAlreadyEnded
	}
	out := e
	out.Status = StatusEnded
	t := now
	out.EndedAt = &t
	out = out.AppendLog(combat.LogEntry{
		Round:      e.Round,
		Actor:      "system",
		ActionType: "combat_end",
		Outcome:    reason,
	})
	return out, nil
}

// AppendLog adds a structured entry to the encounter log. The round is
// filled in from the encounter when the entry carries none.
func (e Encounter) AppendLog(entry combat.LogEntry) Encounter {
	if entry.Round == 0 {
		entry.Round = e.Round
	}
	out := e
	out.Log = append(append([]combat.LogEntry{}, e.Log...), entry)
	return out
}

// Summary lists defeated party members and defeated enemies by name.
// Downed player characters stay in the roster, so both the defeated list
// and the roster are scanned.
type Summary struct {
	DefeatedParty   []string `json:"defeated_party"`
	DefeatedEnemies []string `json:"defeated_enemies"`
	Rounds          int      `json:"rounds"`
}

// CombatSummary builds the end-of-combat report.
func (e Encounter) CombatSummary() Summary {
	s := Summary{Rounds: e.Round}
	for _, c := range e.Defeated {
		if c.Type == combat.TypePlayerCharacter {
			s.DefeatedParty = append(s.DefeatedParty, c.Name)
		} else {
			s.DefeatedEnemies = append(s.DefeatedEnemies, c.Name)
		}
	}
	for _, c := range e.InitiativeOrder {
		if !c.IsDead() {
			continue
		}
		if c.Type == combat.TypePlayerCharacter {
			s.DefeatedParty = append(s.DefeatedParty, c.Name)
		} else {
			s.DefeatedEnemies = append(s.DefeatedEnemies, c.Name)
		}
	}
	return s
}

// FindCombatant looks a roster member up by ID.
func (e Encounter) FindCombatant(id string) (combat.Combatant, bool) {
	if i := e.indexOf(id); i >= 0 {
		return e.InitiativeOrder[i], true
	}
	return combat.Combatant{}, false
}

// FindCombatantByName looks a roster member up by name, case-insensitive.
func (e Encounter) FindCombatantByName(name string) (combat.Combatant, bool) {
	for _, c := range e.InitiativeOrder {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return combat.Combatant{}, false
}
