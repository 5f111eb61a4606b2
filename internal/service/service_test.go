package service

import (
	"errors"
	"testing"
	"time"

	"github.com/ravoni/battlegrid/internal/config"
	"github.com/ravoni/battlegrid/internal/encounter"
	"github.com/ravoni/battlegrid/internal/storage"
)

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

type mockRepo struct {
	characters map[uint]*storage.Character
	encounters map[string]*storage.EncounterRecord
	savedChars []uint
	logRows    []storage.ActionLogRecord
	stale      []storage.EncounterRecord
	failLog    bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		characters: map[uint]*storage.Character{},
		encounters: map[string]*storage.EncounterRecord{},
	}
}

func (m *mockRepo) GetCharacterByID(id uint) (*storage.Character, error) {
	if c, ok := m.characters[id]; ok {
		return c, nil
	}
	return nil, errors.New("not found")
}

func (m *mockRepo) SaveCharacter(c *storage.Character) error {
	m.savedChars = append(m.savedChars, c.ID)
	m.characters[c.ID] = c
	return nil
}

func (m *mockRepo) CreateEncounter(rec *storage.EncounterRecord) error {
	m.encounters[rec.EncounterUUID] = rec
	return nil
}

func (m *mockRepo) GetEncounterByUUID(uuid string) (*storage.EncounterRecord, error) {
	if rec, ok := m.encounters[uuid]; ok {
		return rec, nil
	}
	return nil, errors.New("not found")
}

func (m *mockRepo) UpdateEncounter(rec *storage.EncounterRecord) error {
	m.encounters[rec.EncounterUUID] = rec
	return nil
}

func (m *mockRepo) AppendActionLog(encounterRecordID uint, entries []storage.ActionLogRecord) error {
	if m.failLog {
		return errors.New("log write failed")
	}
	m.logRows = append(m.logRows, entries...)
	return nil
}

func (m *mockRepo) FindStaleEncounters(now time.Time, idleFor time.Duration) ([]storage.EncounterRecord, error) {
	return m.stale, nil
}

type recordingHub struct {
	events []interface{}
}

func (h *recordingHub) Publish(encounterID string, event interface{}) {
	h.events = append(h.events, event)
}

func testNow() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

func seedCharacter(m *mockRepo, id uint, name string) *storage.Character {
	ch := &storage.Character{
		Name:              name,
		Kind:              "player_character",
		MaxHP:             20,
		CurrentHP:         20,
		ArmorClass:        15,
		Speed:             30,
		DexMod:            2,
		WeaponName:        "longsword",
		WeaponAttackBonus: 5,
		WeaponDamageDice:  "1d8+3",
		WeaponDamageType:  "slashing",
		SlotsJSON:         `{"1":2}`,
		Spells: []storage.CharacterSpell{
			{Name: "Bless", Level: 1},
			{Name: "Cure Wounds", Level: 1, Healing: true, Dice: "1d8+3"},
		},
	}
	ch.ID = id
	m.characters[id] = ch
	return ch
}

func testBestiary() map[string]config.Statblock {
	return map[string]config.Statblock{
		"goblin": {
			Name:       "Goblin",
			HitPoints:  7,
			ArmorClass: 13,
			Speed:      30,
			DexMod:     2,
			Attack:     config.StatblockAttack{Name: "scimitar", Bonus: 4, DamageDice: "1d6+2", DamageType: "slashing"},
		},
	}
}

// buildActiveEncounter seeds one character and one goblin and starts
// combat with rolls scripted so the character acts first.
func buildActiveEncounter(t *testing.T, m *mockRepo, hub Broadcaster) encounter.Encounter {
	t.Helper()
	seedCharacter(m, 1, "Sera")
	e, err := CreateEncounter(m, 10, 20, testNow())
	if err != nil {
		t.Fatal(err)
	}
	// Sera d20=18 (+2 dex = 20), goblin d20=5 (+2 = 7).
	if _, _, err := AddParty(m, &scriptedRoller{values: []int{17}}, e.ID, []uint{1}, testNow()); err != nil {
		t.Fatal(err)
	}
	if _, _, err := AddMonsters(m, &scriptedRoller{values: []int{4}}, testBestiary(), e.ID, []string{"Goblin"}, testNow()); err != nil {
		t.Fatal(err)
	}
	started, err := StartCombat(m, hub, e.ID, testNow())
	if err != nil {
		t.Fatal(err)
	}
	return started
}

func TestCreateAndStartEncounter(t *testing.T) {
	m := newMockRepo()
	e := buildActiveEncounter(t, m, nil)
	if e.Status != encounter.StatusActive || e.Round != 1 {
		t.Fatalf("bad state %+v", e)
	}
	if len(e.InitiativeOrder) != 2 || e.InitiativeOrder[0].Name != "Sera" {
		t.Fatalf("initiative order wrong: %+v", e.InitiativeOrder)
	}
	rec := m.encounters[e.ID]
	if rec.Status != string(encounter.StatusActive) || rec.Round != 1 {
		t.Error("mirror columns not synced")
	}
}

func TestAddPartyRequiresPreparing(t *testing.T) {
	m := newMockRepo()
	e := buildActiveEncounter(t, m, nil)
	if _, _, err := AddParty(m, &scriptedRoller{}, e.ID, []uint{1}, testNow()); err != ErrEncounterNotPreparing {
		t.Errorf("expected ErrEncounterNotPreparing, got %v", err)
	}
}

func TestAddMonstersUnknownName(t *testing.T) {
	m := newMockRepo()
	e, _ := CreateEncounter(m, 10, 20, testNow())
	if _, _, err := AddMonsters(m, &scriptedRoller{}, testBestiary(), e.ID, []string{"Tarrasque"}, testNow()); err != ErrMonsterNotFound {
		t.Errorf("expected ErrMonsterNotFound, got %v", err)
	}
}

func TestAddMonstersNumbersDuplicates(t *testing.T) {
	m := newMockRepo()
	e, _ := CreateEncounter(m, 10, 20, testNow())
	out, _, err := AddMonsters(m, &scriptedRoller{values: []int{10, 9}}, testBestiary(), e.ID, []string{"goblin", "goblin"}, testNow())
	if err != nil {
		t.Fatal(err)
	}
	if out.InitiativeOrder[0].Name != "Goblin" || out.InitiativeOrder[1].Name != "Goblin 2" {
		t.Errorf("duplicate monsters should be numbered: %s, %s", out.InitiativeOrder[0].Name, out.InitiativeOrder[1].Name)
	}
}

func TestSubmitActionRejectsOutOfTurn(t *testing.T) {
	m := newMockRepo()
	e := buildActiveEncounter(t, m, nil)
	goblinID := e.InitiativeOrder[1].ID

	_, _, err := SubmitAction(m, nil, &scriptedRoller{}, e.ID, ActionRequest{ActorID: goblinID, Type: "dash"}, testNow())
	if err != ErrNotCombatantsTurn {
		t.Errorf("expected ErrNotCombatantsTurn, got %v", err)
	}
}

func TestSubmitActionAttackEndsTurnAndPersists(t *testing.T) {
	m := newMockRepo()
	hub := &recordingHub{}
	e := buildActiveEncounter(t, m, hub)
	seraID := e.InitiativeOrder[0].ID
	goblinID := e.InitiativeOrder[1].ID

	// d20=12 (+5 = 17 vs AC 13), damage 1d8=4 (+3 = 7): goblin dies.
	out, res, err := SubmitAction(m, hub, &scriptedRoller{values: []int{11, 3}}, e.ID, ActionRequest{
		ActorID: seraID,
		Type:    "attack",
		Targets: []string{goblinID},
	}, testNow())
	if err != nil {
		t.Fatal(err)
	}
	if res.Log.Damage != 7 {
		t.Errorf("expected 7 damage, got %d", res.Log.Damage)
	}
	if len(out.Defeated) != 1 {
		t.Error("dead goblin should move to the defeated list")
	}
	if out.Status != encounter.StatusEnded {
		t.Error("last monster down should auto-end combat")
	}
	if len(m.logRows) != 1 {
		t.Errorf("expected one action log row, got %d", len(m.logRows))
	}
	// Character HP synced back on combat end.
	found := false
	for _, id := range m.savedChars {
		if id == 1 {
			found = true
		}
	}
	if !found {
		t.Error("character sheet should be synced at combat end")
	}
}

func TestSubmitActionMoveKeepsTurn(t *testing.T) {
	m := newMockRepo()
	e := buildActiveEncounter(t, m, nil)
	seraID := e.InitiativeOrder[0].ID

	out, res, err := SubmitAction(m, nil, &scriptedRoller{}, e.ID, ActionRequest{
		ActorID:  seraID,
		Type:     "move",
		Distance: 10,
	}, testNow())
	if err != nil {
		t.Fatal(err)
	}
	if res.EndsTurn {
		t.Error("movement must not end the turn")
	}
	cur, _ := out.CurrentCombatant()
	if cur.ID != seraID {
		t.Error("turn holder should be unchanged")
	}
	if cur.MovementRemaining != 20 {
		t.Errorf("expected 20 movement left, got %d", cur.MovementRemaining)
	}
}

func TestSubmitActionSpellConsumesSlot(t *testing.T) {
	m := newMockRepo()
	e := buildActiveEncounter(t, m, nil)
	seraID := e.InitiativeOrder[0].ID

	_, res, err := SubmitAction(m, nil, &scriptedRoller{}, e.ID, ActionRequest{
		ActorID:   seraID,
		Type:      "cast_spell",
		SpellName: "Bless",
		Targets:   []string{seraID},
	}, testNow())
	if err != nil {
		t.Fatal(err)
	}
	if m.characters[1].SlotsJSON != `{"1":1}` {
		t.Errorf("slot not consumed: %s", m.characters[1].SlotsJSON)
	}
	if len(res.Log.Targets) != 1 || res.Log.Targets[0] != "Sera" {
		t.Errorf("log should carry display names, got %v", res.Log.Targets)
	}
}

func TestSubmitActionSpellWithoutSlots(t *testing.T) {
	m := newMockRepo()
	e := buildActiveEncounter(t, m, nil)
	m.characters[1].SlotsJSON = `{"1":0}`
	seraID := e.InitiativeOrder[0].ID

	_, _, err := SubmitAction(m, nil, &scriptedRoller{}, e.ID, ActionRequest{
		ActorID:   seraID,
		Type:      "cast_spell",
		SpellName: "Bless",
		Targets:   []string{seraID},
	}, testNow())
	if err != ErrNoSpellSlot {
		t.Errorf("expected ErrNoSpellSlot, got %v", err)
	}
}

func TestSubmitActionHealingSpell(t *testing.T) {
	m := newMockRepo()
	e := buildActiveEncounter(t, m, nil)
	seraID := e.InitiativeOrder[0].ID

	// Wound Sera in the snapshot first.
	sera, _ := e.FindCombatant(seraID)
	sera.CurrentHP = 5
	e = e.UpdateCombatant(sera)
	rec := m.encounters[e.ID]
	if err := saveEncounter(m, rec, e, testNow()); err != nil {
		t.Fatal(err)
	}

	// Cure Wounds 1d8=6 (+3 = 9): 5 -> 14.
	out, res, err := SubmitAction(m, nil, &scriptedRoller{values: []int{5}}, e.ID, ActionRequest{
		ActorID:   seraID,
		Type:      "cast_spell",
		SpellName: "Cure Wounds",
		Targets:   []string{seraID},
	}, testNow())
	if err != nil {
		t.Fatal(err)
	}
	if res.Log.Healing != 9 {
		t.Errorf("expected 9 healing, got %d", res.Log.Healing)
	}
	healed, _ := out.FindCombatant(seraID)
	if healed.CurrentHP != 14 {
		t.Errorf("expected 14 HP, got %d", healed.CurrentHP)
	}
}

func TestSubmitActionUnknownSpellIsFlavorOnly(t *testing.T) {
	m := newMockRepo()
	e := buildActiveEncounter(t, m, nil)
	seraID := e.InitiativeOrder[0].ID
	goblinID := e.InitiativeOrder[1].ID

	out, res, err := SubmitAction(m, nil, &scriptedRoller{}, e.ID, ActionRequest{
		ActorID:   seraID,
		Type:      "cast_spell",
		SpellName: "Prestidigitation",
		Targets:   []string{goblinID},
	}, testNow())
	if err != nil {
		t.Fatal(err)
	}
	g, _ := out.FindCombatant(goblinID)
	if g.CurrentHP != 7 {
		t.Error("flavor-only cast must not change combatants")
	}
	if res.Description == "" {
		t.Error("flavor cast should still describe the action")
	}
	if len(res.Log.Targets) != 1 || res.Log.Targets[0] != "Goblin" {
		t.Errorf("log should carry display names, got %v", res.Log.Targets)
	}
}

func TestSubmitActionDownedCharacterOnlyRollsDeathSaves(t *testing.T) {
	m := newMockRepo()
	e := buildActiveEncounter(t, m, nil)
	seraID := e.InitiativeOrder[0].ID
	goblinID := e.InitiativeOrder[1].ID

	// Drop Sera to 0 HP in the snapshot: unconscious, not dead.
	sera, _ := e.FindCombatant(seraID)
	sera.CurrentHP = 0
	e = e.UpdateCombatant(sera)
	rec := m.encounters[e.ID]
	if err := saveEncounter(m, rec, e, testNow()); err != nil {
		t.Fatal(err)
	}

	_, _, err := SubmitAction(m, nil, &scriptedRoller{}, e.ID, ActionRequest{
		ActorID: seraID,
		Type:    "attack",
		Targets: []string{goblinID},
	}, testNow())
	if err != ErrActorIncapacitated {
		t.Fatalf("a combatant at 0 HP must not act, got %v", err)
	}

	// d20=10: one death save success.
	out, res, err := SubmitAction(m, nil, &scriptedRoller{values: []int{9}}, e.ID, ActionRequest{
		ActorID: seraID,
		Type:    "death_save",
	}, testNow())
	if err != nil {
		t.Fatalf("death saves must stay available while downed: %v", err)
	}
	if res.Log.ActionType != "death_save" {
		t.Errorf("unexpected log entry: %+v", res.Log)
	}
	saved, _ := out.FindCombatant(seraID)
	if saved.DeathSaves == nil || saved.DeathSaves.Successes != 1 {
		t.Errorf("expected one success recorded, got %+v", saved.DeathSaves)
	}
}

func TestSubmitActionDeathSaveRequiresZeroHP(t *testing.T) {
	m := newMockRepo()
	e := buildActiveEncounter(t, m, nil)
	seraID := e.InitiativeOrder[0].ID

	_, _, err := SubmitAction(m, nil, &scriptedRoller{}, e.ID, ActionRequest{ActorID: seraID, Type: "death_save"}, testNow())
	if err != ErrNotDying {
		t.Errorf("expected ErrNotDying, got %v", err)
	}
}

func TestSubmitActionLogFailureIsSwallowed(t *testing.T) {
	m := newMockRepo()
	m.failLog = true
	e := buildActiveEncounter(t, m, nil)
	seraID := e.InitiativeOrder[0].ID

	_, _, err := SubmitAction(m, nil, &scriptedRoller{}, e.ID, ActionRequest{ActorID: seraID, Type: "dodge"}, testNow())
	if err != nil {
		t.Errorf("action log failure must not fail the action: %v", err)
	}
}

func TestEndCombatAndSummary(t *testing.T) {
	m := newMockRepo()
	e := buildActiveEncounter(t, m, nil)

	out, summary, err := EndCombat(m, nil, e.ID, "the session is over", testNow())
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != encounter.StatusEnded {
		t.Error("encounter should be ended")
	}
	if len(summary.DefeatedEnemies) != 0 || len(summary.DefeatedParty) != 0 {
		t.Errorf("nobody died: %+v", summary)
	}
	if _, _, err := EndCombat(m, nil, e.ID, "again", testNow()); err != ErrEncounterAlreadyEnded {
		t.Errorf("expected ErrEncounterAlreadyEnded, got %v", err)
	}
}

func TestCloseStaleEncounters(t *testing.T) {
	m := newMockRepo()
	e := buildActiveEncounter(t, m, nil)
	m.stale = []storage.EncounterRecord{*m.encounters[e.ID]}

	closed := CloseStaleEncounters(m, nil, testNow(), 30*time.Minute)
	if closed != 1 {
		t.Fatalf("expected 1 closed encounter, got %d", closed)
	}
	out, err := GetEncounter(m, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != encounter.StatusEnded {
		t.Error("stale encounter should be ended")
	}
	last := out.Log[len(out.Log)-1]
	if last.ActionType != "combat_end" {
		t.Errorf("missing inactivity log entry: %+v", last)
	}
}

func TestRemoveCombatantFled(t *testing.T) {
	m := newMockRepo()
	e := buildActiveEncounter(t, m, nil)
	goblinID := e.InitiativeOrder[1].ID

	out, err := RemoveCombatant(m, nil, e.ID, goblinID, testNow())
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Fled) != 1 {
		t.Error("combatant should be recorded as fled")
	}
	if _, err := RemoveCombatant(m, nil, e.ID, "ghost", testNow()); err != ErrCombatantNotFound {
		t.Errorf("expected ErrCombatantNotFound, got %v", err)
	}
}
