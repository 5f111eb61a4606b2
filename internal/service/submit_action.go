package service

import (
	"fmt"
	"time"

	"github.com/ravoni/battlegrid/internal/combat"
	"github.com/ravoni/battlegrid/internal/constants"
	"github.com/ravoni/battlegrid/internal/dice"
	"github.com/ravoni/battlegrid/internal/encounter"
	"github.com/ravoni/battlegrid/internal/engine"
	"github.com/ravoni/battlegrid/internal/logging"
	"github.com/ravoni/battlegrid/internal/spells"
	"github.com/ravoni/battlegrid/internal/stats"
	"github.com/ravoni/battlegrid/internal/storage"
)

// ActionRequest is one declared action for the current turn holder.
type ActionRequest struct {
	ActorID string   `json:"actor_id" binding:"required"`
	Type    string   `json:"type" binding:"required"`
	Targets []string `json:"targets"`

	// Attack / Hide modifiers.
	Advantage    bool `json:"advantage"`
	Disadvantage bool `json:"disadvantage"`
	DC           int  `json:"dc"`

	// Move.
	Distance int `json:"distance"`

	// Help / Ready.
	HelpType string `json:"help_type"`
	Trigger  string `json:"trigger"`
	Readied  string `json:"readied"`

	// Cast spell.
	SpellName  string `json:"spell_name"`
	SpellLevel int    `json:"spell_level"`
}

func (a ActionRequest) mode() dice.Mode {
	switch {
	case a.Advantage && !a.Disadvantage:
		return dice.Advantage
	case a.Disadvantage && !a.Advantage:
		return dice.Disadvantage
	default:
		return dice.Normal
	}
}

// SubmitAction validates turn ownership, resolves the declared action,
// folds the result into the encounter, persists the snapshot and emits
// events. Broadcast, narration and action-log writes are fire-and-forget;
// only the snapshot write can fail the call.
func SubmitAction(repo EncounterRepo, hub Broadcaster, r dice.Roller, encounterUUID string, req ActionRequest, now time.Time) (encounter.Encounter, engine.ActionResult, error) {
	rec, e, err := loadEncounter(repo, encounterUUID)
	if err != nil {
		return encounter.Encounter{}, engine.ActionResult{}, err
	}
	if e.Status != encounter.StatusActive {
		return encounter.Encounter{}, engine.ActionResult{}, ErrEncounterNotActive
	}

	actor, ok := e.FindCombatant(req.ActorID)
	if !ok {
		return encounter.Encounter{}, engine.ActionResult{}, ErrCombatantNotFound
	}
	current, ok := e.CurrentCombatant()
	if !ok || current.ID != actor.ID {
		return encounter.Encounter{}, engine.ActionResult{}, ErrNotCombatantsTurn
	}

	kind := engine.ActionKind(req.Type)
	if actor.IsIncapacitated() && kind != engine.ActionDeathSave {
		return encounter.Encounter{}, engine.ActionResult{}, ErrActorIncapacitated
	}

	res, err := resolve(repo, r, e, actor, kind, req)
	if err != nil {
		return encounter.Encounter{}, engine.ActionResult{}, err
	}

	for _, c := range res.Updated {
		e = e.UpdateCombatant(c)
	}
	e = e.AppendLog(res.Log)
	if res.EndsTurn {
		e = e.EndTurn()
	}

	if verdict := e.ShouldCombatEnd(); verdict != encounter.VerdictContinue {
		reason := "The party is victorious."
		if verdict == encounter.VerdictEnemiesWin {
			reason = "The party has fallen."
		}
		if ended, endErr := e.EndCombat(reason, now); endErr == nil {
			e = ended
			syncCharacters(repo, e)
		}
	}

	if err := saveEncounter(repo, rec, e, now); err != nil {
		return encounter.Encounter{}, engine.ActionResult{}, err
	}
	appendLogRows(repo, rec, res.Log)
	publishAction(hub, e, res.Log, res.Description)
	publishSnapshot(hub, e)
	return e, res, nil
}

func resolve(repo EncounterRepo, r dice.Roller, e encounter.Encounter, actor combat.Combatant, kind engine.ActionKind, req ActionRequest) (engine.ActionResult, error) {
	switch kind {
	case engine.ActionAttack:
		target, err := firstTarget(e, req)
		if err != nil {
			return engine.ActionResult{}, err
		}
		return engine.ResolveAttack(r, actor, target, engine.AttackParams{
			WeaponName:  actor.Weapon.Name,
			AttackBonus: actor.Weapon.AttackBonus,
			DamageDice:  actor.Weapon.DamageDice,
			DamageType:  actor.Weapon.DamageType,
			Mode:        req.mode(),
			Ranged:      actor.Weapon.Ranged,
			Magical:     actor.Weapon.Magical,
		}), nil
	case engine.ActionDash:
		return engine.ResolveDash(actor), nil
	case engine.ActionDodge:
		return engine.ResolveDodge(actor), nil
	case engine.ActionDisengage:
		return engine.ResolveDisengage(actor), nil
	case engine.ActionHelp:
		target, err := firstTarget(e, req)
		if err != nil {
			return engine.ActionResult{}, err
		}
		return engine.ResolveHelp(actor, target, req.HelpType), nil
	case engine.ActionHide:
		return engine.ResolveHide(r, actor, stealthMod(repo, actor), req.DC), nil
	case engine.ActionReady:
		return engine.ResolveReady(actor, req.Trigger, req.Readied), nil
	case engine.ActionMove:
		return engine.ResolveMove(actor, req.Distance), nil
	case engine.ActionStandUp:
		return engine.ResolveStandUp(actor), nil
	case engine.ActionDeathSave:
		if actor.CurrentHP > 0 {
			return engine.ActionResult{}, ErrNotDying
		}
		return engine.ResolveDeathSave(r, actor), nil
	case engine.ActionCastSpell:
		return castSpell(repo, r, e, actor, req)
	default:
		return engine.ActionResult{}, ErrUnknownAction
	}
}

func firstTarget(e encounter.Encounter, req ActionRequest) (combat.Combatant, error) {
	if len(req.Targets) == 0 {
		return combat.Combatant{}, ErrNoTarget
	}
	target, ok := e.FindCombatant(req.Targets[0])
	if !ok {
		return combat.Combatant{}, ErrNoTarget
	}
	return target, nil
}

// stealthMod looks the stealth modifier up on the source character sheet.
// Monsters and missing sheets fall back to the dexterity modifier.
func stealthMod(repo EncounterRepo, actor combat.Combatant) int {
	if actor.SourceKind != "character" {
		return actor.DexMod
	}
	ch, err := repo.GetCharacterByID(actor.SourceID)
	if err != nil || ch == nil {
		return actor.DexMod
	}
	return ch.StealthMod
}

// castSpell orchestrates slot validation and consumption around the spell
// effect registry. Slot consumption is persisted to the character sheet
// immediately; a persistence failure is logged, never surfaced.
func castSpell(repo EncounterRepo, r dice.Roller, e encounter.Encounter, actor combat.Combatant, req ActionRequest) (engine.ActionResult, error) {
	if req.SpellName == "" {
		return engine.ActionResult{}, ErrUnknownAction
	}

	level := req.SpellLevel
	spellBonus := actorSpellAttackBonus(actor)
	var known stats.Spell
	var haveKnown bool
	var row *storage.Character

	if actor.SourceKind == "character" {
		ch, err := repo.GetCharacterByID(actor.SourceID)
		if err == nil && ch != nil {
			cs := stats.ResolveCombatStats(ch)
			if cs.SpellAttackBonus != 0 {
				spellBonus = cs.SpellAttackBonus
			}
			if sp, ok := stats.FindSpell(cs, req.SpellName); ok {
				known = sp
				haveKnown = true
				level = sp.Level
			}
			if !stats.HasSpellSlot(cs, level) {
				return engine.ActionResult{}, ErrNoSpellSlot
			}
			updated, _ := stats.ConsumeSpellSlot(cs, level)
			ch.SlotsJSON = stats.EncodeSlots(updated.Slots)
			row = ch
		}
	}

	res := applySpell(r, e, actor, req, known, haveKnown, spellBonus)

	if row != nil && level > 0 {
		if err := repo.SaveCharacter(row); err != nil {
			logging.Error("failed to persist spell slot consumption", err, logging.Fields{constants.LogFieldCharacterID: row.ID})
		}
	}
	return res, nil
}

func applySpell(r dice.Roller, e encounter.Encounter, actor combat.Combatant, req ActionRequest, known stats.Spell, haveKnown bool, spellBonus int) engine.ActionResult {
	out := actor
	out.ActionUsed = true

	if result, ok := spells.Apply(r, req.SpellName, e.InitiativeOrder, actor.ID, req.Targets); ok {
		updated := make([]combat.Combatant, len(result.Roster))
		copy(updated, result.Roster)
		for i := range updated {
			if updated[i].ID == actor.ID {
				updated[i].ActionUsed = true
			}
		}
		return engine.ActionResult{
			Updated: updated,
			Log: combat.LogEntry{
				Actor:      actor.Name,
				ActionType: string(engine.ActionCastSpell),
				Targets:    targetNames(e, req.Targets),
				Outcome:    result.Description,
			},
			Description: result.Description,
			EndsTurn:    true,
		}
	}

	// Healing and attack spells from the character sheet route through the
	// shared primitives.
	if haveKnown && known.Healing && known.Dice != "" && len(req.Targets) > 0 {
		if target, ok := e.FindCombatant(req.Targets[0]); ok {
			roll := dice.Roll(r, known.Dice, false)
			healed, applied := combat.ApplyHealing(target, roll.Total)
			desc := fmt.Sprintf("%s casts %s on %s, restoring %d HP", actor.Name, known.Name, target.Name, applied)
			return engine.ActionResult{
				Updated: []combat.Combatant{out, healed},
				Log: combat.LogEntry{
					Actor:      actor.Name,
					ActionType: string(engine.ActionCastSpell),
					Targets:    []string{target.Name},
					Healing:    applied,
					Rolls:      roll.Rolls,
					Outcome:    desc,
				},
				Description: desc,
				EndsTurn:    true,
			}
		}
	}
	if haveKnown && known.RequiresAttack && len(req.Targets) > 0 {
		if target, ok := e.FindCombatant(req.Targets[0]); ok {
			return engine.ResolveAttack(r, actor, target, engine.AttackParams{
				WeaponName:  known.Name,
				AttackBonus: spellBonus,
				DamageDice:  known.Dice,
				DamageType:  known.DamageType,
				Mode:        req.mode(),
				Magical:     true,
			})
		}
	}

	// Unregistered, non-mechanical spell: generic cast-and-describe.
	desc := fmt.Sprintf("%s casts %s", actor.Name, req.SpellName)
	return engine.ActionResult{
		Updated: []combat.Combatant{out},
		Log: combat.LogEntry{
			Actor:      actor.Name,
			ActionType: string(engine.ActionCastSpell),
			Targets:    targetNames(e, req.Targets),
			Outcome:    desc,
		},
		Description: desc,
		EndsTurn:    true,
	}
}

// targetNames resolves target IDs to display names for the action log.
// Unknown IDs pass through unchanged.
func targetNames(e encounter.Encounter, ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	names := make([]string, len(ids))
	for i, id := range ids {
		if c, ok := e.FindCombatant(id); ok {
			names[i] = c.Name
			continue
		}
		names[i] = id
	}
	return names
}

// actorSpellAttackBonus is the fallback when no character sheet carries a
// spell attack bonus. Proficiency 2 plus the wisdom modifier.
func actorSpellAttackBonus(actor combat.Combatant) int {
	return actor.WisMod + 2
}

// appendLogRows mirrors the log entry into the action-log table.
// Failures are logged and swallowed; the snapshot already carries the log.
func appendLogRows(repo EncounterRepo, rec *storage.EncounterRecord, entry combat.LogEntry) {
	row := storage.ActionLogRecord{
		EncounterRecordID: rec.ID,
		Round:             entry.Round,
		Actor:             entry.Actor,
		ActionType:        entry.ActionType,
		Targets:           joinNames(entry.Targets),
		Damage:            entry.Damage,
		Healing:           entry.Healing,
		Outcome:           entry.Outcome,
	}
	if err := repo.AppendActionLog(rec.ID, []storage.ActionLogRecord{row}); err != nil {
		logging.Error("failed to store action log", err, logging.Fields{constants.LogFieldEncounterID: rec.EncounterUUID})
	}
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
