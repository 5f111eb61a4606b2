package service

import (
	"github.com/ravoni/battlegrid/internal/broadcast"
	"github.com/ravoni/battlegrid/internal/combat"
	"github.com/ravoni/battlegrid/internal/encounter"
	"github.com/ravoni/battlegrid/internal/narration"
)

func combatStartEntry(e encounter.Encounter) combat.LogEntry {
	first := ""
	if c, ok := e.CurrentCombatant(); ok {
		first = c.Name
	}
	return combat.LogEntry{
		Round:      e.Round,
		Actor:      "system",
		ActionType: "combat_start",
		Outcome:    "Combat begins. " + first + " acts first.",
	}
}

// publishAction emits the action event, optionally narrated. Narration
// involves a network call, so the whole emission runs in a goroutine;
// mechanical state is already committed by then.
func publishAction(hub Broadcaster, e encounter.Encounter, entry combat.LogEntry, description string) {
	if hub == nil {
		return
	}
	go func() {
		ev := broadcast.ActionEvent{
			Type:        "action",
			EncounterID: e.ID,
			Round:       entry.Round,
			Actor:       entry.Actor,
			Targets:     entry.Targets,
			Description: description,
			Damage:      entry.Damage,
			Healing:     entry.Healing,
		}
		if narration.Enabled() {
			ev.Narration = narration.Narrate(narration.Outcome{
				Actor:       entry.Actor,
				Targets:     entry.Targets,
				Description: description,
				Round:       entry.Round,
			})
		}
		hub.Publish(e.ID, ev)
	}()
}

// publishSnapshot emits the full visible encounter state.
func publishSnapshot(hub Broadcaster, e encounter.Encounter) {
	if hub == nil {
		return
	}
	hub.Publish(e.ID, buildSnapshot(e))
}

func buildSnapshot(e encounter.Encounter) broadcast.SnapshotEvent {
	ev := broadcast.SnapshotEvent{
		Type:        "snapshot",
		EncounterID: e.ID,
		Status:      string(e.Status),
		Round:       e.Round,
		TurnIndex:   e.CurrentTurnIndex,
	}
	for i, c := range e.InitiativeOrder {
		view := broadcast.CombatantView{
			ID:          c.ID,
			Name:        c.Name,
			Kind:        string(c.Type),
			Initiative:  c.Initiative,
			CurrentHP:   c.CurrentHP,
			MaxHP:       c.MaxHP,
			ArmorClass:  c.ArmorClass,
			CurrentTurn: e.Status == encounter.StatusActive && i == e.CurrentTurnIndex,
		}
		for _, cond := range c.Conditions {
			view.Conditions = append(view.Conditions, cond.Name)
		}
		ev.Combatants = append(ev.Combatants, view)
	}
	return ev
}
