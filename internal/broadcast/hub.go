// Package broadcast fans combat events out to websocket watchers. Each
// encounter has its own subscriber set; publishing never blocks combat
// resolution, a slow watcher simply drops messages.
package broadcast

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/ravoni/battlegrid/internal/constants"
	"github.com/ravoni/battlegrid/internal/logging"
)

// ActionEvent notifies watchers that a combat action resolved.
type ActionEvent struct {
	Type        string   `json:"type"`
	EncounterID string   `json:"encounter_id"`
	Round       int      `json:"round"`
	Actor       string   `json:"actor"`
	Targets     []string `json:"targets,omitempty"`
	Description string   `json:"description"`
	Narration   string   `json:"narration,omitempty"`
	Damage      int      `json:"damage,omitempty"`
	Healing     int      `json:"healing,omitempty"`
}

// CombatantView is the per-combatant slice of a snapshot.
type CombatantView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	Initiative  int      `json:"initiative"`
	CurrentHP   int      `json:"current_hp"`
	MaxHP       int      `json:"max_hp"`
	ArmorClass  int      `json:"armor_class"`
	Conditions  []string `json:"conditions,omitempty"`
	CurrentTurn bool     `json:"current_turn"`
}

// SnapshotEvent carries the full visible encounter state.
type SnapshotEvent struct {
	Type        string          `json:"type"`
	EncounterID string          `json:"encounter_id"`
	Status      string          `json:"status"`
	Round       int             `json:"round"`
	TurnIndex   int             `json:"turn_index"`
	Combatants  []CombatantView `json:"combatants"`
}

const subscriberBuffer = 16

type subscriber struct {
	ch chan []byte
}

// Hub routes events to subscribers grouped by encounter ID.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*subscriber]struct{})}
}

func (h *Hub) subscribe(encounterID string) *subscriber {
	s := &subscriber{ch: make(chan []byte, subscriberBuffer)}
	h.mu.Lock()
	if h.subs[encounterID] == nil {
		h.subs[encounterID] = make(map[*subscriber]struct{})
	}
	h.subs[encounterID][s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) unsubscribe(encounterID string, s *subscriber) {
	h.mu.Lock()
	if set, ok := h.subs[encounterID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, encounterID)
		}
	}
	h.mu.Unlock()
}

// Publish sends an event to every watcher of the encounter. Marshal
// errors and full subscriber buffers drop the message; combat state is
// already committed by the time events are published.
func (h *Hub) Publish(encounterID string, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		logging.Error("broadcast marshal failed", err, logging.Fields{constants.LogFieldEncounterID: encounterID})
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[encounterID] {
		select {
		case s.ch <- data:
		default:
		}
	}
}

// WatcherCount reports current subscribers for an encounter.
func (h *Hub) WatcherCount(encounterID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[encounterID])
}

const writeTimeout = 5 * time.Second

// ServeWatch upgrades the request to a websocket and streams events for
// the encounter until the client disconnects.
func (h *Hub) ServeWatch(w http.ResponseWriter, r *http.Request, encounterID string) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		logging.Error("websocket accept failed", err, logging.Fields{constants.LogFieldEncounterID: encounterID})
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	s := h.subscribe(encounterID)
	defer h.unsubscribe(encounterID, s)

	ctx := r.Context()
	// Reads are discarded; watchers are receive-only, but the read pump
	// is what notices a closed connection.
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case data := <-s.ch:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
