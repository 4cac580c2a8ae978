package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/letser/plotplay/pkg/game"
	"github.com/letser/plotplay/pkg/pacing"
	"github.com/letser/plotplay/pkg/wardrobe"
)

// Condition is an active character condition. Conditions with a time
// multiplier scale the cost of the character's actions.
type Condition struct {
	ID             string  `json:"id"`
	TimeMultiplier float64 `json:"time_multiplier,omitempty"`
}

// CharacterState is the mutable per-character slice of a session.
type CharacterState struct {
	Name       string          `json:"name"`
	Meters     map[string]int  `json:"meters,omitempty"`
	Inventory  map[string]int  `json:"inventory,omitempty"` // item id to count
	Wardrobe   *wardrobe.State `json:"wardrobe,omitempty"`
	Conditions []Condition     `json:"conditions,omitempty"`
}

// Modifiers collects the time modifiers of the character's active
// conditions.
func (cs *CharacterState) Modifiers() []pacing.Modifier {
	var mods []pacing.Modifier
	for _, c := range cs.Conditions {
		if c.TimeMultiplier > 0 {
			mods = append(mods, pacing.Modifier{Condition: c.ID, Multiplier: c.TimeMultiplier})
		}
	}
	return mods
}

// HasCondition reports whether the condition is active.
func (cs *CharacterState) HasCondition(id string) bool {
	for _, c := range cs.Conditions {
		if c.ID == id {
			return true
		}
	}
	return false
}

// AddCondition activates a condition, replacing one already active
// under the same id.
func (cs *CharacterState) AddCondition(c Condition) {
	for i := range cs.Conditions {
		if cs.Conditions[i].ID == c.ID {
			cs.Conditions[i] = c
			return
		}
	}
	cs.Conditions = append(cs.Conditions, c)
}

// RemoveCondition deactivates a condition if active.
func (cs *CharacterState) RemoveCondition(id string) bool {
	for i := range cs.Conditions {
		if cs.Conditions[i].ID == id {
			cs.Conditions = append(cs.Conditions[:i], cs.Conditions[i+1:]...)
			return true
		}
	}
	return false
}

// WorldState is the full mutable state of one play session.
type WorldState struct {
	ID     uuid.UUID `json:"id"` // unique per session
	GameID string    `json:"game_id"`

	Clock    pacing.Clock `json:"clock"`
	Zone     string       `json:"zone"`
	Location string       `json:"location"`
	Player   string       `json:"player"` // character id the player controls

	Characters map[string]*CharacterState `json:"characters"`
	Flags      map[string]bool            `json:"flags,omitempty"`

	// Visit accumulator for the active node instance. VisitID changes
	// whenever a new node is entered, which resets the spend.
	VisitID    string `json:"visit_id,omitempty"`
	VisitSpent int    `json:"visit_spent,omitempty"`

	TurnCount int       `json:"turn_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewWorldState starts a fresh session at the game's opening position,
// with every character on default meters and dressed in their starting
// outfit.
func NewWorldState(g *game.Game) *WorldState {
	now := time.Now().UTC()
	ws := &WorldState{
		ID:         uuid.New(),
		GameID:     g.ID,
		Clock:      pacing.NewClock(g),
		Zone:       g.Start.Zone,
		Location:   g.Start.Location,
		Player:     g.Start.Player,
		Characters: make(map[string]*CharacterState, len(g.Characters)),
		Flags:      make(map[string]bool),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	dresser := wardrobe.NewMachine(g, nil)
	for _, c := range g.Characters {
		cs := &CharacterState{
			Name:      c.Name,
			Meters:    make(map[string]int, len(g.Meters)),
			Inventory: make(map[string]int),
			Wardrobe:  wardrobe.NewState(),
		}
		for name, def := range g.Meters {
			cs.Meters[name] = def.Default
		}
		for name, value := range c.Meters {
			if def, ok := g.Meters[name]; ok {
				cs.Meters[name] = clampMeter(value, def)
			}
		}
		if c.Outfit != "" {
			dresser.PutOnOutfit(cs.Wardrobe, c.Outfit)
		}
		ws.Characters[c.ID] = cs
	}

	return ws
}

// Character returns the state of a cast member by id.
func (ws *WorldState) Character(id string) (*CharacterState, bool) {
	cs, ok := ws.Characters[id]
	return cs, ok
}

// PlayerState returns the state of the player-controlled character.
func (ws *WorldState) PlayerState() *CharacterState {
	return ws.Characters[ws.Player]
}

// EnterVisit starts a fresh visit accumulator for a new node instance.
func (ws *WorldState) EnterVisit(id string) {
	ws.VisitID = id
	ws.VisitSpent = 0
}

func clampMeter(value int, def game.MeterDef) int {
	if value < def.Min {
		return def.Min
	}
	if value > def.Max {
		return def.Max
	}
	return value
}
