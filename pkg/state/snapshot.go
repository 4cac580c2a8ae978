package state

import (
	"github.com/letser/plotplay/pkg/game"
	"github.com/letser/plotplay/pkg/wardrobe"
)

// Snapshot is the read-only view of a world state handed to the
// narrative layer after each action. Maps are copied so the snapshot
// stays stable while the next action mutates the live state.
type Snapshot struct {
	Clock      ClockView                `json:"clock"`
	Zone       string                   `json:"zone"`
	ZoneName   string                   `json:"zone_name"`
	Location   string                   `json:"location"`
	LocName    string                   `json:"location_name"`
	Characters map[string]CharacterView `json:"characters"`
	Flags      map[string]bool          `json:"flags,omitempty"`
	TurnCount  int                      `json:"turn_count"`
}

// ClockView is the clock as the narrative layer sees it.
type ClockView struct {
	Minutes int    `json:"minutes"`
	Time    string `json:"time"` // HH:MM
	Slot    string `json:"slot"`
	Day     int    `json:"day"`
	Weekday string `json:"weekday"`
}

// CharacterView is one character's visible state.
type CharacterView struct {
	Name      string         `json:"name"`
	Meters    map[string]int `json:"meters,omitempty"`
	Inventory map[string]int `json:"inventory,omitempty"`
	Wardrobe  string         `json:"wardrobe"`
	Outfit    string         `json:"outfit,omitempty"`
}

// NewSnapshot renders a world state into its narrative view.
func NewSnapshot(ws *WorldState, g *game.Game) *Snapshot {
	dresser := wardrobe.NewMachine(g, nil)

	snap := &Snapshot{
		Clock: ClockView{
			Minutes: ws.Clock.Minutes,
			Time:    ws.Clock.String(),
			Slot:    g.Time.SlotAt(ws.Clock.Minutes),
			Day:     ws.Clock.Day,
			Weekday: ws.Clock.WeekdayName(g),
		},
		Zone:       ws.Zone,
		Location:   ws.Location,
		LocName:    g.LocationName(ws.Location),
		Characters: make(map[string]CharacterView, len(ws.Characters)),
		Flags:      copyFlags(ws.Flags),
		TurnCount:  ws.TurnCount,
	}
	if z, ok := g.Zone(ws.Zone); ok {
		snap.ZoneName = z.Name
	}

	for id, cs := range ws.Characters {
		snap.Characters[id] = CharacterView{
			Name:      cs.Name,
			Meters:    copyCounts(cs.Meters),
			Inventory: copyCounts(cs.Inventory),
			Wardrobe:  dresser.Describe(cs.Wardrobe),
			Outfit:    currentOutfit(cs),
		}
	}
	return snap
}

func currentOutfit(cs *CharacterState) string {
	if cs.Wardrobe == nil {
		return ""
	}
	return cs.Wardrobe.CurrentOutfit
}

func copyCounts(m map[string]int) map[string]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyFlags(m map[string]bool) map[string]bool {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
