package game

// Garment states recognized by the wardrobe machine, in chain order.
const (
	GarmentIntact    = "intact"
	GarmentOpened    = "opened"
	GarmentDisplaced = "displaced"
	GarmentRemoved   = "removed"
)

// Garment is a content-defined wearable. It occupies every slot it
// lists; States restricts which garment states it supports (empty means
// all four); a locked garment cannot be set to removed or taken off.
type Garment struct {
	ID     string   `yaml:"id" json:"id"`
	Name   string   `yaml:"name" json:"name"`
	Slots  []string `yaml:"slots" json:"slots"`
	States []string `yaml:"states,omitempty" json:"states,omitempty"`
	Locked bool     `yaml:"locked,omitempty" json:"locked,omitempty"`
}

// Outfit is an ordered set of garments worn together, with optional
// per-slot target states applied when the outfit is put on.
type Outfit struct {
	ID     string            `yaml:"id" json:"id"`
	Name   string            `yaml:"name" json:"name"`
	Items  []string          `yaml:"items" json:"items"`
	States map[string]string `yaml:"states,omitempty" json:"states,omitempty"` // slot -> target state
}

// SupportsState reports whether the garment can hold the given state.
func (g *Garment) SupportsState(state string) bool {
	if len(g.States) == 0 {
		switch state {
		case GarmentIntact, GarmentOpened, GarmentDisplaced, GarmentRemoved:
			return true
		}
		return false
	}
	for _, s := range g.States {
		if s == state {
			return true
		}
	}
	return false
}

// Covers reports whether the garment occupies the given body slot.
func (g *Garment) Covers(slot string) bool {
	for _, s := range g.Slots {
		if s == slot {
			return true
		}
	}
	return false
}
