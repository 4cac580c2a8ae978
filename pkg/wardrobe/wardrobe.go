package wardrobe

import (
	"log/slog"

	"github.com/letser/plotplay/pkg/game"
)

// GarmentState is the condition of a worn garment at one body slot.
type GarmentState string

const (
	StateIntact    GarmentState = game.GarmentIntact
	StateOpened    GarmentState = game.GarmentOpened
	StateDisplaced GarmentState = game.GarmentDisplaced
	StateRemoved   GarmentState = game.GarmentRemoved
)

// ValidState reports whether s is one of the four garment states.
func ValidState(s GarmentState) bool {
	switch s {
	case StateIntact, StateOpened, StateDisplaced, StateRemoved:
		return true
	}
	return false
}

// State is one character's wardrobe. SlotToItem and Layers always carry
// the same slot keys: an item occupies a slot if and only if that slot
// has a garment state.
type State struct {
	SlotToItem    map[string]string       `json:"slot_to_item,omitempty"`
	Layers        map[string]GarmentState `json:"layers,omitempty"`
	CurrentOutfit string                  `json:"current_outfit,omitempty"`
}

// NewState returns an empty wardrobe.
func NewState() *State {
	return &State{
		SlotToItem: make(map[string]string),
		Layers:     make(map[string]GarmentState),
	}
}

// Worn returns the slots an item currently occupies.
func (s *State) Worn(item string) []string {
	var slots []string
	for slot, occupant := range s.SlotToItem {
		if occupant == item {
			slots = append(slots, slot)
		}
	}
	return slots
}

// IsWorn reports whether the item occupies any slot.
func (s *State) IsWorn(item string) bool {
	return len(s.Worn(item)) > 0
}

// ensure lazily initializes the maps so a zero-valued State loaded from
// persistence behaves like NewState.
func (s *State) ensure() {
	if s.SlotToItem == nil {
		s.SlotToItem = make(map[string]string)
	}
	if s.Layers == nil {
		s.Layers = make(map[string]GarmentState)
	}
}

// Machine validates and applies wardrobe operations against a game's
// garment and outfit definitions. All operations return a success flag
// and leave the state untouched on failure.
type Machine struct {
	game   *game.Game
	logger *slog.Logger
}

// NewMachine creates a wardrobe machine for a loaded game.
func NewMachine(g *game.Game, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{game: g, logger: logger}
}

// PutOn dresses a character in an item, occupying every slot the item
// covers. Fails if the item is unknown, the initial state is not
// supported, or any target slot is occupied.
func (m *Machine) PutOn(s *State, item string, initial GarmentState) bool {
	if m.putOn(s, item, initial) {
		s.CurrentOutfit = ""
		return true
	}
	return false
}

func (m *Machine) putOn(s *State, item string, initial GarmentState) bool {
	s.ensure()

	gar, ok := m.game.Garment(item)
	if !ok {
		m.logger.Warn("Unknown garment", "item", item)
		return false
	}
	if initial == "" {
		initial = StateIntact
	}
	if !ValidState(initial) || !gar.SupportsState(string(initial)) {
		m.logger.Warn("Garment does not support state", "item", gar.ID, "state", initial)
		return false
	}

	for _, slot := range gar.Slots {
		if occupant, taken := s.SlotToItem[slot]; taken {
			m.logger.Warn("Slot already occupied", "slot", slot, "item", gar.ID, "occupant", occupant)
			return false
		}
	}

	for _, slot := range gar.Slots {
		s.SlotToItem[slot] = gar.ID
		s.Layers[slot] = initial
	}
	return true
}

// TakeOff removes an item, clearing every slot it occupies. Fails if the
// item is not worn or is locked.
func (m *Machine) TakeOff(s *State, item string) bool {
	if m.takeOff(s, item) {
		s.CurrentOutfit = ""
		return true
	}
	return false
}

func (m *Machine) takeOff(s *State, item string) bool {
	s.ensure()

	id := item
	if gar, ok := m.game.Garment(item); ok {
		id = gar.ID
		if gar.Locked {
			m.logger.Warn("Garment is locked", "item", id)
			return false
		}
	}

	slots := s.Worn(id)
	if len(slots) == 0 {
		m.logger.Warn("Garment is not worn", "item", id)
		return false
	}

	for _, slot := range slots {
		delete(s.SlotToItem, slot)
		delete(s.Layers, slot)
	}
	return true
}

// SetItemState moves a worn item to a new state across every slot it
// occupies.
func (m *Machine) SetItemState(s *State, item string, to GarmentState) bool {
	s.ensure()

	gar, ok := m.game.Garment(item)
	if !ok {
		m.logger.Warn("Unknown garment", "item", item)
		return false
	}

	slots := s.Worn(gar.ID)
	if len(slots) == 0 {
		m.logger.Warn("Garment is not worn", "item", gar.ID)
		return false
	}
	if !m.stateAllowed(gar, to) {
		return false
	}

	for _, slot := range slots {
		s.Layers[slot] = to
	}
	s.CurrentOutfit = ""
	return true
}

// SetSlotState moves a single occupied slot to a new state, leaving the
// occupying item's other slots alone.
func (m *Machine) SetSlotState(s *State, slot string, to GarmentState) bool {
	s.ensure()

	item, ok := s.SlotToItem[slot]
	if !ok {
		m.logger.Warn("Slot is empty", "slot", slot)
		return false
	}
	gar, ok := m.game.Garment(item)
	if !ok {
		m.logger.Warn("Worn item has no garment definition", "item", item, "slot", slot)
		return false
	}
	if !m.stateAllowed(gar, to) {
		return false
	}

	s.Layers[slot] = to
	s.CurrentOutfit = ""
	return true
}

// stateAllowed checks a target state against the garment's supported
// states and the locked rule: a locked garment can never be set to
// removed.
func (m *Machine) stateAllowed(gar *game.Garment, to GarmentState) bool {
	if !ValidState(to) || !gar.SupportsState(string(to)) {
		m.logger.Warn("Garment does not support state", "item", gar.ID, "state", to)
		return false
	}
	if gar.Locked && to == StateRemoved {
		m.logger.Warn("Locked garment cannot be removed", "item", gar.ID)
		return false
	}
	return true
}

// PutOnOutfit dresses a character in an outfit, item by item in outfit
// order, applying the outfit's per-slot target states. CurrentOutfit is
// set only when every member went on; a partial application leaves the
// successfully worn members in place.
func (m *Machine) PutOnOutfit(s *State, outfitID string) bool {
	s.ensure()

	outfit, ok := m.game.Outfit(outfitID)
	if !ok {
		m.logger.Warn("Unknown outfit", "outfit", outfitID)
		return false
	}

	all := true
	any := false
	for _, item := range outfit.Items {
		if !m.putOn(s, item, StateIntact) {
			all = false
			continue
		}
		any = true
		gar, _ := m.game.Garment(item)
		for _, slot := range gar.Slots {
			if target, ok := outfit.States[slot]; ok {
				s.Layers[slot] = GarmentState(target)
			}
		}
	}

	if all {
		s.CurrentOutfit = outfit.ID
	} else if any {
		// Partially applied: whatever was current is disturbed, and the
		// new outfit is not fully worn either.
		s.CurrentOutfit = ""
	}
	return all
}

// TakeOffOutfit removes an outfit's members in order. Locked or unworn
// members fail individually without stopping the rest. CurrentOutfit is
// cleared when anything came off.
func (m *Machine) TakeOffOutfit(s *State, outfitID string) bool {
	s.ensure()

	outfit, ok := m.game.Outfit(outfitID)
	if !ok {
		m.logger.Warn("Unknown outfit", "outfit", outfitID)
		return false
	}

	all := true
	any := false
	for _, item := range outfit.Items {
		if m.takeOff(s, item) {
			any = true
		} else {
			all = false
		}
	}

	if any {
		s.CurrentOutfit = ""
	}
	return all
}
