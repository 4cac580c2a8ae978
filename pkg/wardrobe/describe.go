package wardrobe

import (
	"sort"
	"strings"
)

// Describe composes a wardrobe line for narrative context, grouping
// slots by item and only qualifying states that differ from intact.
func (m *Machine) Describe(s *State) string {
	if s == nil || len(s.SlotToItem) == 0 {
		return "Nothing worn."
	}

	items := make(map[string][]string)
	for slot, item := range s.SlotToItem {
		items[item] = append(items[item], slot)
	}

	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		slots := items[id]
		sort.Strings(slots)

		allIntact := true
		states := make(map[GarmentState]bool)
		for _, slot := range slots {
			st := s.Layers[slot]
			states[st] = true
			if st != StateIntact {
				allIntact = false
			}
		}

		name := m.game.GarmentName(id)
		switch {
		case allIntact:
			parts = append(parts, name)
		case len(states) == 1:
			// Whole garment in one non-intact state.
			parts = append(parts, name+" ("+string(s.Layers[slots[0]])+")")
		default:
			quals := make([]string, 0, len(slots))
			for _, slot := range slots {
				quals = append(quals, slot+" "+string(s.Layers[slot]))
			}
			parts = append(parts, name+" ("+strings.Join(quals, ", ")+")")
		}
	}

	return "Wearing: " + strings.Join(parts, ", ") + "."
}
