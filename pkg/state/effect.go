package state

import "github.com/letser/plotplay/pkg/pacing"

// EffectKind selects the variant of an Effect.
type EffectKind string

const (
	EffectMeterDelta      EffectKind = "meter_delta"
	EffectInventoryDelta  EffectKind = "inventory_delta"
	EffectClothingPutOn   EffectKind = "clothing_put_on"
	EffectClothingTakeOff EffectKind = "clothing_take_off"
	EffectClothingState   EffectKind = "clothing_state"
	EffectClothingSlot    EffectKind = "clothing_slot_state"
	EffectOutfitPutOn     EffectKind = "outfit_put_on"
	EffectOutfitTakeOff   EffectKind = "outfit_take_off"
	EffectFlagSet         EffectKind = "flag_set"
	EffectMove            EffectKind = "move"
)

// Effect is one requested change to the world state. Effects are
// produced upstream and consumed exactly once, in order, by a Resolver.
// Kind selects which of the remaining fields are read.
type Effect struct {
	Kind EffectKind `json:"kind"`

	// Character the effect targets. Empty means the player.
	Character string `json:"character,omitempty"`

	// meter_delta
	Meter string `json:"meter,omitempty"`
	Delta int    `json:"delta,omitempty"`

	// inventory_delta reuses Delta for the count change.
	Item string `json:"item,omitempty"`

	// clothing_* and outfit_*
	Garment string `json:"garment,omitempty"`
	State   string `json:"state,omitempty"`
	Slot    string `json:"slot,omitempty"`
	Outfit  string `json:"outfit,omitempty"`

	// flag_set
	Flag  string `json:"flag,omitempty"`
	Value bool   `json:"value,omitempty"`

	// move: a Zone different from the current one makes the move a
	// travel via Method, arriving at Location. Otherwise Location is a
	// local destination in the current zone.
	Zone     string `json:"zone,omitempty"`
	Location string `json:"location,omitempty"`
	Method   string `json:"method,omitempty"`
}

// Action describes one player turn for the resolver: its pacing kind and
// any author-specified time overrides carried by the chosen choice or
// the active node.
type Action struct {
	Kind pacing.Kind `json:"kind"`

	// Minutes and Category are the author's explicit time overrides.
	Minutes  *int   `json:"minutes,omitempty"`
	Category string `json:"category,omitempty"`

	// NodeOverrides and CapPerVisit come from the active node.
	NodeOverrides map[pacing.Kind]string `json:"node_overrides,omitempty"`
	CapPerVisit   *int                   `json:"cap_per_visit,omitempty"`
}

// Outcome reports what applying one action did.
type Outcome struct {
	Time     pacing.Result `json:"time"`
	Applied  int           `json:"applied"`
	Rejected int           `json:"rejected"`
	Summary  string        `json:"summary"`
	Snapshot *Snapshot     `json:"snapshot"`
}
