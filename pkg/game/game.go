package game

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MinutesPerDay is the length of one in-game day at minute resolution.
const MinutesPerDay = 1440

// Game is the static definition of a playable world. It is loaded once,
// validated, and treated as read-only for the lifetime of every session
// that plays it.
type Game struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`

	Time       TimeConfig          `yaml:"time" json:"time"`
	Meters     map[string]MeterDef `yaml:"meters,omitempty" json:"meters,omitempty"`
	Characters []Character         `yaml:"characters" json:"characters"`
	Methods    []TravelMethod      `yaml:"travel_methods,omitempty" json:"travel_methods,omitempty"`
	Zones      []Zone              `yaml:"zones" json:"zones"`
	Garments   []Garment           `yaml:"garments,omitempty" json:"garments,omitempty"`
	Outfits    []Outfit            `yaml:"outfits,omitempty" json:"outfits,omitempty"`
	Start      Start               `yaml:"start" json:"start"`
}

// Start is the opening position of a new session.
type Start struct {
	Zone     string `yaml:"zone" json:"zone"`
	Location string `yaml:"location" json:"location"`
	Player   string `yaml:"player" json:"player"` // character id the player controls
}

// MeterDef bounds a named character meter. Deltas are clamped into
// [Min, Max]; Default seeds new sessions.
type MeterDef struct {
	Min     int `yaml:"min" json:"min"`
	Max     int `yaml:"max" json:"max"`
	Default int `yaml:"default" json:"default"`
}

// Character is a content-defined cast member.
type Character struct {
	ID     string         `yaml:"id" json:"id"`
	Name   string         `yaml:"name" json:"name"`
	Outfit string         `yaml:"outfit,omitempty" json:"outfit,omitempty"`  // starting outfit
	Meters map[string]int `yaml:"meters,omitempty" json:"meters,omitempty"`  // overrides of meter defaults
}

// Parse decodes and validates a single game document. Unknown fields are
// rejected so authoring typos surface at load rather than as silently
// ignored configuration.
func Parse(data []byte) (*Game, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var g Game
	if err := dec.Decode(&g); err != nil {
		return nil, fmt.Errorf("failed to decode game: %w", err)
	}

	if errs := g.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid game %q:\n  - %s", g.ID, strings.Join(errs, "\n  - "))
	}

	return &g, nil
}

// LoadFile reads and parses a game document from disk.
func LoadFile(path string) (*Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game file %s: %w", path, err)
	}

	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Character resolves a cast member by id or display name.
func (g *Game) Character(idOrName string) (*Character, bool) {
	for i := range g.Characters {
		if g.Characters[i].ID == idOrName || NormalizeID(g.Characters[i].Name) == NormalizeID(idOrName) {
			return &g.Characters[i], true
		}
	}
	return nil, false
}

// Zone resolves a zone by id or display name.
func (g *Game) Zone(idOrName string) (*Zone, bool) {
	for i := range g.Zones {
		if g.Zones[i].ID == idOrName || NormalizeID(g.Zones[i].Name) == NormalizeID(idOrName) {
			return &g.Zones[i], true
		}
	}
	return nil, false
}

// ZoneOf returns the zone containing the given location id, if any.
func (g *Game) ZoneOf(locationID string) (*Zone, bool) {
	for i := range g.Zones {
		if _, ok := g.Zones[i].Location(locationID); ok {
			return &g.Zones[i], true
		}
	}
	return nil, false
}

// Method resolves a travel method by id or display name.
func (g *Game) Method(idOrName string) (*TravelMethod, bool) {
	for i := range g.Methods {
		if g.Methods[i].ID == idOrName || NormalizeID(g.Methods[i].Name) == NormalizeID(idOrName) {
			return &g.Methods[i], true
		}
	}
	return nil, false
}

// Garment resolves a garment by id or display name.
func (g *Game) Garment(idOrName string) (*Garment, bool) {
	for i := range g.Garments {
		if g.Garments[i].ID == idOrName || NormalizeID(g.Garments[i].Name) == NormalizeID(idOrName) {
			return &g.Garments[i], true
		}
	}
	return nil, false
}

// Outfit resolves an outfit by id or display name.
func (g *Game) Outfit(idOrName string) (*Outfit, bool) {
	for i := range g.Outfits {
		if g.Outfits[i].ID == idOrName || NormalizeID(g.Outfits[i].Name) == NormalizeID(idOrName) {
			return &g.Outfits[i], true
		}
	}
	return nil, false
}

// GarmentName returns the display name for a garment id, deriving one
// from the id when the content supplies none.
func (g *Game) GarmentName(id string) string {
	if gar, ok := g.Garment(id); ok && gar.Name != "" {
		return gar.Name
	}
	return TitleFromID(id)
}

// LocationName returns the display name for a location id.
func (g *Game) LocationName(id string) string {
	for i := range g.Zones {
		if loc, ok := g.Zones[i].Location(id); ok && loc.Name != "" {
			return loc.Name
		}
	}
	return TitleFromID(id)
}

// OutfitName returns the display name for an outfit id.
func (g *Game) OutfitName(id string) string {
	if o, ok := g.Outfit(id); ok && o.Name != "" {
		return o.Name
	}
	return TitleFromID(id)
}
