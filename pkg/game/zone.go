package game

// Zone is a region of the world containing locations. Movement between
// locations inside a zone is "local"; movement between zones is "travel"
// and goes through a Connection.
type Zone struct {
	ID        string         `yaml:"id" json:"id"`
	Name      string         `yaml:"name" json:"name"`
	Movement  *LocalMovement `yaml:"movement,omitempty" json:"movement,omitempty"`
	Locations []Location     `yaml:"locations" json:"locations"`
	Connects  []Connection   `yaml:"connections,omitempty" json:"connections,omitempty"`
}

// LocalMovement is a zone's flat cost for moving between its locations.
// Exactly one of Minutes or Category may be set; a zone with neither
// falls back to the global movement default category.
type LocalMovement struct {
	Minutes  *int   `yaml:"minutes,omitempty" json:"minutes,omitempty"`
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
}

// Location is one place inside a zone.
type Location struct {
	ID    string   `yaml:"id" json:"id"`
	Name  string   `yaml:"name" json:"name"`
	Exits []string `yaml:"exits,omitempty" json:"exits,omitempty"` // ids of same-zone locations reachable from here
}

// Connection links a zone to another zone for travel.
type Connection struct {
	To       string   `yaml:"to" json:"to"`
	Distance float64  `yaml:"distance" json:"distance"`
	Methods  []string `yaml:"methods" json:"methods"`
	Entries  []string `yaml:"entries,omitempty" json:"entries,omitempty"` // valid arrival locations; empty allows any
}

// TravelMethod defines how a traveller crosses a zone connection. Exactly
// one of TimeCost, Speed or Category must be set: TimeCost is minutes per
// distance unit, Speed is distance units per hour, Category defers to the
// category table.
type TravelMethod struct {
	ID       string  `yaml:"id" json:"id"`
	Name     string  `yaml:"name" json:"name"`
	Mode     string  `yaml:"mode" json:"mode"` // "active" (modifier-subject) or "passive"
	TimeCost float64 `yaml:"time_cost,omitempty" json:"time_cost,omitempty"`
	Speed    float64 `yaml:"speed,omitempty" json:"speed,omitempty"`
	Category string  `yaml:"category,omitempty" json:"category,omitempty"`
}

// Passive reports whether the method is exempt from time modifiers.
func (m *TravelMethod) Passive() bool {
	return m.Mode == "passive"
}

// Location resolves a location in this zone by id or display name.
func (z *Zone) Location(idOrName string) (*Location, bool) {
	for i := range z.Locations {
		if z.Locations[i].ID == idOrName || NormalizeID(z.Locations[i].Name) == NormalizeID(idOrName) {
			return &z.Locations[i], true
		}
	}
	return nil, false
}

// Connection resolves this zone's connection to a destination zone.
func (z *Zone) Connection(toZone string) (*Connection, bool) {
	for i := range z.Connects {
		if z.Connects[i].To == toZone {
			return &z.Connects[i], true
		}
	}
	return nil, false
}

// HasExit reports whether from lists to as a local exit.
func (l *Location) HasExit(to string) bool {
	for _, e := range l.Exits {
		if e == to {
			return true
		}
	}
	return false
}

// PermitsMethod reports whether the connection allows the travel method.
func (c *Connection) PermitsMethod(methodID string) bool {
	for _, m := range c.Methods {
		if m == methodID {
			return true
		}
	}
	return false
}

// PermitsEntry reports whether arrivals may enter at the given location.
// An empty entry list permits any location in the destination zone.
func (c *Connection) PermitsEntry(locationID string) bool {
	if len(c.Entries) == 0 {
		return true
	}
	for _, e := range c.Entries {
		if e == locationID {
			return true
		}
	}
	return false
}
