package game

import (
	"strings"
	"testing"
)

const validGameYAML = `
id: seaside_holiday
name: "Seaside Holiday"

time:
  start: "08:00"
  start_day: 1
  start_weekday: saturday
  categories:
    instant: 0
    quick: 1
    standard: 5
    long: 15
    scene: 30
  defaults:
    conversation: quick
    choice: standard
    movement: standard
    travel: long
    fallback: standard
  slots:
    - {name: morning, start: "06:00", end: "12:00"}
    - {name: afternoon, start: "12:00", end: "18:00"}
    - {name: evening, start: "18:00", end: "22:00"}
    - {name: night, start: "22:00", end: "06:00"}

meters:
  energy: {min: 0, max: 100, default: 80}

characters:
  - id: player
    name: "You"
    outfit: casual_day
    meters: {energy: 90}

travel_methods:
  - id: walk
    name: "Walk"
    mode: active
    speed: 4
  - id: coach
    name: "Coach"
    mode: passive
    time_cost: 5

zones:
  - id: town
    name: "Seaside Town"
    movement:
      minutes: 5
    locations:
      - id: market
        name: "Market Square"
        exits: [guesthouse, promenade]
      - id: guesthouse
        name: "Guesthouse"
        exits: [market]
      - id: promenade
        name: "Promenade"
        exits: [market]
    connections:
      - to: headland
        distance: 6
        methods: [walk, coach]
        entries: [lighthouse]
  - id: headland
    name: "The Headland"
    movement:
      category: long
    locations:
      - id: lighthouse
        name: "Lighthouse"
        exits: [cliff_path]
      - id: cliff_path
        name: "Cliff Path"
        exits: [lighthouse]
    connections:
      - to: town
        distance: 6
        methods: [walk, coach]

garments:
  - id: sundress
    name: "Sundress"
    slots: [torso, hips]
    states: [intact, displaced, removed]
  - id: sunhat
    name: "Sunhat"
    slots: [head]

outfits:
  - id: casual_day
    name: "Casual Day"
    items: [sundress, sunhat]

start:
  zone: town
  location: guesthouse
  player: player
`

func TestParse_ValidGame(t *testing.T) {
	g, err := Parse([]byte(validGameYAML))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if g.ID != "seaside_holiday" {
		t.Errorf("Expected id seaside_holiday, got %q", g.ID)
	}
	if len(g.Zones) != 2 {
		t.Errorf("Expected 2 zones, got %d", len(g.Zones))
	}
	if got, ok := g.Time.BaseMinutes("quick"); !ok || got != 1 {
		t.Errorf("Expected quick=1, got %d (found=%v)", got, ok)
	}
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	doc := strings.Replace(validGameYAML, "name: \"Seaside Holiday\"", "name: \"Seaside Holiday\"\nauthor: someone", 1)
	if _, err := Parse([]byte(doc)); err == nil {
		t.Error("Expected error for unknown field, got none")
	}
}

func TestGame_Lookups(t *testing.T) {
	g, err := Parse([]byte(validGameYAML))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if _, ok := g.Zone("town"); !ok {
		t.Error("Expected to resolve zone by id")
	}
	if z, ok := g.Zone("The Headland"); !ok || z.ID != "headland" {
		t.Error("Expected to resolve zone by display name")
	}

	town, _ := g.Zone("town")
	if loc, ok := town.Location("Market Square"); !ok || loc.ID != "market" {
		t.Error("Expected to resolve location by display name")
	}
	if !town.Locations[0].HasExit("guesthouse") {
		t.Error("Expected market to have exit to guesthouse")
	}

	conn, ok := town.Connection("headland")
	if !ok {
		t.Fatal("Expected town-headland connection")
	}
	if !conn.PermitsMethod("walk") || conn.PermitsMethod("ferry") {
		t.Error("Connection method permissions wrong")
	}
	if !conn.PermitsEntry("lighthouse") || conn.PermitsEntry("cliff_path") {
		t.Error("Connection entry permissions wrong")
	}

	back, _ := g.Zones[1].Connection("town")
	if !back.PermitsEntry("market") {
		t.Error("Empty entry list should permit any destination location")
	}

	if gar, ok := g.Garment("sundress"); !ok || !gar.Covers("hips") {
		t.Error("Expected sundress to cover hips")
	}
	if g.GarmentName("sundress") != "Sundress" {
		t.Errorf("Expected display name Sundress, got %q", g.GarmentName("sundress"))
	}
	if g.LocationName("cliff_path") != "Cliff Path" {
		t.Errorf("Unexpected location name %q", g.LocationName("cliff_path"))
	}
}

func TestGarment_SupportsState(t *testing.T) {
	g, err := Parse([]byte(validGameYAML))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	dress, _ := g.Garment("sundress")
	if dress.SupportsState(GarmentOpened) {
		t.Error("Sundress should not support opened")
	}
	if !dress.SupportsState(GarmentDisplaced) {
		t.Error("Sundress should support displaced")
	}

	hat, _ := g.Garment("sunhat")
	if !hat.SupportsState(GarmentOpened) {
		t.Error("Garment without a states list should support every state")
	}
	if hat.SupportsState("folded") {
		t.Error("Unknown state should never be supported")
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:30", 510, false},
		{"23:59", 1439, false},
		{"24:00", 1440, false},
		{"24:01", 0, true},
		{"25:00", 0, true},
		{"8:30", 510, false},
		{"08:60", 0, true},
		{"-1:00", 0, true},
		{"0830", 0, true},
		{"morning", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error, got %d", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(510); got != "08:30" {
		t.Errorf("FormatClock(510) = %q, want 08:30", got)
	}
	if got := FormatClock(0); got != "00:00" {
		t.Errorf("FormatClock(0) = %q, want 00:00", got)
	}
}

func TestTimeConfig_SlotAt(t *testing.T) {
	g, err := Parse([]byte(validGameYAML))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	tests := []struct {
		minute int
		want   string
	}{
		{360, "morning"},   // 06:00
		{719, "morning"},   // 11:59
		{720, "afternoon"}, // 12:00
		{1200, "evening"},  // 20:00
		{1320, "night"},    // 22:00
		{120, "night"},     // 02:00, wrapped window
	}

	for _, tt := range tests {
		if got := g.Time.SlotAt(tt.minute); got != tt.want {
			t.Errorf("SlotAt(%d) = %q, want %q", tt.minute, got, tt.want)
		}
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Market Square", "market_square"},
		{"market_square", "market_square"},
		{"The-Headland", "the_headland"},
		{"Cliff  Path ", "cliff_path"},
		{"You", "you"},
	}

	for _, tt := range tests {
		if got := NormalizeID(tt.in); got != tt.want {
			t.Errorf("NormalizeID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleFromID(t *testing.T) {
	if got := TitleFromID("cliff_path"); got != "Cliff Path" {
		t.Errorf("TitleFromID(cliff_path) = %q, want Cliff Path", got)
	}
}
