package game

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

// ValidID reports whether an id is lowercase snake_case.
func ValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

// NormalizeID converts free-form input to lower snake_case so display
// names and ids resolve to the same key.
func NormalizeID(s string) string {
	var out strings.Builder
	prevUnderscore := false
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			r = r + ('a' - 'A')
		}
		if r == ' ' || r == '-' || r == '.' || r == '_' {
			if !prevUnderscore && i > 0 {
				out.WriteRune('_')
				prevUnderscore = true
			}
			continue
		}
		out.WriteRune(r)
		prevUnderscore = false
	}
	return strings.TrimSuffix(out.String(), "_")
}

var titleCaser = cases.Title(language.English)

// TitleFromID derives a display name from a snake_case id.
func TitleFromID(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}
