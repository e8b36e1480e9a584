// Package genres holds the catalogue of genres a user can subscribe to
package genres

import "strings"

// All lists the selectable genres in display order
var All = []string{
	"Unknown",
	"Blues",
	"Classical",
	"Electronic",
	"Jazz",
	"Metal",
	"Pop",
	"Reggae",
	"RnB",
	"Rock",
	"Soul",
}

// Lookup returns the catalogue spelling of name, matching case-insensitively
func Lookup(name string) (string, bool) {
	for _, g := range All {
		if strings.EqualFold(g, strings.TrimSpace(name)) {
			return g, true
		}
	}
	return "", false
}
