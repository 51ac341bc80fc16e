package world

import (
	"strings"

	"golang.org/x/text/cases"
)

// sameName reports whether two display names match under Unicode case folding.
func sameName(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}
