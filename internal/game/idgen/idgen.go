// Package idgen provides injectable identifier generation for engine entities.
package idgen

import (
	"strconv"

	"github.com/google/uuid"
)

// Generator produces fresh identifiers. Prefixes name the entity kind
// ("loc", "threat", "storage", "char") so ids stay readable in logs.
type Generator interface {
	NewID(prefix string) string
}

// UUID generates random v4 identifiers of the form "<prefix>-<uuid>".
type UUID struct{}

// NewID returns a new random identifier.
func (UUID) NewID(prefix string) string {
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "-" + uuid.NewString()
}

// Counter generates deterministic sequential identifiers of the form
// "<prefix>-<n>". It is not safe for concurrent use.
type Counter struct {
	next int
}

// NewID returns the next identifier in sequence, starting at 1.
func (c *Counter) NewID(prefix string) string {
	c.next++
	if prefix == "" {
		return strconv.Itoa(c.next)
	}
	return prefix + "-" + strconv.Itoa(c.next)
}
