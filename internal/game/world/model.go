// Package world provides the location graph: locations on an integer grid,
// the links between them, and the storages and threats they hold.
package world

import (
	"fmt"
	"maps"
	"slices"

	"github.com/cory-johannsen/chronicle/internal/game/character"
)

// Coord is a location's position on the map grid. Y grows northward.
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Direction is a compass heading between adjacent coordinates.
type Direction string

// Compass directions.
const (
	North     Direction = "north"
	South     Direction = "south"
	East      Direction = "east"
	West      Direction = "west"
	Northeast Direction = "northeast"
	Northwest Direction = "northwest"
	Southeast Direction = "southeast"
	Southwest Direction = "southwest"
)

// Opposite returns the reverse heading, or "" for an unknown direction.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case Northeast:
		return Southwest
	case Southwest:
		return Northeast
	case Northwest:
		return Southeast
	case Southeast:
		return Northwest
	default:
		return ""
	}
}

// DirectionBetween returns the compass heading from one coordinate toward
// another, or "" when they are equal.
func DirectionBetween(from, to Coord) Direction {
	var ns, ew string
	switch {
	case to.Y > from.Y:
		ns = "north"
	case to.Y < from.Y:
		ns = "south"
	}
	switch {
	case to.X > from.X:
		ew = "east"
	case to.X < from.X:
		ew = "west"
	}
	return Direction(ns + ew)
}

// Link is a directed passage keyed by the target's coordinate. The target is
// resolved lazily, so a link may point at a coordinate not yet on the map.
type Link struct {
	Target        Coord     `json:"target"`
	Name          string    `json:"name,omitempty"`
	Description   string    `json:"description,omitempty"`
	Direction     Direction `json:"direction,omitempty"`
	TravelMinutes int       `json:"travelMinutes,omitempty"`
	Hidden        bool      `json:"hidden,omitempty"`
	Locked        bool      `json:"locked,omitempty"`
}

// Clone returns l; Link holds no references.
func (l Link) Clone() Link { return l }

// Storage is a container at a location.
type Storage struct {
	ID       string           `json:"id"`
	Name     string           `json:"name,omitempty"`
	Capacity int              `json:"capacity,omitempty"`
	Contents []character.Item `json:"contents,omitempty"`
	Owner    string           `json:"owner,omitempty"`
}

// Clone returns a deep copy of s.
func (s Storage) Clone() Storage {
	out := s
	out.Contents = cloneAll(s.Contents, character.Item.Clone)
	return out
}

// Activity is the progress-tracked task a threat is pursuing.
type Activity struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Progress    int    `json:"progress,omitempty"`
	Required    int    `json:"required,omitempty"`
}

// CompletedActivity is a retired activity and how it ended.
type CompletedActivity struct {
	Name      string `json:"name"`
	Outcome   string `json:"outcome,omitempty"`
	Narrative string `json:"narrative,omitempty"`
	Turn      int    `json:"turn"`
}

// Threat is an adversarial process attached to a location. Completed is
// ordered newest first.
type Threat struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Level       int                 `json:"level,omitempty"`
	Current     *Activity           `json:"current,omitempty"`
	Completed   []CompletedActivity `json:"completed,omitempty"`
}

// Clone returns a deep copy of t.
func (t Threat) Clone() Threat {
	out := t
	if t.Current != nil {
		a := *t.Current
		out.Current = &a
	}
	out.Completed = slices.Clone(t.Completed)
	return out
}

// Rating grades one aspect of a location's difficulty.
type Rating struct {
	Level int    `json:"level,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// Difficulty is a location's danger profile.
type Difficulty struct {
	Overall  int    `json:"overall,omitempty"`
	Combat   Rating `json:"combat"`
	Stealth  Rating `json:"stealth"`
	Social   Rating `json:"social"`
	Survival Rating `json:"survival"`
}

// Location is a node of the map. Events are ordered newest first.
type Location struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Coord       Coord             `json:"coord"`
	Description string            `json:"description,omitempty"`
	Biome       string            `json:"biome,omitempty"`
	Events      []string          `json:"events,omitempty"`
	Links       []Link            `json:"links,omitempty"`
	Storages    []Storage         `json:"storages,omitempty"`
	Threats     []Threat          `json:"threats,omitempty"`
	Difficulty  Difficulty        `json:"difficulty"`
	Properties  map[string]string `json:"properties,omitempty"`
}

// Clone returns a deep copy of l.
func (l Location) Clone() Location {
	out := l
	out.Events = slices.Clone(l.Events)
	out.Links = slices.Clone(l.Links)
	out.Storages = cloneAll(l.Storages, Storage.Clone)
	out.Threats = cloneAll(l.Threats, Threat.Clone)
	out.Properties = maps.Clone(l.Properties)
	return out
}

// LinkTo returns the link targeting c, if any.
func (l Location) LinkTo(c Coord) (Link, bool) {
	i := slices.IndexFunc(l.Links, func(k Link) bool { return k.Target == c })
	if i < 0 {
		return Link{}, false
	}
	return l.Links[i], true
}

// Map is the location graph keyed by location id.
type Map struct {
	Locations map[string]Location `json:"locations"`
}

// NewMap builds a Map from locations.
//
// Postcondition: Returns a Map, or an error when the locations violate Validate.
func NewMap(locs ...Location) (Map, error) {
	m := Map{Locations: make(map[string]Location, len(locs))}
	for _, l := range locs {
		if _, dup := m.Locations[l.ID]; dup {
			return Map{}, fmt.Errorf("duplicate location id %q", l.ID)
		}
		m.Locations[l.ID] = l.Clone()
	}
	if err := m.Validate(); err != nil {
		return Map{}, err
	}
	return m, nil
}

// Clone returns a deep copy of m.
func (m Map) Clone() Map {
	out := Map{Locations: make(map[string]Location, len(m.Locations))}
	for id, l := range m.Locations {
		out.Locations[id] = l.Clone()
	}
	return out
}

// Get returns the location with the given id.
func (m Map) Get(id string) (Location, bool) {
	l, ok := m.Locations[id]
	return l, ok
}

// IDs returns every location id in sorted order.
func (m Map) IDs() []string {
	return slices.Sorted(maps.Keys(m.Locations))
}

// Len returns the number of locations.
func (m Map) Len() int { return len(m.Locations) }

// Validate checks map invariants.
//
// Postcondition: Returns nil if every location has a non-empty id matching its
// key and no two locations share a coordinate, or an error describing the
// first violation.
func (m Map) Validate() error {
	seen := make(map[Coord]string, len(m.Locations))
	for _, id := range m.IDs() {
		l := m.Locations[id]
		if l.ID == "" {
			return fmt.Errorf("location at %s: id must not be empty", l.Coord)
		}
		if l.ID != id {
			return fmt.Errorf("location key %q does not match location id %q", id, l.ID)
		}
		if other, dup := seen[l.Coord]; dup {
			return fmt.Errorf("locations %q and %q share coordinate %s", other, id, l.Coord)
		}
		seen[l.Coord] = id
	}
	return nil
}

func cloneAll[T any](in []T, clone func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = clone(v)
	}
	return out
}
