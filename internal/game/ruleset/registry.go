package ruleset

import "fmt"

// Registry indexes races and classes by ID.
type Registry struct {
	races   map[string]*Race
	classes map[string]*Class
}

// NewRegistry builds a Registry from loaded tables.
//
// Postcondition: Returns a Registry, or an error on a duplicate or nil entry.
func NewRegistry(races []*Race, classes []*Class) (*Registry, error) {
	r := &Registry{
		races:   make(map[string]*Race, len(races)),
		classes: make(map[string]*Class, len(classes)),
	}
	for _, race := range races {
		if race == nil {
			return nil, fmt.Errorf("ruleset: nil race")
		}
		if _, dup := r.races[race.ID]; dup {
			return nil, fmt.Errorf("ruleset: duplicate race ID %q", race.ID)
		}
		r.races[race.ID] = race
	}
	for _, class := range classes {
		if class == nil {
			return nil, fmt.Errorf("ruleset: nil class")
		}
		if _, dup := r.classes[class.ID]; dup {
			return nil, fmt.Errorf("ruleset: duplicate class ID %q", class.ID)
		}
		r.classes[class.ID] = class
	}
	return r, nil
}

// Load reads races and classes from their directories and indexes them.
func Load(racesDir, classesDir string) (*Registry, error) {
	races, err := LoadRaces(racesDir)
	if err != nil {
		return nil, err
	}
	classes, err := LoadClasses(classesDir)
	if err != nil {
		return nil, err
	}
	return NewRegistry(races, classes)
}

// Race returns the race with the given ID.
func (r *Registry) Race(id string) (*Race, bool) {
	race, ok := r.races[id]
	return race, ok
}

// Class returns the class with the given ID.
func (r *Registry) Class(id string) (*Class, bool) {
	c, ok := r.classes[id]
	return c, ok
}

// Counts returns the number of registered races and classes.
func (r *Registry) Counts() (races, classes int) {
	return len(r.races), len(r.classes)
}
