package world

import (
	"encoding/json"

	"github.com/cory-johannsen/chronicle/internal/game/patch"
)

// Current is the host's authoritative copy of the location the party stands
// in. Decoded from JSON it remembers which fields were present, so explicit
// zero values are merged; built with NewCurrent only its non-zero fields are.
type Current struct {
	Location
	fields patch.Fragment
}

// NewCurrent wraps l as an authoritative current location.
func NewCurrent(l Location) *Current {
	return &Current{Location: l.Clone()}
}

// UnmarshalJSON decodes the location and keeps its wire fields.
func (c *Current) UnmarshalJSON(data []byte) error {
	var l Location
	if err := json.Unmarshal(data, &l); err != nil {
		return err
	}
	var fields patch.Fragment
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*c = Current{Location: l, fields: fields}
	return nil
}

// decodeChange decodes data into the plain form of a change and returns the
// raw object stored under key.
func decodeChange(data []byte, plain any, key string) (patch.Fragment, error) {
	if err := json.Unmarshal(data, plain); err != nil {
		return nil, err
	}
	var raw map[string]patch.Fragment
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return raw[key], nil
}

// NewLocation proposes a location for insertion. InitialID is a batch-local
// handle that later fragments in the same batch may use to reference the
// location before its real id is assigned.
type NewLocation struct {
	InitialID string `json:"initialId,omitempty"`
	Location
}

// LocationUpdate is a partial fragment for an existing location. Fields
// present in the decoded fragment are applied, including zero values; a
// fragment built in code applies only its non-zero fields. Its id,
// coordinate, links, storages, and threats are ignored in favour of the
// dedicated deltas.
type LocationUpdate struct {
	ID                  string   `json:"id"`
	Fragment            Location `json:"fragment"`
	NewEventDescription string   `json:"newEventDescription,omitempty"`
	fields              patch.Fragment
}

// UnmarshalJSON decodes the update and keeps the fragment's wire fields.
func (u *LocationUpdate) UnmarshalJSON(data []byte) error {
	type plain LocationUpdate
	var p plain
	fields, err := decodeChange(data, &p, "fragment")
	if err != nil {
		return err
	}
	*u = LocationUpdate(p)
	u.fields = fields
	return nil
}

// LinkChange adds or updates the link from location From toward Link.Target.
type LinkChange struct {
	From   string `json:"from"`
	Link   Link   `json:"link"`
	fields patch.Fragment
}

// UnmarshalJSON decodes the change and keeps the link's wire fields.
func (c *LinkChange) UnmarshalJSON(data []byte) error {
	type plain LinkChange
	var p plain
	fields, err := decodeChange(data, &p, "link")
	if err != nil {
		return err
	}
	*c = LinkChange(p)
	c.fields = fields
	return nil
}

// LinkRemoval deletes the link from location From toward Target.
type LinkRemoval struct {
	From   string `json:"from"`
	Target Coord  `json:"target"`
}

// StorageChange creates or updates a storage at a location. A storage
// without an id is matched by name; one with neither is ignored.
type StorageChange struct {
	LocationID string  `json:"locationId"`
	Storage    Storage `json:"storage"`
	fields     patch.Fragment
}

// UnmarshalJSON decodes the change and keeps the storage's wire fields.
func (c *StorageChange) UnmarshalJSON(data []byte) error {
	type plain StorageChange
	var p plain
	fields, err := decodeChange(data, &p, "storage")
	if err != nil {
		return err
	}
	*c = StorageChange(p)
	c.fields = fields
	return nil
}

// StorageRemoval deletes a storage by id.
type StorageRemoval struct {
	LocationID string `json:"locationId"`
	StorageID  string `json:"storageId"`
}

// ThreatChange adds or updates a threat. For updates an empty LocationID
// searches every location.
type ThreatChange struct {
	LocationID string `json:"locationId"`
	Threat     Threat `json:"threat"`
	fields     patch.Fragment
}

// UnmarshalJSON decodes the change and keeps the threat's wire fields.
func (c *ThreatChange) UnmarshalJSON(data []byte) error {
	type plain ThreatChange
	var p plain
	fields, err := decodeChange(data, &p, "threat")
	if err != nil {
		return err
	}
	*c = ThreatChange(p)
	c.fields = fields
	return nil
}

// ThreatRef names one threat. An empty LocationID searches every location.
type ThreatRef struct {
	LocationID string `json:"locationId,omitempty"`
	ThreatID   string `json:"threatId"`
}

// ThreatCompletion retires a threat's current activity.
type ThreatCompletion struct {
	ThreatRef
	Outcome   string `json:"outcome,omitempty"`
	Narrative string `json:"narrative,omitempty"`
}

// UpdateBatch is one turn's partial updates to the map. Every location
// reference may be a real id or an InitialID declared by NewLocations.
type UpdateBatch struct {
	NewLocations     []NewLocation      `json:"newLocations,omitempty"`
	LocationUpdates  []LocationUpdate   `json:"locationUpdates,omitempty"`
	NewLinks         []LinkChange       `json:"newLinks,omitempty"`
	LinkUpdates      []LinkChange       `json:"linkUpdates,omitempty"`
	RemovedLinks     []LinkRemoval      `json:"removedLinks,omitempty"`
	StorageUpdates   []StorageChange    `json:"storageUpdates,omitempty"`
	RemovedStorages  []StorageRemoval   `json:"removedStorages,omitempty"`
	NewThreats       []ThreatChange     `json:"newThreats,omitempty"`
	ThreatUpdates    []ThreatChange     `json:"threatUpdates,omitempty"`
	RemovedThreats   []ThreatRef        `json:"removedThreats,omitempty"`
	CompletedThreats []ThreatCompletion `json:"completedThreats,omitempty"`
}

// Empty reports whether the batch carries no changes.
func (b UpdateBatch) Empty() bool {
	return len(b.NewLocations) == 0 &&
		len(b.LocationUpdates) == 0 &&
		len(b.NewLinks) == 0 &&
		len(b.LinkUpdates) == 0 &&
		len(b.RemovedLinks) == 0 &&
		len(b.StorageUpdates) == 0 &&
		len(b.RemovedStorages) == 0 &&
		len(b.NewThreats) == 0 &&
		len(b.ThreatUpdates) == 0 &&
		len(b.RemovedThreats) == 0 &&
		len(b.CompletedThreats) == 0
}
