package turn

import (
	"github.com/cory-johannsen/chronicle/internal/game/calendar"
	"github.com/cory-johannsen/chronicle/internal/game/character"
	"github.com/cory-johannsen/chronicle/internal/game/loot"
	"github.com/cory-johannsen/chronicle/internal/game/quest"
	"github.com/cory-johannsen/chronicle/internal/game/world"
)

// ItemGrant adds an item to a party member's inventory.
type ItemGrant struct {
	OwnerID string         `json:"ownerId"`
	Item    character.Item `json:"item"`
}

// ResourceRecord carries resource data for a newly created item, keyed by
// item name instead of attached to the item.
type ResourceRecord struct {
	ItemName string             `json:"itemName"`
	Resource character.Resource `json:"resource"`
}

// Delta describes what happened during one turn. Every field is optional.
type Delta struct {
	// PassTurn hands the turn to the next party member in cooperative mode.
	// It is ignored when the turn is not advanced.
	PassTurn bool `json:"passTurn,omitempty"`

	// TimeSet moves the clock to an absolute date. It wins over ElapsedMinutes.
	TimeSet        *calendar.DateTime `json:"timeSet,omitempty"`
	ElapsedMinutes int                `json:"elapsedMinutes,omitempty"`

	// WeatherShift moves the weather one step harsher (>0) or calmer (<0);
	// Weather jumps to a named state.
	WeatherShift int    `json:"weatherShift,omitempty"`
	Weather      string `json:"weather,omitempty"`

	MapUpdates      world.UpdateBatch `json:"mapUpdates"`
	CurrentLocation *world.Current    `json:"currentLocation,omitempty"`

	NewQuests    []quest.Quest  `json:"newQuests,omitempty"`
	QuestUpdates []quest.Update `json:"questUpdates,omitempty"`

	SetFlags    map[string]string `json:"setFlags,omitempty"`
	RemoveFlags []string          `json:"removeFlags,omitempty"`

	NewItems      []ItemGrant      `json:"newItems,omitempty"`
	ItemResources []ResourceRecord `json:"itemResources,omitempty"`

	// LootCoefficients scale the loot batch; nil means loot.Neutral.
	LootCoefficients *loot.Coefficients `json:"lootCoefficients,omitempty"`
}

// AggregateState is the host's authoritative character state for the new
// turn. A nil slice keeps the previous snapshot's characters.
type AggregateState struct {
	Party []character.Player `json:"party,omitempty"`
	NPCs  []character.NPC    `json:"npcs,omitempty"`
}
