// Package turn advances the game from one turn-boundary snapshot to the next.
package turn

import (
	"maps"
	"slices"

	"github.com/cory-johannsen/chronicle/internal/game/calendar"
	"github.com/cory-johannsen/chronicle/internal/game/character"
	"github.com/cory-johannsen/chronicle/internal/game/loot"
	"github.com/cory-johannsen/chronicle/internal/game/quest"
	"github.com/cory-johannsen/chronicle/internal/game/world"
)

// WorldState is the clock and ambient state of the world. Minutes is the
// single source of truth for time; Date and TimeOfDay are recomputed from it
// every turn.
type WorldState struct {
	Minutes   int64              `json:"minutes"`
	Date      calendar.Date      `json:"date"`
	TimeOfDay calendar.TimeOfDay `json:"timeOfDay"`
	Weather   string             `json:"weather,omitempty"`
	Flags     map[string]string  `json:"flags,omitempty"`
}

// Settings are the per-game rotation switches.
type Settings struct {
	Cooperative  bool `json:"cooperative"`
	AutoPassTurn bool `json:"autoPassTurn"`
}

// Context is the complete turn-boundary snapshot. Only the Orchestrator
// produces new Contexts; everything else treats one as read-only.
type Context struct {
	Turn              int                `json:"turn"`
	ActivePlayer      int                `json:"activePlayer"`
	World             WorldState         `json:"world"`
	Map               world.Map          `json:"map"`
	CurrentLocationID string             `json:"currentLocationId,omitempty"`
	Visited           []string           `json:"visited,omitempty"`
	Quests            quest.Log          `json:"quests"`
	Party             []character.Player `json:"party,omitempty"`
	NPCs              []character.NPC    `json:"npcs,omitempty"`
	History           []string           `json:"history,omitempty"`
	Loot              []loot.Template    `json:"loot,omitempty"`
	Dice              []int              `json:"dice,omitempty"`
	Settings          Settings           `json:"settings"`
}

// Clone returns a deep copy of c.
func (c Context) Clone() Context {
	out := c
	out.World.Flags = maps.Clone(c.World.Flags)
	out.Map = c.Map.Clone()
	out.Visited = slices.Clone(c.Visited)
	out.Quests = c.Quests.Clone()
	out.Party = cloneAll(c.Party, character.Player.Clone)
	out.NPCs = cloneAll(c.NPCs, character.NPC.Clone)
	out.History = slices.Clone(c.History)
	out.Loot = cloneAll(c.Loot, loot.Template.Clone)
	out.Dice = slices.Clone(c.Dice)
	return out
}

// CurrentLocation returns the location the party stands in.
func (c Context) CurrentLocation() (world.Location, bool) {
	if c.CurrentLocationID == "" {
		return world.Location{}, false
	}
	return c.Map.Get(c.CurrentLocationID)
}

// ActiveMember returns the party member whose turn it is.
func (c Context) ActiveMember() (character.Player, bool) {
	if c.ActivePlayer < 0 || c.ActivePlayer >= len(c.Party) {
		return character.Player{}, false
	}
	return c.Party[c.ActivePlayer], true
}

// Normalized converts legacy bonus strings on every character into
// structured bonuses. It returns the strings that could not be parsed.
func (c Context) Normalized() (Context, []string) {
	out := c.Clone()
	var rejects []string
	for i := range out.Party {
		s, r := out.Party[i].Sheet.Normalized()
		out.Party[i].Sheet = s
		rejects = append(rejects, r...)
	}
	for i := range out.NPCs {
		s, r := out.NPCs[i].Sheet.Normalized()
		out.NPCs[i].Sheet = s
		rejects = append(rejects, r...)
	}
	return out, rejects
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
