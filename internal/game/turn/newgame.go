package turn

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/chronicle/internal/game/character"
	"github.com/cory-johannsen/chronicle/internal/game/weather"
	"github.com/cory-johannsen/chronicle/internal/game/world"
)

// NewGame builds the turn-1 Context for a fresh game standing on the seed's
// start location at minute zero, with the first weather state of the start
// location's biome. Characters are derived before they are stored.
//
// Precondition: seed.Start names a location of seed.Map; weatherTable and
// party members must be non-nil.
func (o *Orchestrator) NewGame(seed world.Seed, party []character.Player, settings Settings) Context {
	c := Context{
		Turn:              1,
		Map:               seed.Map.Clone(),
		CurrentLocationID: seed.Start,
		Visited:           []string{seed.Start},
		Party:             cloneAll(party, character.Player.Clone),
		Settings:          settings,
	}
	c.World.Date = o.cal.ToDate(0)
	c.World.TimeOfDay = c.World.Date.TimeOfDay()

	biome := weather.DefaultBiome
	if loc, ok := c.CurrentLocation(); ok && loc.Biome != "" {
		biome = loc.Biome
	}
	if states := o.weather.States(biome); len(states) > 0 {
		c.World.Weather = states[0]
	}

	for i := range c.Party {
		c.Party[i] = character.Derive(c.Party[i], o.logger)
	}
	o.logger.Info("game started",
		zap.String("map", seed.Name),
		zap.String("start", seed.Start),
		zap.Int("party", len(c.Party)),
	)
	return c
}
