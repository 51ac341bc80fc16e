package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/chronicle/internal/config"
	"github.com/cory-johannsen/chronicle/internal/game/turn"
)

func shippedConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.LoadFromViper(config.Defaults())
	require.NoError(t, err)
	root := filepath.Join("..", "..", "content")
	cfg.Content = config.ContentConfig{
		CalendarFile: filepath.Join(root, "calendar.yaml"),
		WeatherFile:  filepath.Join(root, "weather.yaml"),
		RacesDir:     filepath.Join(root, "races"),
		ClassesDir:   filepath.Join(root, "classes"),
	}
	cfg.Engine.RNGSeed = 7
	return cfg
}

func TestNewGame_FromShippedContent(t *testing.T) {
	cfg := shippedConfig(t)
	orch, factory, err := buildEngine(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, factory)

	party := filepath.Join(t.TempDir(), "party.json")
	require.NoError(t, os.WriteFile(party, []byte(`[
		{"name": "Brannoc", "race": "dwarf", "class": "warrior", "allocated": {"strength": 3}},
		{"name": "Ilse", "race": "elf", "class": "mage"}
	]`), 0o644))

	c, err := newGame(orch, factory, cfg.Engine, filepath.Join("..", "..", "content", "maps", "crossroads.yaml"), party)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Turn)
	assert.Equal(t, "inn", c.CurrentLocationID)
	assert.Equal(t, "clear", c.World.Weather)
	require.Len(t, c.Party, 2)
	assert.Equal(t, "Brannoc", c.Party[0].Name)
	assert.Equal(t, 10+1+2+3+1, c.Party[0].Modified["strength"], "race, class, points, and equipped sword")
	assert.Equal(t, 11, c.Party[1].Modified["willpower"], "legacy skill bonus normalized")

	next := orch.Advance(c, turn.Delta{ElapsedMinutes: 30}, turn.AggregateState{}, nil, true)
	assert.Equal(t, 2, next.Turn)
	assert.Equal(t, int64(30), next.World.Minutes)
}

func TestNewGame_PartyNeedsFactory(t *testing.T) {
	cfg := shippedConfig(t)
	orch, _, err := buildEngine(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = newGame(orch, nil, cfg.Engine, filepath.Join("..", "..", "content", "maps", "crossroads.yaml"), "party.json")
	assert.Error(t, err)
}

func TestReadContext_NormalizesLegacyBonuses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctx.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"turn": 4,
		"map": {"locations": {}},
		"party": [{"id": "p1", "name": "Hero", "inventory": [{"id": "i1", "name": "Charm", "legacyBonuses": ["+2 Luck"]}]}]
	}`), 0o644))

	c, err := readContext(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 4, c.Turn)
	require.Len(t, c.Party[0].Inventory[0].Bonuses, 1)
	assert.Equal(t, 2, c.Party[0].Inventory[0].Bonuses[0].Value)
}
