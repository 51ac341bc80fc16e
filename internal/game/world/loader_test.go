package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSeedYAML = `
map:
  name: "Greyvale"
  start: town
  locations:
    - id: town
      name: "Greyvale"
      x: 0
      y: 0
      biome: plains
      description: |
        A walled market town.
      properties:
        lighting: bright
      links:
        - to: forest
          two_way: true
          travel_minutes: 30
      storages:
        - id: chest
          name: "Town Chest"
          capacity: 20
    - id: forest
      name: "Whisperwood"
      x: 1
      y: 1
      biome: forest
      difficulty: 3
      threats:
        - id: wolves
          name: "Wolf Pack"
          activity: "Stalk the road"
          required: 3
`

func TestLoadSeedFromBytes_Valid(t *testing.T) {
	seed, err := LoadSeedFromBytes([]byte(validSeedYAML))
	require.NoError(t, err)

	assert.Equal(t, "Greyvale", seed.Name)
	assert.Equal(t, "town", seed.Start)
	assert.Equal(t, 2, seed.Map.Len())

	town, _ := seed.Map.Get("town")
	assert.Equal(t, "A walled market town.", town.Description)
	assert.Equal(t, "bright", town.Properties["lighting"])
	link, ok := town.LinkTo(Coord{1, 1})
	require.True(t, ok)
	assert.Equal(t, Northeast, link.Direction)
	assert.Equal(t, 30, link.TravelMinutes)
	require.Len(t, town.Storages, 1)
	assert.Equal(t, 20, town.Storages[0].Capacity)

	forest, _ := seed.Map.Get("forest")
	back, ok := forest.LinkTo(Coord{0, 0})
	require.True(t, ok, "two-way link adds the reverse")
	assert.Equal(t, Southwest, back.Direction)
	assert.Equal(t, 3, forest.Difficulty.Overall)
	require.Len(t, forest.Threats, 1)
	require.NotNil(t, forest.Threats[0].Current)
	assert.Equal(t, "Stalk the road", forest.Threats[0].Current.Name)
}

func TestLoadSeedFromBytes_Errors(t *testing.T) {
	cases := map[string]string{
		"invalid yaml":  "not: [valid yaml",
		"empty":         "map:\n  name: x\n",
		"unknown link":  "map:\n  locations:\n    - {id: a, name: A, links: [{to: b}]}\n",
		"shared coord":  "map:\n  locations:\n    - {id: a, name: A}\n    - {id: b, name: B}\n",
		"missing start": "map:\n  start: z\n  locations:\n    - {id: a, name: A}\n",
		"missing name":  "map:\n  locations:\n    - {id: a}\n",
	}
	for name, doc := range cases {
		_, err := LoadSeedFromBytes([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoadSeedFromBytes_DefaultsStart(t *testing.T) {
	seed, err := LoadSeedFromBytes([]byte("map:\n  locations:\n    - {id: a, name: A}\n    - {id: b, name: B, x: 1}\n"))
	require.NoError(t, err)
	assert.Equal(t, "a", seed.Start)
}

func TestLoadSeedFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validSeedYAML), 0o644))
	seed, err := LoadSeedFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "town", seed.Start)

	_, err = LoadSeedFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
