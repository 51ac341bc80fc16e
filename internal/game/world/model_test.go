package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/chronicle/internal/game/character"
)

func TestDirection_Opposite(t *testing.T) {
	pairs := map[Direction]Direction{
		North: South, East: West, Northeast: Southwest, Northwest: Southeast,
	}
	for d, o := range pairs {
		assert.Equal(t, o, d.Opposite())
		assert.Equal(t, d, o.Opposite())
	}
	assert.Equal(t, Direction(""), Direction("up").Opposite())
}

func TestDirectionBetween(t *testing.T) {
	o := Coord{}
	assert.Equal(t, North, DirectionBetween(o, Coord{0, 2}))
	assert.Equal(t, Southwest, DirectionBetween(o, Coord{-1, -1}))
	assert.Equal(t, East, DirectionBetween(o, Coord{3, 0}))
	assert.Equal(t, Direction(""), DirectionBetween(o, o))
}

func TestLocation_CloneIsDeep(t *testing.T) {
	l := Location{
		ID:         "a",
		Events:     []string{"e"},
		Links:      []Link{{Target: Coord{1, 0}}},
		Storages:   []Storage{{ID: "s", Contents: []character.Item{{ID: "i", Name: "Coin"}}}},
		Threats:    []Threat{{ID: "t", Current: &Activity{Name: "Hunt"}}},
		Properties: map[string]string{"k": "v"},
	}
	c := l.Clone()
	c.Events[0] = "x"
	c.Links[0].Name = "x"
	c.Storages[0].Contents[0].Name = "x"
	c.Threats[0].Current.Name = "x"
	c.Properties["k"] = "x"

	assert.Equal(t, "e", l.Events[0])
	assert.Equal(t, "", l.Links[0].Name)
	assert.Equal(t, "Coin", l.Storages[0].Contents[0].Name)
	assert.Equal(t, "Hunt", l.Threats[0].Current.Name)
	assert.Equal(t, "v", l.Properties["k"])
}

func TestNewMap_RejectsSharedCoordinates(t *testing.T) {
	_, err := NewMap(Location{ID: "a"}, Location{ID: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "share coordinate")

	_, err = NewMap(Location{ID: "a"}, Location{ID: "a", Coord: Coord{1, 1}})
	assert.ErrorContains(t, err, "duplicate location id")

	_, err = NewMap(Location{Coord: Coord{1, 1}})
	assert.ErrorContains(t, err, "id must not be empty")
}

func TestMap_Lookups(t *testing.T) {
	m, err := NewMap(
		Location{ID: "a", Links: []Link{{Target: Coord{1, 0}}, {Target: Coord{9, 9}}}},
		Location{ID: "b", Coord: Coord{1, 0}},
	)
	require.NoError(t, err)

	l, ok := m.Get("b")
	require.True(t, ok)
	assert.Equal(t, Coord{1, 0}, l.Coord)
	_, ok = m.Get("zzz")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, m.IDs())
}

func TestSameName(t *testing.T) {
	assert.True(t, sameName("Wolf Pack", " wolf pack "))
	assert.True(t, sameName("STRASSE", "straße"))
	assert.False(t, sameName("", ""))
	assert.False(t, sameName("wolves", "bandits"))
}
