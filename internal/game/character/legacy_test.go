package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/chronicle/internal/game/character"
)

func TestParseLegacyBonus(t *testing.T) {
	b, ok := character.ParseLegacyBonus("+3 Strength")
	require.True(t, ok)
	assert.Equal(t, character.Bonus{
		Target: character.Strength, Value: 3, ValueType: character.Flat, Application: character.Permanent,
	}, b)

	b, ok = character.ParseLegacyBonus("-2 LUCK")
	require.True(t, ok)
	assert.Equal(t, -2, b.Value)
	assert.Equal(t, character.Luck, b.Target)

	b, ok = character.ParseLegacyBonus("+1 con")
	require.True(t, ok)
	assert.Equal(t, character.Constitution, b.Target)

	for _, bad := range []string{"", "Strength +3", "+3", "+x Strength", "+3 Swagger"} {
		_, ok := character.ParseLegacyBonus(bad)
		assert.False(t, ok, bad)
	}
}

func TestItemNormalized_OnlyWithoutStructuredList(t *testing.T) {
	legacyOnly := character.Item{ID: "a", LegacyBonuses: []string{"+2 Wisdom", "garbage"}}
	out, rejects := legacyOnly.Normalized()
	require.Len(t, out.Bonuses, 1)
	assert.Equal(t, character.Wisdom, out.Bonuses[0].Target)
	assert.Nil(t, out.LegacyBonuses)
	assert.Equal(t, []string{"garbage"}, rejects)
	assert.Len(t, legacyOnly.LegacyBonuses, 2, "input untouched")

	structured := character.Item{
		ID:            "b",
		Bonuses:       []character.Bonus{flat(character.Faith, 1)},
		LegacyBonuses: []string{"+9 Faith"},
	}
	out, rejects = structured.Normalized()
	assert.Equal(t, []character.Bonus{flat(character.Faith, 1)}, out.Bonuses)
	assert.Empty(t, rejects)
}

func TestSheetNormalized_ItemsAndSkills(t *testing.T) {
	s := character.Sheet{
		Inventory:     []character.Item{{ID: "i", LegacyBonuses: []string{"+1 Speed"}}},
		PassiveSkills: []character.Skill{{Name: "p", LegacyBonuses: []string{"+2 Charisma"}}},
		ActiveSkills:  []character.Skill{{Name: "a", LegacyBonuses: []string{"+3 Perception"}}},
	}
	out, rejects := s.Normalized()
	assert.Empty(t, rejects)
	assert.Equal(t, character.Speed, out.Inventory[0].Bonuses[0].Target)
	assert.Equal(t, character.Charisma, out.PassiveSkills[0].Bonuses[0].Target)
	assert.Equal(t, character.Perception, out.ActiveSkills[0].Bonuses[0].Target)
	assert.NotEmpty(t, s.PassiveSkills[0].LegacyBonuses, "input untouched")
}

func TestParseCharacteristic(t *testing.T) {
	c, ok := character.ParseCharacteristic(" Attractiveness ")
	require.True(t, ok)
	assert.Equal(t, character.Attractiveness, c)
	c, ok = character.ParseCharacteristic("WIL")
	require.True(t, ok)
	assert.Equal(t, character.Willpower, c)
	_, ok = character.ParseCharacteristic("mojo")
	assert.False(t, ok)
	assert.Len(t, character.AllCharacteristics, 12)
}
