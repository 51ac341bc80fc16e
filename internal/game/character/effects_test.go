package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/chronicle/internal/game/character"
)

func TestExpireEffects_DecrementsAndRederives(t *testing.T) {
	p := basePlayer()
	p.Effects = []character.Effect{
		{Name: "Haste", Kind: character.Buff, Target: character.Strength, Value: "+50%", Duration: 1},
		{Name: "Ward", Kind: character.Buff, Target: character.Wisdom, Value: "+10%", Duration: 3},
		{Name: "Blessing", Kind: character.Buff, Target: character.Faith, Value: "+20%", Duration: -1},
	}
	p = character.Derive(p, zap.NewNop())
	require.Equal(t, 15, p.Modified[character.Strength])

	next, expired := character.ExpireEffects(p, zap.NewNop())
	assert.Equal(t, []string{"Haste"}, expired)
	require.Len(t, next.Effects, 2)
	assert.Equal(t, 2, next.Effects[0].Duration)
	assert.Equal(t, -1, next.Effects[1].Duration)
	assert.Equal(t, 10, next.Modified[character.Strength], "modified recomputed after expiry")
	assert.Equal(t, 12, next.Modified[character.Faith])

	assert.Len(t, p.Effects, 3, "input untouched")
	assert.Equal(t, 1, p.Effects[0].Duration)
}

func TestExpireEffects_NoEffects(t *testing.T) {
	p := character.Derive(basePlayer(), zap.NewNop())
	next, expired := character.ExpireEffects(p, zap.NewNop())
	assert.Empty(t, expired)
	assert.Equal(t, p, next)
}
