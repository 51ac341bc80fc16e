package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/chronicle/internal/game/character"
)

func basePlayer() character.Player {
	return character.Player{Sheet: character.Sheet{
		ID:       "p1",
		Name:     "Hero",
		Level:    1,
		Standard: character.DefaultScores(),
	}}
}

func flat(target character.Characteristic, v int) character.Bonus {
	return character.Bonus{Target: target, Value: v, ValueType: character.Flat, Application: character.Permanent}
}

func TestDerive_DefaultCaps(t *testing.T) {
	p := character.Derive(basePlayer(), zap.NewNop())

	assert.Equal(t, 130, p.Stats.MaxHealth, "100 + floor(10*2.0) + floor(10*1.0)")
	assert.Equal(t, 128, p.Stats.MaxEnergy, "100 + 4*floor(10*0.75)")
	assert.Equal(t, 52, p.Stats.MaxWeight, "30 + floor(10*1.8 + 10*0.4)")
	assert.Equal(t, 0, p.Stats.CritLuckBonus)
	assert.Equal(t, 20, p.Stats.CritThreshold)
	assert.Equal(t, 130, p.Stats.CurrentHealth, "unset pools default to the new maxima")
	assert.Equal(t, 128, p.Stats.CurrentEnergy)
	for _, c := range character.AllCharacteristics {
		assert.Equal(t, 10, p.Modified[c], string(c))
	}
}

func TestDerive_EquippedPermanentBonusFeedsCaps(t *testing.T) {
	p := basePlayer()
	p.Inventory = []character.Item{{ID: "sword", Name: "Sword", Bonuses: []character.Bonus{flat(character.Strength, 2)}}}
	p.Equipment = map[character.Slot]string{character.SlotMainHand: "sword"}

	out := character.Derive(p, zap.NewNop())
	assert.Equal(t, 12, out.Modified[character.Strength])
	assert.Equal(t, 10, out.Standard[character.Strength], "standard is never touched by bonuses")
	assert.Equal(t, 132, out.Stats.MaxHealth)
	assert.Equal(t, 30+(12*18+10*4)/10, out.Stats.MaxWeight)
}

func TestDerive_UnequippedAndUnresolvedItemsIgnored(t *testing.T) {
	p := basePlayer()
	p.Inventory = []character.Item{{ID: "ring", Bonuses: []character.Bonus{flat(character.Luck, 5)}}}
	p.Equipment = map[character.Slot]string{character.SlotHead: "missing-helmet"}

	core, logs := observer.New(zapcore.WarnLevel)
	out := character.Derive(p, zap.New(core))
	assert.Equal(t, 10, out.Modified[character.Luck])
	assert.Equal(t, []character.Slot{character.SlotHead}, p.UnresolvedSlots())
	warned := logs.FilterMessage("equipped item not in inventory; slot ignored").All()
	require.Len(t, warned, 1)
	assert.Equal(t, []any{"head"}, warned[0].ContextMap()["slots"])
}

func TestDerive_ItemInTwoSlotsCountsOnce(t *testing.T) {
	p := basePlayer()
	p.Inventory = []character.Item{{ID: "greatsword", Bonuses: []character.Bonus{flat(character.Strength, 3)}}}
	p.Equipment = map[character.Slot]string{
		character.SlotMainHand: "greatsword",
		character.SlotOffHand:  "greatsword",
	}
	out := character.Derive(p, zap.NewNop())
	assert.Equal(t, 13, out.Modified[character.Strength])
}

func TestDerive_PassiveSkillBonuses(t *testing.T) {
	p := basePlayer()
	p.PassiveSkills = []character.Skill{{Name: "Iron Skin", Bonuses: []character.Bonus{flat(character.Constitution, 5)}}}
	p.ActiveSkills = []character.Skill{{Name: "Rage", Bonuses: []character.Bonus{flat(character.Strength, 50)}}}

	out := character.Derive(p, zap.NewNop())
	assert.Equal(t, 15, out.Modified[character.Constitution])
	assert.Equal(t, 10, out.Modified[character.Strength], "active skills never contribute")
	assert.Equal(t, 140, out.Stats.MaxHealth)
}

func TestDerive_ConditionalBonusSkipsCaps(t *testing.T) {
	p := basePlayer()
	p.PassiveSkills = []character.Skill{{Name: "Night Eyes", Bonuses: []character.Bonus{{
		Target: character.Constitution, Value: 4, ValueType: character.Flat, Application: character.Conditional,
	}}}}

	out := character.Derive(p, zap.NewNop())
	assert.Equal(t, 14, out.Modified[character.Constitution])
	assert.Equal(t, 130, out.Stats.MaxHealth, "conditional bonuses never feed resource caps")
}

func TestDerive_PermanentBonusWithConditionIgnored(t *testing.T) {
	p := basePlayer()
	p.PassiveSkills = []character.Skill{{Name: "Moonlit", Bonuses: []character.Bonus{{
		Target: character.Wisdom, Value: 3, Application: character.Permanent, Condition: "at night",
	}}}}
	out := character.Derive(p, zap.NewNop())
	assert.Equal(t, 10, out.Modified[character.Wisdom])
}

func TestDerive_PercentEffects(t *testing.T) {
	p := basePlayer()
	p.Effects = []character.Effect{
		{Name: "Bless", Kind: character.Buff, Target: character.Strength, Value: "+10%", Duration: 3},
		{Name: "Curse", Kind: character.Debuff, Target: character.Dexterity, Value: "20%", Duration: 3},
		{Name: "Oddity", Kind: character.Buff, Target: character.Luck, Value: "5", Duration: 3},
	}
	out := character.Derive(p, zap.NewNop())
	assert.Equal(t, 11, out.Modified[character.Strength])
	assert.Equal(t, 8, out.Modified[character.Dexterity], "unsigned debuff counts as negative")
	assert.Equal(t, 10, out.Modified[character.Luck], "non-percentage values are ignored")
	assert.Equal(t, 130, out.Stats.MaxHealth, "effects never feed resource caps")
}

func TestDerive_LuckLowersCritThreshold(t *testing.T) {
	p := basePlayer()
	p.Standard[character.Luck] = 45
	out := character.Derive(p, zap.NewNop())
	assert.Equal(t, 2, out.Stats.CritLuckBonus)
	assert.Equal(t, 18, out.Stats.CritThreshold)
}

func TestDerive_ClampsCurrentPools(t *testing.T) {
	p := basePlayer()
	p.Stats = character.Stats{MaxHealth: 500, CurrentHealth: 400, MaxEnergy: 500, CurrentEnergy: 20}
	out := character.Derive(p, zap.NewNop())
	assert.Equal(t, 130, out.Stats.CurrentHealth)
	assert.Equal(t, 20, out.Stats.CurrentEnergy)
}

func TestDerive_MissingBlockLogsAndDefaults(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := basePlayer()
	p.Standard = nil

	out := character.Derive(p, zap.New(core))
	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, character.DefaultScores(), out.Standard)
	assert.Equal(t, 130, out.Stats.MaxHealth)
}

func TestDerive_MissingCharacteristicDefaultsToOne(t *testing.T) {
	p := basePlayer()
	delete(p.Standard, character.Strength)
	out := character.Derive(p, zap.NewNop())
	assert.Equal(t, 1, out.Standard[character.Strength])
	assert.Equal(t, 100+20+1, out.Stats.MaxHealth)
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	p := basePlayer()
	p.Inventory = []character.Item{{ID: "sword", Bonuses: []character.Bonus{flat(character.Strength, 2)}}}
	p.Equipment = map[character.Slot]string{character.SlotMainHand: "sword"}
	before := p.Clone()

	out := character.Derive(p, zap.NewNop())
	out.Inventory[0].Name = "changed"
	out.Standard[character.Strength] = 99

	assert.Equal(t, before, p)
}

func TestDerive_NPCVariant(t *testing.T) {
	n := character.NPC{Sheet: character.Sheet{ID: "n1", Standard: character.DefaultScores()}, Attitude: "hostile"}
	out := character.Derive(n, zap.NewNop())
	assert.Equal(t, character.KindNPC, out.Kind())
	assert.Equal(t, "hostile", out.Attitude)
	assert.Equal(t, 130, out.Stats.MaxHealth)
}

func TestComputeStats_NegativeValuesFloor(t *testing.T) {
	s := character.ComputeStats(character.Scores{
		character.Constitution: -3, character.Strength: -1, character.Luck: -1,
		character.Intelligence: 1, character.Wisdom: 1, character.Faith: 1,
	}, character.Stats{})
	assert.Equal(t, 100-6-1, s.MaxHealth)
	// floor(-2.25) + 3*floor(0.75)
	assert.Equal(t, 100-3, s.MaxEnergy)
	// floor(-1.8 - 1.2) = -3
	assert.Equal(t, 27, s.MaxWeight)
	assert.Equal(t, -1, s.CritLuckBonus)
	assert.Equal(t, 21, s.CritThreshold)
}

func TestParsePercent(t *testing.T) {
	v, ok := character.ParsePercent(" -7.5% ")
	require.True(t, ok)
	assert.Equal(t, -7.5, v)
	_, ok = character.ParsePercent("10")
	assert.False(t, ok)
	_, ok = character.ParsePercent("abc%")
	assert.False(t, ok)
}

func genPlayer(t *rapid.T) character.Player {
	p := basePlayer()
	for _, c := range character.AllCharacteristics {
		p.Standard[c] = rapid.IntRange(-5, 40).Draw(t, string(c))
	}
	target := rapid.SampledFrom(character.AllCharacteristics)
	n := rapid.IntRange(0, 3).Draw(t, "items")
	p.Equipment = map[character.Slot]string{}
	slots := []character.Slot{character.SlotHead, character.SlotChest, character.SlotFeet}
	for i := 0; i < n; i++ {
		id := string(slots[i])
		p.Inventory = append(p.Inventory, character.Item{ID: id, Bonuses: []character.Bonus{
			flat(target.Draw(t, "t"), rapid.IntRange(-5, 5).Draw(t, "v")),
			{Target: target.Draw(t, "ct"), Value: rapid.IntRange(-5, 5).Draw(t, "cv"), Application: character.Conditional},
		}})
		p.Equipment[slots[i]] = id
	}
	if rapid.Bool().Draw(t, "effect") {
		p.Effects = []character.Effect{{
			Name: "fx", Kind: character.Buff, Target: target.Draw(t, "et"),
			Value: rapid.SampledFrom([]string{"+10%", "-25%", "33%"}).Draw(t, "ev"), Duration: 2,
		}}
	}
	if rapid.Bool().Draw(t, "hasStats") {
		p.Stats = character.Stats{
			MaxHealth:     rapid.IntRange(1, 400).Draw(t, "mh"),
			CurrentHealth: rapid.IntRange(0, 400).Draw(t, "ch"),
			MaxEnergy:     rapid.IntRange(1, 400).Draw(t, "me"),
			CurrentEnergy: rapid.IntRange(0, 400).Draw(t, "ce"),
		}
	}
	return p
}

func TestDerive_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		once := character.Derive(genPlayer(t), zap.NewNop())
		twice := character.Derive(once, zap.NewNop())
		assert.Equal(t, once, twice)
	})
}

func TestDerive_CurrentNeverExceedsMax(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		out := character.Derive(genPlayer(t), zap.NewNop())
		if out.Stats.CurrentHealth > out.Stats.MaxHealth || out.Stats.CurrentEnergy > out.Stats.MaxEnergy {
			t.Fatalf("pools exceed caps: %+v", out.Stats)
		}
	})
}
