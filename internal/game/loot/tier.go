// Package loot produces per-turn loot templates: a quality tier plus bonus
// directives that a downstream collaborator expands into concrete items.
package loot

import "fmt"

// Tier is a rarity band.
type Tier string

// Tiers from rarest to commonest.
const (
	Unique    Tier = "Unique"
	Mythic    Tier = "Mythic"
	Legendary Tier = "Legendary"
	Epic      Tier = "Epic"
	Rare      Tier = "Rare"
	Uncommon  Tier = "Uncommon"
	Common    Tier = "Common"
)

// AllTiers lists every tier from rarest to commonest.
var AllTiers = []Tier{Unique, Mythic, Legendary, Epic, Rare, Uncommon, Common}

// TierSpec configures one tier.
type TierSpec struct {
	Tier Tier
	// Base and LevelMultiplier give the cumulative roll threshold
	// (Base + LevelMultiplier * level^0.9) * qualityMultiplier.
	Base            float64
	LevelMultiplier float64
	MinBonuses      int
	MaxBonuses      int
	// SpecialMultiplier scales the chance that a bonus slot becomes a special directive.
	SpecialMultiplier float64
	// MinValue and MaxValue bound the stat bonus values of the tier.
	MinValue int
	MaxValue int
}

// DefaultTiers is the standard tier table, rarest first.
var DefaultTiers = []TierSpec{
	{Tier: Unique, Base: 2, LevelMultiplier: 0.2, MinBonuses: 4, MaxBonuses: 5, SpecialMultiplier: 3, MinValue: 5, MaxValue: 8},
	{Tier: Mythic, Base: 8, LevelMultiplier: 0.5, MinBonuses: 3, MaxBonuses: 5, SpecialMultiplier: 2.5, MinValue: 4, MaxValue: 7},
	{Tier: Legendary, Base: 25, LevelMultiplier: 1, MinBonuses: 3, MaxBonuses: 4, SpecialMultiplier: 2, MinValue: 3, MaxValue: 6},
	{Tier: Epic, Base: 70, LevelMultiplier: 2, MinBonuses: 2, MaxBonuses: 3, SpecialMultiplier: 1.5, MinValue: 3, MaxValue: 5},
	{Tier: Rare, Base: 160, LevelMultiplier: 4, MinBonuses: 1, MaxBonuses: 3, SpecialMultiplier: 1.2, MinValue: 2, MaxValue: 4},
	{Tier: Uncommon, Base: 400, LevelMultiplier: 6, MinBonuses: 1, MaxBonuses: 2, SpecialMultiplier: 1, MinValue: 1, MaxValue: 3},
	{Tier: Common, Base: 1000, LevelMultiplier: 0, MinBonuses: 0, MaxBonuses: 1, SpecialMultiplier: 0.5, MinValue: 1, MaxValue: 2},
}

// ValidateTiers checks a tier table.
//
// Postcondition: Returns nil iff the table is non-empty, thresholds do not
// decrease from rarest to commonest, and every bonus and value range is
// well-formed.
func ValidateTiers(tiers []TierSpec) error {
	if len(tiers) == 0 {
		return fmt.Errorf("loot: tier table must not be empty")
	}
	for i, t := range tiers {
		if t.Tier == "" {
			return fmt.Errorf("loot: tier[%d] must have a name", i)
		}
		if t.MinBonuses < 0 || t.MinBonuses > t.MaxBonuses {
			return fmt.Errorf("loot: tier %s bonuses must satisfy 0 <= min (%d) <= max (%d)", t.Tier, t.MinBonuses, t.MaxBonuses)
		}
		if t.MinValue > t.MaxValue {
			return fmt.Errorf("loot: tier %s min value (%d) must be <= max value (%d)", t.Tier, t.MinValue, t.MaxValue)
		}
		if t.SpecialMultiplier < 0 {
			return fmt.Errorf("loot: tier %s special multiplier must be >= 0, got %f", t.Tier, t.SpecialMultiplier)
		}
		if i > 0 && t.Base < tiers[i-1].Base {
			return fmt.Errorf("loot: tier %s base %f is below the rarer tier %s", t.Tier, t.Base, tiers[i-1].Tier)
		}
	}
	return nil
}
