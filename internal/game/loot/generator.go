package loot

import (
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/chronicle/internal/game/character"
	"github.com/cory-johannsen/chronicle/internal/game/dice"
)

// Tuning constants for Generate.
const (
	MaxRoll            = 1000
	NoLootBase         = 0.3
	NoLootMin          = 0.05
	NoLootMax          = 0.6
	MinQuality         = 0.5
	MaxQuality         = 5.0
	LuckPerPointChance = 0.002
	SpecialBonusBase   = 0.05
	// MaxBonusSlots caps the bonus slots of one template, so chained curses terminate.
	MaxBonusSlots = 10
)

// BaseNamePlaceholder stands in for the item name until the template is resolved.
const BaseNamePlaceholder = "{base_item}"

// DirectiveKind is the kind of bonus a directive asks for.
type DirectiveKind string

// Directive kinds.
const (
	StatBonus            DirectiveKind = "stat_bonus"
	ConditionalStatBonus DirectiveKind = "conditional_stat_bonus"
	Curse                DirectiveKind = "curse"
	InterestingEffect    DirectiveKind = "interesting_effect"
)

// Directive is one unresolved bonus. Stat directives carry the tier's value
// range; a curse carries the negated range.
type Directive struct {
	Kind     DirectiveKind `json:"kind"`
	MinValue int           `json:"minValue,omitempty"`
	MaxValue int           `json:"maxValue,omitempty"`
}

// Template is an unresolved loot description. Templates are regenerated
// every turn and never persisted on their own.
type Template struct {
	BaseName   string      `json:"baseName"`
	Tier       Tier        `json:"tier"`
	Directives []Directive `json:"directives,omitempty"`
}

// Clone returns a deep copy of t.
func (t Template) Clone() Template {
	t.Directives = slices.Clone(t.Directives)
	return t
}

// Coefficients scale loot quality for the current situation.
type Coefficients struct {
	Search    float64 `json:"search"`
	Character float64 `json:"character"`
	Logic     float64 `json:"logic"`
	Location  float64 `json:"location"`
	Danger    float64 `json:"danger"`
}

// Neutral returns coefficients that leave quality unscaled.
func Neutral() Coefficients {
	return Coefficients{Location: 1, Danger: 1}
}

// sanitized replaces non-finite additive terms with 0 and non-finite or
// non-positive multiplicative terms with 1.
func (c Coefficients) sanitized() Coefficients {
	add := func(v float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	}
	mul := func(v float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return 1
		}
		return v
	}
	return Coefficients{
		Search:    add(c.Search),
		Character: add(c.Character),
		Logic:     add(c.Logic),
		Location:  mul(c.Location),
		Danger:    mul(c.Danger),
	}
}

// Profile is the part of the looting character that affects generation.
type Profile struct {
	Level int
	Luck  int
}

// ProfileOf extracts the loot profile of a character sheet, using the
// modified luck when derived and the standard value otherwise.
func ProfileOf(s character.Sheet) Profile {
	scores := s.Modified
	if scores == nil {
		scores = s.Standard
	}
	return Profile{Level: max(s.Level, 1), Luck: scores.Get(character.Luck)}
}

// QualityMultiplier returns
// clamp((1+search+character+logic) * location * danger * (1+luck/200), 0.5, 5.0).
func QualityMultiplier(c Coefficients, luck int) float64 {
	c = c.sanitized()
	q := (1 + c.Search + c.Character + c.Logic) * c.Location * c.Danger * (1 + float64(luck)/200)
	if math.IsNaN(q) {
		return 1
	}
	return min(max(q, MinQuality), MaxQuality)
}

// Generator produces loot templates from an injected random source.
type Generator struct {
	src    dice.Source
	tiers  []TierSpec
	logger *zap.Logger
}

// NewGenerator creates a Generator over DefaultTiers.
//
// Precondition: src and logger must be non-nil.
func NewGenerator(src dice.Source, logger *zap.Logger) *Generator {
	return &Generator{src: src, tiers: DefaultTiers, logger: logger}
}

// NewGeneratorWithTiers creates a Generator over a custom tier table.
//
// Postcondition: Returns an error if tiers fails ValidateTiers.
func NewGeneratorWithTiers(src dice.Source, tiers []TierSpec, logger *zap.Logger) (*Generator, error) {
	if err := ValidateTiers(tiers); err != nil {
		return nil, err
	}
	return &Generator{src: src, tiers: tiers, logger: logger}, nil
}

// Generate rolls n loot slots for who. Each slot first rolls for no loot,
// then for a tier, then for a lucky strike that either upgrades the tier one
// step or grants an extra bonus slot, then for each bonus slot's directive.
//
// Postcondition: returns at most max(n, 0) templates, each tagged with a tier
// from the generator's table.
func (g *Generator) Generate(c Coefficients, who Profile, n int) []Template {
	out := make([]Template, 0, max(n, 0))
	quality := QualityMultiplier(c, who.Luck)
	noLoot := min(max(NoLootBase/quality, NoLootMin), NoLootMax)
	levelTerm := math.Pow(float64(max(who.Level, 1)), 0.9)
	luckChance := float64(who.Luck) * LuckPerPointChance

	for range max(n, 0) {
		if dice.Chance(g.src, noLoot) {
			continue
		}
		idx := g.pickTier(dice.Between(g.src, 1, MaxRoll), levelTerm, quality)

		extra := 0
		if dice.Chance(g.src, luckChance) {
			if g.src.Float64() < 0.5 {
				// already rarest: the upgrade is lost
				if idx > 0 {
					idx--
				}
			} else {
				extra = 1
			}
		}

		spec := g.tiers[idx]
		out = append(out, Template{
			BaseName:   BaseNamePlaceholder,
			Tier:       spec.Tier,
			Directives: g.directives(spec, dice.Between(g.src, spec.MinBonuses, spec.MaxBonuses)+extra),
		})
	}

	g.logger.Debug("loot generated",
		zap.Int("requested", n),
		zap.Int("produced", len(out)),
		zap.Float64("quality", quality),
	)
	return out
}

// pickTier returns the index of the first tier whose threshold reaches roll,
// or the commonest tier when none does.
func (g *Generator) pickTier(roll int, levelTerm, quality float64) int {
	for i, t := range g.tiers {
		if (t.Base+t.LevelMultiplier*levelTerm)*quality >= float64(roll) {
			return i
		}
	}
	return len(g.tiers) - 1
}

func (g *Generator) directives(spec TierSpec, slots int) []Directive {
	var out []Directive
	for i := 1; i <= slots && i <= MaxBonusSlots; i++ {
		stat := Directive{Kind: StatBonus, MinValue: spec.MinValue, MaxValue: spec.MaxValue}
		if g.src.Float64() >= SpecialBonusBase*spec.SpecialMultiplier*float64(i) {
			out = append(out, stat)
			continue
		}
		switch r := g.src.Float64(); {
		case r < 0.15:
			out = append(out, Directive{Kind: Curse, MinValue: -spec.MaxValue, MaxValue: -spec.MinValue})
			slots++
		case r < 0.45:
			stat.Kind = ConditionalStatBonus
			out = append(out, stat)
		default:
			out = append(out, Directive{Kind: InterestingEffect})
		}
	}
	return out
}
