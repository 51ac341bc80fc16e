package character

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Resource cap constants.
const (
	BaseHealth        = 100
	BaseEnergy        = 100
	BaseWeight        = 30
	BaseCritThreshold = 20
	LuckPerCritPoint  = 20
)

// Derivable is the capability set the derivation engine needs. T is the
// concrete variant so Derive can hand back the same type it was given.
type Derivable[T any] interface {
	HasCharacteristics
	HasInventory
	HasSkills
	HasEffects
	WithDerived(standard, modified Scores, stats Stats) T
}

// Derive recomputes modified characteristics and resource caps from the
// standard block, equipped item bonuses, passive skill bonuses, and active
// effects.
//
// Precondition: logger must be non-nil.
// Postcondition: c is not modified. Derive(Derive(c)) == Derive(c).
func Derive[T Derivable[T]](c T, logger *zap.Logger) T {
	base := c.BaseScores()
	if base == nil {
		logger.Warn("characteristics block missing; initialising defaults")
		base = DefaultScores()
	}
	standard := base.Complete()

	if slots := c.UnresolvedSlots(); len(slots) > 0 {
		names := make([]string, len(slots))
		for i, sl := range slots {
			names[i] = string(sl)
		}
		logger.Warn("equipped item not in inventory; slot ignored", zap.Strings("slots", names))
	}

	var sources [][]Bonus
	for _, it := range c.EquippedItems() {
		sources = append(sources, it.Bonuses)
	}
	for _, sk := range c.Passives() {
		sources = append(sources, sk.Bonuses)
	}

	permanent := standard.Clone()
	conditional := make(map[Characteristic]int)
	for _, list := range sources {
		for _, b := range list {
			if _, known := standard[b.Target]; !known {
				continue
			}
			switch {
			case b.permanentFlat():
				permanent[b.Target] += b.Value
			case b.conditionalFlat():
				conditional[b.Target] += b.Value
			}
		}
	}

	stats := ComputeStats(permanent, c.CurrentStats())

	percent := PercentModifiers(c.ActiveEffects())
	modified := make(Scores, len(AllCharacteristics))
	for _, ch := range AllCharacteristics {
		v := float64(permanent[ch]+conditional[ch]) * (1 + percent[ch]/100)
		modified[ch] = int(math.Round(v))
	}

	return c.WithDerived(standard, modified, stats)
}

// ComputeStats derives resource caps from permanent characteristic values and
// clamps the current pools of prev to them. Pools of never-derived stats
// (prev.MaxHealth == 0) default to the new maxima.
//
// Postcondition: CurrentHealth <= MaxHealth and CurrentEnergy <= MaxEnergy.
func ComputeStats(permanent Scores, prev Stats) Stats {
	con := permanent.Get(Constitution)
	str := permanent.Get(Strength)

	s := Stats{
		MaxHealth: BaseHealth + con*2 + str,
		MaxEnergy: BaseEnergy +
			floorDiv(con*3, 4) +
			floorDiv(permanent.Get(Intelligence)*3, 4) +
			floorDiv(permanent.Get(Wisdom)*3, 4) +
			floorDiv(permanent.Get(Faith)*3, 4),
		// floor(STR*1.8 + CON*0.4) in exact integer arithmetic
		MaxWeight:     BaseWeight + floorDiv(str*18+con*4, 10),
		CritLuckBonus: floorDiv(permanent.Get(Luck), LuckPerCritPoint),
	}
	s.CritThreshold = BaseCritThreshold - s.CritLuckBonus

	if prev.MaxHealth == 0 {
		s.CurrentHealth = s.MaxHealth
		s.CurrentEnergy = s.MaxEnergy
	} else {
		s.CurrentHealth = min(prev.CurrentHealth, s.MaxHealth)
		s.CurrentEnergy = min(prev.CurrentEnergy, s.MaxEnergy)
	}
	return s
}

// PercentModifiers sums the percentage values of every effect per target.
// A debuff with an unsigned value counts as negative. Values that are not
// percentage strings are ignored.
func PercentModifiers(effects []Effect) map[Characteristic]float64 {
	out := make(map[Characteristic]float64)
	for _, e := range effects {
		v, ok := ParsePercent(e.Value)
		if !ok {
			continue
		}
		if e.Kind == Debuff && v > 0 && !strings.HasPrefix(strings.TrimSpace(e.Value), "+") {
			v = -v
		}
		out[e.Target] += v
	}
	return out
}

// ParsePercent parses strings such as "+10%", "-7.5%", or "15 %".
func ParsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "%") {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
