package character

import (
	"regexp"
	"strconv"
)

var legacyBonusPattern = regexp.MustCompile(`^\s*([+-]?\d+)\s+([A-Za-z]+)\s*$`)

// ParseLegacyBonus converts a string-encoded bonus of the form "+N Name" into
// a permanent flat Bonus.
//
// Postcondition: ok is false when s is malformed or names no characteristic.
func ParseLegacyBonus(s string) (Bonus, bool) {
	m := legacyBonusPattern.FindStringSubmatch(s)
	if m == nil {
		return Bonus{}, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return Bonus{}, false
	}
	target, ok := ParseCharacteristic(m[2])
	if !ok {
		return Bonus{}, false
	}
	return Bonus{Target: target, Value: v, ValueType: Flat, Application: Permanent}, true
}

// normalizeBonuses returns the structured list, converting legacy strings only
// when no structured list exists. Unparseable strings are returned as rejects.
func normalizeBonuses(structured []Bonus, legacy []string) ([]Bonus, []string) {
	if len(structured) > 0 || len(legacy) == 0 {
		return structured, nil
	}
	var out []Bonus
	var rejects []string
	for _, s := range legacy {
		if b, ok := ParseLegacyBonus(s); ok {
			out = append(out, b)
		} else {
			rejects = append(rejects, s)
		}
	}
	return out, rejects
}

// Normalized returns a copy whose legacy bonus strings have been converted to
// structured bonuses, along with any strings that could not be parsed.
func (it Item) Normalized() (Item, []string) {
	out := it.Clone()
	var rejects []string
	out.Bonuses, rejects = normalizeBonuses(out.Bonuses, out.LegacyBonuses)
	out.LegacyBonuses = nil
	return out, rejects
}

// Normalized returns a copy whose legacy bonus strings have been converted to
// structured bonuses, along with any strings that could not be parsed.
func (sk Skill) Normalized() (Skill, []string) {
	out := sk.Clone()
	var rejects []string
	out.Bonuses, rejects = normalizeBonuses(out.Bonuses, out.LegacyBonuses)
	out.LegacyBonuses = nil
	return out, rejects
}

// Normalized converts every legacy bonus on the sheet's items and skills.
// Run once at load time so Derive only ever sees structured bonuses.
func (s Sheet) Normalized() (Sheet, []string) {
	out := s.Clone()
	var rejects []string
	for i := range out.Inventory {
		var r []string
		out.Inventory[i], r = out.Inventory[i].Normalized()
		rejects = append(rejects, r...)
	}
	for _, skills := range [][]Skill{out.PassiveSkills, out.ActiveSkills} {
		for i := range skills {
			var r []string
			skills[i], r = skills[i].Normalized()
			rejects = append(rejects, r...)
		}
	}
	return out, rejects
}
