// Package character defines the character domain model shared by players and
// NPCs, the attribute derivation engine, and the character factory.
package character

import (
	"maps"
	"slices"
	"strings"
)

// Characteristic names one of the twelve base attributes.
type Characteristic string

// The twelve characteristics every character carries.
const (
	Strength       Characteristic = "strength"
	Dexterity      Characteristic = "dexterity"
	Constitution   Characteristic = "constitution"
	Intelligence   Characteristic = "intelligence"
	Wisdom         Characteristic = "wisdom"
	Faith          Characteristic = "faith"
	Charisma       Characteristic = "charisma"
	Perception     Characteristic = "perception"
	Luck           Characteristic = "luck"
	Speed          Characteristic = "speed"
	Willpower      Characteristic = "willpower"
	Attractiveness Characteristic = "attractiveness"
)

// AllCharacteristics lists the twelve characteristics in display order.
var AllCharacteristics = []Characteristic{
	Strength, Dexterity, Constitution, Intelligence, Wisdom, Faith,
	Charisma, Perception, Luck, Speed, Willpower, Attractiveness,
}

var characteristicAliases = map[string]Characteristic{
	"str": Strength, "dex": Dexterity, "con": Constitution, "int": Intelligence,
	"wis": Wisdom, "fai": Faith, "cha": Charisma, "per": Perception,
	"lck": Luck, "spd": Speed, "wil": Willpower, "att": Attractiveness,
}

// ParseCharacteristic resolves a characteristic from its full name or
// three-letter abbreviation, case-insensitively.
//
// Postcondition: ok is true iff name identifies one of AllCharacteristics.
func ParseCharacteristic(name string) (Characteristic, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if c, ok := characteristicAliases[n]; ok {
		return c, true
	}
	c := Characteristic(n)
	if slices.Contains(AllCharacteristics, c) {
		return c, true
	}
	return "", false
}

const (
	// DefaultScore is the starting value of every characteristic.
	DefaultScore = 10
	// MissingScore is substituted for a characteristic absent from a block.
	MissingScore = 1
)

// Scores maps each characteristic to a value.
// A nil Scores means the block is missing entirely.
type Scores map[Characteristic]int

// DefaultScores returns a block with every characteristic at DefaultScore.
func DefaultScores() Scores {
	s := make(Scores, len(AllCharacteristics))
	for _, c := range AllCharacteristics {
		s[c] = DefaultScore
	}
	return s
}

// Get returns the value of c, or MissingScore when c is absent.
func (s Scores) Get(c Characteristic) int {
	if v, ok := s[c]; ok {
		return v
	}
	return MissingScore
}

// Clone returns an independent copy.
func (s Scores) Clone() Scores {
	return maps.Clone(s)
}

// Complete returns a copy with every absent characteristic set to MissingScore.
func (s Scores) Complete() Scores {
	out := make(Scores, len(AllCharacteristics))
	for _, c := range AllCharacteristics {
		out[c] = s.Get(c)
	}
	return out
}

// ValueType is the numeric kind of a structured bonus.
type ValueType string

// Bonus value kinds.
const (
	Flat    ValueType = "flat"
	Percent ValueType = "percent"
)

// Application states when a structured bonus is active.
type Application string

// Bonus application modes.
const (
	Permanent   Application = "permanent"
	Conditional Application = "conditional"
)

// Bonus is a typed modifier attached to an item or skill.
// Empty ValueType means Flat; empty Application means Permanent.
type Bonus struct {
	Target      Characteristic `json:"target"`
	Value       int            `json:"value"`
	ValueType   ValueType      `json:"valueType,omitempty"`
	Application Application    `json:"application,omitempty"`
	Condition   string         `json:"condition,omitempty"`
}

func (b Bonus) isFlat() bool { return b.ValueType == "" || b.ValueType == Flat }

// permanentFlat reports whether b always contributes to the permanent value.
func (b Bonus) permanentFlat() bool {
	return b.isFlat() && (b.Application == "" || b.Application == Permanent) && b.Condition == ""
}

// conditionalFlat reports whether b contributes to the final modified value only.
func (b Bonus) conditionalFlat() bool {
	return b.isFlat() && b.Application == Conditional
}

// Resource tracks a consumable charge pool carried by an item (ammunition, charges).
type Resource struct {
	Name    string `json:"name,omitempty"`
	Current int    `json:"current"`
	Max     int    `json:"max"`
}

// Item is an inventory entry.
type Item struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Slot          Slot      `json:"slot,omitempty"`
	Quantity      int       `json:"quantity,omitempty"`
	Weight        float64   `json:"weight,omitempty"`
	Bonuses       []Bonus   `json:"bonuses,omitempty"`
	LegacyBonuses []string  `json:"legacyBonuses,omitempty"`
	Resource      *Resource `json:"resource,omitempty"`
}

// Clone returns a deep copy.
func (it Item) Clone() Item {
	out := it
	out.Bonuses = slices.Clone(it.Bonuses)
	out.LegacyBonuses = slices.Clone(it.LegacyBonuses)
	if it.Resource != nil {
		r := *it.Resource
		out.Resource = &r
	}
	return out
}

// Skill is a learned ability. Only passive skills contribute bonuses.
type Skill struct {
	ID            string   `json:"id,omitempty"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Bonuses       []Bonus  `json:"bonuses,omitempty"`
	LegacyBonuses []string `json:"legacyBonuses,omitempty"`
}

// Clone returns a deep copy.
func (sk Skill) Clone() Skill {
	out := sk
	out.Bonuses = slices.Clone(sk.Bonuses)
	out.LegacyBonuses = slices.Clone(sk.LegacyBonuses)
	return out
}

// EffectKind distinguishes buffs from debuffs.
type EffectKind string

// Effect kinds.
const (
	Buff   EffectKind = "buff"
	Debuff EffectKind = "debuff"
)

// Effect is an active timed modifier. Value is a percentage string such as
// "+10%" or "-25%". Duration counts remaining turns; negative is permanent.
type Effect struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Kind     EffectKind     `json:"kind"`
	Target   Characteristic `json:"target"`
	Value    string         `json:"value"`
	Duration int            `json:"duration"`
}

// Slot names an equipment position.
type Slot string

// Equipment slots.
const (
	SlotHead     Slot = "head"
	SlotNeck     Slot = "neck"
	SlotChest    Slot = "chest"
	SlotHands    Slot = "hands"
	SlotLegs     Slot = "legs"
	SlotFeet     Slot = "feet"
	SlotMainHand Slot = "mainHand"
	SlotOffHand  Slot = "offHand"
	SlotRing1    Slot = "ring1"
	SlotRing2    Slot = "ring2"
)

// Stats holds the resource caps and current pools derived from characteristics.
// A zero MaxHealth means the stats have never been derived.
type Stats struct {
	MaxHealth     int `json:"maxHealth"`
	CurrentHealth int `json:"currentHealth"`
	MaxEnergy     int `json:"maxEnergy"`
	CurrentEnergy int `json:"currentEnergy"`
	MaxWeight     int `json:"maxWeight"`
	CritLuckBonus int `json:"critLuckBonus"`
	CritThreshold int `json:"critThreshold"`
}

// Sheet is the state shared by every kind of character.
//
// Invariant: Modified and Stats are always the output of Derive over the
// other fields; nothing writes them directly.
type Sheet struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Level         int             `json:"level"`
	Standard      Scores          `json:"standard"`
	Modified      Scores          `json:"modified"`
	Stats         Stats           `json:"stats"`
	Equipment     map[Slot]string `json:"equipment,omitempty"`
	Inventory     []Item          `json:"inventory,omitempty"`
	PassiveSkills []Skill         `json:"passiveSkills,omitempty"`
	ActiveSkills  []Skill         `json:"activeSkills,omitempty"`
	Effects       []Effect        `json:"effects,omitempty"`
	Wounds        []string        `json:"wounds,omitempty"`
	Portrait      string          `json:"portrait,omitempty"`
}

// Clone returns a deep copy sharing no mutable state with s.
func (s Sheet) Clone() Sheet {
	out := s
	out.Standard = s.Standard.Clone()
	out.Modified = s.Modified.Clone()
	out.Equipment = maps.Clone(s.Equipment)
	out.Inventory = cloneAll(s.Inventory, Item.Clone)
	out.PassiveSkills = cloneAll(s.PassiveSkills, Skill.Clone)
	out.ActiveSkills = cloneAll(s.ActiveSkills, Skill.Clone)
	out.Effects = slices.Clone(s.Effects)
	out.Wounds = slices.Clone(s.Wounds)
	return out
}

func cloneAll[T any](in []T, clone func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = clone(v)
	}
	return out
}

// HasCharacteristics exposes the base characteristic block and current stats.
type HasCharacteristics interface {
	BaseScores() Scores
	CurrentStats() Stats
}

// HasInventory exposes the items currently equipped.
type HasInventory interface {
	EquippedItems() []Item
	UnresolvedSlots() []Slot
}

// HasSkills exposes the passive skills.
type HasSkills interface {
	Passives() []Skill
}

// HasEffects exposes the active timed effects.
type HasEffects interface {
	ActiveEffects() []Effect
}

// BaseScores returns the standard characteristic block (nil when missing).
func (s Sheet) BaseScores() Scores { return s.Standard }

// CurrentStats returns the last derived stats.
func (s Sheet) CurrentStats() Stats { return s.Stats }

// Passives returns the passive skill list.
func (s Sheet) Passives() []Skill { return s.PassiveSkills }

// ActiveEffects returns the active effect list.
func (s Sheet) ActiveEffects() []Effect { return s.Effects }

// EquippedItems resolves every equipment slot against the inventory, in slot
// name order. Slots referencing an item absent from the inventory are treated
// as empty, and an item occupying several slots is returned once.
func (s Sheet) EquippedItems() []Item {
	slots := slices.Sorted(maps.Keys(s.Equipment))
	seen := make(map[string]bool, len(slots))
	var out []Item
	for _, slot := range slots {
		id := s.Equipment[slot]
		if id == "" || seen[id] {
			continue
		}
		if it, ok := s.FindItem(id); ok {
			seen[id] = true
			out = append(out, it)
		}
	}
	return out
}

// FindItem returns the inventory entry with the given id.
func (s Sheet) FindItem(id string) (Item, bool) {
	for _, it := range s.Inventory {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// UnresolvedSlots returns the slots whose item reference does not resolve.
func (s Sheet) UnresolvedSlots() []Slot {
	var out []Slot
	for _, slot := range slices.Sorted(maps.Keys(s.Equipment)) {
		id := s.Equipment[slot]
		if id == "" {
			continue
		}
		if _, ok := s.FindItem(id); !ok {
			out = append(out, slot)
		}
	}
	return out
}

// WithDerived returns a copy carrying freshly derived values.
func (s Sheet) WithDerived(standard, modified Scores, stats Stats) Sheet {
	out := s.Clone()
	out.Standard = standard
	out.Modified = modified
	out.Stats = stats
	return out
}

// WithEffects returns a copy with the effect list replaced.
func (s Sheet) WithEffects(effects []Effect) Sheet {
	out := s.Clone()
	out.Effects = effects
	return out
}

// Kind tags the character variant.
type Kind string

// Character variants.
const (
	KindPlayer Kind = "player"
	KindNPC    Kind = "npc"
)

// Player is a party member controlled by a human.
type Player struct {
	Sheet
	Race       string `json:"race,omitempty"`
	Class      string `json:"class,omitempty"`
	Experience int    `json:"experience,omitempty"`
}

// Kind returns KindPlayer.
func (Player) Kind() Kind { return KindPlayer }

// Clone returns a deep copy.
func (p Player) Clone() Player {
	p.Sheet = p.Sheet.Clone()
	return p
}

// WithDerived returns a copy carrying freshly derived values.
func (p Player) WithDerived(standard, modified Scores, stats Stats) Player {
	p.Sheet = p.Sheet.WithDerived(standard, modified, stats)
	return p
}

// WithEffects returns a copy with the effect list replaced.
func (p Player) WithEffects(effects []Effect) Player {
	p.Sheet = p.Sheet.WithEffects(effects)
	return p
}

// NPC is a world-controlled character.
type NPC struct {
	Sheet
	Attitude string `json:"attitude,omitempty"`
	Faction  string `json:"faction,omitempty"`
}

// Kind returns KindNPC.
func (NPC) Kind() Kind { return KindNPC }

// Clone returns a deep copy.
func (n NPC) Clone() NPC {
	n.Sheet = n.Sheet.Clone()
	return n
}

// WithDerived returns a copy carrying freshly derived values.
func (n NPC) WithDerived(standard, modified Scores, stats Stats) NPC {
	n.Sheet = n.Sheet.WithDerived(standard, modified, stats)
	return n
}

// WithEffects returns a copy with the effect list replaced.
func (n NPC) WithEffects(effects []Effect) NPC {
	n.Sheet = n.Sheet.WithEffects(effects)
	return n
}
