package character

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/chronicle/internal/game/idgen"
	"github.com/cory-johannsen/chronicle/internal/game/ruleset"
)

var (
	// ErrUnknownRace is returned when creation choices name an unregistered race.
	ErrUnknownRace = errors.New("unknown race")
	// ErrUnknownClass is returned when creation choices name an unregistered class.
	ErrUnknownClass = errors.New("unknown class")
	// ErrPointBudgetExceeded is returned when allocated points exceed the pool.
	ErrPointBudgetExceeded = errors.New("allocated points exceed the creation pool")
)

// Choices are the raw selections made on the character-creation screen.
type Choices struct {
	Name      string                 `json:"name"`
	RaceID    string                 `json:"race"`
	ClassID   string                 `json:"class"`
	Allocated map[Characteristic]int `json:"allocated,omitempty"`
}

// Factory builds new player characters.
type Factory struct {
	rules     *ruleset.Registry
	ids       idgen.Generator
	pointPool int
	logger    *zap.Logger
}

// NewFactory creates a Factory.
//
// Precondition: rules, ids, and logger must be non-nil; pointPool >= 0.
func NewFactory(rules *ruleset.Registry, ids idgen.Generator, pointPool int, logger *zap.Logger) *Factory {
	return &Factory{rules: rules, ids: ids, pointPool: pointPool, logger: logger}
}

// FromChoices builds a level-1 player. Every characteristic starts at
// DefaultScore, then race bonuses, class bonuses, and allocated points are
// added. Class skills and starting items are granted, items with a slot are
// equipped, and the result is derived with current pools at their maxima.
//
// Postcondition: Returns a derived Player, or an error wrapping
// ErrUnknownRace, ErrUnknownClass, or ErrPointBudgetExceeded.
func (f *Factory) FromChoices(ch Choices) (Player, error) {
	if ch.Name == "" {
		return Player{}, errors.New("character name must not be empty")
	}
	race, ok := f.rules.Race(ch.RaceID)
	if !ok {
		return Player{}, unknown(ErrUnknownRace, ch.RaceID, f.rules.SuggestRace)
	}
	class, ok := f.rules.Class(ch.ClassID)
	if !ok {
		return Player{}, unknown(ErrUnknownClass, ch.ClassID, f.rules.SuggestClass)
	}

	spent := 0
	for c, pts := range ch.Allocated {
		if !slices.Contains(AllCharacteristics, c) {
			return Player{}, unknown(errors.New("allocated points to unknown characteristic"), string(c), suggestCharacteristic)
		}
		if pts < 0 {
			return Player{}, fmt.Errorf("allocated points for %s must be >= 0, got %d", c, pts)
		}
		spent += pts
	}
	if spent > f.pointPool {
		return Player{}, fmt.Errorf("%w: spent %d of %d", ErrPointBudgetExceeded, spent, f.pointPool)
	}

	standard := DefaultScores()
	if err := applyTable(standard, race.Bonuses); err != nil {
		return Player{}, fmt.Errorf("race %q: %w", race.ID, err)
	}
	if err := applyTable(standard, class.Bonuses); err != nil {
		return Player{}, fmt.Errorf("class %q: %w", class.ID, err)
	}
	for c, pts := range ch.Allocated {
		standard[c] += pts
	}

	sheet := Sheet{
		ID:        f.ids.NewID("char"),
		Name:      ch.Name,
		Level:     1,
		Standard:  standard,
		Equipment: make(map[Slot]string),
	}
	for _, sd := range class.Skills {
		sheet.PassiveSkills = append(sheet.PassiveSkills, Skill{
			ID:            f.ids.NewID("skill"),
			Name:          sd.Name,
			Description:   sd.Description,
			Bonuses:       f.convertBonuses(sd.Bonuses),
			LegacyBonuses: slices.Clone(sd.Legacy),
		})
	}
	for _, idef := range class.StartingItems {
		it := Item{
			ID:            f.ids.NewID("item"),
			Name:          idef.Name,
			Description:   idef.Description,
			Slot:          Slot(idef.Slot),
			Weight:        idef.Weight,
			Quantity:      max(idef.Quantity, 1),
			Bonuses:       f.convertBonuses(idef.Bonuses),
			LegacyBonuses: slices.Clone(idef.Legacy),
		}
		sheet.Inventory = append(sheet.Inventory, it)
		if it.Slot != "" && sheet.Equipment[it.Slot] == "" {
			sheet.Equipment[it.Slot] = it.ID
		}
	}

	sheet, rejects := sheet.Normalized()
	if len(rejects) > 0 {
		f.logger.Warn("ignoring malformed legacy bonuses",
			zap.String("class", class.ID),
			zap.Strings("bonuses", rejects),
		)
	}

	p := Player{Sheet: sheet, Race: race.ID, Class: class.ID}
	p = f.finish(p)
	f.logger.Info("character created",
		zap.String("id", p.ID),
		zap.String("race", p.Race),
		zap.String("class", p.Class),
		zap.Int("max_health", p.Stats.MaxHealth),
	)
	return p, nil
}

// FromTemplate deep-copies tpl for co-op creation synced to the party level.
// The copy gets fresh character and item ids, the given name (if non-empty),
// and the party level (if positive).
//
// Postcondition: tpl is not modified; the result is derived with current
// pools at their maxima.
func (f *Factory) FromTemplate(tpl Player, name string, partyLevel int) Player {
	p := tpl.Clone()
	p.ID = f.ids.NewID("char")
	if name != "" {
		p.Name = name
	}
	if partyLevel > 0 {
		p.Level = partyLevel
	}

	remap := make(map[string]string, len(p.Inventory))
	for i := range p.Inventory {
		fresh := f.ids.NewID("item")
		remap[p.Inventory[i].ID] = fresh
		p.Inventory[i].ID = fresh
	}
	equipment := make(map[Slot]string, len(p.Equipment))
	for _, slot := range slices.Sorted(maps.Keys(p.Equipment)) {
		if id, ok := remap[p.Equipment[slot]]; ok {
			equipment[slot] = id
		}
	}
	p.Equipment = equipment

	return f.finish(p)
}

// finish clears per-session state and runs the derivation formulas against
// the characteristics actually assigned.
func (f *Factory) finish(p Player) Player {
	p.Effects = nil
	p.Wounds = nil
	p.Portrait = ""
	p.Stats = Stats{}
	p = Derive(p, f.logger)
	p.Stats.CurrentHealth = p.Stats.MaxHealth
	p.Stats.CurrentEnergy = p.Stats.MaxEnergy
	return p
}

// unknown wraps sentinel with the rejected id and, when one is close enough,
// the id the caller probably meant.
func unknown(sentinel error, id string, suggest func(string) (string, bool)) error {
	if hint, ok := suggest(id); ok {
		return fmt.Errorf("%w: %q (did you mean %q?)", sentinel, id, hint)
	}
	return fmt.Errorf("%w: %q", sentinel, id)
}

func suggestCharacteristic(name string) (string, bool) {
	names := make([]string, len(AllCharacteristics))
	for i, c := range AllCharacteristics {
		names[i] = string(c)
	}
	return ruleset.Suggest(name, names)
}

func applyTable(s Scores, table map[string]int) error {
	for name, v := range table {
		c, ok := ParseCharacteristic(name)
		if !ok {
			return unknown(errors.New("unknown characteristic"), name, suggestCharacteristic)
		}
		s[c] += v
	}
	return nil
}

// convertBonuses turns ruleset bonus definitions into bonuses. A definition
// naming an unknown characteristic is logged and dropped.
func (f *Factory) convertBonuses(defs []ruleset.BonusDef) []Bonus {
	var out []Bonus
	for _, d := range defs {
		c, ok := ParseCharacteristic(d.Target)
		if !ok {
			fields := []zap.Field{zap.String("target", d.Target)}
			if hint, found := suggestCharacteristic(d.Target); found {
				fields = append(fields, zap.String("suggestion", hint))
			}
			f.logger.Warn("ignoring bonus for unknown characteristic", fields...)
			continue
		}
		out = append(out, Bonus{
			Target:      c,
			Value:       d.Value,
			ValueType:   ValueType(d.ValueType),
			Application: Application(d.Application),
			Condition:   d.Condition,
		})
	}
	return out
}
