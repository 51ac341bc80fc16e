package turn

import (
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/chronicle/internal/game/calendar"
	"github.com/cory-johannsen/chronicle/internal/game/character"
	"github.com/cory-johannsen/chronicle/internal/game/dice"
	"github.com/cory-johannsen/chronicle/internal/game/idgen"
	"github.com/cory-johannsen/chronicle/internal/game/loot"
	"github.com/cory-johannsen/chronicle/internal/game/weather"
	"github.com/cory-johannsen/chronicle/internal/game/world"
)

// Options sizes the ephemeral fields regenerated every turn.
type Options struct {
	LootBatchSize  int
	DiceBatchSize  int
	DiceExpression dice.Expression
}

// Orchestrator produces the next Context from the previous one and a Delta.
// It keeps no per-call state between calls. It is not safe for concurrent use.
type Orchestrator struct {
	cal     calendar.Calendar
	weather *weather.Table
	merger  *world.Merger
	loot    *loot.Generator
	roller  *dice.Roller
	ids     idgen.Generator
	opts    Options
	logger  *zap.Logger
}

// NewOrchestrator creates an Orchestrator.
//
// Precondition: every pointer argument and ids must be non-nil;
// opts.DiceExpression must come from dice.Parse.
func NewOrchestrator(
	cal calendar.Calendar,
	weatherTable *weather.Table,
	merger *world.Merger,
	lootGen *loot.Generator,
	roller *dice.Roller,
	ids idgen.Generator,
	opts Options,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		cal:     cal,
		weather: weatherTable,
		merger:  merger,
		loot:    lootGen,
		roller:  roller,
		ids:     ids,
		opts:    opts,
		logger:  logger,
	}
}

// Advance resolves one turn. Characters and history come from state and
// history when those are non-nil, otherwise from prev. The steps run in
// order: item grants and resource normalization, active player rotation,
// clock, map merge, weather, visited ordering, quests, flags, effect expiry
// and derivation, then the loot batch and dice pool are regenerated.
//
// With advanceTurn false the clock does not move, the weather does not
// shift, and effects do not tick, so re-running the same delta against the
// result changes nothing but Loot and Dice.
//
// Postcondition: prev, delta, state, and history are not modified.
func (o *Orchestrator) Advance(prev Context, delta Delta, state AggregateState, history []string, advanceTurn bool) Context {
	next := prev.Clone()
	if state.Party != nil {
		next.Party = cloneAll(state.Party, character.Player.Clone)
	}
	if state.NPCs != nil {
		next.NPCs = cloneAll(state.NPCs, character.NPC.Clone)
	}
	if history != nil {
		next.History = slices.Clone(history)
	}

	next.Party = o.grantItems(next.Party, delta.NewItems)
	next.Party = o.attachResources(next.Party, delta.ItemResources)
	next, rejects := next.Normalized()
	if len(rejects) > 0 {
		o.logger.Warn("ignoring malformed legacy bonuses", zap.Strings("bonuses", rejects))
	}

	next.Turn, next.ActivePlayer = rotate(prev, len(next.Party), delta.PassTurn, advanceTurn)

	next.World.Minutes = o.clock(prev.World.Minutes, delta, advanceTurn)
	next.World.Date = o.cal.ToDate(next.World.Minutes)
	next.World.TimeOfDay = next.World.Date.TimeOfDay()

	if delta.MapUpdates.Empty() {
		o.logger.Debug("no map updates this turn", zap.Int("turn", next.Turn))
	}
	res := o.merger.Merge(prev.Map, delta.MapUpdates, o.currentLocation(prev, delta), next.Turn)
	next.Map = res.Map
	if res.CurrentID != "" {
		next.CurrentLocationID = res.CurrentID
	}

	shift := 0
	if advanceTurn {
		shift = delta.WeatherShift
	}
	biome := weather.DefaultBiome
	if loc, ok := next.CurrentLocation(); ok && loc.Biome != "" {
		biome = loc.Biome
	}
	next.World.Weather = o.weather.Step(biome, prev.World.Weather, shift, delta.Weather)

	var touched []string
	if res.CurrentID != "" {
		touched = append(touched, res.CurrentID)
	}
	touched = append(touched, res.Updated...)
	touched = append(touched, res.Created...)
	next.Visited = reorderVisited(prev.Visited, touched, next.Map)

	next.Quests = prev.Quests.Fold(delta.NewQuests, delta.QuestUpdates, o.logger)
	next.World.Flags = applyFlags(prev.World.Flags, delta.SetFlags, delta.RemoveFlags)

	for i := range next.Party {
		if advanceTurn {
			next.Party[i], _ = character.ExpireEffects(next.Party[i], o.logger)
		}
		next.Party[i] = character.Derive(next.Party[i], o.logger)
	}
	for i := range next.NPCs {
		if advanceTurn {
			next.NPCs[i], _ = character.ExpireEffects(next.NPCs[i], o.logger)
		}
		next.NPCs[i] = character.Derive(next.NPCs[i], o.logger)
	}

	coeffs := loot.Neutral()
	if delta.LootCoefficients != nil {
		coeffs = *delta.LootCoefficients
	}
	profile := loot.Profile{Level: 1}
	if p, ok := next.ActiveMember(); ok {
		profile = loot.ProfileOf(p.Sheet)
	}
	next.Loot = o.loot.Generate(coeffs, profile, o.opts.LootBatchSize)
	next.Dice = o.roller.Batch(o.opts.DiceExpression, o.opts.DiceBatchSize)

	o.logger.Info("turn resolved",
		zap.Int("turn", next.Turn),
		zap.Int("active_player", next.ActivePlayer),
		zap.Bool("advanced", advanceTurn),
		zap.Stringer("date", next.World.Date),
		zap.String("weather", next.World.Weather),
		zap.String("location", next.CurrentLocationID),
	)
	return next
}

// rotate returns the next turn counter and active player index. In
// cooperative mode the index advances on auto-pass or an explicit pass and
// the counter increments only when the index wraps; otherwise the counter
// increments on every advanced turn.
func rotate(prev Context, partySize int, pass, advanceTurn bool) (turn, active int) {
	turn, active = prev.Turn, prev.ActivePlayer
	if active < 0 || active >= partySize {
		active = 0
	}
	if !advanceTurn {
		return turn, active
	}
	if !prev.Settings.Cooperative {
		return turn + 1, active
	}
	if !prev.Settings.AutoPassTurn && !pass {
		return turn, active
	}
	active++
	if active >= partySize {
		return turn + 1, 0
	}
	return turn, active
}

func (o *Orchestrator) clock(minutes int64, delta Delta, advanceTurn bool) int64 {
	switch {
	case delta.TimeSet != nil:
		return o.cal.ToMinutes(*delta.TimeSet)
	case delta.ElapsedMinutes < 0:
		o.logger.Warn("ignoring negative elapsed minutes", zap.Int("elapsed", delta.ElapsedMinutes))
	case advanceTurn:
		return minutes + int64(delta.ElapsedMinutes)
	}
	return minutes
}

// currentLocation returns the authoritative current location for the merge,
// substituting the previous turn's location when the delta carries none.
func (o *Orchestrator) currentLocation(prev Context, delta Delta) *world.Current {
	if delta.CurrentLocation != nil {
		return delta.CurrentLocation
	}
	loc, ok := prev.CurrentLocation()
	if !ok {
		return nil
	}
	o.logger.Warn("current location missing from delta; reusing previous location",
		zap.String("location", loc.ID),
	)
	return world.NewCurrent(loc)
}

// grantItems appends granted items to their owners. An item whose id is
// already in the owner's inventory is skipped; an item without an id gets a
// fresh one.
func (o *Orchestrator) grantItems(party []character.Player, grants []ItemGrant) []character.Player {
	for _, g := range grants {
		i := slices.IndexFunc(party, func(p character.Player) bool { return p.ID == g.OwnerID })
		if i < 0 {
			o.logger.Warn("ignoring item for unknown party member",
				zap.String("owner", g.OwnerID),
				zap.String("item", g.Item.Name),
			)
			continue
		}
		it := g.Item.Clone()
		if it.ID == "" {
			it.ID = o.ids.NewID("item")
		} else if _, held := party[i].FindItem(it.ID); held {
			continue
		}
		party[i].Inventory = append(party[i].Inventory, it)
	}
	return party
}

// attachResources gives every inventory item lacking resource data the
// first unconsumed record of the same name. The consumed markers live only
// for this call.
func (o *Orchestrator) attachResources(party []character.Player, records []ResourceRecord) []character.Player {
	if len(records) == 0 {
		return party
	}
	consumed := make([]bool, len(records))
	for pi := range party {
		inv := party[pi].Inventory
		for ii := range inv {
			if inv[ii].Resource != nil {
				continue
			}
			ri := -1
			for k, r := range records {
				if !consumed[k] && strings.EqualFold(strings.TrimSpace(r.ItemName), strings.TrimSpace(inv[ii].Name)) {
					ri = k
					break
				}
			}
			if ri < 0 {
				continue
			}
			res := records[ri].Resource
			inv[ii].Resource = &res
			consumed[ri] = true
		}
	}
	if n := countFalse(consumed); n > 0 {
		o.logger.Debug("unmatched item resource records", zap.Int("count", n))
	}
	return party
}

func countFalse(bs []bool) int {
	n := 0
	for _, b := range bs {
		if !b {
			n++
		}
	}
	return n
}

// reorderVisited moves touched locations to the front. Touched locations
// already visited keep their prior relative order and precede newly visited
// ones, which follow in touch order; the remaining visited locations follow
// in their prior order. Ids missing from m are dropped.
func reorderVisited(prev, touched []string, m world.Map) []string {
	isTouched := make(map[string]bool, len(touched))
	for _, id := range touched {
		isTouched[id] = true
	}
	seen := make(map[string]bool, len(prev)+len(touched))
	keep := func(id string) bool {
		if seen[id] {
			return false
		}
		if _, ok := m.Get(id); !ok {
			return false
		}
		seen[id] = true
		return true
	}

	var front, back []string
	for _, id := range prev {
		if isTouched[id] {
			if keep(id) {
				front = append(front, id)
			}
		}
	}
	for _, id := range touched {
		if keep(id) {
			front = append(front, id)
		}
	}
	for _, id := range prev {
		if keep(id) {
			back = append(back, id)
		}
	}
	return append(front, back...)
}

func applyFlags(prev, set map[string]string, remove []string) map[string]string {
	out := maps.Clone(prev)
	if len(set) > 0 && out == nil {
		out = make(map[string]string, len(set))
	}
	maps.Copy(out, set)
	for _, k := range remove {
		delete(out, k)
	}
	return out
}
