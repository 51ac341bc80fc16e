package world

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/chronicle/internal/game/idgen"
	"github.com/cory-johannsen/chronicle/internal/game/patch"
)

// Merger folds update batches into the map.
type Merger struct {
	ids    idgen.Generator
	logger *zap.Logger
}

// NewMerger creates a Merger.
//
// Precondition: ids and logger must be non-nil.
func NewMerger(ids idgen.Generator, logger *zap.Logger) *Merger {
	return &Merger{ids: ids, logger: logger}
}

// Result is the outcome of one Merge call.
type Result struct {
	Map Map
	// CurrentID is the id the authoritative current location landed on, or
	// "" when none was supplied.
	CurrentID string
	// Created lists the ids of inserted locations in batch order.
	Created []string
	// Updated lists the ids of locations named by LocationUpdates, in
	// first-touch order.
	Updated []string
	// InitialIDs maps each batch-local InitialID to the id it resolved to.
	InitialIDs map[string]string
}

// Merge applies current and batch to a copy of base. Steps run in order:
// current location, new locations, location updates, links, storages,
// threats. A fragment referencing an unknown location, link, or threat is
// logged and skipped. Coordinates never change after insertion.
//
// Precondition: base satisfies Map.Validate.
// Postcondition: base, batch, and current are not modified; the result
// satisfies Map.Validate.
func (mg *Merger) Merge(base Map, batch UpdateBatch, current *Current, turn int) Result {
	m := &merge{
		Merger:  mg,
		out:     base.Clone(),
		byCoord: make(map[Coord]string, len(base.Locations)),
		initial: make(map[string]string),
		turn:    turn,
	}
	if m.out.Locations == nil {
		m.out.Locations = make(map[string]Location)
	}
	for id, l := range m.out.Locations {
		m.byCoord[l.Coord] = id
	}

	if current != nil {
		m.mergeCurrent(current.Location.Clone(), current.fields)
	}
	for _, nl := range batch.NewLocations {
		m.insert(nl)
	}
	for _, u := range batch.LocationUpdates {
		m.update(u)
	}
	for _, c := range batch.NewLinks {
		m.addLink(c)
	}
	for _, c := range batch.LinkUpdates {
		m.updateLink(c)
	}
	for _, r := range batch.RemovedLinks {
		m.removeLink(r)
	}
	for _, c := range batch.StorageUpdates {
		m.updateStorage(c)
	}
	for _, r := range batch.RemovedStorages {
		m.removeStorage(r)
	}
	for _, c := range batch.NewThreats {
		m.addThreat(c)
	}
	for _, c := range batch.ThreatUpdates {
		m.updateThreat(c)
	}
	for _, r := range batch.RemovedThreats {
		m.removeThreat(r)
	}
	for _, c := range batch.CompletedThreats {
		m.completeThreat(c)
	}

	mg.logger.Debug("map merged",
		zap.Int("turn", turn),
		zap.Int("locations", m.out.Len()),
		zap.Strings("created", m.created),
		zap.Strings("updated", m.updated),
	)
	return Result{
		Map:        m.out,
		CurrentID:  m.current,
		Created:    m.created,
		Updated:    m.updated,
		InitialIDs: m.initial,
	}
}

// merge holds the state of a single Merge call. The initial-id mapping lives
// here and nowhere else.
type merge struct {
	*Merger
	out     Map
	byCoord map[Coord]string
	initial map[string]string
	turn    int
	current string
	created []string
	updated []string
}

func (m *merge) resolve(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	if _, ok := m.out.Locations[ref]; ok {
		return ref, true
	}
	id, ok := m.initial[ref]
	return id, ok
}

func (m *merge) put(l Location) {
	m.out.Locations[l.ID] = l
	m.byCoord[l.Coord] = l.ID
}

// apply deep-merges frag onto base, keeping base's id and coordinate. When
// fields is non-nil it names the fragment's wire fields and those replace
// base's even when zero.
func (m *merge) apply(base, frag Location, fields patch.Fragment, drop ...string) Location {
	frag.ID = ""
	frag.Coord = Coord{}
	fields, err := fields.Without(append([]string{"id", "coord"}, drop...)...)
	if err != nil {
		m.logger.Warn("ignoring malformed location fragment", zap.String("location", base.ID), zap.Error(err))
		return base
	}
	out, err := patch.Merge(base, frag, fields)
	if err != nil {
		m.logger.Warn("ignoring malformed location fragment", zap.String("location", base.ID), zap.Error(err))
		return base
	}
	out.ID, out.Coord = base.ID, base.Coord
	return out
}

// fill assigns ids to storages and threats that lack one and headings to
// links that lack one.
func (m *merge) fill(l *Location) {
	for i := range l.Storages {
		if l.Storages[i].ID == "" {
			l.Storages[i].ID = m.ids.NewID("storage")
		}
	}
	for i := range l.Threats {
		if l.Threats[i].ID == "" {
			l.Threats[i].ID = m.ids.NewID("threat")
		}
	}
	for i := range l.Links {
		if l.Links[i].Direction == "" {
			l.Links[i].Direction = DirectionBetween(l.Coord, l.Links[i].Target)
		}
	}
}

func (m *merge) mergeCurrent(cur Location, fields patch.Fragment) {
	if existing, ok := m.out.Locations[cur.ID]; ok && cur.ID != "" {
		merged := m.apply(existing, cur, fields)
		m.fill(&merged)
		m.put(merged)
		m.current = merged.ID
		return
	}
	if occupant, ok := m.byCoord[cur.Coord]; ok {
		m.logger.Warn("current location not on map; merging onto the occupant of its coordinate",
			zap.String("location", cur.ID),
			zap.String("occupant", occupant),
			zap.Stringer("coord", cur.Coord),
		)
		merged := m.apply(m.out.Locations[occupant], cur, fields)
		m.fill(&merged)
		m.put(merged)
		m.current = occupant
		return
	}
	if cur.ID == "" {
		cur.ID = m.ids.NewID("loc")
	}
	m.fill(&cur)
	m.put(cur)
	m.current = cur.ID
}

func (m *merge) insert(nl NewLocation) {
	if occupant, ok := m.byCoord[nl.Coord]; ok {
		m.logger.Debug("skipping new location on an occupied coordinate",
			zap.String("name", nl.Name),
			zap.Stringer("coord", nl.Coord),
			zap.String("occupant", occupant),
		)
		if nl.InitialID != "" {
			m.initial[nl.InitialID] = occupant
		}
		return
	}
	loc := nl.Location.Clone()
	loc.ID = m.ids.NewID("loc")
	m.fill(&loc)
	m.put(loc)
	if nl.InitialID != "" {
		m.initial[nl.InitialID] = loc.ID
	}
	m.created = append(m.created, loc.ID)
}

func (m *merge) update(u LocationUpdate) {
	id, ok := m.resolve(u.ID)
	if !ok {
		m.logger.Warn("ignoring update for unknown location", zap.String("location", u.ID))
		return
	}
	frag := u.Fragment.Clone()
	frag.Links, frag.Storages, frag.Threats = nil, nil, nil
	loc := m.apply(m.out.Locations[id], frag, u.fields, "links", "storages", "threats")
	if desc := strings.TrimSpace(u.NewEventDescription); desc != "" {
		if len(loc.Events) == 0 || loc.Events[0] != desc {
			loc.Events = append([]string{desc}, loc.Events...)
		}
	}
	m.put(loc)
	if !slices.Contains(m.updated, id) {
		m.updated = append(m.updated, id)
	}
}

func (m *merge) location(ref, what string) (Location, bool) {
	id, ok := m.resolve(ref)
	if !ok {
		m.logger.Warn("ignoring "+what+" for unknown location", zap.String("location", ref))
		return Location{}, false
	}
	return m.out.Locations[id], true
}

func (m *merge) addLink(c LinkChange) {
	loc, ok := m.location(c.From, "new link")
	if !ok {
		return
	}
	if c.Link.Target == loc.Coord {
		m.logger.Warn("ignoring link to its own location", zap.String("location", loc.ID))
		return
	}
	if _, exists := loc.LinkTo(c.Link.Target); exists {
		m.logger.Debug("link already present", zap.String("location", loc.ID), zap.Stringer("target", c.Link.Target))
		return
	}
	l := c.Link
	if l.Direction == "" {
		l.Direction = DirectionBetween(loc.Coord, l.Target)
	}
	loc.Links = append(loc.Links, l)
	m.put(loc)
}

func (m *merge) updateLink(c LinkChange) {
	loc, ok := m.location(c.From, "link update")
	if !ok {
		return
	}
	i := slices.IndexFunc(loc.Links, func(l Link) bool { return l.Target == c.Link.Target })
	if i < 0 {
		m.logger.Warn("ignoring update for unknown link", zap.String("location", loc.ID), zap.Stringer("target", c.Link.Target))
		return
	}
	fields, err := c.fields.Without("target")
	if err != nil {
		m.logger.Warn("ignoring malformed link fragment", zap.String("location", loc.ID), zap.Error(err))
		return
	}
	merged, err := patch.Merge(loc.Links[i], c.Link, fields)
	if err != nil {
		m.logger.Warn("ignoring malformed link fragment", zap.String("location", loc.ID), zap.Error(err))
		return
	}
	merged.Target = loc.Links[i].Target
	loc.Links[i] = merged
	m.put(loc)
}

func (m *merge) removeLink(r LinkRemoval) {
	loc, ok := m.location(r.From, "link removal")
	if !ok {
		return
	}
	n := len(loc.Links)
	loc.Links = slices.DeleteFunc(loc.Links, func(l Link) bool { return l.Target == r.Target })
	if len(loc.Links) == n {
		m.logger.Debug("no link to remove", zap.String("location", loc.ID), zap.Stringer("target", r.Target))
		return
	}
	m.put(loc)
}

func (m *merge) updateStorage(c StorageChange) {
	loc, ok := m.location(c.LocationID, "storage update")
	if !ok {
		return
	}
	st := c.Storage.Clone()
	if st.ID == "" && strings.TrimSpace(st.Name) == "" {
		m.logger.Warn("ignoring storage without id or name", zap.String("location", loc.ID))
		return
	}
	var i int
	if st.ID != "" {
		i = slices.IndexFunc(loc.Storages, func(s Storage) bool { return s.ID == st.ID })
	} else {
		i = slices.IndexFunc(loc.Storages, func(s Storage) bool { return sameName(s.Name, st.Name) })
	}
	if i < 0 {
		if st.ID == "" {
			st.ID = m.ids.NewID("storage")
		}
		loc.Storages = append(loc.Storages, st)
		m.put(loc)
		return
	}
	drop := []string{"id"}
	if sameName(loc.Storages[i].Name, st.Name) {
		st.Name = ""
		drop = append(drop, "name")
	}
	fields, err := c.fields.Without(drop...)
	if err != nil {
		m.logger.Warn("ignoring malformed storage fragment", zap.String("storage", st.ID), zap.Error(err))
		return
	}
	merged, err := patch.Merge(loc.Storages[i], st, fields)
	if err != nil {
		m.logger.Warn("ignoring malformed storage fragment", zap.String("storage", st.ID), zap.Error(err))
		return
	}
	merged.ID = loc.Storages[i].ID
	loc.Storages[i] = merged
	m.put(loc)
}

func (m *merge) removeStorage(r StorageRemoval) {
	loc, ok := m.location(r.LocationID, "storage removal")
	if !ok {
		return
	}
	n := len(loc.Storages)
	loc.Storages = slices.DeleteFunc(loc.Storages, func(s Storage) bool { return s.ID == r.StorageID })
	if len(loc.Storages) == n {
		m.logger.Warn("ignoring removal of unknown storage", zap.String("location", loc.ID), zap.String("storage", r.StorageID))
		return
	}
	m.put(loc)
}

// locateThreat finds a threat by id, then by name, in the referenced location
// or, when locRef is empty, in every location.
func (m *merge) locateThreat(locRef, threatID, name string) (string, int, bool) {
	var candidates []string
	if locRef != "" {
		id, ok := m.resolve(locRef)
		if !ok {
			return "", -1, false
		}
		candidates = []string{id}
	} else {
		candidates = m.out.IDs()
	}
	byID := func(t Threat) bool { return threatID != "" && t.ID == threatID }
	byName := func(t Threat) bool { return sameName(t.Name, name) }
	for _, match := range []func(Threat) bool{byID, byName} {
		for _, lid := range candidates {
			if i := slices.IndexFunc(m.out.Locations[lid].Threats, match); i >= 0 {
				return lid, i, true
			}
		}
	}
	return "", -1, false
}

// mergeThreat deep-merges frag onto threat i of location lid. A name that
// matches under case folding keeps its existing spelling. A missing id is
// backfilled from the fragment or generated. fields, when non-nil, are the
// fragment's wire fields.
func (m *merge) mergeThreat(lid string, i int, frag Threat, fields patch.Fragment) {
	loc := m.out.Locations[lid]
	existing := loc.Threats[i]
	drop := []string{"id"}
	if sameName(existing.Name, frag.Name) {
		frag.Name = ""
		drop = append(drop, "name")
	}
	fields, err := fields.Without(drop...)
	if err != nil {
		m.logger.Warn("ignoring malformed threat fragment", zap.String("threat", existing.ID), zap.Error(err))
		return
	}
	merged, err := patch.Merge(existing, frag, fields)
	if err != nil {
		m.logger.Warn("ignoring malformed threat fragment", zap.String("threat", existing.ID), zap.Error(err))
		return
	}
	merged.ID = existing.ID
	if merged.ID == "" {
		merged.ID = frag.ID
	}
	if merged.ID == "" {
		merged.ID = m.ids.NewID("threat")
	}
	loc.Threats[i] = merged
	m.put(loc)
}

func (m *merge) addThreat(c ThreatChange) {
	loc, ok := m.location(c.LocationID, "new threat")
	if !ok {
		return
	}
	t := c.Threat.Clone()
	if t.ID == "" && strings.TrimSpace(t.Name) == "" {
		m.logger.Warn("ignoring threat without id or name", zap.String("location", loc.ID))
		return
	}
	if lid, i, found := m.locateThreat(loc.ID, t.ID, t.Name); found {
		m.logger.Debug("threat already present; applying as update", zap.String("threat", t.Name))
		m.mergeThreat(lid, i, t, c.fields)
		return
	}
	if t.ID == "" {
		t.ID = m.ids.NewID("threat")
	}
	loc.Threats = append(loc.Threats, t)
	m.put(loc)
}

func (m *merge) updateThreat(c ThreatChange) {
	lid, i, ok := m.locateThreat(c.LocationID, c.Threat.ID, c.Threat.Name)
	if !ok {
		m.logger.Warn("ignoring update for unknown threat",
			zap.String("location", c.LocationID),
			zap.String("threat", c.Threat.ID),
			zap.String("name", c.Threat.Name),
		)
		return
	}
	m.mergeThreat(lid, i, c.Threat.Clone(), c.fields)
}

func (m *merge) removeThreat(r ThreatRef) {
	lid, i, ok := m.locateThreat(r.LocationID, r.ThreatID, "")
	if !ok {
		m.logger.Warn("ignoring removal of unknown threat", zap.String("location", r.LocationID), zap.String("threat", r.ThreatID))
		return
	}
	loc := m.out.Locations[lid]
	loc.Threats = slices.Delete(loc.Threats, i, i+1)
	m.put(loc)
}

func (m *merge) completeThreat(c ThreatCompletion) {
	lid, i, ok := m.locateThreat(c.LocationID, c.ThreatID, "")
	if !ok {
		m.logger.Warn("ignoring completion for unknown threat", zap.String("location", c.LocationID), zap.String("threat", c.ThreatID))
		return
	}
	loc := m.out.Locations[lid]
	t := loc.Threats[i]
	if t.Current == nil {
		m.logger.Warn("threat has no current activity to complete", zap.String("threat", t.ID))
		return
	}
	done := CompletedActivity{
		Name:      t.Current.Name,
		Outcome:   c.Outcome,
		Narrative: c.Narrative,
		Turn:      m.turn,
	}
	t.Completed = append([]CompletedActivity{done}, t.Completed...)
	t.Current = nil
	loc.Threats[i] = t
	m.put(loc)
}
