package ecad

import (
	"maps"
	"slices"
)

// LayerMap translates layer ids between two layer spaces: forward from the
// source space to the target space, backward from target to source.
// Lookups of unmapped ids return NoLayer.
//
// A layer map is either a named database definition (used by padstack
// instances to resolve pad layers) or a free-standing result of a stackup
// operation such as [LayoutView.AddDefaultDielectricLayers].
type LayerMap struct {
	suuid    Suuid
	name     string
	db       *Database
	forward  map[LayerID]LayerID
	backward map[LayerID]LayerID
}

// LayerMapping is one forward entry of a layer map.
type LayerMapping struct {
	From LayerID
	To   LayerID
}

// NewLayerMap creates an empty layer map. db may be nil.
func NewLayerMap(name string, db *Database) *LayerMap {
	return &LayerMap{
		suuid:    newSuuid(),
		name:     name,
		db:       db,
		forward:  make(map[LayerID]LayerID),
		backward: make(map[LayerID]LayerID),
	}
}

func (m *LayerMap) Suuid() Suuid        { return m.suuid }
func (m *LayerMap) Name() string        { return m.name }
func (m *LayerMap) Database() *Database { return m.db }

// SetMapping maps from to to. An existing entry for from is replaced and its
// reverse entry dropped.
func (m *LayerMap) SetMapping(from, to LayerID) {
	m.setMapping(from, to)
	changed()
}

func (m *LayerMap) setMapping(from, to LayerID) {
	if old, ok := m.forward[from]; ok && m.backward[old] == from {
		delete(m.backward, old)
	}
	m.forward[from] = to
	if to != NoLayer {
		m.backward[to] = from
	}
}

// MappingForward returns the target id for from, or NoLayer.
func (m *LayerMap) MappingForward(from LayerID) LayerID {
	if m == nil {
		return NoLayer
	}
	if to, ok := m.forward[from]; ok {
		return to
	}
	return NoLayer
}

// MappingBackward returns the source id mapped to to, or NoLayer.
func (m *LayerMap) MappingBackward(to LayerID) LayerID {
	if m == nil {
		return NoLayer
	}
	if from, ok := m.backward[to]; ok {
		return from
	}
	return NoLayer
}

// Size returns the number of forward entries.
func (m *LayerMap) Size() int { return len(m.forward) }

// Mappings returns the forward entries ordered by source id.
func (m *LayerMap) Mappings() []LayerMapping {
	out := make([]LayerMapping, 0, len(m.forward))
	for _, from := range slices.Sorted(maps.Keys(m.forward)) {
		out = append(out, LayerMapping{From: from, To: m.forward[from]})
	}
	return out
}

// Clone returns a copy with a fresh suuid, owned by the same database.
func (m *LayerMap) Clone() *LayerMap {
	c := NewLayerMap(m.name, m.db)
	maps.Copy(c.forward, m.forward)
	maps.Copy(c.backward, m.backward)
	return c
}
