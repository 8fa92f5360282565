package parser

// GeometryCache keeps decoded line geometries by geometry id so that
// polygons can later be assembled from the chains that reference them.
//
// Ids index a slice that grows to fit the largest id seen. The first
// geometry stored for an id wins; stored and returned values are copies.
type GeometryCache struct {
	slots []*Geometry
	count int
}

// NewGeometryCache creates an empty cache.
func NewGeometryCache() *GeometryCache {
	return &GeometryCache{}
}

// Put stores a copy of g under id. It reports false, storing nothing, when
// the id already holds a geometry or id is negative.
func (c *GeometryCache) Put(id int, g *Geometry) bool {
	if id < 0 || g == nil {
		return false
	}
	if id >= len(c.slots) {
		grown := make([]*Geometry, id+100)
		copy(grown, c.slots)
		c.slots = grown
	}
	if c.slots[id] != nil {
		return false
	}
	c.slots[id] = g.Clone()
	c.count++
	return true
}

// Get returns the geometry stored under id.
func (c *GeometryCache) Get(id int) (*Geometry, bool) {
	if id < 0 || id >= len(c.slots) || c.slots[id] == nil {
		return nil, false
	}
	return c.slots[id].Clone(), true
}

// Len returns the number of cached geometries.
func (c *GeometryCache) Len() int { return c.count }

// Clear drops every entry.
func (c *GeometryCache) Clear() {
	c.slots = nil
	c.count = 0
}
