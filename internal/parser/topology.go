package parser

// topology.go - polygon assembly from shared line geometries.
// Polygons in chain-based products carry no coordinates of their own; their
// CHAIN record lists the geometry ids of the lines bounding them.

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// DefaultRingTolerance is the distance within which two line end points are
// considered the same node.
const DefaultRingTolerance = 0.1

// PolygonAssembler builds polygons from cached line geometries.
type PolygonAssembler struct {
	cache     *GeometryCache
	tolerance float64
}

// NewPolygonAssembler creates an assembler reading lines from cache.
func NewPolygonAssembler(cache *GeometryCache) *PolygonAssembler {
	return &PolygonAssembler{cache: cache, tolerance: DefaultRingTolerance}
}

// edge is one bounding line with its use flag during ring building
type edge struct {
	id     int
	points orb.LineString
	used   bool
}

// Assemble resolves every geometry id through the cache and joins the lines
// into rings. Rings are classified by containment: a ring inside a shell is
// a hole of the smallest shell containing it, a ring inside a hole starts a
// new shell.
//
// Any id missing from the cache fails the call with an error marked
// ErrReference. Lines that cannot be closed into rings fail it with an
// error marked ErrDecode.
func (a *PolygonAssembler) Assemble(ids []int) (*Geometry, error) {
	if len(ids) == 0 {
		return nil, decodeError(&ErrInvalidGeometry{Type: GeometryTypePolygon, Reason: "no links to assemble"})
	}
	if a.cache == nil {
		return nil, referenceError(&ErrMissingGeometry{GeomID: ids[0]})
	}

	edges := make([]*edge, 0, len(ids))
	for _, id := range ids {
		g, ok := a.cache.Get(id)
		if !ok {
			return nil, referenceError(&ErrMissingGeometry{GeomID: id})
		}
		line, ok := g.Geom.(orb.LineString)
		if !ok || len(line) < 2 {
			return nil, decodeError(&ErrInvalidGeometry{
				Type:   GeometryTypePolygon,
				GeomID: id,
				Reason: "polygon link is not a line",
			})
		}
		edges = append(edges, &edge{id: id, points: line})
	}

	rings, err := a.buildRings(edges)
	if err != nil {
		return nil, err
	}
	return classifyRings(rings), nil
}

func (a *PolygonAssembler) near(p, q orb.Point) bool {
	return math.Abs(p[0]-q[0]) <= a.tolerance && math.Abs(p[1]-q[1]) <= a.tolerance
}

// buildRings joins edges end to end, in either direction, until each ring
// returns to its start.
func (a *PolygonAssembler) buildRings(edges []*edge) ([]orb.Ring, error) {
	var rings []orb.Ring
	for _, start := range edges {
		if start.used {
			continue
		}
		start.used = true
		ring := append(orb.Ring(nil), start.points...)

		for !a.near(ring[0], ring[len(ring)-1]) || len(ring) < 3 {
			next, reversed := a.nextEdge(edges, ring[len(ring)-1])
			if next == nil {
				return nil, decodeError(&ErrRingNotClosed{Edges: len(edges)})
			}
			next.used = true
			pts := next.points
			if reversed {
				pts = append(orb.LineString(nil), pts...)
				pts.Reverse()
			}
			ring = append(ring, pts[1:]...)
		}

		ring[len(ring)-1] = ring[0]
		if len(ring) < 4 {
			return nil, decodeError(&ErrInvalidGeometry{
				Type:   GeometryTypePolygon,
				GeomID: start.id,
				Reason: "degenerate ring",
			})
		}
		rings = append(rings, ring)
	}
	return rings, nil
}

// nextEdge finds an unused edge touching end. reversed reports that the
// edge ends, rather than starts, at end.
func (a *PolygonAssembler) nextEdge(edges []*edge, end orb.Point) (*edge, bool) {
	for _, e := range edges {
		if e.used {
			continue
		}
		if a.near(e.points[0], end) {
			return e, false
		}
		if a.near(e.points[len(e.points)-1], end) {
			return e, true
		}
	}
	return nil, false
}

// ringNode is a ring placed in the containment tree
type ringNode struct {
	ring  orb.Ring
	area  float64
	shell bool
	holes []orb.Ring
}

func ringInside(inner, outer orb.Ring) bool {
	if !inner.Bound().Intersects(outer.Bound()) {
		return false
	}
	for _, p := range inner {
		if !planar.RingContains(outer, p) {
			return false
		}
	}
	return true
}

// classifyRings sorts rings by area and nests them. One shell gives a
// Polygon, several a MultiPolygon. Shells are counter clockwise and holes
// clockwise.
func classifyRings(rings []orb.Ring) *Geometry {
	nodes := make([]*ringNode, len(rings))
	for i, r := range rings {
		nodes[i] = &ringNode{ring: r, area: math.Abs(planar.Area(r))}
	}
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].area > nodes[j].area })

	var shells []*ringNode
	for i, n := range nodes {
		var container *ringNode
		for _, placed := range nodes[:i] {
			if ringInside(n.ring, placed.ring) && (container == nil || placed.area < container.area) {
				container = placed
			}
		}
		if container != nil && container.shell {
			if n.ring.Orientation() != orb.CW {
				n.ring.Reverse()
			}
			container.holes = append(container.holes, n.ring)
			continue
		}
		n.shell = true
		if n.ring.Orientation() != orb.CCW {
			n.ring.Reverse()
		}
		shells = append(shells, n)
	}

	polys := make(orb.MultiPolygon, 0, len(shells))
	for _, s := range shells {
		poly := orb.Polygon{s.ring}
		poly = append(poly, s.holes...)
		polys = append(polys, poly)
	}
	if len(polys) == 1 {
		return &Geometry{Type: GeometryTypePolygon, Geom: polys[0]}
	}
	return &Geometry{Type: GeometryTypeMultiPolygon, Geom: polys}
}
