package ntf

import (
	"sort"

	"github.com/beetlebugorg/ntf/internal/parser"
	"github.com/paulmach/orb"
)

// Feature is one translated record group.
//
// Access feature data via methods:
//   - ID() returns the feature id
//   - Class() returns the output class (e.g. "LANDLINE_POINT", "BOUNDARYLINE_POLY")
//   - Geometry() returns the spatial representation, nil if none
//   - Attributes() returns all attributes
//   - Attribute(name) returns a specific attribute value
type Feature struct {
	id         int64
	class      string
	tileName   string
	anchorType int
	anchorID   int
	geomID     int
	geometry   *Geometry
	attributes map[string]interface{}
	linkIDs    []int
	directions []int
	ringStarts []int
	partIDs    []int
}

// ID returns the feature id.
func (f *Feature) ID() int64 { return f.id }

// Class returns the feature class.
func (f *Feature) Class() string { return f.class }

// TileName returns the section the feature was read from.
func (f *Feature) TileName() string { return f.tileName }

// Anchor returns the record type and id of the record that opened the
// feature's group, e.g. (15, 42) for POINTREC 42.
func (f *Feature) Anchor() (recordType, id int) { return f.anchorType, f.anchorID }

// GeomID returns the id of the feature's geometry record, 0 if none.
func (f *Feature) GeomID() int { return f.geomID }

// Geometry returns the feature geometry, nil for features without one.
func (f *Feature) Geometry() *Geometry { return f.geometry }

// Attributes returns all feature attributes as a map.
func (f *Feature) Attributes() map[string]interface{} { return f.attributes }

// Attribute returns a specific attribute value by name.
//
// Example:
//
//	if code, ok := feature.Attribute("FEAT_CODE"); ok {
//	    fmt.Printf("Feature code: %v\n", code)
//	}
func (f *Feature) Attribute(name string) (interface{}, bool) {
	v, ok := f.attributes[name]
	return v, ok
}

// LinkIDs returns the geometry ids of the links bounding a polygon or
// meeting at a node, with their direction flags.
func (f *Feature) LinkIDs() (ids, directions []int) { return f.linkIDs, f.directions }

// RingStarts returns the index into LinkIDs where each ring begins.
func (f *Feature) RingStarts() []int { return f.ringStarts }

// PartIDs returns the member ids of a collection or complex polygon.
func (f *Feature) PartIDs() []int { return f.partIDs }

// GeometryType represents the type of geometry.
type GeometryType = parser.GeometryType

const (
	GeometryTypeUnknown      = parser.GeometryTypeUnknown
	GeometryTypePoint        = parser.GeometryTypePoint
	GeometryTypeLineString   = parser.GeometryTypeLineString
	GeometryTypePolygon      = parser.GeometryTypePolygon
	GeometryTypeMultiPolygon = parser.GeometryTypeMultiPolygon
)

// Geometry is a feature geometry in ground coordinates (metres on the
// British National Grid for Ordnance Survey products).
type Geometry struct {
	Type GeometryType

	// Geom is the planar shape: orb.Point, orb.LineString, orb.Polygon or
	// orb.MultiPolygon.
	Geom orb.Geometry

	// Z holds one height per vertex for geometries read from 3D records,
	// nil otherwise.
	Z []float64
}

// Bound returns the bounding box of the geometry.
func (g *Geometry) Bound() orb.Bound {
	if g == nil || g.Geom == nil {
		return orb.Bound{}
	}
	return g.Geom.Bound()
}

func convertFeature(f *parser.Feature) *Feature {
	out := &Feature{
		id:         f.ID,
		class:      f.Class,
		tileName:   f.TileName,
		anchorType: int(f.AnchorType),
		anchorID:   f.AnchorID,
		geomID:     f.GeomID,
		attributes: f.Attributes,
		linkIDs:    f.LinkIDs,
		directions: f.Directions,
		ringStarts: f.RingStarts,
		partIDs:    f.PartIDs,
	}
	if f.Geometry != nil && f.Geometry.Geom != nil {
		out.geometry = &Geometry{Type: f.Geometry.Type, Geom: f.Geometry.Geom, Z: f.Geometry.Z}
	}
	return out
}

func sortByID(features []*Feature) {
	sort.Slice(features, func(i, j int) bool { return features[i].id < features[j].id })
}
