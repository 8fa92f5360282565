package parser

import (
	"math"
	"strings"

	"github.com/paulmach/orb"
)

// GeometryType represents the type of a decoded geometry.
type GeometryType int

const (
	// GeometryTypeUnknown is the zero value, used for features without geometry
	GeometryTypeUnknown GeometryType = iota
	// GeometryTypePoint is a single location
	GeometryTypePoint
	// GeometryTypeLineString is a line, a stroked arc or a stroked circle
	GeometryTypeLineString
	// GeometryTypePolygon is a polygon assembled from chain links
	GeometryTypePolygon
	// GeometryTypeMultiPolygon is a complex polygon with several shells
	GeometryTypeMultiPolygon
)

func (g GeometryType) String() string {
	switch g {
	case GeometryTypePoint:
		return "Point"
	case GeometryTypeLineString:
		return "LineString"
	case GeometryTypePolygon:
		return "Polygon"
	case GeometryTypeMultiPolygon:
		return "MultiPolygon"
	default:
		return "Unknown"
	}
}

// Geometry is a decoded geometry in ground coordinates.
//
// Geom holds the planar shape. For records read from 3D geometry records Z
// holds one height per vertex of Geom, in vertex order; it is nil for 2D
// geometries.
type Geometry struct {
	Type GeometryType
	Geom orb.Geometry
	Z    []float64
}

// Is3D reports whether the geometry carries heights.
func (g *Geometry) Is3D() bool { return g != nil && g.Z != nil }

// Bound returns the bounding box of the geometry.
func (g *Geometry) Bound() orb.Bound {
	if g == nil || g.Geom == nil {
		return orb.Bound{}
	}
	return g.Geom.Bound()
}

// Clone returns a deep copy.
func (g *Geometry) Clone() *Geometry {
	if g == nil {
		return nil
	}
	c := &Geometry{Type: g.Type}
	if g.Geom != nil {
		c.Geom = orb.Clone(g.Geom)
	}
	if g.Z != nil {
		c.Z = append([]float64(nil), g.Z...)
	}
	return c
}

// GTYPE codes of geometry records
const (
	gtypePoint    = 1
	gtypeLine     = 2
	gtypeLine3    = 3
	gtypeLine4    = 4
	gtypeArc      = 5
	gtypeCircle   = 7
	coordStartCol = 14
)

// GeometryDecoder turns GEOMETRY and GEOMETRY3D records into geometries.
// Decoded lines are added to the cache, when there is one, keyed by their
// geometry id.
type GeometryDecoder struct {
	params      DecodeParameters
	cache       *GeometryCache
	arcVertices int
}

// NewGeometryDecoder creates a decoder for one section. cache may be nil to
// disable line caching.
func NewGeometryDecoder(params DecodeParameters, cache *GeometryCache, arcVertices int) *GeometryDecoder {
	if arcVertices < 2 {
		arcVertices = DefaultArcVertices
	}
	return &GeometryDecoder{params: params, cache: cache, arcVertices: arcVertices}
}

// Params returns the decode parameters.
func (d *GeometryDecoder) Params() DecodeParameters { return d.params }

// Cache returns the line cache, nil when caching is off.
func (d *GeometryDecoder) Cache() *GeometryCache { return d.cache }

// Decode decodes a geometry record and returns the geometry together with
// the GEOM_ID of the record.
//
//	cols 3-8    GEOM_ID
//	col  9      GTYPE
//	cols 10-13  NUM_COORD
//	cols 14-    coordinates, XY fields XYLen wide, one blank between vertices
//
// Records of any other type, unhandled GTYPEs and coordinates outside the
// record yield an error marked ErrDecode and a nil geometry.
func (d *GeometryDecoder) Decode(rec *Record) (*Geometry, int, error) {
	switch rec.Type() {
	case RecordGeometry:
		return d.decode2D(rec)
	case RecordGeometry3D:
		return d.decode3D(rec)
	default:
		return nil, 0, decodeError(&ErrInvalidGeometry{
			GeomID: rec.ID(),
			Reason: "not a geometry record: " + rec.Type().String(),
		})
	}
}

func (d *GeometryDecoder) x(raw string) float64 {
	return float64(atoi(raw))*d.params.XYMult + d.params.XOrigin
}

func (d *GeometryDecoder) y(raw string) float64 {
	return float64(atoi(raw))*d.params.XYMult + d.params.YOrigin
}

// xyAt reads the vertex whose X field starts at column start
func (d *GeometryDecoder) xyAt(f *fieldReader, start int) orb.Point {
	w := d.params.XYLen
	return orb.Point{
		d.x(f.str(start, start+w-1)),
		d.y(f.str(start+w, start+2*w-1)),
	}
}

func (d *GeometryDecoder) decode2D(rec *Record) (*Geometry, int, error) {
	geomID := rec.ID()
	gtype := rec.IntOrZero(9, 9)
	numCoord := rec.IntOrZero(10, 13)
	if numCoord < 0 {
		return nil, geomID, decodeError(&ErrInvalidGeometry{GeomID: geomID, Reason: "negative coordinate count"})
	}

	w := d.params.XYLen
	stride := 2*w + 1
	f := newFieldReader(rec)

	var g *Geometry
	switch {
	case gtype == gtypePoint:
		g = &Geometry{Type: GeometryTypePoint, Geom: d.xyAt(f, coordStartCol)}

	case gtype == gtypeLine || gtype == gtypeLine3 || gtype == gtypeLine4:
		if numCoord > 0 && rec.Len() < coordStartCol+(numCoord-1)*stride+2*w-1 {
			return nil, geomID, decodeError(&ErrInvalidGeometry{
				Type:   GeometryTypeLineString,
				GeomID: geomID,
				Reason: "record too short for its coordinate count",
			})
		}
		line := make(orb.LineString, 0, numCoord)
		for i := 0; i < numCoord; i++ {
			p := d.xyAt(f, coordStartCol+i*stride)
			if i > 0 && line[len(line)-1] == p {
				continue
			}
			line = append(line, p)
		}
		g = &Geometry{Type: GeometryTypeLineString, Geom: line}

	case gtype == gtypeArc && numCoord == 3:
		var pts [3]orb.Point
		for i := range pts {
			pts[i] = d.xyAt(f, coordStartCol+i*stride)
		}
		if f.Err() != nil {
			break
		}
		line, err := StrokeArcPoints(pts[0], pts[1], pts[2], d.arcVertices)
		if err != nil {
			return nil, geomID, err
		}
		g = &Geometry{Type: GeometryTypeLineString, Geom: line}

	case gtype == gtypeCircle:
		center := d.xyAt(f, coordStartCol)
		onArc := d.xyAt(f, coordStartCol+stride)
		radius := math.Hypot(center[0]-onArc[0], center[1]-onArc[1])
		g = &Geometry{
			Type: GeometryTypeLineString,
			Geom: StrokeArcAngles(center, radius, 0, 360, d.arcVertices),
		}

	default:
		return nil, geomID, decodeError(&ErrUnsupportedGeometry{GeomID: geomID, GType: gtype})
	}

	if err := f.Err(); err != nil {
		return nil, geomID, decodeError(&ErrInvalidGeometry{GeomID: geomID, Reason: err.Error()})
	}

	if g.Type == GeometryTypeLineString && isPolyline(gtype) {
		d.cacheLine(geomID, g)
	}
	return g, geomID, nil
}

func isPolyline(gtype int) bool {
	return gtype == gtypeLine || gtype == gtypeLine3 || gtype == gtypeLine4
}

// decode3D handles GEOMETRY3D records. Each vertex is X, Y, a blank, Z and
// a blank separator, so the stride is 2*XYLen+ZLen+2. A vertex with a blank
// or missing field makes the whole geometry invalid.
func (d *GeometryDecoder) decode3D(rec *Record) (*Geometry, int, error) {
	geomID := rec.ID()
	gtype := rec.IntOrZero(9, 9)
	numCoord := rec.IntOrZero(10, 13)
	if numCoord < 0 {
		return nil, geomID, decodeError(&ErrInvalidGeometry{GeomID: geomID, Reason: "negative coordinate count"})
	}

	w, zw := d.params.XYLen, d.params.ZLen
	stride := 2*w + zw + 2

	vertex := func(start int) (orb.Point, float64, error) {
		fields := [3][2]int{
			{start, start + w - 1},
			{start + w, start + 2*w - 1},
			{start + 1 + 2*w, start + 1 + 2*w + zw - 1},
		}
		var raw [3]string
		for i, c := range fields {
			s, err := rec.Field(c[0], c[1])
			if err != nil {
				return orb.Point{}, 0, err
			}
			if strings.TrimSpace(s) == "" {
				return orb.Point{}, 0, &ErrFieldRange{Type: rec.Type(), Start: c[0], End: c[1], Length: rec.Len()}
			}
			raw[i] = s
		}
		return orb.Point{d.x(raw[0]), d.y(raw[1])}, float64(atoi(raw[2])) * d.params.ZMult, nil
	}

	switch gtype {
	case gtypePoint:
		p, z, err := vertex(coordStartCol)
		if err != nil {
			return nil, geomID, decodeError(&ErrInvalidGeometry{Type: GeometryTypePoint, GeomID: geomID, Reason: err.Error()})
		}
		return &Geometry{Type: GeometryTypePoint, Geom: p, Z: []float64{z}}, geomID, nil

	case gtypeLine:
		line := make(orb.LineString, 0, numCoord)
		zs := make([]float64, 0, numCoord)
		for i := 0; i < numCoord; i++ {
			p, z, err := vertex(coordStartCol + i*stride)
			if err != nil {
				return nil, geomID, decodeError(&ErrInvalidGeometry{Type: GeometryTypeLineString, GeomID: geomID, Reason: err.Error()})
			}
			if i > 0 && line[len(line)-1] == p {
				continue
			}
			line = append(line, p)
			zs = append(zs, z)
		}
		g := &Geometry{Type: GeometryTypeLineString, Geom: line, Z: zs}
		d.cacheLine(geomID, g)
		return g, geomID, nil

	default:
		return nil, geomID, decodeError(&ErrUnsupportedGeometry{GeomID: geomID, GType: gtype, Dim3: true})
	}
}

func (d *GeometryDecoder) cacheLine(geomID int, g *Geometry) {
	if d.cache != nil {
		d.cache.Put(geomID, g)
	}
}
