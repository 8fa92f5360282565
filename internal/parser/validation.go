package parser

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/paulmach/orb"
)

// ExtentTolerance is the fraction of the tile size a coordinate may lie
// outside the tile extent before it is rejected.
const ExtentTolerance = 0.1

// ValidateCoordinate checks a single ground coordinate. Coordinates must be
// finite; when the section header gives a tile extent they must also lie
// within it, grown by ExtentTolerance on every side.
func ValidateCoordinate(p orb.Point, params DecodeParameters) error {
	if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
		return errors.Newf("coordinate (%v, %v) is not finite", p[0], p[1])
	}
	if params.TileXSize > 0 {
		slack := params.TileXSize * ExtentTolerance
		if p[0] < params.XOrigin-slack || p[0] > params.XOrigin+params.TileXSize+slack {
			return errors.Newf("easting %.2f outside tile [%.2f, %.2f]", p[0], params.XOrigin, params.XOrigin+params.TileXSize)
		}
	}
	if params.TileYSize > 0 {
		slack := params.TileYSize * ExtentTolerance
		if p[1] < params.YOrigin-slack || p[1] > params.YOrigin+params.TileYSize+slack {
			return errors.Newf("northing %.2f outside tile [%.2f, %.2f]", p[1], params.YOrigin, params.YOrigin+params.TileYSize)
		}
	}
	return nil
}

// ValidateGeometry checks every vertex of a decoded geometry against the
// section parameters. Failures are marked ErrDecode.
func ValidateGeometry(g *Geometry, params DecodeParameters) error {
	if g == nil || g.Geom == nil {
		return decodeError(&ErrInvalidGeometry{Reason: "geometry is nil"})
	}

	var err error
	i := 0
	visit := func(p orb.Point) bool {
		if e := ValidateCoordinate(p, params); e != nil {
			err = decodeError(&ErrInvalidGeometry{
				Type:   g.Type,
				Reason: fmt.Sprintf("vertex %d: %v", i, e),
			})
			return false
		}
		i++
		return true
	}
	walkPoints(g.Geom, visit)
	if err != nil {
		return err
	}

	for j, z := range g.Z {
		if math.IsNaN(z) || math.IsInf(z, 0) {
			return decodeError(&ErrInvalidGeometry{
				Type:   g.Type,
				Reason: fmt.Sprintf("height %d is not finite", j),
			})
		}
	}
	return nil
}

// walkPoints calls fn for each vertex until it returns false.
func walkPoints(g orb.Geometry, fn func(orb.Point) bool) bool {
	switch v := g.(type) {
	case orb.Point:
		return fn(v)
	case orb.LineString:
		for _, p := range v {
			if !fn(p) {
				return false
			}
		}
	case orb.Ring:
		return walkPoints(orb.LineString(v), fn)
	case orb.Polygon:
		for _, r := range v {
			if !walkPoints(r, fn) {
				return false
			}
		}
	case orb.MultiPolygon:
		for _, p := range v {
			if !walkPoints(p, fn) {
				return false
			}
		}
	}
	return true
}

// ValidateFeature checks the class and geometry of a translated feature.
// Features without geometry are valid.
func ValidateFeature(f *Feature, params DecodeParameters) error {
	if f == nil {
		return errors.New("feature is nil")
	}
	if f.Class == "" {
		return errors.Newf("feature %d has empty class", f.ID)
	}
	if f.Geometry == nil {
		return nil
	}
	if err := ValidateGeometry(f.Geometry, params); err != nil {
		return errors.Wrapf(err, "feature %d", f.ID)
	}
	return nil
}
