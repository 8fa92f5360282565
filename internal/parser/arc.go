package parser

import (
	"math"

	"github.com/paulmach/orb"
)

// DefaultArcVertices is the number of vertices arcs and circles are stroked
// with.
const DefaultArcVertices = 72

// ArcCenterFromEdgePoints computes the center of the circle through three
// points: the intersection of the perpendicular bisectors of the chords
// p0-p1 and p1-p2. When p0 and p2 coincide the arc is a full circle and p1
// is the opposite point, so the center is the midpoint of p0 and p1.
//
// ok is false when the bisectors are parallel (collinear points).
func ArcCenterFromEdgePoints(p0, p1, p2 orb.Point) (center orb.Point, ok bool) {
	if p0 == p2 {
		return orb.Point{(p0[0] + p1[0]) * 0.5, (p0[1] + p1[1]) * 0.5}, true
	}

	// Bisector slopes; a horizontal chord has a vertical bisector, which
	// is approximated by a very steep one.
	m1 := 1e10
	if p1[1]-p0[1] != 0 {
		m1 = (p0[0] - p1[0]) / (p1[1] - p0[1])
	}
	x1 := (p0[0] + p1[0]) * 0.5
	y1 := (p0[1] + p1[1]) * 0.5

	m2 := 1e10
	if p2[1]-p1[1] != 0 {
		m2 = (p1[0] - p2[0]) / (p2[1] - p1[1])
	}
	x2 := (p1[0] + p2[0]) * 0.5
	y2 := (p1[1] + p2[1]) * 0.5

	// a*x + b*y = -c for both bisectors
	a1, a2 := m1, m2
	b1, b2 := -1.0, -1.0
	c1 := y1 - m1*x1
	c2 := y2 - m2*x2

	det := a1*b2 - a2*b1
	if det == 0 {
		return orb.Point{}, false
	}
	inv := 1 / det
	return orb.Point{(b1*c2 - b2*c1) * inv, (a2*c1 - a1*c2) * inv}, true
}

// StrokeArcAngles approximates the arc of a circle from startAngle to
// endAngle (degrees, counter clockwise from east) with n vertices. n is
// raised to 2 when smaller.
func StrokeArcAngles(center orb.Point, radius, startAngle, endAngle float64, n int) orb.LineString {
	if n < 2 {
		n = 2
	}
	slice := (endAngle - startAngle) / float64(n-1)
	line := make(orb.LineString, n)
	for i := 0; i < n; i++ {
		angle := (startAngle + float64(i)*slice) * math.Pi / 180.0
		line[i] = orb.Point{
			center[0] + math.Cos(angle)*radius,
			center[1] + math.Sin(angle)*radius,
		}
	}
	return line
}

// StrokeArcPoints approximates the arc that starts at start, passes through
// along and ends at end with n vertices. Coincident start and end points
// describe a full circle.
func StrokeArcPoints(start, along, end orb.Point, n int) (orb.LineString, error) {
	center, ok := ArcCenterFromEdgePoints(start, along, end)
	if !ok {
		return nil, decodeError(&ErrArcCenter{Points: [3][2]float64{start, along, end}})
	}

	var startAngle, endAngle float64
	if start == end {
		startAngle, endAngle = 0, 360
	} else {
		startAngle = angleDegrees(center, start)
		alongAngle := angleDegrees(center, along)
		endAngle = angleDegrees(center, end)

		for alongAngle < startAngle {
			alongAngle += 360
		}
		for endAngle < alongAngle {
			endAngle += 360
		}

		// Sweeping past a full turn means the arc runs the other way.
		if endAngle-startAngle > 360 {
			for alongAngle > startAngle {
				alongAngle -= 360
			}
			for endAngle > alongAngle {
				endAngle -= 360
			}
		}
	}

	radius := math.Hypot(center[0]-start[0], center[1]-start[1])
	return StrokeArcAngles(center, radius, startAngle, endAngle, n), nil
}

func angleDegrees(center, p orb.Point) float64 {
	return math.Atan2(p[1]-center[1], p[0]-center[0]) * 180.0 / math.Pi
}
