package activity

import (
	"math"

	"github.com/ctessum/geom"
)

// bufferLineString thickens a line string into a polygon of half-width
// halfWidth with square caps and mitre joins, approximated as the union
// of a rectangle per segment (ctessum/geom has no buffer primitive; see
// DESIGN.md for why this is hand-rolled).
func bufferLineString(ls geom.LineString, halfWidth float64) geom.Polygon {
	var result geom.Polygon
	for i := 0; i+1 < len(ls); i++ {
		seg := segmentBuffer(ls[i], ls[i+1], halfWidth)
		if result == nil {
			result = seg
			continue
		}
		result = result.Union(seg)
	}
	if result == nil {
		return geom.Polygon{}
	}
	return result
}

// segmentBuffer builds the square-capped buffer rectangle around a
// single segment.
func segmentBuffer(p0, p1 geom.Point, halfWidth float64) geom.Polygon {
	dx, dy := p1.X-p0.X, p1.Y-p0.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return geom.Polygon{{
			{X: p0.X - halfWidth, Y: p0.Y - halfWidth},
			{X: p0.X - halfWidth, Y: p0.Y + halfWidth},
			{X: p0.X + halfWidth, Y: p0.Y + halfWidth},
			{X: p0.X + halfWidth, Y: p0.Y - halfWidth},
			{X: p0.X - halfWidth, Y: p0.Y - halfWidth},
		}}
	}
	ux, uy := dx/length, dy/length   // unit direction
	nx, ny := -uy*halfWidth, ux*halfWidth // unit normal, scaled

	// Square caps: extend the segment endpoints by halfWidth along the
	// direction vector before offsetting by the normal.
	ax, ay := p0.X-ux*halfWidth, p0.Y-uy*halfWidth
	bx, by := p1.X+ux*halfWidth, p1.Y+uy*halfWidth

	return geom.Polygon{{
		{X: ax + nx, Y: ay + ny},
		{X: bx + nx, Y: by + ny},
		{X: bx - nx, Y: by - ny},
		{X: ax - nx, Y: ay - ny},
		{X: ax + nx, Y: ay + ny},
	}}
}

// distanceToLineString returns the shortest perpendicular distance from
// p to the line string, matching shapely's nearest_points-based
// proximity check in the source this was ported from.
func distanceToLineString(p geom.Point, ls geom.LineString) float64 {
	if len(ls) == 0 {
		return math.Inf(1)
	}
	min := math.Inf(1)
	for i := 0; i+1 < len(ls); i++ {
		d := distanceToSegment(p, ls[i], ls[i+1])
		if d < min {
			min = d
		}
	}
	if len(ls) == 1 {
		min = math.Hypot(p.X-ls[0].X, p.Y-ls[0].Y)
	}
	return min
}

func distanceToSegment(p, a, b geom.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	projX, projY := a.X+t*dx, a.Y+t*dy
	return math.Hypot(p.X-projX, p.Y-projY)
}
