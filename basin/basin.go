// Package basin turns a classified water/not-water raster into validated
// water-body polygons with shoreline segments classified as land-adjacent
// (an open line string, where the body was clipped by the map edge) or
// fully landlocked (a closed ring).
package basin

import (
	"math"

	"github.com/czertyaka/codiri/codirierr"
	"github.com/czertyaka/codiri/geo"
	"github.com/ctessum/geom"
)

// DefaultShorelineWidth is the physical width, in metres, of the
// contamination strip painted adjacent to a shoreline when no override is
// supplied.
const DefaultShorelineWidth = 2.0

// onEdgeTolerance is how close (in map units) a boundary vertex must be
// to the map's bounding rectangle to be considered map-clipped.
const onEdgeTolerance = 1e-6

// Basin is a water-body polygon together with its shoreline, segmented
// into the parts that are land-adjacent (open line strings) versus
// landlocked (a single closed ring).
type Basin struct {
	Body           geom.Polygon
	Shoreline      []geom.LineString
	ShorelineWidth float64
	Closed         bool
}

// NewBasin validates contour against the map's bounding polygon mapBound
// and builds the resulting Basin. mapBound must be an axis-aligned
// rectangle describing the map's extent in world coordinates (as
// produced by the 4 corners of the source raster). If mapBound is nil,
// the whole contour is treated as landlocked.
func NewBasin(contour geom.Polygon, mapBound geom.Polygon, shorelineWidth float64) (*Basin, error) {
	if shorelineWidth <= 0 {
		shorelineWidth = DefaultShorelineWidth
	}
	if mapBound == nil {
		ring := closeRing(contour[0])
		return &Basin{Body: contour, Shoreline: []geom.LineString{ring}, ShorelineWidth: shorelineWidth, Closed: true}, nil
	}

	if within := geom.Polygonal(mapBound).Area(); within == 0 {
		return nil, codirierr.OutOfMap("map doesn't contain basin: empty map bound")
	}
	if !polygonContains(mapBound, contour) {
		return nil, codirierr.OutOfMap("map doesn't contain basin")
	}
	if polygonsEqual(contour, mapBound) {
		return nil, codirierr.OutOfMap("basin is equal to the whole map")
	}

	ring := closeRing(contour[0])
	bounds := mapBound.Bounds()
	onEdge := make([]bool, len(ring))
	anyOnEdge := false
	for i, p := range ring {
		onEdge[i] = onRectEdge(p, bounds)
		anyOnEdge = anyOnEdge || onEdge[i]
	}

	if !anyOnEdge {
		return &Basin{Body: contour, Shoreline: []geom.LineString{ring}, ShorelineWidth: shorelineWidth, Closed: true}, nil
	}

	segments := splitOffEdge(ring, onEdge)
	if len(segments) == 0 {
		// Every vertex touches the map edge: the body only meets the map
		// boundary at isolated points, so the shoreline is still the
		// whole closed ring.
		return &Basin{Body: contour, Shoreline: []geom.LineString{ring}, ShorelineWidth: shorelineWidth, Closed: true}, nil
	}
	return &Basin{Body: contour, Shoreline: segments, ShorelineWidth: shorelineWidth, Closed: false}, nil
}

// Contains reports whether coo lies strictly inside the basin body. coo's
// Lon/Lat are used as given and are not reprojected, so coo must already
// be expressed in the body's frame.
func (b *Basin) Contains(coo geo.Coordinate) bool {
	pt := geom.Point{X: coo.Lon, Y: coo.Lat}
	return pointWithin(pt, b.Body) == geom.Inside
}

// ShorelineSegmentsCount returns the number of distinct shoreline
// segments (1 for a closed basin, >=1 for an open one).
func (b *Basin) ShorelineSegmentsCount() int { return len(b.Shoreline) }

func closeRing(ring []geom.Point) geom.LineString {
	out := make(geom.LineString, len(ring))
	copy(out, ring)
	if len(out) > 0 && (out[0] != out[len(out)-1]) {
		out = append(out, out[0])
	}
	return out
}

func onRectEdge(p geom.Point, b *geom.Bounds) bool {
	return math.Abs(p.X-b.Min.X) < onEdgeTolerance || math.Abs(p.X-b.Max.X) < onEdgeTolerance ||
		math.Abs(p.Y-b.Min.Y) < onEdgeTolerance || math.Abs(p.Y-b.Max.Y) < onEdgeTolerance
}

// splitOffEdge walks the closed ring and returns the maximal runs of
// consecutive vertices that are not on the map edge, each as its own
// open LineString including the one boundary-touching vertex on either
// side of the run (so consecutive segments share an endpoint with the
// map edge, not with each other).
func splitOffEdge(ring geom.LineString, onEdge []bool) []geom.LineString {
	n := len(ring) - 1 // ring[0] == ring[n]
	if n <= 0 {
		return nil
	}
	var segments []geom.LineString
	var current geom.LineString
	inSegment := false
	for i := 0; i <= n; i++ {
		idx := i % n
		if !onEdge[idx] {
			if !inSegment {
				current = geom.LineString{}
				if i > 0 {
					current = append(current, ring[(idx-1+n)%n])
				}
				inSegment = true
			}
			current = append(current, ring[idx])
		} else {
			if inSegment {
				current = append(current, ring[idx])
				segments = append(segments, current)
				inSegment = false
			}
		}
	}
	if inSegment && len(current) > 1 {
		segments = append(segments, current)
	}
	return segments
}

func pointWithin(p geom.Point, poly geom.Polygonal) geom.WithinStatus {
	return geom.LineString{p, p}.Within(poly)
}

// polygonContains reports whether outer contains inner, judged by the
// area of their intersection matching inner's area to a small relative
// tolerance.
func polygonContains(outer, inner geom.Polygon) bool {
	inter := geom.Polygonal(outer).Intersection(inner)
	return math.Abs(inter.Area()-inner.Area()) < inner.Area()*1e-6+1e-9
}

func polygonsEqual(a, b geom.Polygon) bool {
	return math.Abs(a.Area()-b.Area()) < 1e-9 && polygonContains(a, b) && polygonContains(b, a)
}
