package basin

import (
	"log"
	"math"

	"github.com/czertyaka/codiri/geo"
	"github.com/ctessum/geom"
)

// Extractor finds water-body basins in a classified raster. It never
// aborts on an individual invalid contour: invalid candidates are logged
// and skipped, matching BasinsFinder in the source this was ported from.
type Extractor struct {
	Map       *geo.Map
	Tolerance float64 // Douglas-Peucker-equivalent simplification tolerance, in world units.

	basins []*Basin
}

// NewExtractor builds an Extractor and immediately runs contour
// extraction over m's mask.
func NewExtractor(m *geo.Map, tolerance float64) *Extractor {
	e := &Extractor{Map: m, Tolerance: tolerance}
	e.run()
	return e
}

// Basins returns every successfully validated basin found in the map.
func (e *Extractor) Basins() []*Basin { return e.basins }

// Find reprojects coo to the map's CRS and returns the first basin whose
// body contains the point, or nil if none does.
func (e *Extractor) Find(coo geo.Coordinate) *Basin {
	c := coo
	if err := c.Transform(e.Map.CRS); err != nil {
		log.Printf("basin.Extractor.Find: %v", err)
		return nil
	}
	for _, b := range e.basins {
		if b.Contains(c) {
			return b
		}
	}
	return nil
}

// Nearest reprojects coo to the map's CRS and returns the basin whose
// shoreline lies closest to the point, or nil if the extractor found no
// basins. Unlike Find, it never requires coo to lie inside a basin body:
// it is meant for identifying which extracted basin an in-situ
// measurement point (taken just outside a shoreline) belongs to.
func (e *Extractor) Nearest(coo geo.Coordinate) *Basin {
	c := coo
	if err := c.Transform(e.Map.CRS); err != nil {
		log.Printf("basin.Extractor.Nearest: %v", err)
		return nil
	}
	p := geom.Point{X: c.Lon, Y: c.Lat}

	var best *Basin
	bestDist := math.Inf(1)
	for _, b := range e.basins {
		for _, segment := range b.Shoreline {
			if d := distanceToLineString(p, segment); d < bestDist {
				bestDist, best = d, b
			}
		}
	}
	return best
}

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

func (e *Extractor) run() {
	mapBound := e.Map.BoundingRing()
	visited := make([][]bool, e.Map.Height)
	for i := range visited {
		visited[i] = make([]bool, e.Map.Width)
	}

	for row := 0; row < e.Map.Height; row++ {
		for col := 0; col < e.Map.Width; col++ {
			if !e.Map.At(row, col) || visited[row][col] {
				continue
			}
			pixels := traceExternalContour(e.Map, row, col, visited)
			if len(pixels) < 3 {
				continue
			}
			worldPts := pixelsToWorld(e.Map, pixels)
			simplified := simplify(worldPts, e.Tolerance)
			if len(simplified) < 3 {
				log.Printf("basin: discarding contour with < 3 vertices after simplification near pixel (%d,%d)", row, col)
				continue
			}
			contour := geom.Polygon{closedRingPoints(simplified)}
			b, err := NewBasin(contour, mapBound, DefaultShorelineWidth)
			if err != nil {
				log.Printf("basin: discarding invalid contour near pixel (%d,%d): %v", row, col, err)
				continue
			}
			e.basins = append(e.basins, b)
		}
	}
}

func pixelsToWorld(m *geo.Map, pixels [][2]int) []geom.Point {
	pts := make([]geom.Point, len(pixels))
	for i, p := range pixels {
		x, y := m.Transform.XY(p[0], p[1])
		pts[i] = geom.Point{X: x, Y: y}
	}
	return pts
}

func closedRingPoints(pts []geom.Point) []geom.Point {
	if len(pts) == 0 {
		return pts
	}
	if pts[0] != pts[len(pts)-1] {
		pts = append(pts, pts[0])
	}
	return pts
}

// simplify runs the ring through ctessum/geom's robust line simplifier
// (the same family of algorithm as Douglas-Peucker approximation used in
// the source this was ported from, approxPolyDP).
func simplify(pts []geom.Point, tolerance float64) []geom.Point {
	if tolerance <= 0 || len(pts) < 4 {
		return pts
	}
	ring := closedRingPoints(pts)
	poly := geom.Polygon{ring}
	g := poly.Simplify(tolerance)
	simplified, ok := g.(geom.Polygon)
	if !ok || len(simplified) == 0 {
		return pts
	}
	return simplified[0]
}

// traceExternalContour walks the external (8-connected) boundary of the
// connected water component containing (startRow, startCol) using Moore
// boundary tracing with Jacob's stopping criterion (the trace ends when it
// is about to leave the start pixel in the same direction as its first
// move), marking every pixel of the component as visited via a flood fill
// so the caller never revisits it.
func traceExternalContour(m *geo.Map, startRow, startCol int, visited [][]bool) [][2]int {
	markComponentVisited(m, startRow, startCol, visited)

	// 8-connected neighbor offsets in clockwise order, starting west.
	dirs := [8][2]int{{0, -1}, {-1, -1}, {-1, 0}, {-1, 1}, {0, 1}, {1, 1}, {1, 0}, {1, -1}}

	start := [2]int{startRow, startCol}
	contour := [][2]int{start}
	backtrack := 0 // direction index we arrived from, start assuming "west"

	current := start
	dir := backtrack
	firstDir := -1
	for steps := 0; steps < 4*len(dirs)*(m.Width+m.Height)+8; steps++ {
		found := false
		for k := 0; k < 8; k++ {
			d := (dir + k) % 8
			nr := current[0] + dirs[d][0]
			nc := current[1] + dirs[d][1]
			if m.At(nr, nc) {
				if current == start && d == firstDir {
					return contour
				}
				if firstDir < 0 {
					firstDir = d
				}
				contour = append(contour, [2]int{nr, nc})
				dir = (d + 5) % 8 // back up one step from the entry direction
				current = [2]int{nr, nc}
				found = true
				break
			}
		}
		if !found {
			break
		}
	}
	return contour
}

// markComponentVisited flood-fills the 8-connected water component
// containing (row, col) so the tracer is only ever started once per
// component.
func markComponentVisited(m *geo.Map, row, col int, visited [][]bool) {
	stack := [][2]int{{row, col}}
	visited[row][col] = true
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		neighbors := [8][2]int{
			{p[0] - 1, p[1]}, {p[0] + 1, p[1]}, {p[0], p[1] - 1}, {p[0], p[1] + 1},
			{p[0] - 1, p[1] - 1}, {p[0] - 1, p[1] + 1}, {p[0] + 1, p[1] - 1}, {p[0] + 1, p[1] + 1},
		}
		for _, n := range neighbors {
			r, c := n[0], n[1]
			if r < 0 || r >= m.Height || c < 0 || c >= m.Width || visited[r][c] {
				continue
			}
			if m.At(r, c) {
				visited[r][c] = true
				stack = append(stack, [2]int{r, c})
			}
		}
	}
}
