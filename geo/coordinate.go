// Package geo provides the coordinate and great-circle distance
// primitives shared by the basin extractor, activity raster builder and
// dose aggregator. Reprojection is delegated to github.com/ctessum/geom/proj;
// this package only knows the two frames codiri actually uses.
package geo

import (
	"fmt"
	"math"

	"github.com/ctessum/geom/proj"
)

// Well-known frames codiri operates in. ctessum/geom/proj has no built-in
// EPSG-code lookup (proj.Parse sniffs WKT or proj4 strings), so the
// literal proj4 definitions are supplied here.
const (
	EPSG4326 = "epsg4326"
	EPSG3857 = "epsg3857"
)

var proj4Strings = map[string]string{
	EPSG4326: "+proj=longlat +datum=WGS84 +no_defs",
	EPSG3857: "+proj=merc +a=6378137 +b=6378137 +lat_ts=0 +lon_0=0 +x_0=0 +y_0=0 +k=1 +units=m +nadgrids=@null +wktext +no_defs",
}

// earthRadius is the mean Earth radius in metres, used for the
// great-circle distance calculation.
const earthRadius = 6371000.0

// Coordinate is a longitude/latitude pair tagged with the spatial
// reference it is currently expressed in.
type Coordinate struct {
	Lon, Lat float64
	CRS      string
}

// NewCoordinate builds a Coordinate in EPSG:4326 (the default frame for
// user-supplied input coordinates).
func NewCoordinate(lon, lat float64) Coordinate {
	return Coordinate{Lon: lon, Lat: lat, CRS: EPSG4326}
}

// Transform reprojects the coordinate in place to the target CRS. It is
// a no-op when the coordinate is already expressed in that frame.
func (c *Coordinate) Transform(crs string) error {
	if c.CRS == crs {
		return nil
	}
	srcDef, ok := proj4Strings[c.CRS]
	if !ok {
		return fmt.Errorf("geo.Coordinate.Transform: unknown source CRS %q", c.CRS)
	}
	dstDef, ok := proj4Strings[crs]
	if !ok {
		return fmt.Errorf("geo.Coordinate.Transform: unknown target CRS %q", crs)
	}
	srcSR, err := proj.Parse(srcDef)
	if err != nil {
		return fmt.Errorf("geo.Coordinate.Transform: parsing source CRS: %v", err)
	}
	dstSR, err := proj.Parse(dstDef)
	if err != nil {
		return fmt.Errorf("geo.Coordinate.Transform: parsing target CRS: %v", err)
	}
	_, srcInverse, err := srcSR.Transformers()
	if err != nil {
		return fmt.Errorf("geo.Coordinate.Transform: building source transformer: %v", err)
	}
	dstForward, _, err := dstSR.Transformers()
	if err != nil {
		return fmt.Errorf("geo.Coordinate.Transform: building target transformer: %v", err)
	}
	// Route through geographic (lon/lat) space: inverse-project from the
	// source frame, then forward-project into the destination frame.
	lon, lat, err := srcInverse(c.Lon, c.Lat)
	if err != nil {
		return fmt.Errorf("geo.Coordinate.Transform: %v", err)
	}
	x, y, err := dstForward(lon, lat)
	if err != nil {
		return fmt.Errorf("geo.Coordinate.Transform: %v", err)
	}
	c.Lon, c.Lat, c.CRS = x, y, crs
	return nil
}

// Distance returns the great-circle distance in metres between two
// coordinates, reprojecting copies of both to EPSG:4326 first. Neither
// argument is mutated.
func Distance(a, b Coordinate) (float64, error) {
	a2, b2 := a, b
	if err := a2.Transform(EPSG4326); err != nil {
		return 0, fmt.Errorf("geo.Distance: %v", err)
	}
	if err := b2.Transform(EPSG4326); err != nil {
		return 0, fmt.Errorf("geo.Distance: %v", err)
	}
	lat1, lon1 := deg2rad(a2.Lat), deg2rad(a2.Lon)
	lat2, lon2 := deg2rad(b2.Lat), deg2rad(b2.Lon)
	dLat := lat2 - lat1
	dLon := lon2 - lon1
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadius * math.Asin(math.Min(1, math.Sqrt(h))), nil
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }
