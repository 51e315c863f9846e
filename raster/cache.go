package raster

import (
	"encoding/gob"
	"fmt"
	"io"

	"github.com/czertyaka/codiri/geo"
)

// cacheVersion guards against loading a cache written by an
// incompatible version of the raster layout.
const cacheVersion = "codiri-activity-cache-v1"

// CachedRaster is the gob-encoded form of one nuclide's activity.Map,
// keeping the full set of painted rasters for a calculation in a single
// file instead of one GeoTIFF per nuclide.
type CachedRaster struct {
	Nuclide      string
	Step         float64
	Width        int
	Height       int
	Data         [][]uint16
	Transform    geo.Affine
	RasterFactor float64
}

type cacheFile struct {
	Version  string
	Rasters  []CachedRaster
}

// SaveCache writes every raster in rasters (keyed by nuclide name) to w
// as a single gob stream, the multi-nuclide analogue of the per-cell
// grid cache the upstream InMAP project keeps between runs.
func SaveCache(w io.Writer, rasters map[string]CodedRaster) error {
	cf := cacheFile{Version: cacheVersion}
	for nuclide, r := range rasters {
		data := make([][]uint16, r.Height())
		for row := range data {
			data[row] = make([]uint16, r.Width())
			for col := range data[row] {
				data[row][col] = r.Code(row, col)
			}
		}
		cf.Rasters = append(cf.Rasters, CachedRaster{
			Nuclide: nuclide, Width: r.Width(), Height: r.Height(),
			Data: data, Transform: r.Transform(), RasterFactor: r.RasterFactor(),
		})
	}
	if err := gob.NewEncoder(w).Encode(cf); err != nil {
		return fmt.Errorf("raster.SaveCache: %v", err)
	}
	return nil
}

// LoadCache reads back a cache written by SaveCache, keyed by nuclide.
func LoadCache(r io.Reader) (map[string]*Grid, error) {
	var cf cacheFile
	if err := gob.NewDecoder(r).Decode(&cf); err != nil {
		return nil, fmt.Errorf("raster.LoadCache: %v", err)
	}
	if cf.Version != cacheVersion {
		return nil, fmt.Errorf("raster.LoadCache: cache version %q is not compatible with %q",
			cf.Version, cacheVersion)
	}
	out := make(map[string]*Grid, len(cf.Rasters))
	for _, cr := range cf.Rasters {
		out[cr.Nuclide] = &Grid{
			Width: cr.Width, Height: cr.Height, Data: cr.Data,
			Transform: cr.Transform, RasterFactor: cr.RasterFactor,
		}
	}
	return out, nil
}
