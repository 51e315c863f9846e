// Package raster persists activity.Map-shaped rasters to GeoTIFF so a
// calculation's input contamination grid can be inspected or reloaded
// without rerunning the buffer-painting step.
//
// Cell codes, not physical activity, are what gets written: reloading a
// raster must reproduce the exact uint16 values a later RasterFactor
// rescale would otherwise perturb. The prl900/image/tiff fork this is
// built on (a fork of golang.org/x/image/tiff) exposes GeoTIFF GeoKey
// constants but no documented tag-writing API in the retrieved copy, so
// georeferencing (origin, scale, CRS, RasterFactor) travels in a JSON
// sidecar file next to the plain 16-bit grayscale TIFF instead of
// embedded GeoTIFF tags.
package raster

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"os"

	tiff "github.com/prl900/image/tiff"

	"github.com/czertyaka/codiri/geo"
)

// CodedRaster is the subset of activity.Map's exported surface needed
// to serialize a raster. Declared here, not imported, so raster has no
// dependency on the activity package.
type CodedRaster interface {
	Width() int
	Height() int
	Code(row, col int) uint16
	Transform() geo.Affine
	RasterFactor() float64
}

// Grid is a georeferenced uint16 raster loaded from disk.
type Grid struct {
	Width, Height int
	Data          [][]uint16
	Transform     geo.Affine
	CRS           string
	RasterFactor  float64
}

// sidecar is the georeferencing record written alongside the pixel data.
type sidecar struct {
	OriginX, OriginY, ScaleX, ScaleY float64
	CRS                              string
	RasterFactor                     float64
}

func sidecarPath(path string) string { return path + ".meta.json" }

// Save writes r's codes to path as a 16-bit grayscale TIFF, with
// georeferencing in an adjacent sidecar file.
func Save(path string, r CodedRaster, crs string) error {
	w, h := r.Width(), r.Height()
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			img.SetGray16(col, row, color.Gray16{Y: r.Code(row, col)})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("raster.Save: %v", err)
	}
	defer f.Close()
	if err := tiff.Encode(f, img, nil); err != nil {
		return fmt.Errorf("raster.Save: %v", err)
	}

	mf, err := os.Create(sidecarPath(path))
	if err != nil {
		return fmt.Errorf("raster.Save: %v", err)
	}
	defer mf.Close()

	t := r.Transform()
	sc := sidecar{
		OriginX: t.OriginX, OriginY: t.OriginY,
		ScaleX: t.ScaleX, ScaleY: t.ScaleY,
		CRS: crs, RasterFactor: r.RasterFactor(),
	}
	return json.NewEncoder(mf).Encode(sc)
}

// Load reads back a Grid written by Save.
func Load(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("raster.Load: %v", err)
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("raster.Load: %v", err)
	}
	gray, ok := img.(*image.Gray16)
	if !ok {
		return nil, fmt.Errorf("raster.Load: %s is not a 16-bit grayscale raster", path)
	}

	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	data := make([][]uint16, h)
	for row := range data {
		data[row] = make([]uint16, w)
		for col := range data[row] {
			data[row][col] = gray.Gray16At(bounds.Min.X+col, bounds.Min.Y+row).Y
		}
	}

	mf, err := os.Open(sidecarPath(path))
	if err != nil {
		return nil, fmt.Errorf("raster.Load: %v", err)
	}
	defer mf.Close()
	var sc sidecar
	if err := json.NewDecoder(mf).Decode(&sc); err != nil {
		return nil, fmt.Errorf("raster.Load: %v", err)
	}

	return &Grid{
		Width: w, Height: h, Data: data,
		Transform: geo.Affine{
			OriginX: sc.OriginX, OriginY: sc.OriginY,
			ScaleX: sc.ScaleX, ScaleY: sc.ScaleY,
		},
		CRS: sc.CRS, RasterFactor: sc.RasterFactor,
	}, nil
}

// At returns the physical activity of the cell at (row, col), applying
// the raster's stored RasterFactor.
func (g *Grid) At(row, col int) float64 {
	if g.RasterFactor == 0 {
		return 0
	}
	return float64(g.Data[row][col]) / g.RasterFactor
}

// waterClass is the land-cover class code the source classified rasters
// this system consumes use for open water, after cloud/shadow/snow/ice
// classes (every other code) have already been screened out upstream by
// the classifier that produced the raster. Matches the
// cv.threshold(data, 2, 0, THRESH_TOZERO_INV) / THRESH_BINARY pair in
// original_source/src/geo.py's Map constructor: only code 2 survives
// both thresholds.
const waterClass = 2

// LoadClassifiedMap reads a single-band classified GeoTIFF from path and
// derives a geo.Map whose mask is 1 where the pixel is classified as
// open water (waterClass) and 0 everywhere else (land, and the
// cloud/shadow/snow/ice classes the classifier already screened out).
// Georeferencing travels in the same JSON sidecar convention as Save,
// since the decoder this is built on exposes GeoTIFF GeoKeys but no
// ready-made accessor for them in the retrieved copy.
func LoadClassifiedMap(path string) (*geo.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("raster.LoadClassifiedMap: %v", err)
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("raster.LoadClassifiedMap: %v", err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	mask := make([][]uint8, h)
	for row := range mask {
		mask[row] = make([]uint8, w)
		for col := range mask[row] {
			class := classAt(img, bounds.Min.X+col, bounds.Min.Y+row)
			if class == waterClass {
				mask[row][col] = 1
			}
		}
	}

	mf, err := os.Open(sidecarPath(path))
	if err != nil {
		return nil, fmt.Errorf("raster.LoadClassifiedMap: %v", err)
	}
	defer mf.Close()
	var sc sidecar
	if err := json.NewDecoder(mf).Decode(&sc); err != nil {
		return nil, fmt.Errorf("raster.LoadClassifiedMap: %v", err)
	}

	transform := geo.Affine{OriginX: sc.OriginX, OriginY: sc.OriginY, ScaleX: sc.ScaleX, ScaleY: sc.ScaleY}
	return geo.NewMap(mask, transform, sc.CRS), nil
}

// classAt reads the raw land-cover class code at a pixel regardless of
// whether the decoder handed back an 8-bit grayscale or paletted image,
// both of which the classifier this system reads from may produce.
func classAt(img image.Image, x, y int) uint8 {
	switch t := img.(type) {
	case *image.Gray:
		return t.GrayAt(x, y).Y
	case *image.Paletted:
		return t.ColorIndexAt(x, y)
	default:
		r, _, _, _ := img.At(x, y).RGBA()
		return uint8(r >> 8)
	}
}
