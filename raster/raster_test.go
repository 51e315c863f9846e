package raster

import (
	"bytes"
	"testing"

	"github.com/czertyaka/codiri/geo"
)

type fakeRaster struct {
	w, h   int
	codes  [][]uint16
	t      geo.Affine
	factor float64
}

func (f *fakeRaster) Width() int               { return f.w }
func (f *fakeRaster) Height() int              { return f.h }
func (f *fakeRaster) Code(row, col int) uint16 { return f.codes[row][col] }
func (f *fakeRaster) Transform() geo.Affine    { return f.t }
func (f *fakeRaster) RasterFactor() float64    { return f.factor }

func newFakeRaster() *fakeRaster {
	return &fakeRaster{
		w: 2, h: 2,
		codes:  [][]uint16{{1, 2}, {3, 4}},
		t:      geo.Affine{OriginX: 100, OriginY: 200, ScaleX: 10, ScaleY: -10},
		factor: 2.5,
	}
}

func TestSaveCacheRoundTrip(t *testing.T) {
	rasters := map[string]CodedRaster{"Cs-137": newFakeRaster()}

	var buf bytes.Buffer
	if err := SaveCache(&buf, rasters); err != nil {
		t.Fatalf("SaveCache: %v", err)
	}

	loaded, err := LoadCache(&buf)
	if err != nil {
		t.Fatalf("LoadCache: %v", err)
	}
	g, ok := loaded["Cs-137"]
	if !ok {
		t.Fatal("missing Cs-137 raster after round trip")
	}
	if g.Width != 2 || g.Height != 2 {
		t.Fatalf("unexpected dimensions: %dx%d", g.Width, g.Height)
	}
	if g.Data[1][1] != 4 {
		t.Fatalf("expected code 4 at (1,1), got %d", g.Data[1][1])
	}
	if g.RasterFactor != 2.5 {
		t.Fatalf("expected RasterFactor 2.5, got %g", g.RasterFactor)
	}
	if got := g.At(1, 1); got != 4/2.5 {
		t.Fatalf("At(1,1) = %g, want %g", got, 4/2.5)
	}
}

func TestLoadCacheRejectsCorruptedStream(t *testing.T) {
	var buf bytes.Buffer
	if err := SaveCache(&buf, map[string]CodedRaster{"Cs-137": newFakeRaster()}); err != nil {
		t.Fatalf("SaveCache: %v", err)
	}

	if _, err := LoadCache(bytes.NewReader(append([]byte{0}, buf.Bytes()...))); err == nil {
		t.Fatal("expected an error decoding a corrupted cache stream")
	}
}
