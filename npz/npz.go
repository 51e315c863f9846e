// Package npz writes dose-grid results to NumPy's .npz archive format
// (a zip file of .npy arrays), the format the original downstream
// analysis tooling for this model consumes. No library in the retrieved
// example pack touches the NumPy binary format, so this is a deliberate
// stdlib-only component: archive/zip plus a small literal .npy header,
// per the documented format at
// https://numpy.org/doc/stable/reference/generated/numpy.lib.format.html.
package npz

import (
	"archive/zip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Array is one named array bound for a .npz archive. Data is always
// float64 and row-major (C order), matching how Results' per-class maps
// get flattened before writing.
type Array struct {
	Name  string
	Shape []int
	Data  []float64
}

const (
	npyMagic   = "\x93NUMPY"
	npyVersion = "\x01\x00"
)

// Write creates a zip archive at w containing one "<name>.npy" entry per
// array in arrays.
func Write(w io.Writer, arrays []Array) error {
	zw := zip.NewWriter(w)
	for _, a := range arrays {
		n := 1
		for _, d := range a.Shape {
			n *= d
		}
		if n != len(a.Data) {
			return fmt.Errorf("npz.Write: array %q has shape %v (%d elements) but %d data values",
				a.Name, a.Shape, n, len(a.Data))
		}

		f, err := zw.Create(a.Name + ".npy")
		if err != nil {
			return fmt.Errorf("npz.Write: %v", err)
		}
		if err := writeNPY(f, a); err != nil {
			return fmt.Errorf("npz.Write: %v", err)
		}
	}
	return zw.Close()
}

// WriteNPY writes a as a standalone .npy file to w, for callers whose
// external format is a single array rather than a named bundle (e.g. the
// scalar e_max_10_{acute,period} grids, which NumPy tooling downstream
// expects as bare .npy files rather than a one-entry .npz archive).
func WriteNPY(w io.Writer, a Array) error {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	if n != len(a.Data) {
		return fmt.Errorf("npz.WriteNPY: array %q has shape %v (%d elements) but %d data values",
			a.Name, a.Shape, n, len(a.Data))
	}
	return writeNPY(w, a)
}

// writeNPY encodes a as a single .npy stream: magic, version, a
// little-endian header-length, an ASCII header dict padded so the total
// preamble is 64-byte aligned, then raw little-endian float64 data.
func writeNPY(w io.Writer, a Array) error {
	shape := make([]string, len(a.Shape))
	for i, d := range a.Shape {
		shape[i] = strconv.Itoa(d)
	}
	shapeStr := strings.Join(shape, ", ")
	if len(a.Shape) == 1 {
		shapeStr += ","
	}

	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%s), }", shapeStr)

	const preambleFixed = len(npyMagic) + len(npyVersion) + 2 // magic + version + uint16 header length
	total := preambleFixed + len(header) + 1                 // +1 for trailing newline
	pad := (64 - total%64) % 64
	header += strings.Repeat(" ", pad) + "\n"

	if _, err := io.WriteString(w, npyMagic); err != nil {
		return err
	}
	if _, err := io.WriteString(w, npyVersion); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(header))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}

	buf := make([]byte, 8*len(a.Data))
	for i, v := range a.Data {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	_, err := w.Write(buf)
	return err
}

// FlattenGrid lays out a row-major [height][width]float64 grid as a flat
// slice suitable for Array.Data, with Array.Shape set to {height, width}.
func FlattenGrid(grid [][]float64) ([]float64, []int) {
	if len(grid) == 0 {
		return nil, []int{0, 0}
	}
	h, w := len(grid), len(grid[0])
	flat := make([]float64, 0, h*w)
	for _, row := range grid {
		flat = append(flat, row...)
	}
	return flat, []int{h, w}
}
