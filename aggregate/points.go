package aggregate

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/czertyaka/codiri/activity"
	"github.com/czertyaka/codiri/formulas"
	"github.com/czertyaka/codiri/geo"
)

// NamedPoint is one named receptor the points driver reports a dose
// sample for.
type NamedPoint struct {
	Name string
	Coo  geo.Coordinate
}

// PointsDriver evaluates an Aggregator at a fixed, ordered list of named
// receptors and writes one CSV row per (point, nuclide), preserving
// input order.
type PointsDriver struct {
	Aggregator *Aggregator
	Points     []NamedPoint
}

// csvSeparator and csvQuote produce the required CSV layout exactly: a
// non-default separator and quote character the stdlib encoding/csv
// writer has no option to produce together (it always quotes with `"`),
// so the points driver writes rows by hand instead.
const (
	csvSeparator = ";"
	csvQuote     = "'"
)

// Run computes a dose sample for every (point, nuclide) pair and writes
// the resulting CSV to w.
func (d *PointsDriver) Run(w io.Writer, rasters map[string]*activity.Map) error {
	nuclides := make([]string, 0, len(rasters))
	for n := range rasters {
		nuclides = append(nuclides, n)
	}
	sort.Strings(nuclides)

	if err := writeCSVRow(w, csvHeader()); err != nil {
		return fmt.Errorf("aggregate.PointsDriver.Run: %v", err)
	}

	for _, point := range d.Points {
		for _, nuclide := range nuclides {
			actmap := rasters[nuclide]
			ds, err := d.Aggregator.CalculateDose(actmap, point.Coo)
			if err != nil {
				return fmt.Errorf("aggregate.PointsDriver.Run: point %q, nuclide %q: %v", point.Name, nuclide, err)
			}
			if err := writeCSVRow(w, csvRow(point, ds)); err != nil {
				return fmt.Errorf("aggregate.PointsDriver.Run: %v", err)
			}
		}
	}
	return nil
}

func csvHeader() []string {
	cols := []string{"point", "x", "y", "nuclide", "E_max_acute", "E_max_period"}
	for _, quantity := range []string{
		"e_total_10_acute", "e_total_10_period", "e_inh", "e_surface",
		"e_cloud", "e_food", "concentration_integral", "deposition", "depletion",
	} {
		for _, aclass := range formulas.StabilityClasses {
			cols = append(cols, quantity+"_"+aclass)
		}
	}
	return cols
}

func csvRow(point NamedPoint, ds *DoseSample) []string {
	row := []string{
		point.Name,
		strconv.FormatFloat(point.Coo.Lon, 'g', -1, 64),
		strconv.FormatFloat(point.Coo.Lat, 'g', -1, 64),
		ds.Nuclide,
		strconv.FormatFloat(ds.EMaxAcute, 'g', -1, 64),
		strconv.FormatFloat(ds.EMaxPeriod, 'g', -1, 64),
	}
	for _, pc := range []map[string]float64{
		ds.TotalAcute, ds.TotalPeriod, ds.Inhalation, ds.Surface,
		ds.Cloud, ds.Food, ds.ConcentrationIntegral, ds.Deposition, ds.Depletion,
	} {
		for _, aclass := range formulas.StabilityClasses {
			row = append(row, strconv.FormatFloat(pc[aclass], 'g', -1, 64))
		}
	}
	return row
}

// writeCSVRow joins fields with csvSeparator, quoting (with csvQuote,
// doubled to escape a literal quote) only fields that actually contain
// the separator, the quote character, or a newline.
func writeCSVRow(w io.Writer, fields []string) error {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		if strings.ContainsAny(f, csvSeparator+csvQuote+"\n") {
			f = csvQuote + strings.ReplaceAll(f, csvQuote, csvQuote+csvQuote) + csvQuote
		}
		escaped[i] = f
	}
	_, err := io.WriteString(w, strings.Join(escaped, csvSeparator)+"\n")
	return err
}
