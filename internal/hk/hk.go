// Public domain.

// Package hk reads binned NICER housekeeping (MKF) tables and selects the
// model features from them.
package hk

import (
	"fmt"
	"math"
	"os"

	"github.com/astrogo/fitsio"
	"github.com/mdobak/go-xerrors"
	"gonum.org/v1/gonum/mat"
)

// Column names written by the time binning step.
const (
	TimeCol    = "TIME"
	FracExpCol = "FRACEXP"
)

// Table is a housekeeping table, one row per time bin.  Rows hold every
// column of Cols in order.  Values that are not numeric scalars are NaN.
type Table struct {
	Cols []string
	Rows [][]float64
}

// ReadFile reads the first table extension of a FITS file.
func ReadFile(fn string) (*Table, error) {
	r, err := os.Open(fn)
	if err != nil {
		return nil, xerrors.New(err)
	}
	defer r.Close()
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, xerrors.New(fmt.Errorf("%s: %w", fn, err))
	}
	defer f.Close()
	var tbl *fitsio.Table
	for _, hdu := range f.HDUs() {
		if t, ok := hdu.(*fitsio.Table); ok {
			tbl = t
			break
		}
	}
	if tbl == nil {
		return nil, xerrors.New(fmt.Sprintf("%s: no table extension", fn))
	}
	t := &Table{}
	for _, c := range tbl.Cols() {
		t.Cols = append(t.Cols, c.Name)
	}
	rows, err := tbl.Read(0, tbl.NumRows())
	if err != nil {
		return nil, xerrors.New(fmt.Errorf("%s: %w", fn, err))
	}
	defer rows.Close()
	for rows.Next() {
		m := map[string]interface{}{}
		if err = rows.Scan(&m); err != nil {
			return nil, xerrors.New(fmt.Errorf("%s: row %d: %w", fn, len(t.Rows), err))
		}
		row := make([]float64, len(t.Cols))
		for i, c := range t.Cols {
			row[i] = toFloat(m[c])
		}
		t.Rows = append(t.Rows, row)
	}
	if err = rows.Err(); err != nil {
		return nil, xerrors.New(fmt.Errorf("%s: %w", fn, err))
	}
	return t, nil
}

// toFloat converts a scanned FITS scalar to float64.
func toFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case int16:
		return float64(x)
	case int8:
		return float64(x)
	case int:
		return float64(x)
	case uint64:
		return float64(x)
	case uint32:
		return float64(x)
	case uint16:
		return float64(x)
	case uint8:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	}
	return math.NaN()
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Cols {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	j := t.Index(name)
	if j < 0 {
		return nil, xerrors.New(fmt.Sprintf("no column %s", name))
	}
	v := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		v[i] = r[j]
	}
	return v, nil
}

// Positive returns the rows of t where the named column is greater than
// zero.  Rows are shared with t.
func (t *Table) Positive(name string) (*Table, error) {
	j := t.Index(name)
	if j < 0 {
		return nil, xerrors.New(fmt.Sprintf("no column %s", name))
	}
	f := &Table{Cols: t.Cols}
	for _, r := range t.Rows {
		if r[j] > 0 {
			f.Rows = append(f.Rows, r)
		}
	}
	return f, nil
}

// Inner returns all columns except the first and the last as a feature
// matrix.
//
// The binning step writes TIME first and FRACEXP last, with the
// requested housekeeping columns between them.  Models of the first
// generation were trained on exactly that slice.
func (t *Table) Inner() (*mat.Dense, error) {
	if len(t.Cols) < 3 {
		return nil, xerrors.New(fmt.Sprintf("%d columns leave no features between first and last", len(t.Cols)))
	}
	idx := make([]int, 0, len(t.Cols)-2)
	for j := 1; j < len(t.Cols)-1; j++ {
		idx = append(idx, j)
	}
	return t.features(idx)
}

// Select returns the named columns, in the order given, as a feature matrix.
func (t *Table) Select(names []string) (*mat.Dense, error) {
	if len(names) == 0 {
		return nil, xerrors.New("no feature columns requested")
	}
	idx := make([]int, len(names))
	for i, n := range names {
		if idx[i] = t.Index(n); idx[i] < 0 {
			return nil, xerrors.New(fmt.Sprintf("model column %s not in housekeeping table", n))
		}
	}
	return t.features(idx)
}

func (t *Table) features(idx []int) (*mat.Dense, error) {
	if len(t.Rows) == 0 {
		return nil, xerrors.New("housekeeping table is empty")
	}
	d := make([]float64, 0, len(t.Rows)*len(idx))
	for _, r := range t.Rows {
		for _, j := range idx {
			d = append(d, r[j])
		}
	}
	return mat.NewDense(len(t.Rows), len(idx), d), nil
}
