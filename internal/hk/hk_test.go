// Public domain.

package hk

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/astrogo/fitsio"
	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/mat"
)

func testTable() *Table {
	return &Table{
		Cols: []string{"TIME", "COR_SAX", "SAA", "KP", "FRACEXP"},
		Rows: [][]float64{
			{100, 1.5, 0, 2, 1},
			{104, 2.5, 1, 3, 0},
			{108, 3.5, 0, 4, .5},
		},
	}
}

func TestInner(t *testing.T) {
	x, err := testTable().Inner()
	if err != nil {
		t.Fatal(err)
	}
	want := mat.NewDense(3, 3, []float64{
		1.5, 0, 2,
		2.5, 1, 3,
		3.5, 0, 4,
	})
	if !mat.Equal(x, want) {
		t.Fatalf("got\n%v", mat.Formatted(x))
	}
}

func TestInnerTooNarrow(t *testing.T) {
	tb := &Table{Cols: []string{"TIME", "FRACEXP"}, Rows: [][]float64{{1, 1}}}
	if _, err := tb.Inner(); err == nil {
		t.Fatal("expected error")
	}
}

func TestSelect(t *testing.T) {
	x, err := testTable().Select([]string{"KP", "COR_SAX"})
	if err != nil {
		t.Fatal(err)
	}
	want := mat.NewDense(3, 2, []float64{2, 1.5, 3, 2.5, 4, 3.5})
	if !mat.Equal(x, want) {
		t.Fatalf("got\n%v", mat.Formatted(x))
	}
	if _, err = testTable().Select([]string{"KP", "SUNSHINE"}); err == nil {
		t.Fatal("expected missing column error")
	}
}

func TestSelectEmpty(t *testing.T) {
	tb := &Table{Cols: testTable().Cols}
	if _, err := tb.Select([]string{"KP"}); err == nil {
		t.Fatal("expected empty table error")
	}
}

func TestPositive(t *testing.T) {
	f, err := testTable().Positive(FracExpCol)
	if err != nil {
		t.Fatal(err)
	}
	if f.Len() != 2 || f.Rows[0][0] != 100 || f.Rows[1][0] != 108 {
		t.Fatalf("got rows %v", f.Rows)
	}
	if _, err = testTable().Positive("LIVETIME"); err == nil {
		t.Fatal("expected error")
	}
}

func TestToFloat(t *testing.T) {
	for _, tc := range []struct {
		v    interface{}
		want float64
	}{
		{float64(1.5), 1.5},
		{float32(.25), .25},
		{int16(-3), -3},
		{int32(7), 7},
		{int64(1 << 40), 1 << 40},
		{uint8(255), 255},
		{true, 1},
	} {
		if got := toFloat(tc.v); got != tc.want {
			t.Errorf("toFloat(%T %v) = %g", tc.v, tc.v, got)
		}
	}
	if !math.IsNaN(toFloat([]float64{1, 2})) {
		t.Error("vector value should be NaN")
	}
}

func TestMETToTime(t *testing.T) {
	// MET zero is 2014-01-01 00:01:07.184 TT
	got := METToTime(0)
	want := time.Date(2014, 1, 1, 0, 1, 7, 184e6, time.UTC)
	if d := got.Sub(want); d < -time.Millisecond || d > time.Millisecond {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSummarize(t *testing.T) {
	s, err := testTable().Summarize(unit.Time(4))
	if err != nil {
		t.Fatal(err)
	}
	if s.Bins != 3 {
		t.Errorf("bins = %d", s.Bins)
	}
	if math.Abs(s.MeanFracExp-.5) > 1e-12 {
		t.Errorf("mean FRACEXP = %g", s.MeanFracExp)
	}
	if math.Abs(s.Exposure.Sec()-6) > 1e-9 {
		t.Errorf("exposure = %g s", s.Exposure.Sec())
	}
	if d := s.End.Sub(s.Start); d < 11999*time.Millisecond || d > 12001*time.Millisecond {
		t.Errorf("span = %v", d)
	}
	if s.String() == "" {
		t.Error("empty summary string")
	}
	if _, err = (&Table{Cols: []string{"TIME"}, Rows: [][]float64{{1}}}).Summarize(4); err == nil {
		t.Error("expected missing FRACEXP error")
	}
}

type fitsRow struct {
	time, fracExp float64
	a             float32
	n             int32
}

// writeFITS writes rows as a binary table extension with columns TIME
// (D), A (E), N (J), and FRACEXP (D).
func writeFITS(t *testing.T, rows []fitsRow) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "ni.mkf")
	w, err := os.Create(fn)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	f, err := fitsio.Create(w)
	if err != nil {
		t.Fatal(err)
	}
	phdu, err := fitsio.NewPrimaryHDU(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err = f.Write(phdu); err != nil {
		t.Fatal(err)
	}
	tbl, err := fitsio.NewTable("PREFILTER", []fitsio.Column{
		{Name: "TIME", Format: "D"},
		{Name: "A", Format: "E"},
		{Name: "N", Format: "J"},
		{Name: "FRACEXP", Format: "D"},
	}, fitsio.BINARY_TBL)
	if err != nil {
		t.Fatal(err)
	}
	for i := range rows {
		r := rows[i]
		if err = tbl.Write(&r.time, &r.a, &r.n, &r.fracExp); err != nil {
			t.Fatalf("row %d: %v", i, err)
		}
	}
	if err = f.Write(tbl); err != nil {
		t.Fatal(err)
	}
	if err = tbl.Close(); err != nil {
		t.Fatal(err)
	}
	if err = f.Close(); err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestReadFile(t *testing.T) {
	fn := writeFITS(t, []fitsRow{
		{time: 100, a: 1.5, n: 3, fracExp: 1},
		{time: 104, a: -2.25, n: -7, fracExp: .5},
		{time: 108, a: 0, n: 1 << 20, fracExp: 0},
	})
	tb, err := ReadFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"TIME", "A", "N", "FRACEXP"}; !reflect.DeepEqual(tb.Cols, want) {
		t.Fatalf("Cols = %v, want %v", tb.Cols, want)
	}
	want := [][]float64{
		{100, 1.5, 3, 1},
		{104, -2.25, -7, .5},
		{108, 0, 1 << 20, 0},
	}
	if !reflect.DeepEqual(tb.Rows, want) {
		t.Fatalf("Rows = %v, want %v", tb.Rows, want)
	}
}

func TestReadFileNoRows(t *testing.T) {
	tb, err := ReadFile(writeFITS(t, nil))
	if err != nil {
		t.Fatal(err)
	}
	if tb.Len() != 0 {
		t.Errorf("Len = %d, want 0", tb.Len())
	}
	if want := []string{"TIME", "A", "N", "FRACEXP"}; !reflect.DeepEqual(tb.Cols, want) {
		t.Errorf("Cols = %v, want %v", tb.Cols, want)
	}
}

func TestReadFileNotFITS(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "ni.mkf")
	if err := os.WriteFile(fn, []byte("not a FITS file"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(fn); err == nil {
		t.Fatal("expected error")
	}
}
