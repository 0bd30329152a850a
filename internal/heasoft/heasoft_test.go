// Public domain.

package heasoft_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nicer-bgml/nicerbgml/internal/heasoft"
)

func TestFcurve(t *testing.T) {
	got := heasoft.Fcurve("1234567890", 4, "COR_SAX,SAA,SUNSHINE")
	want := `fcurve infile=../auxil/ni1234567890.mkf ` +
		`gtifile=../xti/event_cl/ni1234567890_0mpu7_cl.evt[GTI] ` +
		`outfile=ni.t4.mkf.tmp timecol=TIME columns="COR_SAX,SAA,SUNSHINE" ` +
		`binsz=4.0 lowval=INDEF highval=INDEF binmode=Mean ` +
		`outerr=NONE outlive=FRACEXP clobber=yes`
	if got != want {
		t.Fatalf("got\n%s\nwant\n%s", got, want)
	}
}

func TestFselect(t *testing.T) {
	got := heasoft.Fselect(4)
	want := `fselect ni.t4.mkf.tmp ni.t4.mkf "FRACEXP>0" clobber=yes`
	if got != want {
		t.Fatalf("got %s", got)
	}
	if got = heasoft.MKFFile(2.5); got != "ni.t2.5.mkf" {
		t.Fatalf("MKFFile(2.5) = %s", got)
	}
}

func TestNicerl2(t *testing.T) {
	d := heasoft.Detectors{Exclude: []int{14, 34}, MinActive: 38}
	got := heasoft.Nicerl2("1234567890", d, "/data/geomag")
	want := `nicerl2 indir=1234567890 clobber=yes detlist=launch,-14,-34 min_fpm=38 ` +
		`geomag_path=/data/geomag ` +
		`geomag_columns="kp_noaa.fits(KP),solarphi_oulu.fits(SOLAR_PHI)" filtcolumns=NICERV4`
	if got != want {
		t.Fatalf("got\n%s\nwant\n%s", got, want)
	}
	got = heasoft.Nicerl2("1234567890", d, "")
	want = `nicerl2 indir=1234567890 clobber=yes detlist=launch,-14,-34 min_fpm=38 filtcolumns=NICERV4`
	if got != want {
		t.Fatalf("without geomag got\n%s", got)
	}
}

func TestMathpha(t *testing.T) {
	got := heasoft.Mathpha("0.3333*spec.1.pha+0.6667*spec.2.pha")
	want := `mathpha "0.3333*spec.1.pha+0.6667*spec.2.pha" R spec.b.pha CALC NULL 0 clobber=yes`
	if got != want {
		t.Fatalf("got %s", got)
	}
}

func TestDecimalFloat(t *testing.T) {
	for x, want := range map[float64]string{4: "4.0", 0.5: "0.5", 16: "16.0", 2.25: "2.25"} {
		if got := heasoft.DecimalFloat(x); got != want {
			t.Errorf("DecimalFloat(%g) = %s, want %s", x, got, want)
		}
	}
}

func needShell(t *testing.T) {
	if _, err := os.Stat(heasoft.Shell); err != nil {
		t.Skip(err)
	}
}

func TestExecRun(t *testing.T) {
	needShell(t)
	dir := t.TempDir()
	var out bytes.Buffer
	x := &heasoft.Exec{Stdout: &out, Stderr: &out}
	if err := x.Run(dir, `pwd; echo "q=$HEADASNOQUERY p=$HEADASPROMPT"`); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("output %q", out.String())
	}
	if d, _ := filepath.EvalSymlinks(dir); lines[0] != dir && lines[0] != d {
		t.Errorf("ran in %s, want %s", lines[0], dir)
	}
	if lines[1] != "q= p=/dev/null" {
		t.Errorf("environment %q", lines[1])
	}
}

func TestExecRunFailure(t *testing.T) {
	needShell(t)
	x := &heasoft.Exec{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}
	err := x.Run(t.TempDir(), "exit 3")
	var te *heasoft.ToolError
	if !errors.As(err, &te) {
		t.Fatalf("got %v, want *ToolError", err)
	}
	if te.Code != 3 || te.Cmd != "exit 3" {
		t.Fatalf("got %+v", te)
	}
}
