// Public domain.

package bgprog

import (
	"gonum.org/v1/gonum/mat"

	"github.com/nicer-bgml/nicerbgml/internal/bundle"
	"github.com/nicer-bgml/nicerbgml/internal/hk"
)

// Variant holds what differs between model generations.
type Variant struct {
	Name    string // command name
	Version string

	// Digits is both the significant digits and the field width of the
	// weights in the mathpha expression.
	Digits int

	// Reprocess runs nicerl2 with geomagnetic data before binning.  It
	// requires a geomagnetic data directory argument and an initialized
	// HEASoft environment.
	Reprocess bool

	// Features selects model inputs from the binned housekeeping table.
	// names holds the table column of each feature.
	Features func(t *hk.Table, cols bundle.Columns) (x *mat.Dense, names []string, err error)
}

// V1 is the first model generation: 50 MPUs, 4 s bins, 20 basis spectra.
// Features are every binned column between TIME and FRACEXP.
var V1 = &Variant{
	Name:    "nicerbgml",
	Version: "0.1.t4n20",
	Digits:  4,
	Features: func(t *hk.Table, _ bundle.Columns) (*mat.Dense, []string, error) {
		x, err := t.Inner()
		if err != nil {
			return nil, nil, err
		}
		return x, t.Cols[1 : len(t.Cols)-1], nil
	},
}

// V2 is the second model generation, trained on reprocessed MKF files
// including geomagnetic indices.  Features are looked up by name.
var V2 = &Variant{
	Name:      "nicerbgml2",
	Version:   "0.2.t4n20",
	Digits:    6,
	Reprocess: true,
	Features: func(t *hk.Table, cols bundle.Columns) (*mat.Dense, []string, error) {
		names := cols.List()
		x, err := t.Select(names)
		return x, names, err
	},
}

// nArgs is the number of positional arguments the variant takes.
func (v *Variant) nArgs() int {
	if v.Reprocess {
		return 2
	}
	return 1
}
