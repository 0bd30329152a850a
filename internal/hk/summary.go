// Public domain.

package hk

import (
	"fmt"
	"time"

	"github.com/mdobak/go-xerrors"
	"github.com/soniakeys/meeus/v3/julian"
	sexa "github.com/soniakeys/sexagesimal"
	"github.com/soniakeys/unit"
	"gonum.org/v1/gonum/stat"
)

// MJDRef is the NICER mission time reference, MJD(TT) of MET zero.
const MJDRef = 56658.000777592593

// jdMJD is the offset of Modified Julian Date from Julian Date.
const jdMJD = 2400000.5

// METToTime converts NICER mission elapsed seconds to a calendar time.
// The TT-UTC difference is not removed.
func METToTime(met float64) time.Time {
	return julian.JDToTime(jdMJD + MJDRef + met/86400)
}

// Summary describes the coverage of a binned housekeeping table.
type Summary struct {
	Bins        int
	Start, End  time.Time
	Exposure    unit.Time // sum of FRACEXP times bin width
	MeanFracExp float64
}

// Summarize computes coverage of a table binned at tBin.  The table must
// have TIME and FRACEXP columns and at least one row.
func (t *Table) Summarize(tBin unit.Time) (*Summary, error) {
	if t.Len() == 0 {
		return nil, xerrors.New("housekeeping table is empty")
	}
	tm, err := t.Column(TimeCol)
	if err != nil {
		return nil, err
	}
	fe, err := t.Column(FracExpCol)
	if err != nil {
		return nil, err
	}
	s := &Summary{
		Bins:        t.Len(),
		Start:       METToTime(tm[0]),
		End:         METToTime(tm[len(tm)-1] + tBin.Sec()),
		MeanFracExp: stat.Mean(fe, nil),
	}
	s.Exposure = unit.Time(s.MeanFracExp * float64(s.Bins) * tBin.Sec())
	return s, nil
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d bins %s to %s, exposure %.0s (mean FRACEXP %.3f)",
		s.Bins,
		s.Start.Format("2006-01-02 15:04:05"),
		s.End.Format("2006-01-02 15:04:05"),
		sexa.FmtTime(s.Exposure),
		s.MeanFracExp)
}
