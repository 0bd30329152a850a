// Public domain.

package bundle

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mdobak/go-xerrors"

	"github.com/nicer-bgml/nicerbgml/internal/heasoft"
)

// DefaultDetectors is the standard 50 module selection, all launch
// modules less 14 and 34.
var DefaultDetectors = heasoft.Detectors{Exclude: []int{14, 34}, MinActive: 38}

// Columns is the housekeeping column specification of a model.
//
// First generation models store a single combined string, passed to the
// binning tool as is.  Later models store a list of names.
type Columns struct {
	Combined string
	Names    []string
}

// Arg is the column list as given to fcurve.
func (c Columns) Arg() string {
	if c.Names != nil {
		return strings.Join(c.Names, ",")
	}
	return c.Combined
}

// List returns the column names.  A combined string is split on commas
// and white space.
func (c Columns) List() []string {
	if c.Names != nil {
		return c.Names
	}
	return strings.FieldsFunc(c.Combined, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func (c Columns) MarshalJSON() ([]byte, error) {
	if c.Names != nil {
		return json.Marshal(c.Names)
	}
	return json.Marshal(c.Combined)
}

func (c *Columns) UnmarshalJSON(data []byte) error {
	*c = Columns{}
	if err := json.Unmarshal(data, &c.Combined); err == nil {
		return nil
	}
	if err := json.Unmarshal(data, &c.Names); err != nil {
		return xerrors.New("want a string or a list of column names")
	}
	if c.Names == nil {
		c.Names = []string{}
	}
	return nil
}

// MPUFilter is the detector module filter a model was built with.
//
// First generation models carry only a description; the detector
// selection is then DefaultDetectors.
type MPUFilter struct {
	Desc string
	heasoft.Detectors
}

func (m MPUFilter) MarshalJSON() ([]byte, error) {
	if m.Desc != "" {
		return json.Marshal(m.Desc)
	}
	return json.Marshal(m.Detectors)
}

func (m *MPUFilter) UnmarshalJSON(data []byte) error {
	var desc string
	if err := json.Unmarshal(data, &desc); err == nil {
		*m = MPUFilter{Desc: desc, Detectors: DefaultDetectors}
		return nil
	}
	d := DefaultDetectors
	d.Exclude = nil
	if err := json.Unmarshal(data, &d); err != nil {
		return xerrors.New("want a string or a detector selection object")
	}
	if d.Exclude == nil {
		d.Exclude = DefaultDetectors.Exclude
	}
	*m = MPUFilter{Detectors: d}
	return nil
}

func (m MPUFilter) String() string {
	if m.Desc != "" {
		return m.Desc
	}
	return "detlist=" + m.DetList() + " min_fpm=" + strconv.Itoa(m.MinActive)
}
