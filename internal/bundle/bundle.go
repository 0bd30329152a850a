// Public domain.

// Package bundle reads and writes the trained background model bundle.
//
// A bundle is a ZIP archive of named members, each member a JSON
// document.  The members are:
//
//	mod.json        classifier, see package classify
//	XPreProc.json   preprocessing steps, see package preproc
//	tBin.json       time bin width in seconds
//	mpuFilter.json  detector module filter
//	mkfCols.json    housekeeping columns the model was trained on
//
// mpuFilter and mkfCols changed form between model generations; both
// forms are accepted.
package bundle

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mdobak/go-xerrors"
	"github.com/soniakeys/unit"

	"github.com/nicer-bgml/nicerbgml/internal/classify"
	"github.com/nicer-bgml/nicerbgml/internal/preproc"
)

// DefaultFile is the default bundle file name.
const DefaultFile = "model.npz"

// Member names, without the .json extension.
const (
	EntryModel     = "mod"
	EntryPreProc   = "XPreProc"
	EntryTBin      = "tBin"
	EntryMPUFilter = "mpuFilter"
	EntryColumns   = "mkfCols"
)

const ext = ".json"

// Bundle is a trained model and the metadata needed to apply it.
type Bundle struct {
	Model     classify.Classifier
	PreProc   preproc.Pipeline
	TBin      unit.Time
	MPUFilter MPUFilter
	Columns   Columns
}

// ReadFile reads a bundle.  mod, XPreProc, tBin, and mkfCols are required.
// A missing mpuFilter gets DefaultDetectors.
func ReadFile(fn string) (b *Bundle, err error) {
	zr, err := zip.OpenReader(fn)
	if err != nil {
		return nil, xerrors.New(err)
	}
	defer zr.Close()
	members := map[string]*zip.File{}
	for _, f := range zr.File {
		members[strings.TrimSuffix(f.Name, ext)] = f
	}
	read := func(name string, required bool) ([]byte, error) {
		f, ok := members[name]
		if !ok {
			if required {
				return nil, xerrors.New(fmt.Sprintf("%s: no %s in model bundle", fn, name))
			}
			return nil, nil
		}
		r, err := f.Open()
		if err != nil {
			return nil, xerrors.New(fmt.Errorf("%s: %s: %w", fn, name, err))
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, xerrors.New(fmt.Errorf("%s: %s: %w", fn, name, err))
		}
		return data, nil
	}

	b = &Bundle{MPUFilter: MPUFilter{Detectors: DefaultDetectors}}
	data, err := read(EntryModel, true)
	if err != nil {
		return nil, err
	}
	if b.Model, err = classify.Decode(data); err != nil {
		return nil, xerrors.New(fmt.Errorf("%s: %s: %w", fn, EntryModel, err))
	}
	if data, err = read(EntryPreProc, true); err != nil {
		return nil, err
	}
	if b.PreProc, err = preproc.Decode(data); err != nil {
		return nil, xerrors.New(fmt.Errorf("%s: %s: %w", fn, EntryPreProc, err))
	}
	if data, err = read(EntryTBin, true); err != nil {
		return nil, err
	}
	var tBin float64
	if err = json.Unmarshal(data, &tBin); err != nil {
		return nil, xerrors.New(fmt.Errorf("%s: %s: %w", fn, EntryTBin, err))
	}
	if tBin <= 0 {
		return nil, xerrors.New(fmt.Sprintf("%s: %s must be positive, got %g", fn, EntryTBin, tBin))
	}
	b.TBin = unit.Time(tBin)
	if data, err = read(EntryColumns, true); err != nil {
		return nil, err
	}
	if err = json.Unmarshal(data, &b.Columns); err != nil {
		return nil, xerrors.New(fmt.Errorf("%s: %s: %w", fn, EntryColumns, err))
	}
	if data, err = read(EntryMPUFilter, false); err != nil {
		return nil, err
	}
	if data != nil {
		if err = json.Unmarshal(data, &b.MPUFilter); err != nil {
			return nil, xerrors.New(fmt.Errorf("%s: %s: %w", fn, EntryMPUFilter, err))
		}
	}
	return b, nil
}

// WriteFile writes b to a new bundle file fn.
func WriteFile(fn string, b *Bundle) (err error) {
	f, err := os.Create(fn)
	if err != nil {
		return xerrors.New(err)
	}
	defer func() {
		if cErr := f.Close(); err == nil && cErr != nil {
			err = xerrors.New(cErr)
		}
	}()
	zw := zip.NewWriter(f)
	put := func(name string, data []byte, mErr error) {
		if err != nil {
			return
		}
		if mErr != nil {
			err = xerrors.New(fmt.Errorf("%s: %w", name, mErr))
			return
		}
		var w io.Writer
		if w, err = zw.Create(name + ext); err != nil {
			err = xerrors.New(err)
			return
		}
		if _, err = w.Write(data); err != nil {
			err = xerrors.New(err)
		}
	}
	mod, mErr := classify.Encode(b.Model)
	put(EntryModel, mod, mErr)
	pp, mErr := b.PreProc.Encode()
	put(EntryPreProc, pp, mErr)
	tb, mErr := json.Marshal(b.TBin.Sec())
	put(EntryTBin, tb, mErr)
	mf, mErr := json.Marshal(b.MPUFilter)
	put(EntryMPUFilter, mf, mErr)
	cols, mErr := json.Marshal(b.Columns)
	put(EntryColumns, cols, mErr)
	if err != nil {
		return err
	}
	if err = zw.Close(); err != nil {
		return xerrors.New(err)
	}
	return nil
}
