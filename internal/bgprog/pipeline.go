// Public domain.

package bgprog

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/mdobak/go-xerrors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/nicer-bgml/nicerbgml/internal/bundle"
	"github.com/nicer-bgml/nicerbgml/internal/heasoft"
	"github.com/nicer-bgml/nicerbgml/internal/hk"
	"github.com/nicer-bgml/nicerbgml/internal/weights"
)

var rule = strings.Repeat("-", 20)

// Pipeline estimates the background spectrum of one observation.
//
// The stages run strictly in sequence, each external tool to completion
// before the next stage starts.  Tools run in the directory they need;
// the process working directory is not changed.
type Pipeline struct {
	Variant   *Variant
	Runner    heasoft.Runner
	ReadTable func(fn string) (*hk.Table, error) // hk.ReadFile if nil
	Out       io.Writer                          // operator progress
	Log       *log.Entry
}

// Result of a run.  With no housekeeping data Weights is empty and Output
// is "".
type Result struct {
	Weights weights.Weights
	Output  string // path of the background spectrum
}

// Run runs every stage for the observation of cfg.
func (p *Pipeline) Run(cfg *Config) (*Result, error) {
	if p.ReadTable == nil {
		p.ReadTable = hk.ReadFile
	}
	if p.Log == nil {
		p.Log = log.NewEntry(log.StandardLogger())
	}

	p.println("reading model data ...")
	b, err := bundle.ReadFile(cfg.ModelFile)
	if err != nil {
		return nil, err
	}
	p.Log.WithFields(log.Fields{
		"model":     b.Model.Kind(),
		"classes":   b.Model.NClasses(),
		"steps":     len(b.PreProc),
		"tBin":      b.TBin.Sec(),
		"mpuFilter": b.MPUFilter.String(),
	}).Debug("model loaded")
	p.done()

	if p.Variant.Reprocess {
		if err = p.reprocess(cfg, b); err != nil {
			return nil, err
		}
	}

	p.println("reading MKF data ...")
	t, err := p.extract(cfg, b)
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		p.println("There are no data in the MKF file ... stopping")
		return &Result{}, nil
	}
	if s, err := t.Summarize(b.TBin); err == nil {
		p.Log.WithField("stage", "extract").Info(s)
	} else {
		p.Log.WithError(err).Debug("no table summary")
	}
	p.done()

	p.println("getting model predictions ...")
	labels, err := p.infer(t, b)
	if err != nil {
		return nil, err
	}
	w := weights.FromLabels(labels)
	if err = w.WriteTable(p.Out); err != nil {
		return nil, xerrors.New(err)
	}
	p.done()

	out, err := p.combine(cfg, w)
	if err != nil {
		return nil, err
	}
	return &Result{Weights: w, Output: out}, nil
}

func (p *Pipeline) println(a ...interface{}) {
	fmt.Fprintln(p.Out, a...)
}

func (p *Pipeline) done() {
	p.println("... Done")
	p.println(rule)
}

// reprocess regenerates the MKF file with the model's detector selection
// and geomagnetic data.  Failure is fatal.
func (p *Pipeline) reprocess(cfg *Config, b *bundle.Bundle) error {
	p.println("reprocessing obsID ...")
	cmd := heasoft.Nicerl2(cfg.ObsID, b.MPUFilter.Detectors, cfg.KpDir)
	p.Log.WithFields(log.Fields{"stage": "reprocess", "cmd": cmd}).Debug("nicerl2")
	if err := p.Runner.Run(filepath.Dir(cfg.ObsDir), cmd); err != nil {
		return xerrors.New(fmt.Errorf("reprocessing %s failed: %w", cfg.ObsID, err))
	}
	p.done()
	return nil
}

// extract bins and filters the MKF file.  Tool failures here only warn;
// whatever table resulted is read.
func (p *Pipeline) extract(cfg *Config, b *bundle.Bundle) (*hk.Table, error) {
	dir := cfg.SpecDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, xerrors.New(err)
	}
	l := p.Log.WithField("stage", "extract")
	if err := p.Runner.Run(dir, heasoft.Fcurve(cfg.ObsID, b.TBin, b.Columns.Arg())); err != nil {
		l.WithError(err).Warn("binning MKF data failed")
	}
	tmp := filepath.Join(dir, heasoft.UnfilteredMKFFile(b.TBin))
	mkf := filepath.Join(dir, heasoft.MKFFile(b.TBin))
	if err := p.Runner.Run(dir, heasoft.Fselect(b.TBin)); err != nil {
		l.WithError(err).Warn("filtering MKF data failed")
	} else if err = os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		l.WithError(err).Warn("cannot remove unfiltered MKF data")
	}

	switch {
	case exists(mkf):
		t, err := p.ReadTable(mkf)
		if err != nil {
			return nil, err
		}
		return t, nil
	case exists(tmp):
		l.WithField("file", tmp).Warn("using unfiltered MKF data")
		t, err := p.ReadTable(tmp)
		if err != nil {
			return nil, err
		}
		return t.Positive(hk.FracExpCol)
	}
	return nil, xerrors.New(fmt.Sprintf("no binned MKF data: %s not found", mkf))
}

// infer labels each bin with its background state.
func (p *Pipeline) infer(t *hk.Table, b *bundle.Bundle) ([]int, error) {
	x, names, err := p.Variant.Features(t, b.Columns)
	if err != nil {
		return nil, err
	}
	if err = checkFinite("feature", x, func(j int) string { return names[j] }); err != nil {
		return nil, err
	}
	xb, err := b.PreProc.Transform(x)
	if err != nil {
		return nil, xerrors.New(fmt.Errorf("preprocessing: %w", err))
	}
	if err = checkFinite("preprocessed feature", xb, strconv.Itoa); err != nil {
		return nil, err
	}
	labels, err := b.Model.Predict(xb)
	if err != nil {
		return nil, xerrors.New(fmt.Errorf("prediction: %w", err))
	}
	return labels, nil
}

// checkFinite reports the first NaN or infinite value of x.  Rows are
// bins in table order.
func checkFinite(what string, x mat.Matrix, col func(j int) string) error {
	r, c := x.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := x.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return xerrors.New(fmt.Sprintf("bin %d: %s %s is %g", i, what, col(j), v))
			}
		}
	}
	return nil
}

// combine sums the weighted basis spectra with mathpha and moves the
// result into the observation's spec directory.
func (p *Pipeline) combine(cfg *Config, w weights.Weights) (string, error) {
	l := p.Log.WithField("stage", "combine")
	for _, c := range w.Classes() {
		if fn := filepath.Join(cfg.DataDir, weights.SpecFile(c)); !exists(fn) {
			l.WithField("file", fn).Warn("missing basis spectrum")
		}
	}
	cmd := heasoft.Mathpha(w.Expression(p.Variant.Digits))
	p.println(cmd)
	if err := p.Runner.Run(cfg.DataDir, cmd); err != nil {
		return "", xerrors.New(fmt.Errorf("Combining the spectra failed: \n%w", err))
	}
	dst := filepath.Join(cfg.SpecDir(), heasoft.BackgroundFile)
	if err := move(filepath.Join(cfg.DataDir, heasoft.BackgroundFile), dst); err != nil {
		return "", err
	}
	p.println("Background file " +
		filepath.Join(cfg.ObsArg, "spec", heasoft.BackgroundFile) +
		" created successfully")
	p.println(rule)
	return dst, nil
}

// move renames src to dst, copying across file systems.
func move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return xerrors.New(err)
	}
	in, err := os.Open(src)
	if err != nil {
		return xerrors.New(err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return xerrors.New(err)
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return xerrors.New(err)
	}
	if err = out.Close(); err != nil {
		return xerrors.New(err)
	}
	in.Close()
	if err = os.Remove(src); err != nil {
		return xerrors.New(err)
	}
	return nil
}
