// Public domain.

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mdobak/go-xerrors"
	"github.com/soniakeys/exit"
	"github.com/soniakeys/unit"

	"github.com/nicer-bgml/nicerbgml/internal/bundle"
	"github.com/nicer-bgml/nicerbgml/internal/classify"
	"github.com/nicer-bgml/nicerbgml/internal/preproc"
)

const versionString = "mkbundle version 0.2"
const copyrightString = "Public domain."

type options struct {
	tBin    float64
	cols    string
	list    bool
	mpuFile string
}

func main() {
	defer exit.Handler()

	flag.Usage = func() {
		os.Stderr.WriteString(
			"Usage: mkbundle [options] <mod.json> <XPreProc.json>\n")
		flag.PrintDefaults()
		os.Stderr.WriteString(`
For full documentation:
   go doc github.com/nicer-bgml/nicerbgml/mkbundle
`)
	}
	var o options
	out := flag.String("o", bundle.DefaultFile, "output bundle")
	flag.Float64Var(&o.tBin, "tbin", 4, "time bin width in seconds")
	flag.StringVar(&o.cols, "cols", "", "MKF columns, comma separated")
	flag.BoolVar(&o.list, "list", false, "store columns as a list of names")
	flag.StringVar(&o.mpuFile, "mpu", "", "detector module filter document")
	vers := flag.Bool("v", false, "display version and copyright")
	flag.Parse()
	if *vers {
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		return
	}
	if flag.NArg() != 2 || o.cols == "" {
		flag.Usage()
		os.Exit(1)
	}
	b, err := build(flag.Arg(0), flag.Arg(1), &o)
	if err != nil {
		exit.Log(err)
	}
	if err = bundle.WriteFile(*out, b); err != nil {
		exit.Log(err)
	}
	fmt.Printf("%s: %s, %d preprocessing steps, %d classes, columns %s\n",
		*out, b.Model.Kind(), len(b.PreProc), b.Model.NClasses(),
		b.Columns.Arg())
}

// build decodes and checks the bundle members.
func build(modFile, ppFile string, o *options) (*bundle.Bundle, error) {
	if o.tBin <= 0 {
		return nil, xerrors.New(fmt.Sprintf("bin width %g not positive", o.tBin))
	}
	b := &bundle.Bundle{
		TBin:      unit.Time(o.tBin),
		MPUFilter: bundle.MPUFilter{Detectors: bundle.DefaultDetectors},
	}
	data, err := os.ReadFile(modFile)
	if err != nil {
		return nil, xerrors.New(err)
	}
	if b.Model, err = classify.Decode(data); err != nil {
		return nil, xerrors.New(fmt.Errorf("%s: %w", modFile, err))
	}
	if data, err = os.ReadFile(ppFile); err != nil {
		return nil, xerrors.New(err)
	}
	if b.PreProc, err = preproc.Decode(data); err != nil {
		return nil, xerrors.New(fmt.Errorf("%s: %w", ppFile, err))
	}
	if o.mpuFile != "" {
		if data, err = os.ReadFile(o.mpuFile); err != nil {
			return nil, xerrors.New(err)
		}
		if err = json.Unmarshal(data, &b.MPUFilter); err != nil {
			return nil, xerrors.New(fmt.Errorf("%s: %w", o.mpuFile, err))
		}
	}
	if !o.list {
		b.Columns.Combined = o.cols
		return b, nil
	}
	for _, c := range strings.Split(o.cols, ",") {
		if c = strings.TrimSpace(c); c != "" {
			b.Columns.Names = append(b.Columns.Names, c)
		}
	}
	if len(b.Columns.Names) == 0 {
		return nil, xerrors.New(fmt.Sprintf("no column names in %q", o.cols))
	}
	return b, nil
}
