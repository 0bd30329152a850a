// Public domain.

// Package bgprog is the NICER machine learning background estimator,
// shared by the commands of each model generation.
package bgprog

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/soniakeys/exit"

	"github.com/nicer-bgml/nicerbgml/internal/bundle"
	"github.com/nicer-bgml/nicerbgml/internal/heasoft"
)

// Environment variables giving defaults.  A .env file in the working
// directory is loaded first.
const (
	EnvDataDir   = "NICERBGML_DATADIR"
	EnvModelFile = "NICERBGML_MODELFILE"
	EnvLogLevel  = "NICERBGML_LOGLEVEL"
)

const defaultDataDir = "nicerBgML"

const copyrightString = "Public domain."

// loadEnv loads .env files, which need not exist.  Variables already set
// are kept.
func loadEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Main runs the command for model generation v.
func Main(v *Variant) {
	defer exit.Handler()

	if err := loadEnv(); err != nil {
		exit.Log(err)
	}
	if lv := os.Getenv(EnvLogLevel); lv != "" {
		level, err := log.ParseLevel(lv)
		if err != nil {
			exit.Log(err)
		}
		log.SetLevel(level)
	}

	cl, err := parseCommandLine(v, os.Args[1:], os.Stderr)
	switch {
	case errors.Is(err, flag.ErrHelp):
		printHelp(v, os.Stdout)
		return
	case err != nil:
		os.Exit(1)
	case cl.v:
		fmt.Println(v.Name, "version", v.Version)
		fmt.Println(copyrightString)
		return
	}

	cfg, err := resolve(cl, v, os.Getenv)
	if err != nil {
		exit.Log(err)
	}
	p := &Pipeline{
		Variant: v,
		Runner:  &heasoft.Exec{},
		Out:     os.Stdout,
		Log: log.WithFields(log.Fields{
			"run":   uuid.NewString(),
			"obsID": cfg.ObsID,
		}),
	}
	if _, err = p.Run(cfg); err != nil {
		p.Log.Debugf("%+v", err)
		exit.Log(err)
	}
}

type commandLine struct {
	obsID     string // observation directory
	kpDir     string // geomagnetic data directory
	dataDir   string // model and basis spectra
	modelFile string
	v         bool // -v option
}

func envOr(key, def string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return def
}

// parseCommandLine parses args, which may mix flags and positional
// arguments.  Usage problems are reported on stderr.
func parseCommandLine(v *Variant, args []string, stderr io.Writer) (*commandLine, error) {
	var cl commandLine
	fs := flag.NewFlagSet(v.Name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cl.dataDir, "dataDir", envOr(EnvDataDir, defaultDataDir), "")
	fs.StringVar(&cl.modelFile, "modelFile", envOr(EnvModelFile, bundle.DefaultFile), "")
	fs.BoolVar(&cl.v, "v", false, "")
	fs.BoolVar(&cl.v, "version", false, "")
	fs.Usage = func() { usage(v, fs, stderr) }

	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if args = fs.Args(); len(args) == 0 {
			break
		}
		pos = append(pos, args[0])
		args = args[1:]
	}
	if cl.v {
		return &cl, nil
	}
	if len(pos) != v.nArgs() {
		fs.Usage()
		return nil, errors.New("wrong number of arguments")
	}
	cl.obsID = pos[0]
	if v.Reprocess {
		cl.kpDir = pos[1]
	}
	return &cl, nil
}

func usage(v *Variant, fs *flag.FlagSet, w io.Writer) {
	args := "[options] <obsID>"
	if v.Reprocess {
		args += " <kpDir>"
	}
	fmt.Fprintf(w, `
Usage: %[1]s %[2]s    estimate the background of an observation
       %[1]s %[3]s    display help and quick reference
       %[1]s %[4]s    display version and copyright

Options:
       --dataDir <path>     directory of the model and basis spectra
                            (default %[5]s)
       --modelFile <file>   model bundle, looked up here then in dataDir
                            (default %[6]s)
`, v.Name, args,
		fmt.Sprintf("%-*s", len(args), "-h"),
		fmt.Sprintf("%-*s", len(args), "-v"),
		fs.Lookup("dataDir").DefValue, fs.Lookup("modelFile").DefValue)
}

func printHelp(v *Variant, w io.Writer) {
	fmt.Fprintf(w, `
%s estimates the NICER background spectrum of an observation with a
machine learning model of background states.

Housekeeping (MKF) data of the observation are binned at the model's time
bin size over good time intervals, each bin is classified into one of the
model's background states, and the basis spectra of the states are
summed, weighted by the fraction of bins in each state.

Detector selection is the standard 50 modules, less 14 and 34.
`, v.Name)
	if v.Reprocess {
		fmt.Fprintf(w, `
The observation is first reprocessed with nicerl2, adding geomagnetic
indices from <kpDir> to the MKF file.  HEASoft must be initialized.
`)
	}
	fmt.Fprintf(w, `
Output is <obsID>/spec/spec.b.pha.  The binned MKF data are left in
<obsID>/spec as well.

Environment:
   %s   default for --dataDir
   %s default for --modelFile
   %s  logging level (debug, info, warn, error)
`, EnvDataDir, EnvModelFile, EnvLogLevel)
}
