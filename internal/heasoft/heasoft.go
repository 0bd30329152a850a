// Public domain.

// Package heasoft builds and runs the HEASoft command lines the background
// pipeline depends on: nicerl2, fcurve, fselect, and mathpha.
//
// Commands are built as strings and run through bash with HEASoft's
// interactive prompting disabled.  Argument names and order are what the
// tools expect; they are not to be rearranged.
package heasoft

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/mdobak/go-xerrors"
	log "github.com/sirupsen/logrus"
	"github.com/soniakeys/unit"
)

// Prefix is prepended to every command to keep HEASoft tools from
// prompting for parameters.
const Prefix = "export HEADASNOQUERY=; export HEADASPROMPT=/dev/null;"

// EnvMarker is set by the HEASoft initialization script.
const EnvMarker = "HEADAS"

// Shell is the interpreter commands are run with.
var Shell = "/bin/bash"

// GeomagColumns lists the geomagnetic quantities nicerl2 adds to the MKF
// file when given a geomagnetic data directory.
const GeomagColumns = "kp_noaa.fits(KP),solarphi_oulu.fits(SOLAR_PHI)"

// Runner runs a command line in a directory.
type Runner interface {
	Run(dir, cmd string) error
}

// ToolError reports a command that ran and failed, or could not be started.
type ToolError struct {
	Cmd  string
	Code int // exit status, -1 if the command did not run to completion
	Err  error
}

func (e *ToolError) Error() string {
	if e.Code >= 0 {
		return fmt.Sprintf("%s: exit status %d", e.Cmd, e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Cmd, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Exec runs commands as subprocesses.  Output of the tools goes to Stdout
// and Stderr, os.Stdout and os.Stderr if nil.
type Exec struct {
	Stdout, Stderr io.Writer
}

// Run runs Prefix+cmd with Shell in dir and waits for it.  A non-zero exit
// status is returned as a *ToolError.
func (x *Exec) Run(dir, cmd string) error {
	c := exec.Command(Shell, "-c", Prefix+cmd)
	c.Dir = dir
	c.Stdout, c.Stderr = x.Stdout, x.Stderr
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
	log.WithFields(log.Fields{"dir": dir, "cmd": cmd}).Debug("running")
	err := c.Run()
	if err == nil {
		return nil
	}
	te := &ToolError{Cmd: cmd, Code: -1, Err: err}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		te.Code = ee.ExitCode()
	}
	return xerrors.New(te)
}

// DecimalFloat formats x in shortest decimal form for ordinary
// magnitudes, always with a decimal point: 4 gives "4.0".
func DecimalFloat(x float64) string {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if !strings.ContainsAny(s, ".nN") {
		s += ".0"
	}
	return s
}

// BinSuffix is the file name tag for a bin width, "t4" for 4 seconds.
func BinSuffix(tBin unit.Time) string {
	return "t" + strconv.FormatFloat(tBin.Sec(), 'f', -1, 64)
}

// MKFFile is the binned, filtered MKF file name for a bin width.
func MKFFile(tBin unit.Time) string {
	return "ni." + BinSuffix(tBin) + ".mkf"
}

// UnfilteredMKFFile is the intermediate binned MKF file before filtering.
func UnfilteredMKFFile(tBin unit.Time) string {
	return MKFFile(tBin) + ".tmp"
}

// Fcurve bins the observation's MKF file at tBin over the good time
// intervals of the cleaned event file.  It is run from <obsIDDir>/spec.
func Fcurve(obsID string, tBin unit.Time, columns string) string {
	return "fcurve infile=../auxil/ni" + obsID + ".mkf" +
		" gtifile=../xti/event_cl/ni" + obsID + "_0mpu7_cl.evt[GTI]" +
		" outfile=" + UnfilteredMKFFile(tBin) +
		" timecol=TIME columns=\"" + columns + "\"" +
		" binsz=" + DecimalFloat(tBin.Sec()) +
		" lowval=INDEF highval=INDEF binmode=Mean" +
		" outerr=NONE outlive=FRACEXP clobber=yes"
}

// Fselect keeps the bins of the fcurve output with positive exposure.
func Fselect(tBin unit.Time) string {
	return "fselect " + UnfilteredMKFFile(tBin) + " " + MKFFile(tBin) +
		" \"FRACEXP>0\" clobber=yes"
}

// Detectors selects NICER detector modules for reprocessing.
type Detectors struct {
	Exclude   []int `json:"exclude"`
	MinActive int   `json:"minActive"`
}

// DetList is the nicerl2 detlist value, launch detectors less Exclude.
func (d Detectors) DetList() string {
	s := "launch"
	for _, m := range d.Exclude {
		s += ",-" + strconv.Itoa(m)
	}
	return s
}

// Nicerl2 reprocesses an observation, regenerating its MKF file.  It is
// run from the parent directory of the observation directory.  Geomagnetic
// columns are added when geomagDir is not empty.
func Nicerl2(obsID string, d Detectors, geomagDir string) string {
	cmd := "nicerl2 indir=" + obsID + " clobber=yes" +
		" detlist=" + d.DetList() +
		" min_fpm=" + strconv.Itoa(d.MinActive)
	if geomagDir != "" {
		cmd += " geomag_path=" + geomagDir +
			" geomag_columns=\"" + GeomagColumns + "\""
	}
	return cmd + " filtcolumns=NICERV4"
}

// Mathpha sums spectra per expr into spec.b.pha, combining errors with
// the "R" convention.  It is run in the directory holding the spectra.
func Mathpha(expr string) string {
	return "mathpha \"" + expr + "\" R " + BackgroundFile +
		" CALC NULL 0 clobber=yes"
}

// BackgroundFile is the name of the combined background spectrum.
const BackgroundFile = "spec.b.pha"
