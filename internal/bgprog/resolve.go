// Public domain.

package bgprog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mdobak/go-xerrors"

	"github.com/nicer-bgml/nicerbgml/internal/heasoft"
)

// ConfigError reports a missing input or environment detected before any
// external tool is run.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

func configErrorf(format string, a ...interface{}) error {
	return xerrors.New(&ConfigError{Msg: fmt.Sprintf(format, a...)})
}

// Config holds the resolved inputs of a run.  Paths are absolute.
type Config struct {
	ObsArg    string // observation directory as given on the command line
	ObsDir    string
	ObsID     string
	DataDir   string
	ModelFile string
	KpDir     string // geomagnetic data, Reprocess variants only
}

// SpecDir is where binned housekeeping and the background spectrum go.
func (c *Config) SpecDir() string {
	return filepath.Join(c.ObsDir, "spec")
}

func exists(fn string) bool {
	_, err := os.Stat(fn)
	return err == nil
}

// resolve checks the command line inputs and environment.  getenv is
// os.Getenv outside of tests.
func resolve(cl *commandLine, v *Variant, getenv func(string) string) (*Config, error) {
	if !exists(cl.obsID) {
		return nil, configErrorf("There is no obsID folder named %s", cl.obsID)
	}
	if !exists(cl.dataDir) {
		return nil, configErrorf("Cannot find data directory %s", cl.dataDir)
	}
	modelFile := cl.modelFile
	if !exists(modelFile) {
		modelFile = filepath.Join(cl.dataDir, cl.modelFile)
		if !exists(modelFile) {
			return nil, configErrorf("Cannot find model file %s", cl.modelFile)
		}
	}
	c := &Config{
		ObsArg: cl.obsID,
		ObsID:  filepath.Base(filepath.Clean(cl.obsID)),
	}
	if v.Reprocess {
		if !exists(cl.kpDir) {
			return nil, configErrorf("Cannot find geomagnetic data directory %s", cl.kpDir)
		}
		if getenv(heasoft.EnvMarker) == "" {
			return nil, configErrorf("%s is not set. Initialize HEASoft first", heasoft.EnvMarker)
		}
	}
	for _, p := range []struct {
		dst *string
		src string
	}{
		{&c.ObsDir, cl.obsID},
		{&c.DataDir, cl.dataDir},
		{&c.ModelFile, modelFile},
		{&c.KpDir, cl.kpDir},
	} {
		if p.src == "" {
			continue
		}
		abs, err := filepath.Abs(p.src)
		if err != nil {
			return nil, xerrors.New(err)
		}
		*p.dst = abs
	}
	return c, nil
}
