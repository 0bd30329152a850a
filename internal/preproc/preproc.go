// Public domain.

// Package preproc implements the feature preprocessing applied to
// housekeeping bins before classification.
//
// A Pipeline is an ordered list of Steps.  Steps are stored in a model
// bundle as a JSON array of objects, each tagged with a "kind".
package preproc

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mdobak/go-xerrors"
	"gonum.org/v1/gonum/mat"
)

// Step kinds, as tagged in the serialized pipeline.
const (
	KindStandard = "standard"
	KindMinMax   = "minmax"
	KindPCA      = "pca"
	KindLog10    = "log10"
)

// Step is a single feature transform.  Rows of x are bins, columns are
// features.  Transform does not modify x.
type Step interface {
	Kind() string
	Transform(x mat.Matrix) (*mat.Dense, error)
}

// Pipeline applies its steps in order.
type Pipeline []Step

// Transform runs x through every step of the pipeline.  An empty pipeline
// returns a copy of x.
func (p Pipeline) Transform(x mat.Matrix) (*mat.Dense, error) {
	out := mat.DenseCopyOf(x)
	for i, s := range p {
		var err error
		if out, err = s.Transform(out); err != nil {
			return nil, xerrors.New(fmt.Errorf("step-%d: %w", i, err))
		}
	}
	return out, nil
}

// Decode parses a serialized pipeline.
func Decode(data []byte) (Pipeline, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, xerrors.New(err)
	}
	p := make(Pipeline, len(raw))
	for i, r := range raw {
		var tag struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(r, &tag); err != nil {
			return nil, xerrors.New(fmt.Errorf("step-%d: %w", i, err))
		}
		var s Step
		switch tag.Kind {
		case KindStandard:
			s = new(Standard)
		case KindMinMax:
			s = new(MinMax)
		case KindPCA:
			s = new(PCA)
		case KindLog10:
			s = new(Log10)
		default:
			return nil, xerrors.New(fmt.Sprintf("step-%d: unknown kind %q", i, tag.Kind))
		}
		if err := json.Unmarshal(r, s); err != nil {
			return nil, xerrors.New(fmt.Errorf("step-%d: %w", i, err))
		}
		p[i] = s
	}
	return p, nil
}

// Encode serializes the pipeline in the form read by Decode.
func (p Pipeline) Encode() ([]byte, error) {
	if p == nil {
		p = Pipeline{}
	}
	return json.Marshal([]Step(p))
}

// tagged marshals v with an added "kind" member.
func tagged(kind string, v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err = json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	m["kind"], _ = json.Marshal(kind)
	return json.Marshal(m)
}

func checkWidth(kind, field string, n, want int) error {
	if n != 0 && n != want {
		return xerrors.New(fmt.Sprintf("%s: %s has %d values for %d features", kind, field, n, want))
	}
	return nil
}

// Standard centers and scales each feature, (x - Mean) / Scale.
// A nil Mean or Scale skips that part.  Zero scales are treated as 1.
type Standard struct {
	Mean  []float64 `json:"mean,omitempty"`
	Scale []float64 `json:"scale,omitempty"`
}

func (s *Standard) Kind() string { return KindStandard }

func (s *Standard) MarshalJSON() ([]byte, error) {
	type plain Standard
	return tagged(KindStandard, (*plain)(s))
}

func (s *Standard) Transform(x mat.Matrix) (*mat.Dense, error) {
	_, c := x.Dims()
	if err := checkWidth(KindStandard, "mean", len(s.Mean), c); err != nil {
		return nil, err
	}
	if err := checkWidth(KindStandard, "scale", len(s.Scale), c); err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Apply(func(i, j int, v float64) float64 {
		if s.Mean != nil {
			v -= s.Mean[j]
		}
		if s.Scale != nil && s.Scale[j] != 0 {
			v /= s.Scale[j]
		}
		return v
	}, x)
	return &out, nil
}

// MinMax maps features linearly, x*Scale + Min, where Scale and Min were
// fit to send the training range to a target range.
type MinMax struct {
	Min   []float64 `json:"min"`
	Scale []float64 `json:"scale"`
}

func (s *MinMax) Kind() string { return KindMinMax }

func (s *MinMax) MarshalJSON() ([]byte, error) {
	type plain MinMax
	return tagged(KindMinMax, (*plain)(s))
}

func (s *MinMax) Transform(x mat.Matrix) (*mat.Dense, error) {
	_, c := x.Dims()
	if len(s.Min) != c || len(s.Scale) != c {
		return nil, xerrors.New(fmt.Sprintf("minmax: parameters for %d/%d features, input has %d",
			len(s.Min), len(s.Scale), c))
	}
	var out mat.Dense
	out.Apply(func(i, j int, v float64) float64 {
		return v*s.Scale[j] + s.Min[j]
	}, x)
	return &out, nil
}

// PCA projects centered features onto principal components.
//
// Components is k×n, one component per row.  With Whiten set, each
// projected feature is divided by the square root of its explained
// variance.
type PCA struct {
	Mean              []float64   `json:"mean,omitempty"`
	Components        [][]float64 `json:"components"`
	ExplainedVariance []float64   `json:"explainedVariance,omitempty"`
	Whiten            bool        `json:"whiten,omitempty"`
}

func (p *PCA) Kind() string { return KindPCA }

func (p *PCA) MarshalJSON() ([]byte, error) {
	type plain PCA
	return tagged(KindPCA, (*plain)(p))
}

func (p *PCA) Transform(x mat.Matrix) (*mat.Dense, error) {
	_, c := x.Dims()
	comp, err := denseFromRows(p.Components)
	if err != nil {
		return nil, xerrors.New(fmt.Errorf("pca: %w", err))
	}
	k, n := comp.Dims()
	if n != c {
		return nil, xerrors.New(fmt.Sprintf("pca: components have %d features, input has %d", n, c))
	}
	if err = checkWidth(KindPCA, "mean", len(p.Mean), c); err != nil {
		return nil, err
	}
	if p.Whiten && len(p.ExplainedVariance) != k {
		return nil, xerrors.New(fmt.Sprintf("pca: whiten needs %d explained variances, have %d",
			k, len(p.ExplainedVariance)))
	}
	var centered mat.Dense
	centered.Apply(func(i, j int, v float64) float64 {
		if p.Mean != nil {
			v -= p.Mean[j]
		}
		return v
	}, x)
	var out mat.Dense
	out.Mul(&centered, comp.T())
	if p.Whiten {
		out.Apply(func(i, j int, v float64) float64 {
			if ev := p.ExplainedVariance[j]; ev > 0 {
				return v / math.Sqrt(ev)
			}
			return v
		}, &out)
	}
	return &out, nil
}

// Log10 takes log10(x + Offset) of every feature.
type Log10 struct {
	Offset float64 `json:"offset"`
}

func (l *Log10) Kind() string { return KindLog10 }

func (l *Log10) MarshalJSON() ([]byte, error) {
	type plain Log10
	return tagged(KindLog10, (*plain)(l))
}

func (l *Log10) Transform(x mat.Matrix) (*mat.Dense, error) {
	var out mat.Dense
	out.Apply(func(i, j int, v float64) float64 {
		return math.Log10(v + l.Offset)
	}, x)
	return &out, nil
}

func denseFromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, xerrors.New("empty matrix")
	}
	n := len(rows[0])
	d := make([]float64, 0, len(rows)*n)
	for i, r := range rows {
		if len(r) != n {
			return nil, xerrors.New(fmt.Sprintf("row %d has %d values, want %d", i, len(r), n))
		}
		d = append(d, r...)
	}
	return mat.NewDense(len(rows), n, d), nil
}
