// Public domain.

// Package classify holds the pre-trained background-state classifiers.
//
// A classifier maps each row of a preprocessed feature matrix to a 0-based
// class label.  No training is done here; parameters come from a model
// bundle where they are stored as a JSON object tagged with a "kind".
package classify

import (
	"encoding/json"
	"fmt"

	"github.com/mdobak/go-xerrors"
	"gonum.org/v1/gonum/mat"
)

// Classifier kinds, as tagged in the serialized model.
const (
	KindKMeans = "kmeans"
	KindGMM    = "gmm"
	KindLinear = "linear"
)

// Classifier predicts one label per row of x.
type Classifier interface {
	Kind() string
	NClasses() int
	Predict(x mat.Matrix) ([]int, error)
}

// Decode parses a serialized classifier.
func Decode(data []byte) (Classifier, error) {
	var tag struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, xerrors.New(err)
	}
	var c Classifier
	switch tag.Kind {
	case KindKMeans:
		c = new(KMeans)
	case KindGMM:
		c = new(GMM)
	case KindLinear:
		c = new(Linear)
	default:
		return nil, xerrors.New(fmt.Sprintf("classifier: unknown kind %q", tag.Kind))
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, xerrors.New(fmt.Errorf("%s: %w", tag.Kind, err))
	}
	if v, ok := c.(interface{ init() error }); ok {
		if err := v.init(); err != nil {
			return nil, xerrors.New(fmt.Errorf("%s: %w", tag.Kind, err))
		}
	}
	return c, nil
}

// Encode serializes c in the form read by Decode.
func Encode(c Classifier) ([]byte, error) {
	return json.Marshal(c)
}

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

// argmax returns the index of the largest value, lowest index on ties.
func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
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

func checkFeatures(kind string, have, want int) error {
	if have != want {
		return xerrors.New(fmt.Sprintf("%s: model has %d features, input has %d", kind, want, have))
	}
	return nil
}
