// Public domain.

package classify

import (
	"fmt"

	"github.com/mdobak/go-xerrors"
	"gonum.org/v1/gonum/mat"
)

// Linear is a linear decision function, argmax(Coef·x + Intercept).
//
// With a single row of coefficients it is a binary classifier predicting
// 1 where the decision value is positive.
type Linear struct {
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`

	w *mat.Dense
}

func (l *Linear) Kind() string { return KindLinear }

func (l *Linear) NClasses() int {
	if len(l.Coef) == 1 {
		return 2
	}
	return len(l.Coef)
}

func (l *Linear) MarshalJSON() ([]byte, error) {
	type plain Linear
	return tagged(KindLinear, (*plain)(l))
}

func (l *Linear) init() (err error) {
	if l.w, err = denseFromRows(l.Coef); err != nil {
		return
	}
	if len(l.Intercept) != len(l.Coef) {
		return xerrors.New(fmt.Sprintf("%d intercepts for %d coefficient rows",
			len(l.Intercept), len(l.Coef)))
	}
	return nil
}

func (l *Linear) Predict(x mat.Matrix) ([]int, error) {
	if l.w == nil {
		if err := l.init(); err != nil {
			return nil, err
		}
	}
	r, c := x.Dims()
	k, f := l.w.Dims()
	if err := checkFeatures(KindLinear, c, f); err != nil {
		return nil, err
	}
	var scores mat.Dense
	scores.Mul(x, l.w.T())
	labels := make([]int, r)
	row := make([]float64, k)
	for i := range labels {
		for j := range row {
			row[j] = scores.At(i, j) + l.Intercept[j]
		}
		if k == 1 {
			if row[0] > 0 {
				labels[i] = 1
			}
			continue
		}
		labels[i] = argmax(row)
	}
	return labels, nil
}
