// Public domain.

package classify

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mdobak/go-xerrors"
	"gonum.org/v1/gonum/mat"
)

// Covariance types of a GMM.
const (
	CovDiag = "diag"
	CovFull = "full"
)

// GMM is a Gaussian mixture.  Each row is labeled with the component of
// highest posterior probability.
//
// Covariances is k×n for CovDiag and k×n×n for CovFull.  An empty
// CovarianceType means CovFull.
type GMM struct {
	Weights        []float64       `json:"weights"`
	Means          [][]float64     `json:"means"`
	CovarianceType string          `json:"covarianceType"`
	Covariances    json.RawMessage `json:"covariances"`

	mu    *mat.Dense
	diag  [][]float64
	chol  []*mat.Cholesky
	lnorm []float64 // log weight - log|cov|/2
}

func (g *GMM) Kind() string  { return KindGMM }
func (g *GMM) NClasses() int { return len(g.Weights) }

func (g *GMM) MarshalJSON() ([]byte, error) {
	type plain GMM
	return tagged(KindGMM, (*plain)(g))
}

func (g *GMM) init() (err error) {
	if g.mu, err = denseFromRows(g.Means); err != nil {
		return err
	}
	k, n := g.mu.Dims()
	if len(g.Weights) != k {
		return xerrors.New(fmt.Sprintf("%d weights for %d components", len(g.Weights), k))
	}
	g.lnorm = make([]float64, k)
	switch g.CovarianceType {
	case CovDiag:
		if err = json.Unmarshal(g.Covariances, &g.diag); err != nil {
			return xerrors.New(err)
		}
		if len(g.diag) != k {
			return xerrors.New(fmt.Sprintf("%d covariances for %d components", len(g.diag), k))
		}
		for j, v := range g.diag {
			if len(v) != n {
				return xerrors.New(fmt.Sprintf("component %d: %d variances, want %d", j, len(v), n))
			}
			var ld float64
			for _, s := range v {
				if s <= 0 {
					return xerrors.New(fmt.Sprintf("component %d: non-positive variance", j))
				}
				ld += math.Log(s)
			}
			g.lnorm[j] = math.Log(g.Weights[j]) - ld/2
		}
	case CovFull, "":
		var full [][][]float64
		if err = json.Unmarshal(g.Covariances, &full); err != nil {
			return xerrors.New(err)
		}
		if len(full) != k {
			return xerrors.New(fmt.Sprintf("%d covariances for %d components", len(full), k))
		}
		g.chol = make([]*mat.Cholesky, k)
		for j, c := range full {
			m, err := denseFromRows(c)
			if err != nil {
				return xerrors.New(fmt.Errorf("component %d: %w", j, err))
			}
			if r, cc := m.Dims(); r != n || cc != n {
				return xerrors.New(fmt.Sprintf("component %d: covariance is %dx%d, want %dx%d", j, r, cc, n, n))
			}
			var ch mat.Cholesky
			if !ch.Factorize(mat.NewSymDense(n, m.RawMatrix().Data)) {
				return xerrors.New(fmt.Sprintf("component %d: covariance not positive definite", j))
			}
			g.chol[j] = &ch
			g.lnorm[j] = math.Log(g.Weights[j]) - ch.LogDet()/2
		}
	default:
		return xerrors.New(fmt.Sprintf("unsupported covariance type %q", g.CovarianceType))
	}
	return nil
}

func (g *GMM) Predict(x mat.Matrix) ([]int, error) {
	if g.mu == nil {
		if err := g.init(); err != nil {
			return nil, err
		}
	}
	r, c := x.Dims()
	k, n := g.mu.Dims()
	if err := checkFeatures(KindGMM, c, n); err != nil {
		return nil, err
	}
	labels := make([]int, r)
	lp := make([]float64, k)
	d := mat.NewVecDense(n, nil)
	var y mat.VecDense
	for i := range labels {
		for j := 0; j < k; j++ {
			for m := 0; m < n; m++ {
				d.SetVec(m, x.At(i, m)-g.mu.At(j, m))
			}
			var maha float64
			if g.chol != nil {
				if err := g.chol[j].SolveVecTo(&y, d); err != nil {
					return nil, xerrors.New(fmt.Errorf("component %d: %w", j, err))
				}
				maha = mat.Dot(d, &y)
			} else {
				for m, s := range g.diag[j] {
					maha += d.AtVec(m) * d.AtVec(m) / s
				}
			}
			lp[j] = g.lnorm[j] - maha/2
		}
		labels[i] = argmax(lp)
	}
	return labels, nil
}
