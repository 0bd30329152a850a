// Public domain.

package classify

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// KMeans labels each row with its nearest cluster center.
type KMeans struct {
	Centers [][]float64 `json:"centers"`

	c *mat.Dense
}

func (k *KMeans) Kind() string  { return KindKMeans }
func (k *KMeans) NClasses() int { return len(k.Centers) }

func (k *KMeans) MarshalJSON() ([]byte, error) {
	type plain KMeans
	return tagged(KindKMeans, (*plain)(k))
}

func (k *KMeans) init() (err error) {
	k.c, err = denseFromRows(k.Centers)
	return
}

func (k *KMeans) Predict(x mat.Matrix) ([]int, error) {
	if k.c == nil {
		if err := k.init(); err != nil {
			return nil, err
		}
	}
	r, c := x.Dims()
	nc, f := k.c.Dims()
	if err := checkFeatures(KindKMeans, c, f); err != nil {
		return nil, err
	}
	labels := make([]int, r)
	for i := 0; i < r; i++ {
		best, bestD := 0, math.Inf(1)
		for j := 0; j < nc; j++ {
			var d float64
			for m := 0; m < c; m++ {
				dx := x.At(i, m) - k.c.At(j, m)
				d += dx * dx
			}
			if d < bestD {
				best, bestD = j, d
			}
		}
		labels[i] = best
	}
	return labels, nil
}
