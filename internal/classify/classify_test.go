// Public domain.

package classify_test

import (
	"reflect"
	"testing"

	"github.com/nicer-bgml/nicerbgml/internal/classify"
	"gonum.org/v1/gonum/mat"
)

var points = mat.NewDense(4, 2, []float64{
	0.1, 0.2,
	9.8, 10.1,
	5.2, -4.9,
	0, 0,
})

func predict(t *testing.T, src string) []int {
	t.Helper()
	c, err := classify.Decode([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	labels, err := c.Predict(points)
	if err != nil {
		t.Fatal(err)
	}
	return labels
}

func TestKMeans(t *testing.T) {
	got := predict(t, `{"kind": "kmeans", "centers": [[10, 10], [0, 0], [5, -5]]}`)
	if want := []int{1, 0, 2, 1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLinear(t *testing.T) {
	got := predict(t, `{"kind": "linear",
		"coef": [[1, 0], [0, 1], [-1, -1]],
		"intercept": [0, 0, 0.5]}`)
	// last row scores 0, 0, .5
	if want := []int{1, 1, 0, 2}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLinearBinary(t *testing.T) {
	got := predict(t, `{"kind": "linear", "coef": [[1, 1]], "intercept": [-1]}`)
	if want := []int{0, 1, 0, 0}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestGMMDiag(t *testing.T) {
	got := predict(t, `{"kind": "gmm", "covarianceType": "diag",
		"weights": [0.5, 0.25, 0.25],
		"means": [[0, 0], [10, 10], [5, -5]],
		"covariances": [[1, 1], [1, 1], [1, 1]]}`)
	if want := []int{0, 1, 2, 0}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestGMMFull(t *testing.T) {
	got := predict(t, `{"kind": "gmm", "covarianceType": "full",
		"weights": [0.5, 0.5],
		"means": [[0, 0], [10, 10]],
		"covariances": [[[1, 0], [0, 1]], [[4, 1], [1, 4]]]}`)
	if want := []int{0, 1, 0, 0}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestGMMDefaultFull(t *testing.T) {
	got := predict(t, `{"kind": "gmm",
		"weights": [0.5, 0.5],
		"means": [[0, 0], [10, 10]],
		"covariances": [[[1, 0], [0, 1]], [[4, 1], [1, 4]]]}`)
	if want := []int{0, 1, 0, 0}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestGMMDefaultRejectsDiag(t *testing.T) {
	c, err := classify.Decode([]byte(`{"kind": "gmm",
		"weights": [0.5, 0.5], "means": [[0, 0], [10, 10]],
		"covariances": [[1, 1], [4, 4]]}`))
	if err == nil {
		_, err = c.Predict(points)
	}
	if err == nil {
		t.Fatal("diagonal covariances accepted without covarianceType")
	}
}

func TestGMMNotPositiveDefinite(t *testing.T) {
	_, err := classify.Decode([]byte(`{"kind": "gmm", "covarianceType": "full",
		"weights": [1], "means": [[0, 0]],
		"covariances": [[[1, 2], [2, 1]]]}`))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestFeatureMismatch(t *testing.T) {
	c, err := classify.Decode([]byte(`{"kind": "kmeans", "centers": [[1, 2, 3]]}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err = c.Predict(points); err == nil {
		t.Fatal("expected error")
	}
}

func TestEncodeDecode(t *testing.T) {
	c := &classify.KMeans{Centers: [][]float64{{10, 10}, {0, 0}}}
	b, err := classify.Encode(c)
	if err != nil {
		t.Fatal(err)
	}
	d, err := classify.Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	if d.Kind() != classify.KindKMeans || d.NClasses() != 2 {
		t.Fatalf("decoded %s with %d classes", d.Kind(), d.NClasses())
	}
}

func TestUnknownKind(t *testing.T) {
	if _, err := classify.Decode([]byte(`{"kind": "forest"}`)); err == nil {
		t.Fatal("expected error")
	}
}
