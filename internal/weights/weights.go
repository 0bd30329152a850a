// Public domain.

// Package weights turns per-bin class labels into normalized class weights
// and the linear combination of basis spectra they imply.
package weights

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Weight is the normalized frequency of one background-state class.
// Class ids are 1-based.
type Weight struct {
	Class int
	Value float64
}

// Weights is a class weight map in grouping order, ascending class id.
type Weights []Weight

// FromLabels tallies 0-based labels into 1-based class weights.
//
// Each class weight is its label count divided by len(labels).  Classes
// with no positive weight are not present in the result.  An empty
// label slice gives an empty result.
func FromLabels(labels []int) Weights {
	if len(labels) == 0 {
		return nil
	}
	counts := map[int]int{}
	for _, l := range labels {
		counts[l+1]++
	}
	n := float64(len(labels))
	w := make(Weights, 0, len(counts))
	for c, k := range counts {
		if v := float64(k) / n; v > 0 {
			w = append(w, Weight{c, v})
		}
	}
	sort.Slice(w, func(i, j int) bool { return w[i].Class < w[j].Class })
	return w
}

// Sum returns the total weight.
func (w Weights) Sum() (s float64) {
	for _, x := range w {
		s += x.Value
	}
	return
}

// Classes returns the class ids in weight-map order.
func (w Weights) Classes() []int {
	c := make([]int, len(w))
	for i, x := range w {
		c[i] = x.Class
	}
	return c
}

// SpecFile is the file name convention for the reference spectrum of a class.
func SpecFile(class int) string {
	return "spec." + strconv.Itoa(class) + ".pha"
}

// Expression builds the mathpha expression summing reference spectra
// scaled by their weights, for example "0.3333*spec.1.pha+ 0.5*spec.2.pha".
//
// Terms follow the order of w.  Each weight is formatted with Format
// using digits for both the field width and the significant digits.
func (w Weights) Expression(digits int) string {
	terms := make([]string, len(w))
	for i, x := range w {
		terms[i] = Format(x.Value, digits, digits) + "*" + SpecFile(x.Class)
	}
	return strings.Join(terms, "+")
}

// Format renders x with prec significant digits right aligned in a field
// of width runes.
//
// The rendering is %g style, except that a value printed in fixed
// notation always shows a decimal point, so 1 renders as "1.0".  This is
// the formatting mathpha expressions have always been built with, and
// the basis spectra are scaled by these exact strings.
func Format(x float64, width, prec int) string {
	s := strconv.FormatFloat(x, 'g', prec, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	if pad := width - len(s); pad > 0 {
		s = strings.Repeat(" ", pad) + s
	}
	return s
}

// WriteTable writes the weight map as a two column table.
func (w Weights) WriteTable(out io.Writer) error {
	if _, err := fmt.Fprintln(out, "class    weight"); err != nil {
		return err
	}
	for _, x := range w {
		if _, err := fmt.Fprintf(out, "%5d  %8.6f\n", x.Class, x.Value); err != nil {
			return err
		}
	}
	return nil
}
