// Public domain.

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mdobak/go-xerrors"
	"github.com/soniakeys/exit"

	"github.com/nicer-bgml/nicerbgml/internal/weights"
)

const versionString = "bgweights version 0.2"
const copyrightString = "Public domain."

func main() {
	defer exit.Handler()

	flag.Usage = func() {
		os.Stderr.WriteString("Usage: bgweights [options] <labels>\n")
		flag.PrintDefaults()
		os.Stderr.WriteString(`
For full documentation:
   go doc github.com/nicer-bgml/nicerbgml/bgweights
`)
	}
	col := flag.Int("c", 0, "column containing the label")
	digits := flag.Int("digits", 4, "significant digits of weights in the expression")
	vers := flag.Bool("v", false, "display version and copyright")
	flag.Parse()
	if *vers {
		fmt.Println(versionString)
		fmt.Println(copyrightString)
		return
	}
	if flag.NArg() != 1 || *col < 0 || *digits < 1 {
		flag.Usage()
		os.Exit(1)
	}
	f, err := os.Open(flag.Arg(0))
	if err != nil {
		exit.Log(err)
	}
	defer f.Close()
	if err = report(f, *col, *digits, os.Stdout); err != nil {
		exit.Log(err)
	}
}

// report reads labels from r and writes weights and the expression to w.
func report(r io.Reader, col, digits int, w io.Writer) error {
	labels, ignored, err := readLabels(r, col)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Labels read:       ", len(labels))
	if ignored != 0 {
		fmt.Fprintln(w, "Lines ignored:     ", ignored)
	}
	if len(labels) == 0 {
		return xerrors.New("no labels")
	}
	fmt.Fprintln(w)
	ws := weights.FromLabels(labels)
	if err = ws.WriteTable(w); err != nil {
		return err
	}
	fmt.Fprintln(w)
	_, err = fmt.Fprintln(w, ws.Expression(digits))
	return err
}

func readLabels(r io.Reader, col int) (labels []int, ignored int, err error) {
	s := bufio.NewScanner(r)
	for s.Scan() {
		f := strings.Fields(s.Text())
		if len(f) <= col {
			ignored++
			continue
		}
		l, err := strconv.Atoi(f[col])
		if err != nil || l < 0 {
			ignored++
			continue
		}
		labels = append(labels, l)
	}
	if err = s.Err(); err != nil {
		err = xerrors.New(err)
	}
	return
}
