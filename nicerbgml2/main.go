// Public domain.

package main

import "github.com/nicer-bgml/nicerbgml/internal/bgprog"

func main() {
	bgprog.Main(bgprog.V2)
}
