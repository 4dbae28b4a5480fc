package main

import (
	"fmt"
	"os"

	"github.com/ribeiromendes5014-design/netfliz/apps/cli/root"
)

func main() {
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
