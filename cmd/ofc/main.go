package main

import (
	"os"

	"github.com/ofckit/ofc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
