package main

import (
	"os"

	"github.com/coreybb/lectio/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
