package main

import (
	"os"

	"github.com/seung-gu/factset-data-collector/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
