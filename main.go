package main

import (
	"os"

	"github.com/ilblu/belaf/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
