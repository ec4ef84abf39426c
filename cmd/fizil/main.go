package main

import (
	"fmt"
	"os"

	"github.com/fizil/fizil/cmd/fizil/app"
)

func main() {
	if err := app.NewFizilCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
