package main

import (
	"fmt"
	"os"

	"github.com/ChaseRain/lessonslides/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.StyleError.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
