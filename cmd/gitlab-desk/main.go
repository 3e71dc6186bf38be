// Package main is the entry point for the gitlab-desk command line tool.
package main

import (
	"fmt"
	"os"

	"github.com/vilaca/gitlab-desk/cmd/gitlab-desk/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
