// Package main provides the CLI entry point for relprefix.
package main

import (
	"os"
)

func main() {
	os.Exit(execute(newRootCmd()))
}
