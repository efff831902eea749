/*
Copyright © 2025 Oleg Shokin

This file is the entry point for the melodysync application.
It initializes and executes the root command defined in the cmd package.
*/
package main

import (
	"os"

	"github.com/nmartins/melodysync/cmd"
)

// main is the entry point of the application.
// It calls the Execute function from the cmd package, which starts the CLI.
func main() {
	os.Exit(cmd.Execute())
}
