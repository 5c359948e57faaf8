// The main package for the aigate executable.
package main

import (
	"github.com/JakeFAU/aigate/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
