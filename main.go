// The main package for the crawler executable.
package main

import (
	"github.com/evepupil/onaho-crawler/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
