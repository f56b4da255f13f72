// The main package for the bookscrape executable.
package main

import (
	"bookscrape/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
