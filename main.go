// The main package for the facultyscraper executable.
package main

import (
	"github.com/rpineda26/facultyscraper/cmd"
)

func main() {
	cmd.Execute()
}
