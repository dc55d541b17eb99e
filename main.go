// Carhues as a command line tool (CLI) is documented in the project's README:
// https://github.com/BitPonyLLC/carhues#readme
package main

import (
	"os"

	"github.com/BitPonyLLC/carhues/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
