// Command sdfdump inspects and extracts scene description layers and
// zip packages.
package main

import (
	"os"

	"scenedesc.dev/sdf/cmd/sdfdump/cmd"
)

func main() {
	os.Exit(cmd.Main())
}
