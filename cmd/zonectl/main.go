// Command zonectl evaluates zone scripts, exports zone solids and manages the
// zone store from the command line.
package main

import (
	"context"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
