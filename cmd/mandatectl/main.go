// Command mandatectl runs operator tasks against a mandate deployment:
// schema migrations, the first super admin account and document links.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
