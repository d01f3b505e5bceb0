// Command cachepolicy exercises a cache policy against a configured backend.
//
//	cachepolicy rule                      # compile CACHEPOLICY_RULE_* and preview TTLs
//	cachepolicy get user-42 --delay 300ms # one get-or-generate
//	cachepolicy bench -n 10000 -c 32      # concurrent load over a key set
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
