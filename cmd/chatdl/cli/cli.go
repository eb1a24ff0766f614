package cli

import (
	"log"
	"os"
)

var Stderr = log.New(os.Stderr, "", 0)
var Stdout = log.New(os.Stdout, "", 0)

// Exit terminates the process, printing err to stderr and exiting 1 if err is not nil.
func Exit(err error) {
	if err != nil {
		Stderr.Printf("Error: %s", err)
		os.Exit(1)
	}
	os.Exit(0)
}
