// Command ploxcli is PLOX's command-line interface: sort, list, and
// verify a game's installed plugins against a community rule set.
package main

import (
	"log"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		log.Println(err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a run failure to PLOX's fixed exit codes: 1 for a
// cycle or invariant violation, 2 for an IO/parse fatal.
func exitCodeFor(err error) int {
	if ce, ok := err.(*cliError); ok {
		return ce.code
	}
	return 2
}

// cliError carries the exit code a subcommand wants main to return,
// since cobra's RunE only propagates an error, not a status code.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func exitError(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}
