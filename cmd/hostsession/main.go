// Command hostsession runs commands, scripts and file copies against a remote
// host over SSH.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	err := newRootCmd().Execute()
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+err.Error()))

	var exitErr *exitCodeError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.code)
	}

	os.Exit(1)
}

// exitCodeError carries a remote exit status out of a command.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("remote command exited with code %d", e.code)
}
