//go:build !aix && !darwin && !dragonfly && !freebsd && !linux && !netbsd && !openbsd && !solaris && !zos && !windows

package askpass

import (
	"errors"
	"os"
)

// ttyDriver on platforms without a terminal API only reads piped input.
type ttyDriver struct{}

func errNoTerminal(op string) error {
	return &os.PathError{Op: op, Path: "tty", Err: errors.ErrUnsupported}
}

func (ttyDriver) open(openTTY bool) (*input, error) {
	if openTTY {
		return nil, errNoTerminal("open")
	}
	return newInput(os.Stdin.Fd(), os.Stdin, nil), nil
}

func (ttyDriver) isTerminal(uintptr) bool { return false }

func (ttyDriver) getMode(uintptr) (termMode, error) {
	return nil, errNoTerminal("getmode")
}

func (ttyDriver) setMode(uintptr, termMode) error {
	return errNoTerminal("setmode")
}

func displayOnTTY(string) error {
	return errNoTerminal("open")
}
