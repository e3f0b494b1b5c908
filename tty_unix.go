//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris || zos

package askpass

import (
	"bufio"
	"io"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

const ttyPath = "/dev/tty"

type ttyDriver struct{}

type termios unix.Termios

func (t termios) withoutEcho() termMode {
	// Hide the password, but don't hide the NL character when the user
	// hits ENTER.
	t.Lflag &^= unix.ECHO
	t.Lflag |= unix.ECHONL
	return t
}

func (ttyDriver) open(openTTY bool) (*input, error) {
	if !openTTY {
		return newInput(os.Stdin.Fd(), os.Stdin, nil), nil
	}
	tty, err := os.Open(ttyPath)
	if err != nil {
		return nil, err
	}
	return newInput(tty.Fd(), tty, tty), nil
}

func (ttyDriver) isTerminal(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

func (ttyDriver) getMode(fd uintptr) (termMode, error) {
	t, err := unix.IoctlGetTermios(int(fd), ioctlReadTermios)
	if err != nil {
		return nil, err
	}
	return termios(*t), nil
}

func (ttyDriver) setMode(fd uintptr, mode termMode) error {
	t := unix.Termios(mode.(termios))
	return unix.IoctlSetTermios(int(fd), ioctlWriteTermios, &t)
}

// displayOnTTY writes prompt straight to the terminal, so it is shown even
// when stdout and stderr are redirected.
func displayOnTTY(prompt string) error {
	tty, err := os.OpenFile(ttyPath, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer tty.Close()
	return display(tty, prompt)
}

func display(tty io.Writer, prompt string) error {
	w := bufio.NewWriter(tty)
	if _, err := w.WriteString(prompt); err != nil {
		return err
	}
	return w.Flush()
}
