//go:build windows

package askpass

import (
	"bufio"
	"os"

	"golang.org/x/sys/windows"
	"golang.org/x/term"
)

type ttyDriver struct{}

type consoleMode uint32

// withoutEcho keeps line input and processed input so that backspace and
// CTRL-C still work. The console has no way to echo only the newline; that
// is done by input.echoNewline instead.
func (m consoleMode) withoutEcho() termMode {
	m &^= windows.ENABLE_ECHO_INPUT
	m |= windows.ENABLE_LINE_INPUT | windows.ENABLE_PROCESSED_INPUT
	return m
}

// openConsole opens CONIN$ or CONOUT$, bypassing any redirection of the
// standard handles.
func openConsole(name string) (*os.File, error) {
	path, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateFile(path,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil, windows.OPEN_EXISTING, 0, 0)
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(h), name), nil
}

func (ttyDriver) open(openTTY bool) (*input, error) {
	var in *input
	if openTTY {
		conin, err := openConsole("CONIN$")
		if err != nil {
			return nil, err
		}
		in = newInput(conin.Fd(), conin, conin)
	} else {
		in = newInput(os.Stdin.Fd(), os.Stdin, nil)
	}
	in.echoNewline = func() error {
		return displayOnTTY("\n")
	}
	return in, nil
}

func (ttyDriver) isTerminal(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

func (ttyDriver) getMode(fd uintptr) (termMode, error) {
	var mode uint32
	if err := windows.GetConsoleMode(windows.Handle(fd), &mode); err != nil {
		return nil, err
	}
	return consoleMode(mode), nil
}

func (ttyDriver) setMode(fd uintptr, mode termMode) error {
	return windows.SetConsoleMode(windows.Handle(fd), uint32(mode.(consoleMode)))
}

// displayOnTTY writes prompt straight to the console, so it is shown even
// when stdout and stderr are redirected.
func displayOnTTY(prompt string) error {
	conout, err := openConsole("CONOUT$")
	if err != nil {
		return err
	}
	defer conout.Close()

	w := bufio.NewWriter(conout)
	if _, err := w.WriteString(prompt); err != nil {
		return err
	}
	return w.Flush()
}
