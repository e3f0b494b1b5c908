package askpass

import (
	"bufio"
	"io"
)

// termMode is a snapshot of a terminal's configuration. Implementations are
// values, so a snapshot is never changed by deriving another from it.
type termMode interface {
	// withoutEcho returns a copy of the mode with character echo disabled.
	// Where the platform allows it the newline is still echoed on Enter.
	withoutEcho() termMode
}

// terminalDriver is the platform specific half of a password read.
// Only one terminal-opening read may run at a time: the device mode is
// shared by the whole process.
type terminalDriver interface {
	open(openTTY bool) (*input, error)
	isTerminal(fd uintptr) bool
	getMode(fd uintptr) (termMode, error)
	setMode(fd uintptr, mode termMode) error
}

// input is the source a single read is performed on.
type input struct {
	fd  uintptr
	r   *bufio.Reader
	src *wipingReader

	// closer is nil when the descriptor belongs to the process (stdin).
	closer io.Closer

	// echoNewline, if set, is called after a read with echo disabled on
	// platforms that cannot echo just the newline.
	echoNewline func() error
}

func newInput(fd uintptr, r io.Reader, closer io.Closer) *input {
	src := &wipingReader{r: r}
	return &input{
		fd:     fd,
		r:      bufio.NewReader(src),
		src:    src,
		closer: closer,
	}
}

// close zeroes everything read through the input and closes the descriptor
// if it was opened for this read.
func (in *input) close() {
	in.src.wipe()
	if in.closer != nil {
		_ = in.closer.Close()
	}
}

// readPasswordFromStdin reads a password from standard input, or from the
// controlling terminal if openTTY is set. Echo is disabled for the duration
// of the read when the source is a terminal.
func readPasswordFromStdin(openTTY bool) (string, error) {
	return readFrom(ttyDriver{}, openTTY, &secret{})
}

func readFrom(drv terminalDriver, openTTY bool, s *secret) (string, error) {
	in, err := drv.open(openTTY)
	if err != nil {
		return "", err
	}
	defer in.close()

	// Piped or redirected input: nothing to hide.
	if !drv.isTerminal(in.fd) {
		return readPlain(in, s)
	}

	orig, err := drv.getMode(in.fd)
	if err != nil {
		return "", err
	}
	if err := drv.setMode(in.fd, orig.withoutEcho()); err != nil {
		return "", err
	}

	if err := s.readLine(in.r); err != nil {
		// A restore error takes precedence over the read error.
		if rerr := drv.setMode(in.fd, orig); rerr != nil {
			err = rerr
		}
		s.wipe()
		return "", err
	}

	if err := drv.setMode(in.fd, orig); err != nil {
		s.wipe()
		return "", err
	}

	if in.echoNewline != nil {
		if err := in.echoNewline(); err != nil {
			s.wipe()
			return "", err
		}
	}

	return s.take(), nil
}

// readEchoedFrom reads a line from the controlling terminal with its mode
// left untouched, so the answer is echoed as typed.
func readEchoedFrom(drv terminalDriver, s *secret) (string, error) {
	in, err := drv.open(true)
	if err != nil {
		return "", err
	}
	defer in.close()
	return readPlain(in, s)
}

func readPlain(in *input, s *secret) (string, error) {
	if err := s.readLine(in.r); err != nil {
		s.wipe()
		return "", err
	}
	return s.take(), nil
}
