package askpass

import (
	"bufio"
	"io"
)

// secret is the buffer a password is read into. Its backing array is zeroed
// whenever the buffer grows and before any error leaves the package.
type secret struct {
	b []byte
}

// readLine appends one line from r, up to and including '\n'. End of input
// is not an error: an empty read leaves the buffer empty and a final line
// without a terminator is kept as-is.
func (s *secret) readLine(r *bufio.Reader) error {
	for {
		chunk, err := r.ReadSlice('\n')
		s.append(chunk)
		switch err {
		case nil, io.EOF:
			return nil
		case bufio.ErrBufferFull:
			continue
		default:
			return err
		}
	}
}

func (s *secret) append(p []byte) {
	if len(s.b)+len(p) > cap(s.b) {
		grown := make([]byte, len(s.b), 2*cap(s.b)+len(p))
		copy(grown, s.b)
		s.wipe()
		s.b = grown
	}
	s.b = append(s.b, p...)
}

// wipe sets every byte of the backing array to zero, in place.
func (s *secret) wipe() {
	b := s.b[:cap(s.b)]
	for i := range b {
		b[i] = 0
	}
}

// take returns the sanitized password and wipes the buffer.
func (s *secret) take() string {
	password := string(fixNewline(s.b))
	s.wipe()
	return password
}

// fixNewline removes one trailing "\n" and then, if one was removed, one
// trailing "\r". There may be no newline at all, e.g. if the user sent
// CTRL-D or the input is not a terminal.
func fixNewline(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
		if n := len(b); n > 0 && b[n-1] == '\r' {
			b = b[:n-1]
		}
	}
	return b
}

// wipingReader remembers the buffers it fills so they can be zeroed once
// the line has been taken, including the internal buffer of a bufio.Reader
// reading through it.
type wipingReader struct {
	r      io.Reader
	filled [][]byte
}

func (w *wipingReader) Read(p []byte) (int, error) {
	n, err := w.r.Read(p)
	if n > 0 {
		w.remember(p)
	}
	return n, err
}

func (w *wipingReader) remember(p []byte) {
	for _, b := range w.filled {
		if &b[0] == &p[0] && len(b) == len(p) {
			return
		}
	}
	w.filled = append(w.filled, p)
}

func (w *wipingReader) wipe() {
	for _, b := range w.filled {
		for i := range b {
			b[i] = 0
		}
	}
}
