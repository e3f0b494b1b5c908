// Package askpass reads passwords from a terminal without echoing them, or
// from piped input when no terminal is attached.
//
// The returned password has its trailing "\n" or "\r\n" removed. Partially
// read data is zeroed before an error is returned. Clearing the returned
// password is up to the caller.
//
// Functions that open the terminal change the device mode for the whole
// process. Callers must not run them concurrently.
package askpass

import (
	"bufio"
	"io"
	"os"
)

// ReadPassword reads a password from standard input. Echo is disabled while
// reading if standard input is a terminal.
func ReadPassword() (string, error) {
	return ReadPasswordWithReader(nil)
}

// ReadPasswordWithReader reads a single line from r. A *bufio.Reader is used
// as is; any other reader is wrapped in one, so data past the first line may
// be consumed. If r is nil, standard input is read as by ReadPassword.
func ReadPasswordWithReader(r io.Reader) (string, error) {
	if r == nil {
		return readPasswordFromStdin(false)
	}

	br, ok := r.(*bufio.Reader)
	if !ok {
		// The buffer is ours, so it is zeroed with the secret.
		src := &wipingReader{r: r}
		defer src.wipe()
		br = bufio.NewReader(src)
	}

	s := &secret{}
	if err := s.readLine(br); err != nil {
		s.wipe()
		return "", err
	}
	return s.take(), nil
}

// ReadPasswordFromTTY displays prompt, unless empty, on the terminal and
// reads a password from it with echo disabled. The terminal is opened
// directly, so this works when standard input or output are redirected.
func ReadPasswordFromTTY(prompt string) (string, error) {
	if prompt != "" {
		if err := displayOnTTY(prompt); err != nil {
			return "", err
		}
	}
	return readPasswordFromStdin(true)
}

// ReadLineFromTTY displays prompt, unless empty, on the terminal and reads
// a line from it without changing the terminal mode: what is typed is
// echoed. It is meant for answers that are not secret but must come from
// the user even when standard input is redirected.
func ReadLineFromTTY(prompt string) (string, error) {
	if prompt != "" {
		if err := displayOnTTY(prompt); err != nil {
			return "", err
		}
	}
	return readEchoedFrom(ttyDriver{}, &secret{})
}

// PromptPasswordStdout writes prompt to standard output and calls
// ReadPassword.
func PromptPasswordStdout(prompt string) (string, error) {
	return PromptPassword(os.Stdout, prompt)
}

// PromptPasswordStderr writes prompt to standard error and calls
// ReadPassword.
func PromptPasswordStderr(prompt string) (string, error) {
	return PromptPassword(os.Stderr, prompt)
}

type flusher interface {
	Flush() error
}

// PromptPassword writes prompt to w, flushes w if it buffers, and calls
// ReadPassword. Unlike ReadPasswordFromTTY it never opens the terminal: echo
// is only disabled if standard input is a terminal.
func PromptPassword(w io.Writer, prompt string) (string, error) {
	if _, err := io.WriteString(w, prompt); err != nil {
		return "", err
	}
	if f, ok := w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return "", err
		}
	}
	return ReadPassword()
}
