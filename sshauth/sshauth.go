// Package sshauth builds ssh.AuthMethods that ask the user for their
// credentials on the terminal, only when the server asks for them.
package sshauth

import (
	"fmt"
	"io"
	"os"

	"github.com/discoriver/askpass"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

var (
	ErrIncorrectPassphrase = errors.New("incorrect passphrase")
	ErrNoAgent             = errors.New("SSH_AUTH_SOCK is not set")
)

// ReadFunc displays prompt and returns the user's answer.
type ReadFunc func(prompt string) (string, error)

// Prompter asks for passwords, passphrases and keyboard-interactive answers.
type Prompter struct {
	// Secret reads answers that must not be echoed.
	Secret ReadFunc
	// Line reads answers the server allows to be echoed. It should read
	// from the same place as Secret.
	Line ReadFunc
	// Out receives keyboard-interactive names and instructions.
	Out io.Writer
}

// NewPrompter returns a Prompter reading all answers from the terminal,
// even if standard input is redirected. Only secrets are hidden.
func NewPrompter() *Prompter {
	return &Prompter{
		Secret: askpass.ReadPasswordFromTTY,
		Line:   askpass.ReadLineFromTTY,
		Out:    os.Stderr,
	}
}

// Password is NewPrompter().Password.
func Password(prompt string) ssh.AuthMethod {
	return NewPrompter().Password(prompt)
}

// KeyboardInteractive is NewPrompter().KeyboardInteractive.
func KeyboardInteractive() ssh.AuthMethod {
	return NewPrompter().KeyboardInteractive()
}

// Password asks for the password with prompt when the server requests
// password authentication.
func (p *Prompter) Password(prompt string) ssh.AuthMethod {
	return ssh.PasswordCallback(func() (string, error) {
		password, err := p.Secret(prompt)
		if err != nil {
			return "", errors.Wrap(err, "failed to read password")
		}
		return password, nil
	})
}

// KeyboardInteractive answers each server challenge in turn. Questions the
// server marks as not echoed are read as secrets.
func (p *Prompter) KeyboardInteractive() ssh.AuthMethod {
	return ssh.KeyboardInteractive(p.challenge)
}

func (p *Prompter) challenge(name, instruction string, questions []string, echos []bool) ([]string, error) {
	for _, s := range []string{name, instruction} {
		if s == "" {
			continue
		}
		if _, err := fmt.Fprintln(p.Out, s); err != nil {
			return nil, errors.Wrap(err, "failed to display challenge")
		}
	}

	answers := make([]string, len(questions))
	for i, q := range questions {
		read := p.Secret
		if i < len(echos) && echos[i] {
			read = p.Line
		}
		answer, err := read(q)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to answer %q", q)
		}
		answers[i] = answer
	}
	return answers, nil
}
