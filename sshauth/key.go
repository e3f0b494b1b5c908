package sshauth

import (
	"crypto/x509"
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

// PrivateKey is NewPrompter().PrivateKey.
func PrivateKey(file string) (ssh.AuthMethod, error) {
	return NewPrompter().PrivateKey(file)
}

// PrivateKey reads the private key file, which may start with "~/", and
// returns an AuthMethod for it. Encrypted keys are decrypted with a
// passphrase read from the user.
func (p *Prompter) PrivateKey(file string) (ssh.AuthMethod, error) {
	signer, err := p.Signer(file)
	if err != nil {
		return nil, err
	}
	return ssh.PublicKeys(signer), nil
}

// Signer is like PrivateKey but returns the parsed key.
func (p *Prompter) Signer(file string) (ssh.Signer, error) {
	path, err := homedir.Expand(file)
	if err != nil {
		return nil, errors.Wrap(err, "unable to expand private key path")
	}

	key, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read private key file")
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err == nil {
		return signer, nil
	}
	var missing *ssh.PassphraseMissingError
	if !errors.As(err, &missing) {
		return nil, errors.Wrap(err, "unable to parse private key")
	}

	passphrase, err := p.Secret(fmt.Sprintf("Enter passphrase for key '%s': ", file))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read passphrase")
	}
	pass := []byte(passphrase)
	defer wipe(pass)

	signer, err = ssh.ParsePrivateKeyWithPassphrase(key, pass)
	if errors.Is(err, x509.IncorrectPasswordError) {
		return nil, errors.Wrap(ErrIncorrectPassphrase, file)
	}
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse private key with passphrase")
	}
	return signer, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
