package sshauth

import (
	"io"
	"net"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

const sshAuthSockEnv = "SSH_AUTH_SOCK"

// Agent returns an AuthMethod using the keys held by the agent listening on
// SSH_AUTH_SOCK. Tried before Password, it spares the user a prompt.
//
// The agent signs over the returned connection during the handshake, so
// close it only once the handshake is over.
func Agent() (ssh.AuthMethod, io.Closer, error) {
	sock := os.Getenv(sshAuthSockEnv)
	if sock == "" {
		return nil, nil, ErrNoAgent
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to connect to ssh agent")
	}
	return ssh.PublicKeysCallback(agent.NewClient(conn).Signers), conn, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Methods returns the AuthMethods to try in order: the agent if one is
// running, the private key file if given, then a password prompt. The
// closer releases the agent connection, if any, and is never nil.
func (p *Prompter) Methods(keyFile, passwordPrompt string) ([]ssh.AuthMethod, io.Closer, error) {
	var methods []ssh.AuthMethod
	closer := io.Closer(closerFunc(func() error { return nil }))

	if a, conn, err := Agent(); err == nil {
		methods = append(methods, a)
		closer = conn
	}
	if keyFile != "" {
		key, err := p.PrivateKey(keyFile)
		if err != nil {
			_ = closer.Close()
			return nil, nil, err
		}
		methods = append(methods, key)
	}
	methods = append(methods, p.Password(passwordPrompt), p.KeyboardInteractive())
	return methods, closer, nil
}
