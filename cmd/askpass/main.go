// Command askpass prints a password read from the terminal to standard
// output. It can be used as SSH_ASKPASS, GIT_ASKPASS or SUDO_ASKPASS.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/discoriver/askpass"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const (
	promptEnv     = "ASKPASS_PROMPT"
	defaultPrompt = "Password: "
)

type options struct {
	stdin     bool
	noNewline bool
	verbose   bool
	prompt    string
}

func parseOptions(args []string, getenv func(string) string) (*options, error) {
	opt := &options{}
	flags := pflag.NewFlagSet("askpass", pflag.ContinueOnError)
	flags.BoolVar(&opt.stdin, "stdin", false, "Read from standard input instead of the terminal, prompting on stderr.")
	flags.BoolVarP(&opt.noNewline, "no-newline", "n", false, "Don't print a newline after the password.")
	flags.BoolVarP(&opt.verbose, "verbose", "v", false, "Log debugging information to stderr.")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: askpass [flags] [prompt...]\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	opt.prompt = strings.Join(flags.Args(), " ")
	if opt.prompt == "" {
		opt.prompt = getenv(promptEnv)
	}
	if opt.prompt == "" {
		opt.prompt = defaultPrompt
	}
	return opt, nil
}

type readers struct {
	tty   func(prompt string) (string, error)
	stdin func(prompt string) (string, error)
}

func run(opt *options, r readers, out io.Writer) error {
	read := r.tty
	source := "terminal"
	if opt.stdin {
		read = r.stdin
		source = "stdin"
	}
	logrus.WithField("source", source).Debug("Reading password")

	password, err := read(opt.prompt)
	if err != nil {
		return err
	}
	if !opt.noNewline {
		password += "\n"
	}
	_, err = io.WriteString(out, password)
	return err
}

func main() {
	logrus.SetOutput(os.Stderr)

	opt, err := parseOptions(os.Args[1:], os.Getenv)
	if err == pflag.ErrHelp {
		os.Exit(0)
	}
	if err != nil {
		logrus.Fatalf("Invalid arguments: %v", err)
	}
	if opt.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	err = run(opt, readers{
		tty:   askpass.ReadPasswordFromTTY,
		stdin: askpass.PromptPasswordStderr,
	}, os.Stdout)
	if err != nil {
		logrus.Fatalf("Failed to read password: %v", err)
	}
}
