package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

type prompter struct {
	reader *bufio.Reader
	raw    io.Reader
	w      io.Writer
}

func newPrompter(r io.Reader, w io.Writer) *prompter {
	return &prompter{reader: bufio.NewReader(r), raw: r, w: w}
}

// Password reads a secret without echo when input is a terminal and falls
// back to a plain line otherwise.
func (p *prompter) Password(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.w, prompt+": "); err != nil {
		return "", err
	}

	if f, ok := p.raw.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(p.w)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}

	return p.line()
}

func (p *prompter) line() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
