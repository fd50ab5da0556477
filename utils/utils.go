// Package utils contains the terminal helpers of the command line tool.
package utils

import (
	"net/http"
	"os"

	"github.com/cockroachdb/errors"
	"golang.org/x/term"
)

// PipeName is the file name that indicates stdin/stdout is being used.
const PipeName = "-"

// DetectFileContentType sniffs the content type of the file at path
// from its first bytes.
func DetectFileContentType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		// Empty files are plain text as far as we are concerned.
		return "text/plain; charset=utf-8", nil
	}
	return http.DetectContentType(buf[:n]), nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// OpenInput opens the named input; PipeName selects stdin, which must
// not be a terminal.
func OpenInput(name string) (*os.File, error) {
	if name == PipeName {
		if IsTerminal(os.Stdin) {
			return nil, errors.New("`-` should be used with a pipe for stdin")
		}
		return os.Stdin, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "opening input %s", name)
	}
	return f, nil
}

// CreateOutput creates the named output; PipeName selects stdout,
// which must not be a terminal.
func CreateOutput(name string) (*os.File, error) {
	if name == PipeName {
		if IsTerminal(os.Stdout) {
			return nil, errors.New("`-` should be used with a pipe for stdout")
		}
		return os.Stdout, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, errors.Wrapf(err, "creating output %s", name)
	}
	return f, nil
}
