package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// maxMessageBytes bounds how much piped input is read for one message.
const maxMessageBytes = 1 << 20

// Source supplies a message body when none is given on the command line.
type Source interface {
	// IsTerminal reports whether the source is an interactive terminal,
	// in which case it must not be read from.
	IsTerminal() bool

	// ReadMessage reads the whole source.
	ReadMessage() (string, error)
}

// StdinSource reads piped messages from os.Stdin
type StdinSource struct {
	file *os.File
}

// NewStdinSource creates a new StdinSource
func NewStdinSource() *StdinSource {
	return &StdinSource{file: os.Stdin}
}

// IsTerminal reports whether stdin is attached to a terminal
func (s *StdinSource) IsTerminal() bool {
	fd := s.file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ReadMessage reads stdin until EOF, dropping trailing line breaks
func (s *StdinSource) ReadMessage() (string, error) {
	return readMessage(bufio.NewReader(s.file))
}

func readMessage(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxMessageBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read message: %w", err)
	}
	if len(data) > maxMessageBytes {
		return "", fmt.Errorf("message is larger than %d bytes", maxMessageBytes)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// StringSource is a fixed Source for testing.
type StringSource struct {
	Input    string
	Terminal bool
	Reads    int
}

// NewStringSource creates a non-terminal source that yields input.
func NewStringSource(input string) *StringSource {
	return &StringSource{Input: input}
}

// IsTerminal returns the configured Terminal value.
func (s *StringSource) IsTerminal() bool {
	return s.Terminal
}

// ReadMessage returns Input with trailing line breaks removed.
func (s *StringSource) ReadMessage() (string, error) {
	s.Reads++
	return readMessage(strings.NewReader(s.Input))
}
