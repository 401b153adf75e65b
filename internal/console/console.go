// Package console provides persistent line sources for the chat input.
package console

import (
	"bufio"
	"errors"
	"io"

	"github.com/chzyer/readline"
)

// LineSource yields input lines one at a time. ReadLine returns io.EOF once the
// underlying stream is closed. ReadLine blocks and is called from a single goroutine.
type LineSource interface {
	ReadLine() (string, error)
	Close() error
}

// ReaderSource reads newline-terminated lines from a plain stream such as a pipe.
type ReaderSource struct {
	scanner *bufio.Scanner
	closer  io.Closer
}

// NewReaderSource wraps r. If r is an io.Closer, Close closes it.
func NewReaderSource(r io.Reader) *ReaderSource {
	src := &ReaderSource{scanner: bufio.NewScanner(r)}
	if c, ok := r.(io.Closer); ok {
		src.closer = c
	}
	return src
}

// ReadLine returns the next line without its terminator.
func (s *ReaderSource) ReadLine() (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Close closes the wrapped reader when it supports closing.
func (s *ReaderSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Terminal reads lines from an interactive terminal with editing and history.
type Terminal struct {
	rl *readline.Instance
}

// TerminalConfig configures a Terminal.
type TerminalConfig struct {
	Prompt      string
	HistoryFile string
}

// NewTerminal opens the terminal once for the lifetime of the client.
func NewTerminal(cfg TerminalConfig) (*Terminal, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cfg.Prompt,
		HistoryFile:     cfg.HistoryFile,
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}
	return &Terminal{rl: rl}, nil
}

// ReadLine returns the next line. Ctrl+C and Ctrl+D both end the input.
func (t *Terminal) ReadLine() (string, error) {
	line, err := t.rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) {
			return "", io.EOF
		}
		return "", err
	}
	return line, nil
}

// Stdout returns a writer that keeps the prompt intact while transcript lines print.
func (t *Terminal) Stdout() io.Writer {
	return t.rl.Stdout()
}

// Close restores the terminal.
func (t *Terminal) Close() error {
	return t.rl.Close()
}

// IsTerminal reports whether standard input is an interactive terminal.
func IsTerminal() bool {
	return readline.DefaultIsTerminal()
}
