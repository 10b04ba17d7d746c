package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// ErrInputClosed is returned when the input stream ends while a prompt is waiting.
var ErrInputClosed = errors.New("input closed")

type tone int

const (
	toneInfo tone = iota
	toneNarrative
	toneSuccess
	toneError
	toneMuted
)

var ansiCodes = map[tone]string{
	toneInfo:      "\x1b[33m",
	toneNarrative: "\x1b[36m",
	toneSuccess:   "\x1b[32m",
	toneError:     "\x1b[31m",
	toneMuted:     "\x1b[37m",
}

const ansiReset = "\x1b[0m"

// Console reads one answer per line and writes optionally coloured text.
type Console struct {
	in    *bufio.Scanner
	out   io.Writer
	color bool
}

// NewConsole wraps in and out. With color set, output carries ANSI escape codes.
func NewConsole(in io.Reader, out io.Writer, color bool) *Console {
	return &Console{in: bufio.NewScanner(in), out: out, color: color}
}

// NewStdConsole uses the process stdin and stdout, colouring only when stdout is a terminal.
func NewStdConsole() *Console {
	fd := os.Stdout.Fd()
	color := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return NewConsole(os.Stdin, colorable.NewColorableStdout(), color)
}

func (c *Console) paint(t tone, s string) string {
	if !c.color || s == "" {
		return s
	}
	return ansiCodes[t] + s + ansiReset
}

func (c *Console) println(t tone, format string, args ...any) {
	fmt.Fprintln(c.out, c.paint(t, fmt.Sprintf(format, args...)))
}

func (c *Console) info(format string, args ...any)    { c.println(toneInfo, format, args...) }
func (c *Console) success(format string, args ...any) { c.println(toneSuccess, format, args...) }
func (c *Console) failure(format string, args ...any) { c.println(toneError, format, args...) }

func (c *Console) narrate(text string) {
	c.println(toneNarrative, "%s", text)
}

// ask prints prompt and returns the next line without surrounding whitespace.
func (c *Console) ask(prompt string) (string, error) {
	fmt.Fprint(c.out, c.paint(toneInfo, prompt))
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", ErrInputClosed
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// askNumber re-prompts until the answer is an integer in [lo, hi].
func (c *Console) askNumber(prompt string, lo, hi int) (int, error) {
	for {
		answer, err := c.ask(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < lo || n > hi {
			c.failure(msgInvalidInput)
			continue
		}
		return n, nil
	}
}
