package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

const maxLine = 1 << 20

// Console reads prompted lines for the interactive commands. On a terminal it switches to
// raw mode and uses x/term line editing with history; otherwise it scans lines from the
// input and echoes prompts to the output.
type Console struct {
	out      io.Writer
	terminal *term.Terminal
	scanner  *bufio.Scanner
	restore  func() error
}

// New wraps in and out. Call Close to restore the terminal.
func New(in io.Reader, out io.Writer) (*Console, error) {
	inFile, inOK := in.(*os.File)
	outFile, outOK := out.(*os.File)
	if inOK && outOK && isTerminal(inFile) && isTerminal(outFile) {
		fd := int(inFile.Fd())
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("raw terminal: %w", err)
		}
		t := term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{in, out}, "")
		if w, h, err := term.GetSize(fd); err == nil {
			_ = t.SetSize(w, h)
		}
		return &Console{
			out:      t,
			terminal: t,
			restore:  func() error { return term.Restore(fd, state) },
		}, nil
	}

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &Console{out: out, scanner: sc}, nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd())
}

// Out is where command output goes. On a raw terminal, newlines are translated.
func (c *Console) Out() io.Writer {
	return c.out
}

// ReadLine shows prompt and returns the next line without its line ending.
// io.EOF means the input is exhausted or the user pressed Ctrl-D.
func (c *Console) ReadLine(prompt string) (string, error) {
	if c.terminal != nil {
		c.terminal.SetPrompt(prompt)
		return c.terminal.ReadLine()
	}

	fmt.Fprint(c.out, prompt)
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(c.scanner.Text(), "\r"), nil
}

func (c *Console) Close() error {
	if c.restore == nil {
		return nil
	}
	return c.restore()
}
