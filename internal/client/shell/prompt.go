package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter reads answers line by line from an input stream.
type Prompter struct {
	sc     *bufio.Scanner
	out    io.Writer
	closed bool
}

// NewPrompter returns a Prompter reading from in and printing questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{sc: bufio.NewScanner(in), out: out}
}

// Line reads the next line. ok is false once the input is exhausted.
func (p *Prompter) Line() (line string, ok bool) {
	if p.closed || !p.sc.Scan() {
		p.closed = true
		return "", false
	}
	return strings.TrimSpace(p.sc.Text()), true
}

// Ask prints label and returns the trimmed answer.
func (p *Prompter) Ask(label string) string {
	fmt.Fprintf(p.out, "%s: ", label)
	s, _ := p.Line()
	return s
}

// AskDefault is Ask where a blank answer keeps def.
func (p *Prompter) AskDefault(label, def string) string {
	if def == "" {
		return p.Ask(label)
	}
	fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	if s, _ := p.Line(); s != "" {
		return s
	}
	return def
}

// Confirm asks a yes/no question. Anything but y or yes declines.
func (p *Prompter) Confirm(question string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	s, _ := p.Line()
	switch strings.ToLower(s) {
	case "y", "yes":
		return true
	}
	return false
}
