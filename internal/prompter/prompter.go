package prompter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

type Confirmer interface {
	Confirm(question string) (bool, error)
}

// TextPrompter asks yes/no questions on a text stream. Anything but an
// explicit yes, end of input included, is a no.
type TextPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func New(in io.Reader, out io.Writer) *TextPrompter {
	return &TextPrompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (p *TextPrompter) Confirm(q string) (bool, error) {
	if _, err := fmt.Fprintf(p.out, "%s [y/N]: ", q); err != nil {
		return false, err
	}

	resp, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(resp)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Always answers every question with the same value, for non interactive runs.
type Always bool

func (a Always) Confirm(string) (bool, error) { return bool(a), nil }
