package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/WessleyAI/reddit-flatten/engine/export"
	"github.com/WessleyAI/reddit-flatten/engine/thread"
)

// prompter asks the menu questions on an interactive terminal.
type prompter struct {
	r *bufio.Reader
	w io.Writer
}

func newPrompter(r io.Reader, w io.Writer) *prompter {
	return &prompter{r: bufio.NewReader(r), w: w}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ask prints question and returns the trimmed answer line.
func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.w, question)
	line, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *prompter) shape() (string, error) {
	var b strings.Builder
	b.WriteString("What kind of Reddit JSON did you load?\n\n")
	for i, s := range thread.Shapes {
		fmt.Fprintf(&b, "%d → %s\n", i+1, s.Description())
	}
	b.WriteString("\nEnter number: ")
	return p.ask(b.String())
}

func (p *prompter) filter() (string, error) {
	return p.ask("\np → Posts | c → Comments | b → Both\nSelect: ")
}

// saveChoice reports whether the user picked saving over printing.
func (p *prompter) saveChoice() (bool, error) {
	answer, err := p.ask(fmt.Sprintf("1 → Print to terminal\n2 → Save to '%s'\nEnter 1 or 2: ", export.DefaultOutput))
	if err != nil {
		return false, err
	}
	return answer == "2", nil
}
