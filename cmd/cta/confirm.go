package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// confirm asks a yes/no question and reports whether the answer was yes.
// On a terminal the question is shown as an interactive form. Otherwise
// one line is read from in and only "y" or "yes" count as yes.
func confirm(question string, in io.Reader, out io.Writer) (bool, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return confirmInteractive(question)
	}
	return confirmLine(question, in, out)
}

func confirmInteractive(question string) (bool, error) {
	var answer bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes").
				Negative("No").
				Value(&answer),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return answer, nil
}

func confirmLine(question string, in io.Reader, out io.Writer) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	fmt.Fprintln(out)

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
