package prompter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	in     = bufio.NewReader(os.Stdin)
	prompt io.Writer = os.Stdout
)

// SetIO replaces stdin and stdout. Nil arguments restore the defaults.
func SetIO(r io.Reader, w io.Writer) {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	in = bufio.NewReader(r)
	prompt = w
}

func readLine() (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// PromptString prompts user for a string input
func PromptString(label string) (string, error) {
	fmt.Fprint(prompt, label)
	line, err := readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// PromptPassword prompts for a password without echo. When stdin is not a
// terminal the line is read as is.
func PromptPassword(label string) (string, error) {
	fmt.Fprint(prompt, label)

	if f, ok := asFile(); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
	return readLine()
}

func asFile() (*os.File, bool) {
	if in.Buffered() > 0 {
		return nil, false
	}
	return os.Stdin, prompt == os.Stdout
}

// PromptConfirm prompts user for yes/no confirmation
func PromptConfirm(label string) (bool, error) {
	fmt.Fprint(prompt, label+" (y/n) ")
	line, err := readLine()
	if err != nil {
		return false, err
	}
	response := strings.TrimSpace(strings.ToLower(line))
	return response == "y" || response == "yes", nil
}

// PromptSelect prompts user to select from options and returns the index
func PromptSelect(label string, options []string) (int, error) {
	fmt.Fprintln(prompt, label)
	for i, opt := range options {
		fmt.Fprintf(prompt, "%d) %s\n", i+1, opt)
	}

	fmt.Fprint(prompt, "Select option: ")
	line, err := readLine()
	if err != nil {
		return -1, err
	}

	var selection int
	if _, err := fmt.Sscanf(strings.TrimSpace(line), "%d", &selection); err != nil {
		return -1, err
	}
	if selection < 1 || selection > len(options) {
		return -1, fmt.Errorf("invalid selection")
	}
	return selection - 1, nil
}

// PromptMultilineString reads lines until an empty line or maxLines
func PromptMultilineString(label string, maxLines int) (string, error) {
	fmt.Fprintf(prompt, "%s (end with an empty line):\n", label)

	var lines []string
	for i := 0; i < maxLines; i++ {
		line, err := readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", err
		}
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}
