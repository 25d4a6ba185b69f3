package formatter

import (
	"fmt"
	"unicode/utf8"

	"github.com/zfogg/inkwell/pkg/output"
)

// PrintSuccess, PrintInfo and PrintWarning write one colored line.
func PrintSuccess(format string, args ...interface{}) {
	output.PrintSuccess(format, args...)
}

func PrintInfo(format string, args ...interface{}) {
	output.PrintInfo(format, args...)
}

func PrintWarning(format string, args ...interface{}) {
	output.PrintWarning(format, args...)
}

// PrintRolledBack tells the user a change they saw applied was undone.
// message is shown as the server sent it.
func PrintRolledBack(action, message string) {
	output.PrintWarning("%s was undone: %s", action, message)
}

// PrintKeyValue prints a record, sorted by key in text mode.
func PrintKeyValue(title string, data map[string]interface{}) error {
	return output.PrintRecord(title, data)
}

// Truncate shortens s to at most n runes, marking the cut with "..."
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}
	return string([]rune(s)[:n-3]) + "..."
}

// Count renders "1 like", "2 likes"
func Count(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// Mark renders a boolean as a check for table cells
func Mark(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
