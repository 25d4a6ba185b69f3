package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	json "github.com/json-iterator/go"
	"github.com/zfogg/inkwell/pkg/config"
)

// Format is the value of output.format.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

var out io.Writer = color.Output

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	cyan   = color.New(color.FgCyan)
	yellow = color.New(color.FgYellow)
)

// SetOutput redirects everything this package prints. nil restores the
// terminal.
func SetOutput(w io.Writer) {
	if w == nil {
		w = color.Output
	}
	out = w
}

func Writer() io.Writer { return out }

// Current reads output.format. Unknown values mean text.
func Current() Format {
	f := Format(config.GetString("output.format"))
	if Valid(string(f)) {
		return f
	}
	return FormatText
}

func Valid(s string) bool {
	switch Format(s) {
	case FormatText, FormatJSON, FormatTable:
		return true
	}
	return false
}

// Print writes any value: JSON in json mode, indented JSON under a title
// otherwise.
func Print(title string, data interface{}) error {
	if Current() == FormatJSON {
		return writeJSON(title, data)
	}
	return writeTitledJSON(title, data)
}

// PrintList writes rows under columns. items must be [][]string for the
// text and table modes. Anything else is printed as JSON.
func PrintList(title string, items interface{}, columns []string) error {
	f := Current()
	if f == FormatJSON {
		return writeJSON(title, items)
	}
	rows, ok := items.([][]string)
	if !ok {
		return writeTitledJSON(title, items)
	}
	if f == FormatText && title != "" {
		bold.Fprintln(out, title)
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "(none)")
		return nil
	}
	return writeTable(columns, rows)
}

// PrintRecord writes one record with its keys sorted.
func PrintRecord(title string, record map[string]interface{}) error {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	switch Current() {
	case FormatJSON:
		return writeJSON(title, record)
	case FormatTable:
		rows := make([][]string, len(keys))
		for i, k := range keys {
			rows[i] = []string{k, fmt.Sprint(record[k])}
		}
		return writeTable([]string{"Field", "Value"}, rows)
	}

	if title != "" {
		fmt.Fprintf(out, "%s:\n", title)
	}
	for _, k := range keys {
		bold.Fprintf(out, "%s: ", k)
		fmt.Fprintln(out, record[k])
	}
	return nil
}

func line(c *color.Color, prefix, msg string, args []interface{}) {
	c.Fprintln(out, prefix+fmt.Sprintf(msg, args...))
}

func PrintSuccess(msg string, args ...interface{}) { line(green, "", msg, args) }

func PrintInfo(msg string, args ...interface{}) { line(cyan, "", msg, args) }

func PrintWarning(msg string, args ...interface{}) { line(yellow, "Warning: ", msg, args) }

func PrintError(msg string, args ...interface{}) { line(red, "Error: ", msg, args) }

// FormatAsPrettyJSON indents data with two spaces.
func FormatAsPrettyJSON(data interface{}) (string, error) {
	raw, err := json.MarshalIndent(data, "", "  ")
	return string(raw), err
}

func writeJSON(title string, data interface{}) error {
	if title != "" {
		data = map[string]interface{}{title: data}
	}
	s, err := FormatAsPrettyJSON(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, s)
	return err
}

func writeTitledJSON(title string, data interface{}) error {
	s, err := FormatAsPrettyJSON(data)
	if err != nil {
		return err
	}
	if title != "" {
		fmt.Fprintf(out, "%s:\n", title)
	}
	_, err = fmt.Fprintln(out, s)
	return err
}

func writeTable(headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	bold.Fprintln(tw, strings.Join(headers, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}
