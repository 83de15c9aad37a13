package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/itops/staffdesk/pkg/alerts"
	"github.com/itops/staffdesk/pkg/config"
	json "github.com/json-iterator/go"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
	FormatText  OutputFormat = "text"
)

// Out is where every printer writes. Tests swap it for a buffer.
var Out io.Writer = color.Output

// Err receives alerts and errors.
var Err io.Writer = color.Error

// GetOutputFormat returns the configured output format
func GetOutputFormat() OutputFormat {
	switch config.GetString("output.format") {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// ValidateOutputFormat checks if format is valid
func ValidateOutputFormat(format string) bool {
	return format == "json" || format == "table" || format == "text"
}

// Print outputs a single value; JSON in json mode, indented JSON otherwise.
func Print(title string, data interface{}) error {
	if GetOutputFormat() == FormatJSON {
		return writeJSON(data)
	}
	if title != "" {
		color.New(color.Bold).Fprintf(Out, "%s\n", title)
	}
	return writePrettyJSON(data)
}

// PrintRows renders rows under headers. In json mode raw is encoded instead,
// so scripts get typed records rather than display strings.
func PrintRows(headers []string, rows [][]string, raw interface{}) error {
	if GetOutputFormat() == FormatJSON {
		return writeJSON(raw)
	}
	if len(rows) == 0 {
		fmt.Fprintln(Out, "No results.")
		return nil
	}
	printTable(headers, rows)
	return nil
}

// PrintRecord outputs key/value pairs sorted by key.
func PrintRecord(title string, record map[string]interface{}) error {
	if GetOutputFormat() == FormatJSON {
		return writeJSON(record)
	}

	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if GetOutputFormat() == FormatTable {
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, fmt.Sprintf("%v", record[k])})
		}
		printTable([]string{"Field", "Value"}, rows)
		return nil
	}

	if title != "" {
		color.New(color.Bold).Fprintf(Out, "%s\n", title)
	}
	bold := color.New(color.Bold)
	for _, k := range keys {
		bold.Fprint(Out, k+": ")
		fmt.Fprintf(Out, "%v\n", record[k])
	}
	return nil
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(Out, msg+"\n", args...)
}

// PrintError prints an error message
func PrintError(msg string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(Err, "Error: "+msg+"\n", args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(Out, msg+"\n", args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(Out, "Warning: "+msg+"\n", args...)
}

// PrintAlert is an alerts.Sink writing to Err.
func PrintAlert(a alerts.Alert) {
	c := color.New(color.FgYellow, color.Bold)
	label := "WARNING"
	switch a.Level {
	case alerts.LevelCritical:
		c = color.New(color.FgRed, color.Bold)
		label = "ALERT"
	case alerts.LevelInfo:
		c = color.New(color.FgCyan)
		label = "INFO"
	}
	c.Fprintf(Err, "[%s] %s\n", label, a.Message)
	if a.Hint != "" {
		fmt.Fprintf(Err, "        %s\n", a.Hint)
	}
}

func writeJSON(data interface{}) error {
	enc := json.ConfigCompatibleWithStandardLibrary.NewEncoder(Out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func writePrettyJSON(data interface{}) error {
	s, err := FormatAsPrettyJSON(data)
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, s)
	return nil
}

func printTable(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)

	bold.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

// FormatAsJSON converts data to a compact JSON string
func FormatAsJSON(data interface{}) (string, error) {
	b, err := json.ConfigCompatibleWithStandardLibrary.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FormatAsPrettyJSON converts data to an indented JSON string
func FormatAsPrettyJSON(data interface{}) (string, error) {
	b, err := json.ConfigCompatibleWithStandardLibrary.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
