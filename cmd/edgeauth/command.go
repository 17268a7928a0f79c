package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// Command represents a CLI command with common functionality
type Command struct {
	Name        string
	Description string
	Usage       string
	Examples    []string
	Run         func(args []string) error

	stderr io.Writer
}

// NewFlagSet creates a standardized flag set for a command.
// Parse errors are returned instead of exiting so that Execute reports them.
func (c *Command) NewFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(c.Name, pflag.ContinueOnError)
	fs.SetOutput(c.errWriter())
	fs.Usage = func() {
		c.PrintUsage()
		w := c.errWriter()
		fmt.Fprintln(w, "\nFLAGS:")
		fs.SetOutput(w)
		fs.PrintDefaults()
	}
	return fs
}

// PrintUsage prints standardized usage information
func (c *Command) PrintUsage() {
	w := c.errWriter()
	fmt.Fprintf(w, "%s\n\n", c.Description)
	fmt.Fprintf(w, "USAGE:\n    %s\n", c.Usage)
	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nEXAMPLES:\n")
		for _, example := range c.Examples {
			fmt.Fprintf(w, "    %s\n", example)
		}
	}
}

func (c *Command) errWriter() io.Writer {
	if c.stderr == nil {
		return os.Stderr
	}
	return c.stderr
}

// CommandRegistry manages all CLI commands
type CommandRegistry struct {
	commands map[string]*Command
	version  VersionInfo

	stdout io.Writer
	stderr io.Writer
}

// VersionInfo holds build-time version information
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewCommandRegistry creates a new command registry writing to stdout and stderr.
func NewCommandRegistry(v VersionInfo, stdout, stderr io.Writer) *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]*Command),
		version:  v,
		stdout:   stdout,
		stderr:   stderr,
	}
}

// Register adds a command to the registry
func (r *CommandRegistry) Register(cmd *Command) {
	cmd.stderr = r.stderr
	r.commands[cmd.Name] = cmd
}

// Execute runs the appropriate command based on args
func (r *CommandRegistry) Execute(args []string) error {
	if len(args) < 1 {
		r.PrintHelp(r.stderr)
		return fmt.Errorf("no command specified")
	}

	cmdName := args[0]

	// Handle special commands
	switch cmdName {
	case "-h", "--help":
		r.PrintHelp(r.stdout)
		return nil
	}

	// Execute registered command
	cmd, ok := r.commands[cmdName]
	if !ok {
		r.PrintHelp(r.stderr)
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	err := cmd.Run(args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	return err
}

// PrintHelp prints overall CLI help
func (r *CommandRegistry) PrintHelp(w io.Writer) {
	fmt.Fprintln(w, "edgeauth - module credentials from the IoT Edge workload API")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "    edgeauth <command> [arguments]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "COMMANDS:")

	// Print commands in a consistent order
	order := []string{"token", "sign", "trust-bundle", "purchase", "validate", "version", "help"}
	for _, name := range order {
		if cmd, ok := r.commands[name]; ok {
			fmt.Fprintf(w, "    %-13s %s\n", cmd.Name, cmd.Description)
		}
	}

	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'edgeauth <command> --help' for more information on a command.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "ENVIRONMENT:")
	fmt.Fprintln(w, "    Inside an edge module the IOTEDGE_* variables set by the runtime")
	fmt.Fprintln(w, "    are enough; --config adds or overrides settings from a YAML file.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, "    # Issue a SAS token valid for one hour")
	fmt.Fprintln(w, "    edgeauth token --ttl 1h")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "    # Show the certificates the daemon trusts")
	fmt.Fprintln(w, "    edgeauth trust-bundle --summary")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "    # Validate configuration file")
	fmt.Fprintln(w, "    edgeauth validate edgeauth.yaml")
}

// PrintCommandHelp prints the usage of a single command.
func (r *CommandRegistry) PrintCommandHelp(name string) error {
	cmd, ok := r.commands[name]
	if !ok {
		return fmt.Errorf("unknown command: %s", name)
	}
	cmd.PrintUsage()
	return nil
}

// TableWriter provides simple table formatting
type TableWriter struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTableWriter creates a new table writer
func NewTableWriter(headers []string) *TableWriter {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &TableWriter{
		headers: headers,
		widths:  widths,
	}
}

// AddRow adds a row to the table
func (t *TableWriter) AddRow(row []string) {
	t.rows = append(t.rows, row)
	for i, cell := range row {
		if i < len(t.widths) && len(cell) > t.widths[i] {
			t.widths[i] = len(cell)
		}
	}
}

// Print writes the table with borders to w.
func (t *TableWriter) Print(w io.Writer) {
	t.printSeparator(w, "┌", "┬", "┐")
	t.printRow(w, t.headers)
	t.printSeparator(w, "├", "┼", "┤")
	for _, row := range t.rows {
		t.printRow(w, row)
	}
	t.printSeparator(w, "└", "┴", "┘")
}

func (t *TableWriter) printSeparator(w io.Writer, left, mid, right string) {
	fmt.Fprint(w, left)
	for i, width := range t.widths {
		fmt.Fprint(w, strings.Repeat("─", width+2))
		if i < len(t.widths)-1 {
			fmt.Fprint(w, mid)
		}
	}
	fmt.Fprintln(w, right)
}

func (t *TableWriter) printRow(w io.Writer, row []string) {
	fmt.Fprint(w, "│")
	for i, cell := range row {
		if i < len(t.widths) {
			fmt.Fprintf(w, " %-*s │", t.widths[i], cell)
		}
	}
	fmt.Fprintln(w)
}
