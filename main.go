package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/mcncl/remedy/internal/errors"
	"github.com/mcncl/remedy/internal/repair"
	"github.com/mcncl/remedy/internal/rules"
	"github.com/mcncl/remedy/internal/strategy"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string `help:"Path to input file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Format      string `help:"Input format: json, yaml, xml, toml, csv, ini, markdown or auto." short:"f" default:"auto"`
	Validate    bool   `help:"Validate only: report problems without repairing."`
	Confidence  bool   `help:"Print the confidence score for the input instead of repairing." short:"c"`
	Rules       string `help:"Path to a YAML file with custom repair rules (JSON format only)." type:"path"`
	Advanced    bool   `help:"Try every format repairer and keep the best-scoring result." short:"a"`
	Debug       bool   `help:"Enable debug logging." short:"d"`
	Version     bool   `help:"Show version information." short:"v"`
	Interactive bool   `help:"Run in interactive mode, allowing direct input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Logger *slog.Logger
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	// Parse CLI arguments with Kong
	parser := kong.Must(&CLI,
		kong.Name("remedy"),
		kong.Description("A tool to repair malformed LLM output (JSON, YAML, XML and friends)"),
		kong.UsageOnError(),
	)

	// Check if no arguments provided and set interactive mode by default
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	// Parse the command line arguments
	_, err := parser.Parse(os.Args[1:])
	if err != nil {
		// If there's an error parsing arguments, the usage will already be shown by kong.UsageOnError()
		os.Exit(1)
	}

	// Show version and exit if requested
	if CLI.Version {
		fmt.Printf("remedy version %s\n", Version)
		return
	}

	ctx := &Context{Debug: CLI.Debug}
	if CLI.Debug {
		ctx.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	if err := run(ctx); err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))

		// Show help on error
		fmt.Fprintf(os.Stderr, "\nFor help, run: remedy --help\n")

		os.Exit(1)
	}
}

// run executes the main program logic
func run(ctx *Context) error {
	// 1. Read the input text
	content, err := readInput()
	if err != nil {
		// Error is already wrapped by readInput
		return err
	}

	// 2. Resolve the format
	format, err := resolveFormat(content)
	if err != nil {
		return err
	}

	// 3. Validate-only mode reports problems and stops
	if CLI.Validate {
		return runValidate(format, content)
	}

	// 4. Confidence mode prints the score and stops
	if CLI.Confidence {
		repairer, cleanup, err := buildRepairer(ctx, format)
		if err != nil {
			return err
		}
		defer cleanup()
		fmt.Printf("%.2f\n", repairer.Confidence(content))
		return nil
	}

	// 5. Repair
	repairer, cleanup, err := buildRepairer(ctx, format)
	if err != nil {
		return err
	}
	defer cleanup()

	repaired, err := repairer.Repair(content)
	if err != nil {
		return err
	}

	// 6. Output the result
	return writeOutput(repaired)
}

// resolveFormat honors --format when given and sniffs the content
// otherwise.
func resolveFormat(content string) (repair.Format, error) {
	if CLI.Format == "" || strings.EqualFold(CLI.Format, "auto") {
		return repair.Detect(content), nil
	}
	return repair.ParseFormat(CLI.Format)
}

// runValidate prints validation problems, failing when any exist.
func runValidate(format repair.Format, content string) error {
	problems := repair.ValidatorFor(format).Validate(content)
	if len(problems) == 0 {
		fmt.Printf("valid %s\n", format)
		return nil
	}
	for _, problem := range problems {
		fmt.Println(problem)
	}
	return errors.NewInputError(fmt.Sprintf("input is not valid %s", format), nil)
}

// buildRepairer assembles the repairer for the resolved format, wiring in
// custom rules and the debug logger. The cleanup func releases any worker
// pool.
func buildRepairer(ctx *Context, format repair.Format) (repair.Repairer, func(), error) {
	noop := func() {}

	if CLI.Advanced {
		advanced, err := repair.NewAdvancedRepairer()
		if err != nil {
			return nil, noop, errors.NewConfigError("failed to build the multi-format repairer", err)
		}
		if ctx.Logger != nil {
			advanced.WithLogger(ctx.Logger)
		}
		return advanced, advanced.Release, nil
	}

	extra, err := loadRules(format)
	if err != nil {
		return nil, noop, err
	}

	if format == repair.FormatJSON {
		return repair.NewJSONRepairer(extra...).WithLogger(ctx.Logger), noop, nil
	}
	return repair.ForFormat(format), noop, nil
}

// loadRules reads the custom rules file, if any. Rules only make sense on
// the JSON chain; asking for them with another format is a configuration
// mistake worth failing loudly on.
func loadRules(format repair.Format) ([]strategy.Strategy, error) {
	if CLI.Rules == "" {
		return nil, nil
	}
	if format != repair.FormatJSON {
		return nil, errors.NewConfigError(
			fmt.Sprintf("custom rules apply to JSON only, but the format is %s", format), nil)
	}
	return rules.Load(CLI.Rules)
}

// readInput reads text from file or stdin
func readInput() (string, error) {
	if CLI.Input != "" {
		data, err := os.ReadFile(CLI.Input)
		if err != nil {
			return "", errors.NewInputError(fmt.Sprintf("failed to read file '%s'", CLI.Input), err)
		}
		if len(strings.TrimSpace(string(data))) == 0 {
			return "", errors.NewInputError("file is empty", errors.ErrEmptyInput)
		}
		return string(data), nil
	}

	// Check if stdin has data
	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return "", errors.NewInputError("failed to access stdin", err)
	}

	// Interactive mode or piped input
	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal is interactive (not piped)
		if CLI.Interactive {
			// Interactive mode
			return readInteractiveInput()
		}
		// No data provided on stdin and not in interactive mode
		return "", errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	// Read from stdin (piped input)
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.NewInputError("failed to read from stdin", err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return "", errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return string(data), nil
}

// writeOutput writes repaired text to file or stdout
func writeOutput(text string) error {
	if CLI.Output != "" {
		// Write to file
		err := os.WriteFile(CLI.Output, []byte(text), 0644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "Repaired output written to %s\n", CLI.Output)
		return nil
	}

	// Write to stdout
	_, err := fmt.Println(strings.TrimSpace(text))
	if err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput provides an interactive mode for users to paste
// text and signal completion with Ctrl+D (EOF)
func readInteractiveInput() (string, error) {
	fmt.Fprintln(os.Stderr, "Remedy Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste the text to repair below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	// Read all input until EOF (Ctrl+D)
	reader := bufio.NewReader(os.Stdin)
	var builder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			// End of input
			builder.WriteString(line)
			break
		}
		if err != nil {
			return "", errors.NewInputError("error reading input", err)
		}
		builder.WriteString(line)
	}

	content := builder.String()
	if len(strings.TrimSpace(content)) == 0 {
		return "", errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nRepairing...")
	return content, nil
}
