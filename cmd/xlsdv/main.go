// Command xlsdv encodes data validation rules into BIFF8 DVAL/DV records and
// dumps record streams.
package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/cespare/xxhash/v2"

	"github.com/yamitzky/xlwt-go/xlwt"
)

var version = "dev"

// cli defines the command-line interface for xlsdv.
type cli struct {
	LogLevel  string `name:"log-level" default:"info" enum:"debug,info,warn,error" env:"XLSDV_LOG_LEVEL" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" default:"text" enum:"text,json" env:"XLSDV_LOG_FORMAT" help:"Log format (text, json)"`

	Encode  encodeCmd  `cmd:"" help:"Encode a YAML rule file into DVAL and DV records"`
	Dump    dumpCmd    `cmd:"" help:"Dump a BIFF record stream"`
	Version versionCmd `cmd:"" help:"Print version information"`
}

// env carries the streams and logger of one invocation into the commands.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

type encodeCmd struct {
	Rules   string `arg:"" help:"YAML rule file" type:"existingfile"`
	Out     string `short:"o" help:"Write records to FILE instead of stdout" type:"path" placeholder:"FILE"`
	Hex     bool   `help:"Write records as hex text"`
	Dump    bool   `help:"Dump the encoded records to stderr"`
	Verbose int    `short:"v" type:"counter" help:"Trace record encoding to stderr; repeat to hex-dump each record"`
}

func (c *encodeCmd) Run(e *env) error {
	content, err := os.ReadFile(c.Rules)
	if err != nil {
		return fmt.Errorf("failed to read rule file: %w", err)
	}
	rules, err := parseRuleFile(content)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Rules, err)
	}

	sheet := xlwt.NewSheet(rules.Sheet, &xlwt.SheetOptions{
		Tokenizer: xlwt.NewFormulaParser(rules.Names),
		Datemode:  rules.Datemode,
		Logfile:   e.stderr,
		Verbosity: c.Verbose,
	})
	if err := rules.apply(sheet); err != nil {
		return fmt.Errorf("%s: %w", c.Rules, err)
	}

	var buf bytes.Buffer
	if err := sheet.StoreDataValidations(&buf); err != nil {
		return err
	}
	data := buf.Bytes()

	e.logger.Info("encoded data validations",
		"sheet", sheet.Name,
		"rules", sheet.DataValidations().Len(),
		"bytes", len(data),
		"xxhash64", fmt.Sprintf("%016x", xxhash.Sum64(data)),
	)

	if c.Dump {
		if err := xlwt.Dump(data, e.stderr, false); err != nil {
			return err
		}
	}

	out := data
	if c.Hex {
		out = []byte(hex.EncodeToString(data) + "\n")
	}
	if c.Out == "" {
		_, err = e.stdout.Write(out)
		return err
	}
	if err := os.WriteFile(c.Out, out, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	e.logger.Debug("wrote records", "path", c.Out)
	return nil
}

type dumpCmd struct {
	File       string `arg:"" help:"BIFF record stream, or - for stdin"`
	Hex        bool   `help:"Input is hex text as written by encode --hex"`
	Unnumbered bool   `short:"u" help:"Omit offsets (for meaningful diffs)"`
	Count      bool   `short:"c" help:"Count records by type instead of dumping them"`
}

func (c *dumpCmd) Run(e *env) error {
	var (
		data []byte
		err  error
	)
	if c.File == "-" {
		data, err = io.ReadAll(e.stdin)
	} else {
		data, err = os.ReadFile(c.File)
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if c.Hex {
		if data, err = hex.DecodeString(strings.TrimSpace(string(data))); err != nil {
			return fmt.Errorf("invalid hex input: %w", err)
		}
	}

	switch format := xlwt.InspectFormat(data); format {
	case "biff", "":
	default:
		return fmt.Errorf("input is an %s, not a BIFF record stream", xlwt.FileFormatDescriptions[format])
	}

	if c.Count {
		return xlwt.CountRecords(data, e.stdout)
	}
	return xlwt.Dump(data, e.stdout, c.Unnumbered)
}

type versionCmd struct{}

func (versionCmd) Run(e *env) error {
	fmt.Fprintf(e.stdout, "xlsdv %s\n", version)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		cmdline  cli
		exited   bool
		exitCode int
	)
	parser, err := kong.New(&cmdline,
		kong.Name("xlsdv"),
		kong.Description("Encode BIFF8 data validation records."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) {
			exited = true
			exitCode = code
		}),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	if err != nil {
		fmt.Fprintf(stderr, "xlsdv: %v\n", err)
		return 2
	}

	ctx, err := parser.Parse(args)
	if exited {
		return exitCode
	}
	if err != nil {
		fmt.Fprintf(stderr, "xlsdv: error: %v\n", err)
		return 2
	}

	logger := newLogger(stderr, cmdline.LogLevel, cmdline.LogFormat)
	e := &env{stdin: stdin, stdout: stdout, stderr: stderr, logger: logger}
	if err := ctx.Run(e); err != nil {
		logger.Error("command failed", "command", ctx.Command(), "error", err)
		return 1
	}
	return 0
}

// newLogger builds the structured logger for one invocation.
func newLogger(w io.Writer, level, format string) *slog.Logger {
	var slogLevel slog.Level
	if err := slogLevel.UnmarshalText([]byte(level)); err != nil {
		slogLevel = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: slogLevel}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
