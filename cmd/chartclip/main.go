package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/chartclip"
	"github.com/wippyai/chartclip/envelope"
	clerrors "github.com/wippyai/chartclip/errors"
)

const usage = `Usage: chartclip [-config file] [-v] <command> [flags] [payload]

Commands:
  encode   read a notes.toml selection and print its clipboard payload
  decode   print the notes or tempo events in a clipboard payload
  inspect  print the envelope facts of a clipboard payload
  view     interactive viewer (paste a payload, browse its notes)

Run "chartclip <command> -h" for command flags.
`

// errUsage signals that usage was already printed.
var errUsage = errors.New("usage")

type app struct {
	cfg    Config
	logger *zap.Logger
	codec  *chartclip.Codec
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// stdinTerminal reports whether stdin is interactive.
	stdinTerminal func() bool
	readClipboard func() (string, error)
	writeClip     func(string) error
}

func main() {
	var (
		configPath = flag.String("config", "", "Config file (default $XDG_CONFIG_HOME/chartclip/config.toml)")
		verbose    = flag.Bool("v", false, "Debug logging")
	)
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	path, explicit := *configPath, *configPath != ""
	if !explicit {
		path = defaultConfigPath()
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	chartclip.SetLogger(logger)
	if cfg.Path != "" {
		logger.Debug("loaded config", zap.String("path", cfg.Path))
	}

	a := &app{
		cfg:           cfg,
		logger:        logger,
		stdin:         os.Stdin,
		stdout:        os.Stdout,
		stderr:        os.Stderr,
		stdinTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		readClipboard: clipboard.ReadAll,
		writeClip:     clipboard.WriteAll,
	}

	if err := a.run(flag.Args()); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		_ = logger.Sync()
		os.Exit(exitCode(err))
	}
}

// exitCode maps payload rejections to 2 and everything else to 1.
func exitCode(err error) int {
	var e *clerrors.Error
	if errors.As(err, &e) && e.Kind != clerrors.KindInvalidNote && e.Kind != clerrors.KindInternal {
		return 2
	}
	return 1
}

func (a *app) run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.stderr, usage)
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "encode":
		return a.encode(rest)
	case "decode":
		return a.decode(rest)
	case "inspect":
		return a.inspect(rest)
	case "view":
		return a.view(rest)
	case "help", "-h", "--help":
		fmt.Fprint(a.stdout, usage)
		return nil
	default:
		fmt.Fprintf(a.stderr, "unknown command %q\n\n%s", cmd, usage)
		return errUsage
	}
}

// common registers the flags shared by every command and returns a
// function that builds the codec once flags are parsed.
func (a *app) common(fs *flag.FlagSet) (useClipboard *bool, build func()) {
	useClipboard = fs.Bool("clipboard", a.cfg.UseClipboard, "Use the system clipboard for the payload")
	maxSize := fs.Int("max-size", a.cfg.MaxDecompressedSize, "Decompressed size ceiling in bytes")
	return useClipboard, func() {
		a.codec = chartclip.New(
			chartclip.WithMaxDecompressedSize(*maxSize),
			chartclip.WithLogger(a.logger),
		)
	}
}

func (a *app) newFlagSet(name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: chartclip %s [flags] %s\n", name, args)
		fs.PrintDefaults()
	}
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errUsage
		}
		return err
	}
	return nil
}

func (a *app) encode(args []string) error {
	fs := a.newFlagSet("encode", "")
	in := fs.String("in", "-", "Notes file (- for stdin)")
	useClipboard, build := a.common(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	build()

	var (
		data []byte
		err  error
	)
	if *in == "-" {
		if a.stdinTerminal() {
			return fmt.Errorf("no notes: pass -in file or pipe a notes file on stdin")
		}
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = os.ReadFile(*in)
	}
	if err != nil {
		return fmt.Errorf("read notes: %w", err)
	}

	sel, err := parseNotes(data)
	if err != nil {
		return err
	}
	text, err := a.codec.Encode(sel)
	if err != nil {
		return err
	}

	if *useClipboard {
		if err := a.writeClip(text); err != nil {
			return fmt.Errorf("write clipboard: %w", err)
		}
		a.logger.Info("copied payload to clipboard", zap.Int("notes", len(sel)))
		return nil
	}
	_, err = fmt.Fprintln(a.stdout, text)
	return err
}

func (a *app) decode(args []string) error {
	fs := a.newFlagSet("decode", "[payload]")
	format := fs.String("format", a.cfg.Format, "Output format: text, toml or cbor")
	useClipboard, build := a.common(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := checkFormat(*format); err != nil {
		return err
	}
	build()

	text, err := a.payload(fs.Args(), *useClipboard)
	if err != nil {
		return err
	}
	switch {
	case envelope.IsTempo(text):
		events, err := a.codec.DecodeTempo(text)
		if err != nil {
			return err
		}
		return writeTempo(a.stdout, events, *format)
	case a.codec.IsTimed(text):
		sel, err := a.codec.DecodeTimed(text)
		if err != nil {
			return err
		}
		return writeTimed(a.stdout, sel, *format)
	}
	sel, err := a.codec.Decode(text)
	if err != nil {
		return err
	}
	return writeNotes(a.stdout, sel, *format)
}

func (a *app) inspect(args []string) error {
	fs := a.newFlagSet("inspect", "[payload]")
	useClipboard, build := a.common(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	build()

	text, err := a.payload(fs.Args(), *useClipboard)
	if err != nil {
		return err
	}
	info, _, err := a.codec.Inspect(text)
	if err != nil {
		return err
	}
	writeInfo(a.stdout, info)
	return nil
}

func (a *app) view(args []string) error {
	fs := a.newFlagSet("view", "[payload]")
	useClipboard, build := a.common(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	build()

	initial := strings.Join(fs.Args(), " ")
	if initial == "" && *useClipboard {
		text, err := a.readClipboard()
		if err != nil {
			return fmt.Errorf("read clipboard: %w", err)
		}
		initial = text
	}
	return runViewer(a.codec, initial, a.readClipboard)
}

// payload picks the payload from, in order: arguments, the clipboard when
// requested, or piped stdin.
func (a *app) payload(args []string, useClipboard bool) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case useClipboard:
		text, err := a.readClipboard()
		if err != nil {
			return "", fmt.Errorf("read clipboard: %w", err)
		}
		return text, nil
	case a.stdinTerminal():
		return "", fmt.Errorf("no payload: pass it as an argument, pipe it on stdin, or use -clipboard")
	}

	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
