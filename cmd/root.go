// Package cmd implements the CLI command structure for todolist.
package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nibzard/todolist-go/internal/config"
	"github.com/nibzard/todolist-go/internal/logging"
	"github.com/nibzard/todolist-go/internal/script"
	"github.com/nibzard/todolist-go/internal/snapshot"
	"github.com/nibzard/todolist-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Standard streams, replaced in tests.
var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the todolist CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todolist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// No args or a leading flag means "run".
	subcommand := "run"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "run":
		return runCommand(ctx, cfg, remainingArgs)
	case "replay":
		return replayCommand(cfg, remainingArgs)
	case "validate":
		return validateCommand(cfg, remainingArgs)
	case "tail":
		return tailCommand(ctx, cfg, remainingArgs)
	case "config":
		return cfg.Encode(stdout)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// snapshotPaths holds the --seed and --export values of a subcommand.
type snapshotPaths struct {
	cfg    *config.Config
	seed   string
	export string
}

// snapshotFlags registers --seed and --export on a subcommand flag set.
func snapshotFlags(fs *flag.FlagSet, cfg *config.Config) *snapshotPaths {
	p := &snapshotPaths{cfg: cfg}
	fs.StringVar(&p.seed, "seed", cfg.SeedFile, "Snapshot file to load todos from")
	fs.StringVar(&p.export, "export", cfg.ExportFile, "Snapshot file to write the final state to (- for stdout)")
	return p
}

// resolve expands the parsed values like the config layer does.
func (p *snapshotPaths) resolve() (seed, export string) {
	return p.cfg.ResolvePath(p.seed), p.cfg.ResolvePath(p.export)
}

// runCommand starts the interactive widget.
func runCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todolist run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	paths := snapshotFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	seedPath, exportPath := paths.resolve()

	seed, err := loadSeed(cfg, seedPath)
	if err != nil {
		return err
	}

	runLogger, err := openRunLogger(cfg)
	if err != nil {
		return err
	}
	defer runLogger.Close()
	logger := runLogger.Logger()
	logger.Info("run started", "seed", seedPath, "export", exportPath)

	final, err := ui.RunTUI(ctx, cfg, seed, logger)
	if err != nil {
		logger.Error("run failed", "err", err)
		return err
	}
	logger.Info("run finished", "todos", len(final.Todos), "remaining", final.Remaining())
	return writeExport(exportPath, &final)
}

// replayCommand plays an event script without a terminal.
func replayCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todolist replay", flag.ContinueOnError)
	fs.SetOutput(stderr)
	paths := snapshotFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("replay expects one script file (or - for stdin)")
	}
	seedPath, exportPath := paths.resolve()

	steps, err := readScript(fs.Arg(0))
	if err != nil {
		return err
	}
	seed, err := loadSeed(cfg, seedPath)
	if err != nil {
		return err
	}

	runLogger, err := openRunLogger(cfg)
	if err != nil {
		return err
	}
	defer runLogger.Close()
	logger := runLogger.Logger()
	logger.Info("replay started", "script", fs.Arg(0), "steps", len(steps))

	final, err := ui.Replay(stdout, seed, steps, logger)
	if err != nil {
		logger.Error("replay failed", "err", err)
		return fmt.Errorf("replay %s: %w", fs.Arg(0), err)
	}
	return writeExport(exportPath, &final)
}

// validateCommand checks snapshot files against the schema.
func validateCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todolist validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	schema := fs.String("schema", cfg.SchemaFile, "JSON Schema overriding the built-in snapshot schema")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("validate expects at least one snapshot file")
	}

	failed := 0
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stdout, "[FAIL] %s: %v\n", path, err)
			failed++
			continue
		}
		result := snapshot.ValidateBytes(data, snapshot.ValidationOptions{SchemaPath: cfg.ResolvePath(*schema)})
		for _, w := range result.Warnings {
			fmt.Fprintf(stdout, "[WARN] %s: %s\n", path, w)
		}
		if !result.Valid {
			for _, e := range result.Errors {
				fmt.Fprintf(stdout, "[FAIL] %s: %v\n", path, e)
			}
			failed++
			continue
		}
		f, err := snapshot.Parse(data)
		if err != nil {
			fmt.Fprintf(stdout, "[FAIL] %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Fprintf(stdout, "[OK] %s: %d todos, %d remaining\n", path, len(f.Todos), f.Remaining())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d snapshot files invalid", failed, fs.NArg())
	}
	return nil
}

// tailCommand shows the latest run log.
func tailCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("todolist tail", flag.ContinueOnError)
	fs.SetOutput(stderr)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logDir, err := logging.FindLogDir(cfg.LogDir, cfg.WorkDir)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}
	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(stdout, "No log files found.")
		return nil
	}

	fmt.Fprintf(stdout, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(stdout, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(stdout)

	return logging.TailLog(stdout, logPath, *n, *follow, ctx.Done())
}

func versionCommand() error {
	fmt.Fprintf(stdout, "todolist version %s\n", Version)
	return nil
}

func openRunLogger(cfg *config.Config) (*logging.RunLogger, error) {
	runLogger, err := logging.NewRunLogger(cfg.LogDir, cfg.WorkDir, logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	return runLogger, nil
}

func loadSeed(cfg *config.Config, path string) (*snapshot.File, error) {
	if path == "" {
		return nil, nil
	}
	f, err := snapshot.LoadValid(path, snapshot.ValidationOptions{SchemaPath: cfg.SchemaFile})
	if err != nil {
		return nil, fmt.Errorf("loading seed: %w", err)
	}
	return f, nil
}

func readScript(path string) ([]script.Step, error) {
	if path == "-" {
		return script.Parse(stdin)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer file.Close()
	steps, err := script.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return steps, nil
}

// writeExport saves f to path. "-" writes to stdout and "" skips the export.
func writeExport(path string, f *snapshot.File) error {
	switch path {
	case "":
		return nil
	case "-":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("exporting state: %w", err)
	}
	return nil
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "todolist - a stream-driven terminal todo list")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  todolist [options] [command] [command options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run               Run the interactive todo list (default command)")
	fmt.Fprintln(w, "  replay SCRIPT|-   Play an event script and print the final list")
	fmt.Fprintln(w, "  validate FILE...  Validate snapshot files")
	fmt.Fprintln(w, "  tail              Show the latest run log")
	fmt.Fprintln(w, "  config            Print the effective configuration")
	fmt.Fprintln(w, "  version           Show version information")
	fmt.Fprintln(w, "  help              Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run/Replay Options:")
	fmt.Fprintln(w, "  -seed string")
	fmt.Fprintln(w, "        Snapshot file to load todos from")
	fmt.Fprintln(w, "  -export string")
	fmt.Fprintln(w, "        Snapshot file to write the final state to (- for stdout)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tail Options:")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Script commands (one per line, # starts a comment):")
	fmt.Fprintln(w, "  click SEL[#N]")
	fmt.Fprintln(w, "  change SEL[#N] VALUE")
	fmt.Fprintln(w, "  toggle SEL[#N]")
}
