package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"nklab/internal/metrics"
	"nklab/internal/storage"
	nkapi "nklab/pkg/nklab"
)

const (
	benchmarksDir = "benchmarks"
	exportsDir    = "exports"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	storeKind     string
	dbPath        string
	benchmarksDir string
	exportsDir    string
	logLevel      string
	jsonOut       bool
	metricsFile   string

	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "nkctl",
		Short:         "Build, walk and rank NK fitness landscapes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(opts.logLevel, opts.stderr)
			if err != nil {
				return err
			}
			opts.logger = logger
			if !cmd.Flags().Changed("json") {
				opts.jsonOut = !isTerminal(opts.stdout)
			}
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return writeMetricsFile(opts.metricsFile)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.storeKind, "store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	flags.StringVar(&opts.dbPath, "db-path", "nklab.db", "sqlite database path")
	flags.StringVar(&opts.benchmarksDir, "benchmarks-dir", benchmarksDir, "run artifacts directory")
	flags.StringVar(&opts.exportsDir, "exports-dir", exportsDir, "export destination directory")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	flags.BoolVar(&opts.jsonOut, "json", false, "emit JSON (default when stdout is not a terminal)")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write landscape metrics in Prometheus text format to this path")

	root.AddCommand(
		newRunCmd(opts),
		newRunsCmd(opts),
		newFitnessCmd(opts),
		newWalkCmd(opts),
		newRankingCmd(opts),
		newDiagnosticsCmd(opts),
		newExportCmd(opts),
		newLandscapeCmd(opts),
	)
	return root
}

func (o *globalOptions) client() (*nkapi.Client, error) {
	return nkapi.New(nkapi.Options{
		StoreKind:     o.storeKind,
		DBPath:        o.dbPath,
		BenchmarksDir: o.benchmarksDir,
		ExportsDir:    o.exportsDir,
		Logger:        o.logger,
	})
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// isTerminal reports whether w is an interactive terminal. Writers that are
// not files count as terminals.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return true
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func writeMetricsFile(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := metrics.WriteText(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
