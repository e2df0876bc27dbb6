// Command casecells merges, splits, generates and inspects test-case workbooks.
package main

import (
	"fmt"
	"os"

	"github.com/javajack/casecells"
	"github.com/javajack/casecells/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	configPath string
	verbose    bool
	delimiter  string
	rowHeight  float64

	// Set up by the root command before any subcommand runs
	logger *zap.Logger
	cfg    *config.Config
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "casecells",
		Short: "Merge, split and generate test-case spreadsheets",
		Long: `casecells reshapes test-case workbooks whose columns are found by header text.

merge folds each case's step rows into one row of #-delimited steps,
split expands them back into one row per step, and generate builds a
new sheet from a JSON requirement document.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg = c
			logger, err = newLogger(c)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default $CASECELLS_CONFIG or ./casecells.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&delimiter, "delimiter", casecells.DefaultDelimiter, "step unit delimiter")
	pf.Float64Var(&rowHeight, "row-height", casecells.DefaultRowHeight, "row height applied after split (0 keeps each row's height)")

	root.AddCommand(newMergeCmd(), newSplitCmd(), newGenerateCmd(), newInspectCmd(), newCheckCmd())
	return root
}

// loadConfig resolves the config file, then lets explicitly set flags win.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c, err := config.Load(config.Path(configPath))
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("delimiter") {
		c.Delimiter = delimiter
	}
	if flags.Changed("row-height") {
		c.RowHeight = rowHeight
	}
	if verbose {
		c.Logging.Level = "debug"
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// newLogger builds a console logger writing progress lines to stdout.
func newLogger(c *config.Config) (*zap.Logger, error) {
	lvl, err := c.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.OutputPaths = []string{"stdout"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zc.DisableCaller = true
	zc.DisableStacktrace = true
	zc.Level = zap.NewAtomicLevelAt(lvl)
	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

// options returns the processor options for the current run.
func options() []casecells.Option {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return append(cfg.Options(), casecells.WithLogger(logger))
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
