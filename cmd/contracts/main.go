// Command contracts checks contract declarations and scenario
// files and renders scenario run reports.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"digital.vasic.contracts/pkg/config"
	"digital.vasic.contracts/pkg/logging"
)

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	envPath    string
	logFormat  string
	verbose    bool

	cfg    *config.Config
	logger logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "contracts",
		Short:         "Function contract tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.logger == nil {
				return nil
			}
			return a.logger.Close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&a.envPath, "env", "", ".env file with CONTRACTS_* variables")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: console, json or zap")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newLintCmd(a),
		newCheckCmd(a),
		newSampleCmd(a),
		newRenderCmd(a),
		newHistoryCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	loader := config.NewEnvLoader()
	if a.envPath != "" {
		if err := loader.Load(a.envPath); err != nil {
			return err
		}
	}
	cfg, err := config.Load(a.configPath, loader)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = a.verbose
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	if cfg.Verbose {
		cfg.LogLevel = "debug"
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	logger.Debug("configuration loaded",
		logging.StringField("log_format", cfg.LogFormat),
		logging.StringField("redis_password", cfg.Redacted().Sink.RedisPassword),
	)
	return nil
}

func newLogger(cfg *config.Config, w io.Writer) (logging.Logger, error) {
	level := logging.ParseLevel(cfg.LogLevel)
	switch cfg.LogFormat {
	case config.LogJSON:
		return logging.NewJSONLoggerTo(w, level, nil), nil
	case config.LogZap:
		return logging.NewProductionZapLogger(level)
	case config.LogConsole, "":
		return logging.NewConsoleLoggerTo(w, cfg.Verbose), nil
	}
	return nil, fmt.Errorf("unknown log format %q", cfg.LogFormat)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
