package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fxlab/fxbot/internal/monitoring"
	"github.com/fxlab/fxbot/pkg/config"
	"github.com/fxlab/fxbot/pkg/logger"
	"github.com/fxlab/fxbot/pkg/orchestrator"
)

const version = "0.3.0"

// rootOptions carries the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath  string
	envFile     string
	logLevel    string
	logFormat   string
	metricsAddr string

	// data overrides applied on top of the config file
	csvPath   string
	eventsCSV string
	start     string
	end       string

	cfg *config.Config
	log *zap.Logger
}

// setup loads the env file, configuration and logger. Flag values override
// the file where both are set.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else {
		godotenv.Load() // optional .env
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") || cfg.General.LogLevel == "" {
		cfg.General.LogLevel = o.logLevel
	}
	if cmd.Flags().Changed("log-format") || cfg.General.LogFormat == "" {
		cfg.General.LogFormat = o.logFormat
	}
	if o.metricsAddr != "" {
		cfg.General.MetricsAddr = o.metricsAddr
	}
	if o.csvPath != "" {
		cfg.Data.CSVPath = o.csvPath
	}
	if o.eventsCSV != "" {
		cfg.Data.EventsCSV = o.eventsCSV
	}
	if o.start != "" {
		cfg.Data.Start = o.start
	}
	if o.end != "" {
		cfg.Data.End = o.end
	}
	o.cfg = cfg

	log, err := logger.New(cfg.General.LogLevel, cfg.General.LogFormat)
	if err != nil {
		return err
	}
	o.log = log

	if cfg.General.MetricsAddr != "" {
		errCh := monitoring.Serve(cfg.General.MetricsAddr)
		go func() {
			if err := <-errCh; err != nil {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		log.Info("serving metrics", zap.String("addr", cfg.General.MetricsAddr))
	}
	return nil
}

func (o *rootOptions) orchestrator() (*orchestrator.Orchestrator, error) {
	return orchestrator.New(o.cfg, o.log)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "fxbot",
		Short:         "Long/flat FX trend backtesting and parameter research",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			return opts.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				opts.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "path to YAML config file")
	pf.StringVar(&opts.envFile, "env-file", "", "path to .env file")
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	pf.StringVar(&opts.logFormat, "log-format", "console", "log encoding (console|json)")
	pf.StringVar(&opts.metricsAddr, "metrics-addr", "", "listen address for Prometheus metrics (empty disables)")
	pf.StringVar(&opts.csvPath, "csv", "", "OHLCV CSV file (overrides config)")
	pf.StringVar(&opts.eventsCSV, "events", "", "events calendar CSV for entry blackouts")
	pf.StringVar(&opts.start, "start", "", "first bar date (inclusive)")
	pf.StringVar(&opts.end, "end", "", "last bar date (inclusive)")

	root.AddCommand(
		newBacktestCmd(opts),
		newOptimizeCmd(opts),
		newWalkForwardCmd(opts),
		newPaperCmd(opts),
		newExportCmd(opts),
		newScorersCmd(opts),
	)
	return root
}

func parseIntList(raw string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q in list %q", part, raw)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list %q", raw)
	}
	return out, nil
}

func parseFloatList(raw string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q in list %q", part, raw)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list %q", raw)
	}
	return out, nil
}
