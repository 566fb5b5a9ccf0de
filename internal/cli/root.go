// Package cli implements the startupdash command line: the HTTP server plus
// one-shot report and export commands over the same dataset.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"startupdash/internal/app"
	"startupdash/internal/config"
	"startupdash/internal/dataset"
	"startupdash/internal/infrastructure"
	"startupdash/internal/services"
	"startupdash/pkg/contracts/domain"
)

// rootOptions holds the persistent flags
type rootOptions struct {
	configFile string
	dataPath   string
}

// NewRootCommand builds the startupdash command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   config.AppName,
		Short: config.AppTitle,
		Long: `startupdash loads a startup investment file once and serves a filterable
dashboard over it: funding by year, top sectors, countries, cities and
companies, round activity, founding trend and stage popularity.

The same views are available offline through the report command, and the
filtered rows through the export command.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: config.yaml or configs/config.yaml)")
	root.PersistentFlags().StringVar(&opts.dataPath, "data", "", "investments file, overrides dataset.path")

	root.AddCommand(
		newServeCommand(opts),
		newReportCommand(opts),
		newExportCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s", config.AppName, app.Version)
			if app.BuildTime != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (built %s)", app.BuildTime)
			}
			fmt.Fprintln(cmd.OutOrStdout())
		},
	}
}

// loadConfig reads the configuration and applies the persistent flags
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}
	if o.dataPath != "" {
		cfg.Dataset.Path = o.dataPath
	}
	return cfg, nil
}

// loadDashboard builds a dashboard service for the one-shot commands. Logs go
// to stderr so stdout carries only the command output.
func (o *rootOptions) loadDashboard(ctx context.Context, stderr io.Writer) (*config.Config, *services.DashboardService, *slog.Logger, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ds, err := dataset.Load(ctx, dataset.Options{
		Path:          cfg.Dataset.Path,
		Encoding:      cfg.Dataset.Encoding,
		TargetCountry: cfg.Dataset.TargetCountry,
		Logger:        logger,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	svc, err := services.NewDashboardService(ds, services.DashboardConfig{
		TopN: cfg.Dataset.TopN,
		DefaultYears: domain.YearRange{
			Min: cfg.Dataset.DefaultYearMin,
			Max: cfg.Dataset.DefaultYearMax,
		},
	}, nil, nil, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, svc, logger, nil
}

// filterFlags are the selection flags shared by report and export
type filterFlags struct {
	yearMin int
	yearMax int
	sectors []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.yearMin, "year-min", 0, "first founding year (default: dashboard default)")
	cmd.Flags().IntVar(&f.yearMax, "year-max", 0, "last founding year (default: dashboard default)")
	cmd.Flags().StringArrayVar(&f.sectors, "sector", nil, "market to include, repeatable; commas are part of the name (default: all)")
}

// params overlays the flags that were set onto defaults
func (f *filterFlags) params(cmd *cobra.Command, defaults domain.FilterParams) domain.FilterParams {
	p := defaults
	if cmd.Flags().Changed("year-min") {
		p.YearMin = f.yearMin
	}
	if cmd.Flags().Changed("year-max") {
		p.YearMax = f.yearMax
	}
	if cmd.Flags().Changed("sector") {
		p.Sectors = f.sectors
	}
	return p
}
