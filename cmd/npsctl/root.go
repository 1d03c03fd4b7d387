package main

import (
	"context"
	"fmt"
	"time"

	"github.com/paulexconde/npsdash/internal/app"
	"github.com/paulexconde/npsdash/internal/config"
	"github.com/paulexconde/npsdash/internal/pkg/logger"
	"github.com/paulexconde/npsdash/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries what the persistent flags produced to every subcommand.
type cli struct {
	configPath string
	verbose    bool
	timeout    time.Duration

	cfg    *config.Config
	logger *zap.Logger
}

const filterExample = "score != nil && score <= 6"

// selectionFlags are shared by view, report and export.
type selectionFlags struct {
	project   string
	domain    string
	campaigns []string
	date      string
	filter    string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.project, "project", "p", "", "project name (required)")
	cmd.Flags().StringVar(&f.domain, "domain", "", "only campaigns of this domain")
	cmd.Flags().StringSliceVarP(&f.campaigns, "campaign", "c", nil, "campaign ids within the project")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "responses created on or after YYYY-MM-DD")
	cmd.Flags().StringVar(&f.filter, "filter", "", "row filter expression, e.g. '"+filterExample+"'")
	_ = cmd.MarkFlagRequired("project")
}

func (f *selectionFlags) selection() services.Selection {
	return services.Selection{
		Project:     f.project,
		Domain:      f.domain,
		CampaignIDs: f.campaigns,
		Date:        f.date,
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "npsctl",
		Short: "Query NPS survey responses from the command line",
		Long: `npsctl reads the same survey data as the dashboard: it lists projects,
prints a sorted page of responses, summarizes NPS per campaign and exports CSV.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv(c.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			c.cfg = cfg

			c.logger, err = logger.New(cfg.Log.Level, cfg.Log.Format, c.verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "config/config.yaml", "path to the YAML configuration")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 30*time.Second, "overall timeout for database work")

	root.AddCommand(
		newProjectsCmd(c),
		newViewCmd(c),
		newReportCmd(c),
		newExportCmd(c),
	)
	return root
}

// withApp opens the dependencies, checks the database and runs fn.
func (c *cli) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
	defer cancel()

	a, err := app.New(ctx, c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if err := a.Ping(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return fn(ctx, a)
}
