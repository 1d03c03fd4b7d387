package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/paulexconde/npsdash/internal/app"
	"github.com/paulexconde/npsdash/internal/dashboard"
	"github.com/paulexconde/npsdash/internal/models"
	"github.com/paulexconde/npsdash/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newProjectsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List configured projects and their campaign ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := services.NewCatalog(c.cfg.Projects, nil, nil, nil, c.logger)
			projects := catalog.Projects()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range catalog.ProjectNames() {
				fmt.Fprintf(w, "%s\t%s\n", name, strings.Join(projects[name], ", "))
			}
			return w.Flush()
		},
	}
}

func newViewCmd(c *cli) *cobra.Command {
	var (
		sel      selectionFlags
		sortBy   string
		order    string
		page     int
		pageSize int
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print one page of survey responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := services.DefaultSort
			if sortBy != "" {
				field, err := services.ParseSortField(sortBy)
				if err != nil {
					return err
				}
				spec = services.SortSpec{Field: field, Order: services.Desc}
			}
			if order != "" {
				o, err := services.ParseSortOrder(order)
				if err != nil {
					return err
				}
				spec.Order = o
			}

			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if pageSize == 0 {
					pageSize = a.Config.Report.PageSize
				}
				ctrl := dashboard.NewController(a.Surveys, pageSize, c.logger)
				ctrl.Dispatch(dashboard.SelectionChanged{Selection: sel.selection(), Filter: sel.filter})
				if _, err := ctrl.Fetch(ctx); err != nil {
					return err
				}
				ctrl.Dispatch(dashboard.SetSort{Spec: spec})
				ctrl.Dispatch(dashboard.GoToPage{Page: page})

				return printTable(cmd.OutOrStdout(), ctrl.View(), a.Location)
			})
		},
	}

	sel.register(cmd)
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort field: client_user_id, campaign_id, score, feedback, created_at")
	cmd.Flags().StringVar(&order, "order", "", "asc or desc")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "rows per page (default from config)")
	return cmd
}

const viewTimeLayout = "2006-01-02 15:04:05"

func printTable(out io.Writer, view dashboard.TableView, loc *time.Location) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CLIENT USER\tCAMPAIGN\tSCORE\tCREATED\tFEEDBACK")
	for _, row := range view.Page.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			row.ClientUser(), row.CampaignID, row.Score.String(), createdCell(row, loc), feedbackCell(row.Feedback))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	p := view.Page
	_, err := fmt.Fprintf(out, "\npage %d/%d, %d rows, sorted by %s %s\n",
		p.CurrentPage, p.TotalPages, p.TotalItems, view.Sort.Field, view.Sort.Order)
	return err
}

func createdCell(row models.Row, loc *time.Location) string {
	if t, ok := row.CreatedAt.Time(); ok {
		return t.In(loc).Format(viewTimeLayout)
	}
	return row.CreatedAt.Raw()
}

func feedbackCell(fb models.Feedback) string {
	text := services.ExtractFeedback(fb).Text
	if text == "" {
		text = fb.Display()
	}
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > 60 {
		return string(r[:57]) + "..."
	}
	return text
}

func newReportCmd(c *cli) *cobra.Command {
	var (
		sel    selectionFlags
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize NPS per campaign with the top comments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				rows, err := a.Surveys.Fetch(ctx, sel.selection(), sel.filter)
				if err != nil {
					return err
				}
				if limit == 0 {
					limit = a.Config.Report.TopComments
				}
				report := services.BuildReport(rows, limit, a.Location)

				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(report)
				}
				return printReport(cmd.OutOrStdout(), report)
			})
		},
	}

	sel.register(cmd)
	cmd.Flags().IntVar(&limit, "limit", 0, "number of top comments (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printReport(out io.Writer, report services.Report) error {
	if report.Period != nil {
		fmt.Fprintf(out, "Period: %s - %s\n\n", report.Period.Min, report.Period.Max)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "CAMPAIGN\tNPS\tAVG\tPROMOTERS\tPASSIVES\tCRITICS\tTOTAL\t")
	writeMetrics := func(name string, m services.Metrics) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t\n",
			name, m.NPSDisplay, m.AverageDisplay(), m.PromoterCount, m.PassiveCount, m.CriticCount, m.Total)
	}
	for _, g := range report.Groups {
		writeMetrics(g.CampaignID, g.Metrics)
	}
	if report.Overall != nil {
		writeMetrics("overall", *report.Overall)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(report.TopComments) > 0 {
		fmt.Fprintln(out, "\nTop comments:")
	}
	for i, cm := range report.TopComments {
		fmt.Fprintf(out, "%d. [%s] %s\n", i+1, cm.Score.String(), strings.Join(strings.Fields(cm.Text), " "))
	}
	return nil
}

func newExportCmd(c *cli) *cobra.Command {
	var (
		sel    selectionFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the selected responses as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				rows, err := a.Surveys.Fetch(ctx, sel.selection(), sel.filter)
				if err != nil {
					return err
				}
				body, err := services.ExportCSV(rows, services.ExportOptions{Location: a.Location})
				if err != nil {
					return err
				}

				if output == "-" {
					_, err := cmd.OutOrStdout().Write(body)
					return err
				}
				if output == "" {
					output = services.ExportFileName(sel.project, time.Now())
				}
				if err := os.WriteFile(output, body, 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				if key, ok := a.Archiver.Archive(output, body); ok {
					c.logger.Info("Export queued for archive", zap.String("key", key))
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", len(rows), output)
				return nil
			})
		},
	}

	sel.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default nps_data_<project>_<date>.csv)`)
	return cmd
}
