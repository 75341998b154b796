package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vbonduro/nutribot/internal/db"
	"github.com/vbonduro/nutribot/internal/logging"
	"github.com/vbonduro/nutribot/internal/service"
	"github.com/vbonduro/nutribot/internal/store"
)

var exportOut string

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Work with feedback stored by the built-in endpoint",
}

var feedbackExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored feedback to an XLSX workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withFeedbackService(cmd, func(ctx context.Context, svc *service.FeedbackService) error {
			return exportFeedback(ctx, svc, exportOut)
		})
	},
}

var feedbackSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the average rating per dish",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withFeedbackService(cmd, func(ctx context.Context, svc *service.FeedbackService) error {
			return printSummary(ctx, cmd.OutOrStdout(), svc)
		})
	},
}

func init() {
	feedbackExportCmd.Flags().StringVar(&exportOut, "out", "feedback.xlsx", "Output file")
	feedbackCmd.AddCommand(feedbackExportCmd, feedbackSummaryCmd)
	rootCmd.AddCommand(feedbackCmd)
}

func withFeedbackService(cmd *cobra.Command, fn func(context.Context, *service.FeedbackService) error) error {
	cfg := loadConfig()
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel, "text")

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer closeDB(database, logger.Error)

	return fn(cmd.Context(), service.NewFeedbackService(store.NewFeedbackStore(database), logger))
}

func exportFeedback(ctx context.Context, svc *service.FeedbackService, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	return svc.Export(ctx, f)
}

func printSummary(ctx context.Context, w io.Writer, svc *service.FeedbackService) error {
	summary, err := svc.Summary(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DISH\tRATINGS\tAVERAGE")
	for _, d := range summary {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\n", d.Dish, d.Count, d.Average)
	}
	return tw.Flush()
}
