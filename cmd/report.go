package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report <jobs.csv> [jobs.csv...]",
	Short: "Join jobs, company facts, and decision-makers into the final report",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		facts, err := st.ListCompanyFacts(ctx)
		if err != nil {
			return err
		}
		decisionMakers, err := st.ListDecisionMakers(ctx)
		if err != nil {
			return err
		}

		for _, path := range args {
			jobs, err := report.ReadJobs(path)
			if err != nil {
				return err
			}
			batch := report.BatchTitle(path)
			rows := report.Join(jobs, facts, decisionMakers, reportSizeFilter(), cfg.Filter.Industries)
			if err := report.Export(ctx, cfg.Report.OutputDir, batch, rows); err != nil {
				return err
			}
			zap.L().Info("report written",
				zap.String("batch", batch),
				zap.Int("jobs", len(jobs)),
				zap.Int("rows", len(rows)),
				zap.String("dir", cfg.Report.OutputDir),
			)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
