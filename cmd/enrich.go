package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <jobs.csv> [jobs.csv...]",
	Short: "Run the full pipeline: resolve companies, then search decision-makers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := runResolveStage(ctx, st, args); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		return runContactsStage(ctx, st)
	},
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}
