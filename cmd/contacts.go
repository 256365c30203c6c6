package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-cli/internal/credential"
	"github.com/sells-group/prospect-cli/internal/pipeline"
	"github.com/sells-group/prospect-cli/internal/search"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/customsearch"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Search decision-makers for every resolved company passing the filter",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		return runContactsStage(ctx, st)
	},
}

func init() {
	rootCmd.AddCommand(contactsCmd)
}

func runContactsStage(ctx context.Context, st store.Store) error {
	table, err := loadTitles()
	if err != nil {
		return err
	}

	pool, err := credential.NewPool(ctx, st, credential.Config{
		DailyCap:            cfg.Quota.DailyCap,
		WarnThreshold:       cfg.Quota.WarnThreshold,
		ResetUTCOffsetHours: cfg.Quota.ResetUTCOffsetHours,
	})
	if err != nil {
		return err
	}

	client := customsearch.NewClient(
		customsearch.WithBaseURL(cfg.Search.BaseURL),
		customsearch.WithRateLimit(cfg.Search.RequestsPerSec),
	)
	searcher := search.New(client, pool, table.All())

	o := pipeline.New(st, nil, searcher, table, pipelineConfig())
	summary, err := o.EnrichContacts(ctx)
	if err != nil {
		return err
	}
	logSummary("contacts", summary)
	return nil
}
