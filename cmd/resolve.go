package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/browser"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/pipeline"
	"github.com/sells-group/prospect-cli/internal/report"
	"github.com/sells-group/prospect-cli/internal/resolver"
	"github.com/sells-group/prospect-cli/internal/store"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <jobs.csv> [jobs.csv...]",
	Short: "Resolve company facts for every company in the jobs files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		return runResolveStage(ctx, st, args)
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolveStage(ctx context.Context, st store.Store, jobsPaths []string) error {
	companies, err := collectCompanies(jobsPaths)
	if err != nil {
		return err
	}

	browserCfg := browser.DefaultConfig()
	browserCfg.Headless = cfg.Browser.Headless
	browserCfg.TimeoutSecs = cfg.Browser.TimeoutSecs
	nav, err := browser.NewChromedp(ctx, browserCfg)
	if err != nil {
		return err
	}
	defer nav.Close()

	var opts []resolver.Option
	if cfg.Browser.Intervene {
		opts = append(opts, resolver.WithIntervention(waitForOperator))
	}
	res := resolver.New(nav, opts...)

	o := pipeline.New(st, res, nil, nil, pipelineConfig())
	summary, err := o.ResolveCompanies(ctx, companies)
	if err != nil {
		return err
	}
	logSummary("resolve", summary)
	return nil
}

func collectCompanies(jobsPaths []string) ([]string, error) {
	var jobs []model.JobPosting
	for _, path := range jobsPaths {
		batch, err := report.ReadJobs(path)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, batch...)
	}
	return report.CompanyNames(jobs), nil
}

// waitForOperator blocks until the operator confirms the bot challenge
// is cleared in the visible browser window.
func waitForOperator(ctx context.Context) error {
	fmt.Fprintln(os.Stderr, "Bot challenge detected. Solve it in the browser window, then press Enter to continue.")
	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(os.Stdin).ReadString('\n')
		done <- err
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func logSummary(stage string, s model.RunSummary) {
	failed := 0
	for _, u := range s.Units {
		if u.Status == model.UnitFailed {
			failed++
		}
	}
	zap.L().Info("run finished",
		zap.String("stage", stage),
		zap.String("run_id", s.RunID),
		zap.Int("companies", s.Companies),
		zap.Int("units", len(s.Units)),
		zap.Int("failed_units", failed),
		zap.Int("contacts_found", s.ContactsFound),
		zap.Bool("quota_stopped", s.QuotaStopped),
		zap.Bool("interrupted", s.Interrupted),
	)
}
