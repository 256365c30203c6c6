package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

// ResolveCompanies resolves facts for every company name not already
// present in the store. Already-resolved companies are skipped, which
// makes reruns cheap and interrupted runs resumable. Cancellation
// stops before the next company; everything resolved so far is
// already durable.
func (o *Orchestrator) ResolveCompanies(ctx context.Context, companyNames []string) (model.RunSummary, error) {
	summary := newRunSummary()
	log := zap.L().With(zap.String("run_id", summary.RunID))

	existing, err := o.store.ListCompanyFacts(ctx)
	if err != nil {
		return summary, eris.Wrap(err, "pipeline: list company facts")
	}
	resolved := make(map[string]struct{}, len(existing))
	for _, f := range existing {
		resolved[f.CompanyName] = struct{}{}
	}

	pending := make([]string, 0, len(companyNames))
	seen := make(map[string]struct{}, len(companyNames))
	for _, name := range companyNames {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if _, done := resolved[name]; done {
			continue
		}
		pending = append(pending, name)
	}

	log.Info("pipeline: resolving companies",
		zap.Int("total", len(companyNames)),
		zap.Int("already_resolved", len(companyNames)-len(pending)),
		zap.Int("pending", len(pending)),
	)

	for i, name := range pending {
		if ctx.Err() != nil {
			summary.Interrupted = true
			log.Warn("pipeline: resolution interrupted", zap.Int("resolved", i))
			return summary, nil
		}

		facts, unit := o.resolver.Resolve(ctx, name)
		if err := o.store.SaveCompanyFacts(ctx, facts); err != nil {
			return summary, eris.Wrap(err, "pipeline: save company facts")
		}
		summary.Add(unit)
		summary.Companies++

		o.pause(ctx, o.cfg.PacingMinSecs, o.cfg.PacingMaxSecs)
		o.longBreak(ctx, i+1)
	}

	log.Info("pipeline: company resolution done", zap.Int("resolved", len(pending)))
	return summary, nil
}
