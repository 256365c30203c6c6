package pipeline

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/checkpoint"
	"github.com/sells-group/prospect-cli/internal/credential"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

// searchKey identifies one (company, title) search in the fine-grained
// checkpoint namespace.
func searchKey(companyName, roleTitle string) string {
	return companyName + "::" + roleTitle
}

// EnrichContacts runs the decision-maker search over every resolved
// company passing the size/industry allow-list. Checkpointed
// (company, title) pairs replay their cached candidates instead of
// searching again; a fully checkpointed store therefore performs zero
// external calls. Pool-wide quota exhaustion stops all remaining work
// for the run. Cancellation flushes the current company's partial
// aggregate before returning.
func (o *Orchestrator) EnrichContacts(ctx context.Context) (model.RunSummary, error) {
	summary := newRunSummary()
	log := zap.L().With(zap.String("run_id", summary.RunID))

	facts, err := o.store.ListCompanyFacts(ctx)
	if err != nil {
		return summary, eris.Wrap(err, "pipeline: list company facts")
	}
	companies := make([]model.CompanyFacts, 0, len(facts))
	for _, f := range facts {
		if o.cfg.allowsCompany(f) {
			companies = append(companies, f)
		}
	}
	log.Info("pipeline: searching decision makers",
		zap.Int("resolved_companies", len(facts)),
		zap.Int("after_filter", len(companies)),
	)

	searchCk := checkpoint.Open(ctx, o.store, store.NamespaceSearch)
	companyCk := checkpoint.Open(ctx, o.store, store.NamespaceCompany)

	for i, company := range companies {
		if ctx.Err() != nil {
			summary.Interrupted = true
			log.Warn("pipeline: search interrupted", zap.Int("companies_done", i))
			return summary, nil
		}
		if companyCk.Has(company.CompanyName) {
			log.Debug("pipeline: company already processed", zap.String("company", company.CompanyName))
			continue
		}

		found, quotaStopped, interrupted := o.searchCompany(ctx, searchCk, company, &summary)

		if err := o.flushCompany(ctx, companyCk, company.CompanyName, found, quotaStopped || interrupted); err != nil {
			return summary, err
		}
		summary.Companies++

		if quotaStopped {
			summary.QuotaStopped = true
			log.Warn("pipeline: credential pool exhausted, stopping run",
				zap.Int("companies_done", summary.Companies))
			return summary, nil
		}
		if interrupted {
			summary.Interrupted = true
			return summary, nil
		}

		o.pause(ctx, o.cfg.PacingMinSecs, o.cfg.PacingMaxSecs)
		o.longBreak(ctx, i+1)
	}

	log.Info("pipeline: decision-maker search done",
		zap.Int("companies", summary.Companies),
		zap.Int("contacts_found", summary.ContactsFound),
	)
	return summary, nil
}

// searchCompany runs the title loop for one company. It returns the
// accumulated contacts plus whether the loop ended early for quota or
// cancellation.
func (o *Orchestrator) searchCompany(ctx context.Context, searchCk *checkpoint.Store, company model.CompanyFacts, summary *model.RunSummary) (map[string]model.Contact, bool, bool) {
	log := zap.L().With(zap.String("company", company.CompanyName))
	roleTitles := o.titles.ForIndustry(company.Industry)

	found := make(map[string]model.Contact)
	var alreadyFound []string

	addCandidate := func(c model.Candidate) bool {
		for _, name := range alreadyFound {
			if strings.EqualFold(name, c.Name) {
				return false
			}
		}
		found[c.Name] = model.Contact{JobTitle: c.JobTitle, LinkedInURL: c.LinkedInURL}
		alreadyFound = append(alreadyFound, c.Name)
		return true
	}

	for _, roleTitle := range roleTitles {
		if ctx.Err() != nil {
			return found, false, true
		}

		key := searchKey(company.CompanyName, roleTitle)
		if raw, ok := searchCk.Get(key); ok {
			replayed := o.replayCandidates(raw, addCandidate)
			summary.Add(model.UnitResult{
				Company: company.CompanyName,
				Title:   roleTitle,
				Status:  model.UnitReplayed,
				Found:   replayed,
			})
			continue
		}

		candidates, err := o.searcher.Search(ctx, roleTitle, company.CompanyName, o.cfg.MaxResultsPerSearch, alreadyFound)

		accepted := 0
		for _, c := range candidates {
			if addCandidate(c) {
				accepted++
			}
		}
		if err == nil {
			if ckErr := o.putCandidates(ctx, searchCk, key, candidates); ckErr != nil {
				log.Error("pipeline: checkpoint write failed", zap.Error(ckErr))
			}
		}

		switch {
		case err == nil:
			summary.Add(model.UnitResult{
				Company: company.CompanyName,
				Title:   roleTitle,
				Status:  model.UnitAttempted,
				Found:   accepted,
			})
		case eris.Is(err, credential.ErrPoolExhausted):
			// The in-flight title is not checkpointed: it may have issued
			// no query at all, and a retry is cheap once quota returns.
			summary.Add(model.UnitResult{
				Company: company.CompanyName,
				Title:   roleTitle,
				Status:  model.UnitSkipped,
				Found:   accepted,
				Reason:  "credential pool exhausted",
			})
			return found, true, false
		default:
			log.Warn("pipeline: search failed", zap.String("role_title", roleTitle), zap.Error(err))
			summary.Add(model.UnitResult{
				Company: company.CompanyName,
				Title:   roleTitle,
				Status:  model.UnitFailed,
				Reason:  err.Error(),
			})
			continue
		}

		o.pause(ctx, o.cfg.PacingMinSecs, o.cfg.PacingMaxSecs)
	}
	return found, false, false
}

func (o *Orchestrator) replayCandidates(raw []byte, add func(model.Candidate) bool) int {
	if len(raw) == 0 {
		return 0
	}
	var cached []model.Candidate
	if err := json.Unmarshal(raw, &cached); err != nil {
		zap.L().Warn("pipeline: unreadable cached candidates, treating as empty", zap.Error(err))
		return 0
	}
	replayed := 0
	for _, c := range cached {
		if add(c) {
			replayed++
		}
	}
	return replayed
}

func (o *Orchestrator) putCandidates(ctx context.Context, ck *checkpoint.Store, key string, candidates []model.Candidate) error {
	value, err := json.Marshal(candidates)
	if err != nil {
		return eris.Wrap(err, "pipeline: marshal candidates")
	}
	return ck.Put(ctx, key, value)
}

// flushCompany persists the company aggregate. The coarse company
// checkpoint is only written for completed companies so a partial
// company is revisited on the next run.
func (o *Orchestrator) flushCompany(ctx context.Context, companyCk *checkpoint.Store, companyName string, found map[string]model.Contact, partial bool) error {
	if len(found) > 0 {
		if err := o.store.SaveDecisionMakers(ctx, companyName, found); err != nil {
			return eris.Wrap(err, "pipeline: save decision makers")
		}
	}
	if partial {
		return nil
	}
	if err := companyCk.Put(ctx, companyName, nil); err != nil {
		return eris.Wrap(err, "pipeline: company checkpoint")
	}
	zap.L().Info("pipeline: company done",
		zap.String("company", companyName),
		zap.Int("decision_makers", len(found)),
	)
	return nil
}
