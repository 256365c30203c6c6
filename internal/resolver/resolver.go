package resolver

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/browser"
	"github.com/sells-group/prospect-cli/internal/model"
)

// InterveneFunc blocks until a human has resolved a bot challenge in
// the live browser session. Returning an error abandons the retry.
type InterveneFunc func(ctx context.Context) error

// Resolver resolves company facts through the browser boundary.
type Resolver struct {
	nav       browser.Navigator
	rules     []FieldRule
	intervene InterveneFunc
	now       func() time.Time
}

// Option configures the resolver.
type Option func(*Resolver)

// WithRules overrides the default extraction rules.
func WithRules(rules []FieldRule) Option {
	return func(r *Resolver) {
		r.rules = rules
	}
}

// WithIntervention enables the manual bot-challenge path: on a
// challenge the resolver blocks on fn and then retries the company
// exactly once.
func WithIntervention(fn InterveneFunc) Option {
	return func(r *Resolver) {
		r.intervene = fn
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// New creates a Resolver over the given navigator.
func New(nav browser.Navigator, opts ...Option) *Resolver {
	r := &Resolver{
		nav:   nav,
		rules: DefaultRules(),
		now:   time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns the company's facts and a typed unit result. The
// company is always marked processed: any boundary failure yields
// all-unknown facts with a Failed unit, never an error. The resolver
// does not retry the same company within a run except through the
// human-triggered challenge path.
func (r *Resolver) Resolve(ctx context.Context, companyName string) (model.CompanyFacts, model.UnitResult) {
	log := zap.L().With(zap.String("company", companyName))

	aboutText, err := r.nav.CompanyAboutText(ctx, companyName)
	if eris.Is(err, browser.ErrBotChallenge) && r.intervene != nil {
		log.Warn("resolver: bot challenge, waiting for manual intervention")
		if iErr := r.intervene(ctx); iErr != nil {
			return r.unknownFacts(companyName), model.UnitResult{
				Company: companyName,
				Status:  model.UnitFailed,
				Reason:  "bot challenge unresolved: " + iErr.Error(),
			}
		}
		aboutText, err = r.nav.CompanyAboutText(ctx, companyName)
	}
	if err != nil {
		log.Warn("resolver: navigation failed, marking processed with unknowns", zap.Error(err))
		return r.unknownFacts(companyName), model.UnitResult{
			Company: companyName,
			Status:  model.UnitFailed,
			Reason:  err.Error(),
		}
	}

	extracted := ExtractFacts(aboutText, r.rules)
	facts := model.CompanyFacts{
		CompanyName: companyName,
		Website:     factOrUnknown(extracted, FieldWebsite),
		Industry:    factOrUnknown(extracted, FieldIndustry),
		SizeBucket:  ClassifySize(factOrUnknown(extracted, FieldSize)),
		ResolvedAt:  r.now().UTC(),
	}

	log.Info("resolver: company resolved",
		zap.String("website", facts.Website),
		zap.String("industry", facts.Industry),
		zap.String("size", string(facts.SizeBucket)),
	)
	return facts, model.UnitResult{Company: companyName, Status: model.UnitAttempted}
}

func (r *Resolver) unknownFacts(companyName string) model.CompanyFacts {
	return model.CompanyFacts{
		CompanyName: companyName,
		Website:     model.Unknown,
		Industry:    model.Unknown,
		SizeBucket:  model.SizeUnknown,
		ResolvedAt:  r.now().UTC(),
	}
}

func factOrUnknown(facts map[string]string, field string) string {
	if v, ok := facts[field]; ok && v != "" {
		return v
	}
	return model.Unknown
}
