// Package pipeline drives the enrichment run: company resolution,
// decision-maker search, checkpoint replay, pacing, and quota stops.
// Execution is strictly sequential; one browser session and one
// credential are in flight at a time.
package pipeline

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/internal/titles"
)

// Searcher finds decision-maker candidates for one (role title,
// company) pair.
type Searcher interface {
	Search(ctx context.Context, roleTitle, companyName string, maxResults int, alreadyFound []string) ([]model.Candidate, error)
}

// CompanyResolver resolves one company to its facts.
type CompanyResolver interface {
	Resolve(ctx context.Context, companyName string) (model.CompanyFacts, model.UnitResult)
}

// Config holds the run-shaping knobs: result caps, the company
// allow-list, and pacing windows.
type Config struct {
	MaxResultsPerSearch int

	// SizeFilter and IndustryFilter select which resolved companies
	// enter the contact-search stage. Empty means no restriction on
	// that dimension.
	SizeFilter     []model.SizeBucket
	IndustryFilter []string

	// Pacing between network-facing actions, uniform random seconds.
	PacingMinSecs float64
	PacingMaxSecs float64

	// A longer break every LongBreakEvery companies. Zero disables it.
	LongBreakEvery   int
	LongBreakMinSecs float64
	LongBreakMaxSecs float64
}

// DefaultConfig mirrors the pacing the boundary sites tolerate.
func DefaultConfig() Config {
	return Config{
		MaxResultsPerSearch: 5,
		PacingMinSecs:       2,
		PacingMaxSecs:       5,
		LongBreakEvery:      5,
		LongBreakMinSecs:    15,
		LongBreakMaxSecs:    25,
	}
}

// Orchestrator runs the enrichment stages against the injected
// boundaries.
type Orchestrator struct {
	store    store.Store
	resolver CompanyResolver
	searcher Searcher
	titles   *titles.Table
	cfg      Config

	sleep func(ctx context.Context, d time.Duration) error
	rng   *rand.Rand
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithSleep overrides the pacing sleep, for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) {
		o.sleep = fn
	}
}

// WithRand overrides the pacing randomness source.
func WithRand(rng *rand.Rand) Option {
	return func(o *Orchestrator) {
		o.rng = rng
	}
}

// New creates an Orchestrator. resolver may be nil when only the
// contact-search stage will run, and searcher nil when only the
// resolution stage will run.
func New(st store.Store, resolver CompanyResolver, searcher Searcher, table *titles.Table, cfg Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    st,
		resolver: resolver,
		searcher: searcher,
		titles:   table,
		cfg:      cfg,
		sleep:    sleepCtx,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// pause sleeps a uniform random duration from the given window. A
// canceled context cuts the pause short without error; the caller's
// loop guard sees the cancellation.
func (o *Orchestrator) pause(ctx context.Context, minSecs, maxSecs float64) {
	if maxSecs <= 0 {
		return
	}
	secs := minSecs + o.rng.Float64()*(maxSecs-minSecs)
	_ = o.sleep(ctx, time.Duration(secs*float64(time.Second)))
}

func (o *Orchestrator) longBreak(ctx context.Context, companiesDone int) {
	if o.cfg.LongBreakEvery <= 0 || companiesDone == 0 || companiesDone%o.cfg.LongBreakEvery != 0 {
		return
	}
	zap.L().Info("pipeline: taking longer break", zap.Int("companies_done", companiesDone))
	o.pause(ctx, o.cfg.LongBreakMinSecs, o.cfg.LongBreakMaxSecs)
}

func newRunSummary() model.RunSummary {
	return model.RunSummary{RunID: uuid.NewString()}
}

// allowsCompany applies the size/industry allow-list.
func (c Config) allowsCompany(facts model.CompanyFacts) bool {
	if len(c.SizeFilter) > 0 {
		ok := false
		for _, s := range c.SizeFilter {
			if facts.SizeBucket == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(c.IndustryFilter) > 0 {
		ok := false
		for _, ind := range c.IndustryFilter {
			if facts.Industry == ind {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
