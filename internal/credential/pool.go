// Package credential manages the pool of rate-limited search API
// credentials: round-robin selection, daily usage counters, and
// operating-day rollover.
package credential

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/store"
)

// ErrPoolExhausted signals that every credential has hit its daily cap.
// Callers must treat this as a stop-for-today condition, not a retryable
// error.
var ErrPoolExhausted = eris.New("credential: all credentials exhausted for today")

// Config controls quota accounting.
type Config struct {
	// DailyCap is the per-credential daily call quota.
	DailyCap int `yaml:"daily_cap" mapstructure:"daily_cap"`
	// WarnThreshold is the usage count at which a warning is logged.
	WarnThreshold int `yaml:"warn_threshold" mapstructure:"warn_threshold"`
	// ResetUTCOffsetHours anchors the operating-day boundary. The
	// third-party quota does not reset at UTC midnight, so the boundary
	// is shifted by this many hours (may be negative).
	ResetUTCOffsetHours int `yaml:"reset_utc_offset_hours" mapstructure:"reset_utc_offset_hours"`
}

// DefaultConfig mirrors the external service's published limits.
func DefaultConfig() Config {
	return Config{
		DailyCap:      100,
		WarnThreshold: 70,
	}
}

// Pool rotates credentials round-robin, skipping exhausted ones and
// resetting counters on operating-day rollover. Every usage increment
// rewrites the whole pool through the store. Single writer assumed.
type Pool struct {
	store   store.Store
	cfg     Config
	records []model.CredentialRecord
	current int
	now     func() time.Time
}

// Option configures the pool.
type Option func(*Pool)

// WithClock overrides the time source, used by tests to pin the
// operating day.
func WithClock(now func() time.Time) Option {
	return func(p *Pool) {
		p.now = now
	}
}

// NewPool loads the credential records from the store.
func NewPool(ctx context.Context, st store.Store, cfg Config, opts ...Option) (*Pool, error) {
	if cfg.DailyCap <= 0 {
		cfg.DailyCap = DefaultConfig().DailyCap
	}
	if cfg.WarnThreshold <= 0 {
		cfg.WarnThreshold = DefaultConfig().WarnThreshold
	}
	records, err := st.LoadCredentials(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "credential: load pool")
	}
	p := &Pool{
		store:   st,
		cfg:     cfg,
		records: records,
		now:     time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	if err := p.rollover(ctx); err != nil {
		return nil, err
	}
	zap.L().Info("credential: pool loaded", zap.Int("credentials", len(records)))
	return p, nil
}

// Size returns the number of credentials in the pool.
func (p *Pool) Size() int {
	return len(p.records)
}

// Records returns a copy of the current records, for status reporting.
func (p *Pool) Records() []model.CredentialRecord {
	out := make([]model.CredentialRecord, len(p.records))
	copy(out, p.records)
	return out
}

// operatingDate formats the current operating day, shifted by the
// configured reset offset so day rollover aligns with the external
// quota reset rather than UTC midnight.
func (p *Pool) operatingDate() string {
	return p.now().UTC().Add(time.Duration(p.cfg.ResetUTCOffsetHours) * time.Hour).Format("2006-01-02")
}

// rollover resets counters for credentials last used on a prior
// operating day, persisting only when something changed.
func (p *Pool) rollover(ctx context.Context) error {
	today := p.operatingDate()
	changed := false
	for i := range p.records {
		if p.records[i].LastUsedDate != today {
			if p.records[i].UsesToday != 0 {
				zap.L().Debug("credential: day rollover, resetting counter",
					zap.String("id", p.records[i].ID),
					zap.String("last_used", p.records[i].LastUsedDate),
				)
			}
			p.records[i].UsesToday = 0
			p.records[i].LastUsedDate = today
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return eris.Wrap(p.store.SaveCredentials(ctx, p.records), "credential: persist rollover")
}

// NextAvailable returns the next credential under its daily cap,
// round-robin from the last-used position. Returns ErrPoolExhausted
// when the whole pool is at cap for the current operating day.
func (p *Pool) NextAvailable(ctx context.Context) (model.CredentialRecord, error) {
	if len(p.records) == 0 {
		return model.CredentialRecord{}, eris.New("credential: empty pool")
	}
	if err := p.rollover(ctx); err != nil {
		return model.CredentialRecord{}, err
	}
	for range p.records {
		r := p.records[p.current]
		if r.UsesToday < p.cfg.DailyCap {
			return r, nil
		}
		p.current = (p.current + 1) % len(p.records)
	}
	return model.CredentialRecord{}, ErrPoolExhausted
}

// HasAvailable reports whether any credential is under its cap.
func (p *Pool) HasAvailable(ctx context.Context) bool {
	_, err := p.NextAvailable(ctx)
	return err == nil
}

// MarkUsed increments the counter for the given credential and
// synchronously persists the whole pool. Warnings are logged once at
// the warn threshold and once at the cap.
func (p *Pool) MarkUsed(ctx context.Context, id string) error {
	idx := -1
	for i := range p.records {
		if p.records[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return eris.Errorf("credential: unknown credential %s", id)
	}

	p.records[idx].UsesToday++
	p.records[idx].LastUsedDate = p.operatingDate()
	uses := p.records[idx].UsesToday

	if uses == p.cfg.WarnThreshold {
		zap.L().Warn("credential: approaching daily cap",
			zap.String("id", id),
			zap.Int("uses", uses),
			zap.Int("cap", p.cfg.DailyCap),
		)
	}
	if uses >= p.cfg.DailyCap {
		zap.L().Warn("credential: daily cap reached",
			zap.String("id", id),
			zap.Int("uses", uses),
			zap.Int("cap", p.cfg.DailyCap),
		)
	}

	// Rotate away from the just-used credential.
	p.current = (idx + 1) % len(p.records)

	return eris.Wrapf(p.store.SaveCredentials(ctx, p.records), "credential: persist usage %s", id)
}
