package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/pipeline"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/internal/titles"
)

func initStore(ctx context.Context) (store.Store, error) {
	var st store.Store
	var err error
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "prospect.db"
		}
		st, err = store.NewSQLite(path)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func loadTitles() (*titles.Table, error) {
	if cfg.Titles.Path == "" {
		return titles.Default(), nil
	}
	return titles.Load(cfg.Titles.Path)
}

func pipelineConfig() pipeline.Config {
	sizes := make([]model.SizeBucket, 0, len(cfg.Filter.Sizes))
	for _, s := range cfg.Filter.Sizes {
		sizes = append(sizes, model.SizeBucket(s))
	}
	return pipeline.Config{
		MaxResultsPerSearch: cfg.Search.MaxResultsPerSearch,
		SizeFilter:          sizes,
		IndustryFilter:      cfg.Filter.Industries,
		PacingMinSecs:       cfg.Pacing.MinSecs,
		PacingMaxSecs:       cfg.Pacing.MaxSecs,
		LongBreakEvery:      cfg.Pacing.LongBreakEvery,
		LongBreakMinSecs:    cfg.Pacing.LongBreakMinSecs,
		LongBreakMaxSecs:    cfg.Pacing.LongBreakMaxSecs,
	}
}

func reportSizeFilter() []model.SizeBucket {
	sizes := make([]model.SizeBucket, 0, len(cfg.Filter.Sizes))
	for _, s := range cfg.Filter.Sizes {
		sizes = append(sizes, model.SizeBucket(s))
	}
	return sizes
}
