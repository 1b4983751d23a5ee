package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/civic-cli/internal/dataset"
	"github.com/sells-group/civic-cli/internal/model"
	"github.com/sells-group/civic-cli/internal/store"
	"github.com/sells-group/civic-cli/internal/vacancy"
)

// loadDataset reads every configured file and derives the vacancy triage
// scores, which the metrics and triage scorers read.
func loadDataset(ctx context.Context) (*model.Dataset, error) {
	ds, err := dataset.LoadAll(ctx, cfg.Data)
	if err != nil {
		return nil, err
	}
	triager, err := vacancy.NewTriager(cfg.Triage)
	if err != nil {
		return nil, eris.Wrap(err, "triage config")
	}
	ds.Vacancies = triager.TriageAll(ds.Vacancies)

	zap.L().Info("dataset ready",
		zap.Int("neighborhoods", len(ds.Neighborhoods)),
		zap.Int("tracts", len(ds.Tracts)),
		zap.Int("vacancies", len(ds.Vacancies)),
	)
	return ds, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	var st store.Store
	var err error
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "civic.db"
		}
		st, err = store.NewSQLite(dsn)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}
