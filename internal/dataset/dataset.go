package dataset

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/civic-cli/internal/config"
	"github.com/sells-group/civic-cli/internal/model"
)

// maxConcurrentLoads bounds how many files are parsed at once.
const maxConcurrentLoads = 4

// LoadAll reads every configured dataset concurrently. Unconfigured paths
// leave their collection nil so scorers can tell "absent" from "empty".
// The first failing file cancels the rest.
func LoadAll(ctx context.Context, paths config.DataConfig) (*model.Dataset, error) {
	start := time.Now()
	ds := &model.Dataset{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)

	// Each loader writes a distinct field of ds.
	load := func(name, path string, fn func(string) error) {
		if path == "" {
			return
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return eris.Wrap(err, "dataset: load cancelled")
			}
			t := time.Now()
			if err := fn(path); err != nil {
				return eris.Wrapf(err, "dataset: load %s", name)
			}
			zap.L().Debug("dataset: loaded",
				zap.String("dataset", name),
				zap.String("path", path),
				zap.Duration("elapsed", time.Since(t)),
			)
			return nil
		})
	}

	load("neighborhoods", paths.Neighborhoods, func(p string) (err error) {
		if isExt(p, ".shp") {
			ds.Neighborhoods, err = LoadNeighborhoodsShapefile(p)
		} else {
			ds.Neighborhoods, err = LoadNeighborhoodsGeoJSON(p)
		}
		return err
	})
	load("tracts", paths.Tracts, func(p string) (err error) {
		ds.Tracts, err = LoadTractsGeoJSON(p)
		return err
	})
	load("stops", paths.Stops, func(p string) (err error) {
		ds.Stops, err = LoadStopsGeoJSON(p)
		return err
	})
	load("stop_stats", paths.StopStats, func(p string) (err error) {
		ds.StopStats, err = LoadStopStatsCSV(p)
		return err
	})
	load("groceries", paths.Groceries, func(p string) (err error) {
		ds.Groceries, err = LoadGroceriesGeoJSON(p)
		return err
	})
	load("vacancies", paths.Vacancies, func(p string) (err error) {
		if isExt(p, ".xlsx") {
			ds.Vacancies, err = LoadVacanciesXLSX(p)
		} else {
			ds.Vacancies, err = LoadVacanciesCSV(p)
		}
		return err
	})
	load("crime", paths.Crime, func(p string) (err error) {
		ds.Crime, err = LoadCountsJSON(p)
		return err
	})
	load("complaints", paths.Complaints, func(p string) (err error) {
		ds.Complaints, err = LoadCountsJSON(p)
		return err
	})
	load("demographics", paths.Demographics, func(p string) (err error) {
		ds.Demographics, err = LoadDemographicsJSON(p)
		return err
	})
	load("complaint_log", paths.ComplaintLog, func(p string) (err error) {
		ds.ComplaintLog, err = LoadComplaintsCSV(p)
		return err
	})
	load("weather", paths.Weather, func(p string) (err error) {
		ds.Weather, err = LoadWeatherCSV(p)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("dataset: load complete",
		zap.Int("neighborhoods", len(ds.Neighborhoods)),
		zap.Int("tracts", len(ds.Tracts)),
		zap.Int("stops", len(ds.Stops)),
		zap.Int("groceries", len(ds.Groceries)),
		zap.Int("vacancies", len(ds.Vacancies)),
		zap.Int("complaints", len(ds.ComplaintLog)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return ds, nil
}

func isExt(path, ext string) bool {
	return strings.EqualFold(filepath.Ext(path), ext)
}
