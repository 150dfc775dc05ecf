// services/pipeline_service.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gewnthar/airquality/config"
	"github.com/gewnthar/airquality/database"
	"github.com/gewnthar/airquality/models"
	"github.com/gewnthar/airquality/scraper"
)

// Pipeline runs the fetch, merge, clean and cache steps in sequence.
type Pipeline struct {
	cfg        config.Config
	downloader scraper.FileDownloader
	logger     *slog.Logger
}

func NewPipeline(cfg config.Config, downloader scraper.FileDownloader, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, downloader: downloader, logger: logger}
}

// RequestURLs are the index URLs for every configured pollutant.
func (p *Pipeline) RequestURLs() []string {
	src := p.cfg.Source
	return scraper.BuildDiscomapURLs(src.BaseURL, src.CountryCode, src.CityName, src.Pollutants)
}

// pollutantDir is data/<country>/<city>/<pollutant> for one request URL.
func (p *Pipeline) pollutantDir(requestURL string) string {
	return filepath.Join(p.cfg.Paths.DataDir, scraper.PathFromQueryURL(requestURL))
}

// FetchAll downloads each pollutant's index into data/src and then every CSV
// the index lists into that pollutant's directory. Artifacts already on disk
// are not fetched again.
func (p *Pipeline) FetchAll(ctx context.Context) error {
	for _, u := range p.RequestURLs() {
		entry, err := p.downloader.DownloadFileChunked(ctx, u, p.cfg.Paths.SrcDir())
		if err != nil {
			return fmt.Errorf("failed to download index for %s: %w", scraper.FilenameFromQueryURL(u, scraper.DefaultCutOff), err)
		}
		paths, err := scraper.DownloadBulkFromIndex(ctx, p.downloader, entry, p.pollutantDir(u), p.logger)
		if err != nil {
			return fmt.Errorf("failed to download CSVs listed in %s: %w", entry, err)
		}
		p.logger.Info("Service: fetched pollutant", "request", scraper.FilenameFromQueryURL(u, scraper.DefaultCutOff), "files", len(paths))
	}
	return nil
}

// BuildTable merges the downloaded CSVs of the merge pollutant, writes the
// raw merge to data/concat/all.csv and returns the cleaned table.
func (p *Pipeline) BuildTable() (*models.Table, error) {
	src := p.cfg.Source
	u := scraper.BuildRequestURL(src.BaseURL, models.NewRequest(src.CountryCode, src.CityName, src.MergePollutant))
	dir := p.pollutantDir(u)

	files, err := scraper.FindCsvFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CSV files found under %s", dir)
	}

	merged, err := scraper.MergeCsvFiles(p.cfg.Database.Table, files, p.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to merge CSVs under %s: %w", dir, err)
	}
	if err := scraper.WriteMergedCsv(p.cfg.Paths.ConcatFile(), merged); err != nil {
		return nil, err
	}

	return CleanTable(merged, p.cfg.Cleaning.Interpolation), nil
}

// LoadTable prefers the relational cache and only rebuilds from CSV when the
// cache is missing, unreadable or ForceRebuild is set. A rebuilt table is
// exported; an export failure is logged and does not fail the load.
func (p *Pipeline) LoadTable() (*models.Table, error) {
	name := p.cfg.Database.Table

	if !p.cfg.ForceRebuild && database.CacheExists(p.cfg.Database, name) {
		table, err := database.ImportTable(p.cfg.Database, name)
		if err == nil {
			p.logger.Info("Service: loaded table from cache", "table", name, "rows", table.Len())
			return table, nil
		}
		p.logger.Warn("Service: cache unreadable, rebuilding from CSV", "table", name, "error", err)
	}

	table, err := p.BuildTable()
	if err != nil {
		return nil, err
	}
	if !database.ExportTable(p.cfg.Database, table, name) {
		p.logger.Warn("Service: continuing without relational cache", "table", name)
	}
	return table, nil
}

// Run executes the whole pipeline.
func (p *Pipeline) Run(ctx context.Context) (*models.Table, error) {
	p.logger.Info("Service: started", "country", p.cfg.Source.CountryCode, "city", p.cfg.Source.CityName, "pollutants", p.cfg.Source.Pollutants)

	if err := p.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := p.FetchAll(ctx); err != nil {
		return nil, err
	}
	table, err := p.LoadTable()
	if err != nil {
		return nil, err
	}

	p.logger.Info("Service: finished", "table", table.Name, "rows", table.Len())
	return table, nil
}
