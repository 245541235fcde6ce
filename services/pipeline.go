package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"hackermove/models"
	"hackermove/scraper/rightmove"
	"hackermove/utils"
)

// Crawler returns the merged records of a paginated search.
type Crawler interface {
	Crawl(ctx context.Context, startURL string) ([]models.ListingRecord, error)
}

// Resolver maps a location name to the site's location identifier.
type Resolver interface {
	Resolve(ctx context.Context, location string) (string, error)
}

// Request describes one search run. URL takes precedence over Query.
type Request struct {
	URL        string
	Query      *rightmove.Query
	FilterSize bool
	Percentile float64
}

// Pipeline runs crawl, build and filters for a Request.
type Pipeline struct {
	crawler    Crawler
	builder    DatasetBuilder
	resolver   Resolver
	searchPath string
	logger     *utils.Logger
}

// NewPipeline wires the stages together. resolver may be nil when only raw
// URLs are used.
func NewPipeline(crawler Crawler, builder DatasetBuilder, resolver Resolver, searchPath string, logger *utils.Logger) *Pipeline {
	return &Pipeline{
		crawler:    crawler,
		builder:    builder,
		resolver:   resolver,
		searchPath: searchPath,
		logger:     logger,
	}
}

// StartURL returns the search URL for req, resolving its location if needed.
func (p *Pipeline) StartURL(ctx context.Context, req Request) (string, error) {
	if req.URL != "" {
		return req.URL, nil
	}
	if req.Query == nil || req.Query.Location == "" {
		return "", errors.New("pipeline: must specify a url or location")
	}
	if p.resolver == nil {
		return "", errors.New("pipeline: no location resolver configured")
	}
	id, err := p.resolver.Resolve(ctx, req.Query.Location)
	if err != nil {
		return "", fmt.Errorf("pipeline: resolve location: %w", err)
	}
	return rightmove.BuildSearchURL(p.searchPath, id, *req.Query), nil
}

// Run produces the filtered dataset for req. A crawl failure yields no dataset.
func (p *Pipeline) Run(ctx context.Context, req Request) (*models.Dataset, error) {
	runID := uuid.NewString()

	startURL, err := p.StartURL(ctx, req)
	if err != nil {
		return nil, err
	}
	p.logger.Info("[pipeline] Run %s: crawling %s", runID, startURL)

	records, err := p.crawler.Crawl(ctx, startURL)
	if err != nil {
		return nil, fmt.Errorf("pipeline: crawl: %w", err)
	}

	ds := p.builder.Build(records)

	if req.FilterSize {
		ds = FilterSized(ds)
		p.logger.Info("[pipeline] Run %s: %d rows with a size", runID, ds.Len())
	}
	if req.Percentile != 0 {
		ds, err = FilterPercentile(ds, req.Percentile)
		if err != nil {
			return nil, err
		}
		p.logger.Info("[pipeline] Run %s: %d rows inside the %v-%v percentile band",
			runID, ds.Len(), req.Percentile, 100-req.Percentile)
	}

	p.logger.Info("[pipeline] Run %s: %d records → %d rows", runID, len(records), ds.Len())
	return ds, nil
}
