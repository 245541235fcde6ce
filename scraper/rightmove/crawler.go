package rightmove

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"hackermove/models"
	"hackermove/utils"
)

// PageFetcher returns the body of a page.
type PageFetcher interface {
	Get(ctx context.Context, url string) (string, error)
}

// Crawler fetches the first results page, discovers the remaining page
// tokens, and fetches those pages concurrently.
type Crawler struct {
	fetcher    PageFetcher
	extractor  *Extractor
	parser     RecordParser
	logger     *utils.Logger
	metrics    *utils.Metrics
	indexParam string
	maxWorkers int
}

// CrawlerOption configures a Crawler.
type CrawlerOption func(*Crawler)

// WithParser substitutes the record parser.
func WithParser(p RecordParser) CrawlerOption {
	return func(c *Crawler) { c.parser = p }
}

// WithExtractor substitutes the payload extractor.
func WithExtractor(e *Extractor) CrawlerOption {
	return func(c *Crawler) { c.extractor = e }
}

// WithMetrics records page and record counters on m.
func WithMetrics(m *utils.Metrics) CrawlerOption {
	return func(c *Crawler) { c.metrics = m }
}

// WithMaxConcurrency caps concurrent leaf fetches. n <= 0 means no cap.
func WithMaxConcurrency(n int) CrawlerOption {
	return func(c *Crawler) { c.maxWorkers = n }
}

// WithIndexParam sets the query parameter carrying a page token.
func WithIndexParam(name string) CrawlerOption {
	return func(c *Crawler) {
		if name != "" {
			c.indexParam = name
		}
	}
}

// NewCrawler creates a Crawler over fetcher.
func NewCrawler(fetcher PageFetcher, logger *utils.Logger, opts ...CrawlerOption) *Crawler {
	c := &Crawler{
		fetcher:    fetcher,
		extractor:  NewExtractor(""),
		parser:     NewParser(""),
		logger:     logger,
		indexParam: "index",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Crawl returns the parsed records of startURL and of every further page it
// reports, first page first and then in page-token order. Any page failure
// fails the whole crawl and no records are returned.
func (c *Crawler) Crawl(ctx context.Context, startURL string) ([]models.ListingRecord, error) {
	start := time.Now()
	defer func() { c.metrics.ObserveCrawl(time.Since(start)) }()

	first, desc, err := c.processPage(ctx, startURL)
	if err != nil {
		return nil, err
	}
	c.logger.Info("[crawler] First page: %d records, %d more pages", len(first), len(desc.Tokens))

	pages := make([][]models.ListingRecord, len(desc.Tokens))

	g, gctx := errgroup.WithContext(ctx)
	if c.maxWorkers > 0 {
		g.SetLimit(c.maxWorkers)
	}
	for i, token := range desc.Tokens {
		i := i
		pageURL := c.PageURL(startURL, token)
		g.Go(func() error {
			recs, _, err := c.processPage(gctx, pageURL)
			if err != nil {
				return err
			}
			pages[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.logger.Error("[crawler] Crawl aborted: %v", err)
		return nil, err
	}

	total := len(first)
	for _, p := range pages {
		total += len(p)
	}
	merged := make([]models.ListingRecord, 0, total)
	merged = append(merged, first...)
	for _, p := range pages {
		merged = append(merged, p...)
	}

	c.logger.Info("[crawler] Crawl complete: %d pages, %d records in %v",
		len(desc.Tokens)+1, len(merged), time.Since(start).Round(time.Millisecond))
	return merged, nil
}

// PageURL appends the page token to startURL as the index parameter.
func (c *Crawler) PageURL(startURL, token string) string {
	sep := "?"
	if strings.Contains(startURL, "?") {
		sep = "&"
	}
	return startURL + sep + c.indexParam + "=" + token
}

// processPage fetches, extracts and parses one page. Records failing to parse
// are skipped.
func (c *Crawler) processPage(ctx context.Context, pageURL string) ([]models.ListingRecord, models.PaginationDescriptor, error) {
	var desc models.PaginationDescriptor

	c.logger.Debug("[crawler] Fetching %s", pageURL)
	body, err := c.fetcher.Get(ctx, pageURL)
	if err != nil {
		c.metrics.ObservePage("fetch_error")
		var fe *models.FetchError
		if errors.As(err, &fe) {
			return nil, desc, err
		}
		return nil, desc, &models.FetchError{URL: pageURL, Err: err}
	}

	desc, raws, err := c.extractor.Extract(body)
	if err != nil {
		c.metrics.ObservePage("extract_error")
		var ee *models.ExtractionError
		if errors.As(err, &ee) && ee.URL == "" {
			ee.URL = pageURL
		}
		return nil, desc, err
	}
	c.metrics.ObservePage("ok")

	records := make([]models.ListingRecord, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		rec, err := c.parser.Parse(raw)
		if err != nil {
			skipped++
			c.logger.Warn("[crawler] Skipping record on %s: %v", pageURL, err)
			continue
		}
		records = append(records, rec)
	}
	c.metrics.ObserveRecords(len(records), skipped)
	c.logger.Debug("[crawler] %s: %d records (%d skipped)", pageURL, len(records), skipped)

	return records, desc, nil
}
