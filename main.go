package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"hackermove/api"
	"hackermove/config"
	"hackermove/models"
	"hackermove/scraper/fetch"
	"hackermove/scraper/rightmove"
	"hackermove/services"
	"hackermove/storage"
	"hackermove/utils"
)

type cliFlags struct {
	url        string
	location   string
	beds       int
	minBeds    int
	maxBeds    int
	minPrice   int
	maxPrice   int
	types      string
	rows       int
	filterSize bool
	percentile float64
	serve      bool
}

func main() {
	logger := utils.NewLogger()
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config: %v", err)
		os.Exit(1)
	}
	logger.SetLevel(utils.ParseLevel(cfg.LogLevel))

	f := parseFlags(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, f, logger); err != nil {
		logger.Error("%v", err)
		stop()
		os.Exit(1)
	}
}

func parseFlags(cfg *config.Config) cliFlags {
	var f cliFlags
	flag.StringVar(&f.url, "url", "", "search results URL to crawl (overrides -location)")
	flag.StringVar(&f.location, "location", "", "location name, e.g. Hackney")
	flag.IntVar(&f.beds, "beds", -1, "exact number of bedrooms")
	flag.IntVar(&f.minBeds, "minbeds", -1, "minimum bedrooms")
	flag.IntVar(&f.maxBeds, "maxbeds", -1, "maximum bedrooms")
	flag.IntVar(&f.minPrice, "minprice", -1, "minimum price")
	flag.IntVar(&f.maxPrice, "maxprice", -1, "maximum price")
	flag.StringVar(&f.types, "types", "", "comma separated property types, e.g. flat,detached")
	flag.IntVar(&f.rows, "rows", cfg.ReportRows, "rows per report section")
	flag.BoolVar(&f.filterSize, "filter-size", cfg.FilterSize, "keep only listings with a size")
	flag.Float64Var(&f.percentile, "percentile", cfg.FilterPercentile, "trim sizes outside the p..100-p percentile band")
	flag.BoolVar(&f.serve, "serve", false, "serve the HTTP API instead of running one search")
	flag.Parse()
	return f
}

func (f cliFlags) request() services.Request {
	req := services.Request{URL: f.url, FilterSize: f.filterSize, Percentile: f.percentile}
	if f.location == "" {
		return req
	}
	// -minbeds and -maxbeds take precedence over -beds.
	q := &rightmove.Query{
		Location: f.location,
		MinBeds:  optional(firstSet(f.minBeds, f.beds)),
		MaxBeds:  optional(firstSet(f.maxBeds, f.beds)),
		MinPrice: optional(f.minPrice),
		MaxPrice: optional(f.maxPrice),
	}
	if f.types != "" {
		q.PropertyTypes = strings.Split(f.types, ",")
	}
	req.Query = q
	return req
}

func firstSet(ns ...int) int {
	for _, n := range ns {
		if n >= 0 {
			return n
		}
	}
	return -1
}

func optional(n int) *int {
	if n < 0 {
		return nil
	}
	return &n
}

func run(ctx context.Context, cfg *config.Config, f cliFlags, logger *utils.Logger) error {
	logger.Info("=== Property search pipeline starting ===")
	logger.Info("Config: fetch mode %s | concurrency %d | retries %d | timeout %v",
		cfg.FetchMode, cfg.MaxConcurrency, cfg.FetchRetries, cfg.RequestTimeout)

	fetcher, closeFetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFetcher()

	var cache rightmove.LocationCache
	if cfg.RedisAddr != "" {
		rc := storage.NewRedisLocationCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisTTL)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			logger.Warn("Redis unavailable, resolving locations without cache: %v", err)
		} else {
			cache = rc
		}
	}

	// Location lookups go over plain HTTP even in browser mode.
	lookupFetcher := fetch.NewHTTPFetcher(fetch.HTTPOptions{
		Timeout:   cfg.RequestTimeout,
		Retries:   cfg.FetchRetries,
		UserAgent: cfg.UserAgent,
	})
	resolver := rightmove.NewLocationResolver(lookupFetcher, cfg.LookupURL, cfg.Locations, cache, logger)

	metrics := utils.NewMetrics()
	crawler := rightmove.NewCrawler(fetcher, logger,
		rightmove.WithExtractor(rightmove.NewExtractor(cfg.JSONMarker)),
		rightmove.WithParser(rightmove.NewParser(cfg.SiteOrigin)),
		rightmove.WithIndexParam(cfg.PageIndexParam),
		rightmove.WithMaxConcurrency(cfg.MaxConcurrency),
		rightmove.WithMetrics(metrics),
	)
	builder := services.NewBuilder(logger, cfg.SizeSuffix)
	pipeline := services.NewPipeline(crawler, builder, resolver, cfg.SearchPath, logger)

	if f.serve {
		return serve(ctx, cfg.APIAddr, api.BuildRouter(api.Deps{Runner: pipeline, Metrics: metrics, Logger: logger}), logger)
	}

	ds, err := pipeline.Run(ctx, f.request())
	if err != nil {
		return err
	}
	if ds.Len() == 0 {
		logger.Warn("Search returned no listings")
	}

	if cfg.CSVOutputPath != "" {
		writeSink(ctx, "CSV", ds, func() (storage.DatasetWriter, error) {
			return storage.NewCSVWriter(cfg.CSVOutputPath)
		}, logger)
	}
	if cfg.PostgresEnabled {
		writeSink(ctx, "PostgreSQL", ds, func() (storage.DatasetWriter, error) {
			return storage.NewPostgresWriter(ctx, cfg.DSN(), logger)
		}, logger)
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(ds, f.rows))
	return nil
}

func newFetcher(cfg *config.Config, logger *utils.Logger) (rightmove.PageFetcher, func(), error) {
	switch cfg.FetchMode {
	case "http", "":
		return fetch.NewHTTPFetcher(fetch.HTTPOptions{
			Timeout:   cfg.RequestTimeout,
			Retries:   cfg.FetchRetries,
			UserAgent: cfg.UserAgent,
		}), func() {}, nil
	case "browser":
		b, err := fetch.NewBrowserFetcher(fetch.BrowserOptions{
			ChromeBin: cfg.ChromeBin,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.RequestTimeout,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("start browser: %w", err)
		}
		return b, func() { _ = b.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown FETCH_MODE %q (want http or browser)", cfg.FetchMode)
	}
}

// writeSink opens a sink, writes ds and closes it. Sink failures are logged
// and do not fail the run.
func writeSink(ctx context.Context, name string, ds *models.Dataset, open func() (storage.DatasetWriter, error), logger *utils.Logger) {
	w, err := open()
	if err != nil {
		logger.Error("Failed to open %s sink: %v", name, err)
		return
	}
	defer w.Close()

	if err := w.Write(ctx, ds); err != nil {
		logger.Error("%s write failed: %v", name, err)
		return
	}
	logger.Info("%d listings written to %s", ds.Len(), name)
}

func serve(ctx context.Context, addr string, handler http.Handler, logger *utils.Logger) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
