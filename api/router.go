package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hackermove/models"
	"hackermove/scraper/rightmove"
	"hackermove/services"
	"hackermove/utils"
)

// Runner produces a dataset for a search request.
type Runner interface {
	Run(ctx context.Context, req services.Request) (*models.Dataset, error)
}

type Deps struct {
	Runner  Runner
	Metrics *utils.Metrics
	Logger  *utils.Logger
}

type listingsResponse struct {
	OK    bool         `json:"ok"`
	Total int          `json:"total"`
	Count int          `json:"count"`
	Rows  []models.Row `json:"rows"`
}

func BuildRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]any{"ok": true})
	})
	if d.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))
	}
	r.Get("/listings", func(w http.ResponseWriter, req *http.Request) {
		handleListings(w, req, d)
	})
	return r
}

func handleListings(w http.ResponseWriter, req *http.Request, d Deps) {
	sreq, limit, err := parseListingsRequest(req)
	if err != nil {
		writeError(w, req, http.StatusBadRequest, "invalid_request", err)
		return
	}

	ds, err := d.Runner.Run(req.Context(), sreq)
	if err != nil {
		var pe *models.FilterPreconditionError
		if errors.As(err, &pe) {
			writeError(w, req, http.StatusBadRequest, "filter_error", err)
			return
		}
		d.Logger.Error("[api] Search failed: %v", err)
		writeError(w, req, http.StatusBadGateway, "search_error", err)
		return
	}

	rows := ds.Rows()
	total := len(rows)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	render.JSON(w, req, listingsResponse{OK: true, Total: total, Count: len(rows), Rows: rows})
}

func parseListingsRequest(req *http.Request) (services.Request, int, error) {
	q := req.URL.Query()
	var out services.Request

	out.URL = q.Get("url")
	if loc := q.Get("location"); loc != "" {
		query := &rightmove.Query{Location: loc}
		var err error
		if v := q.Get("beds"); v != "" {
			if query.MinBeds, err = intParam("beds", v); err != nil {
				return out, 0, err
			}
			query.MaxBeds = query.MinBeds
		}
		for name, dst := range map[string]**int{
			"min_beds":  &query.MinBeds,
			"max_beds":  &query.MaxBeds,
			"min_price": &query.MinPrice,
			"max_price": &query.MaxPrice,
		} {
			if v := q.Get(name); v != "" {
				if *dst, err = intParam(name, v); err != nil {
					return out, 0, err
				}
			}
		}
		if v := q.Get("types"); v != "" {
			query.PropertyTypes = strings.Split(v, ",")
		}
		out.Query = query
	}
	if out.URL == "" && out.Query == nil {
		return out, 0, errors.New("url or location is required")
	}

	if v := q.Get("filter_size"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return out, 0, errors.New("filter_size must be a boolean")
		}
		out.FilterSize = b
	}
	if v := q.Get("percentile"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return out, 0, errors.New("percentile must be a number")
		}
		out.Percentile = p
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := intParam("limit", v)
		if err != nil {
			return out, 0, err
		}
		limit = *n
	}
	return out, limit, nil
}

func intParam(name, v string) (*int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return nil, errors.New(name + " must be a non-negative integer")
	}
	return &n, nil
}

func writeError(w http.ResponseWriter, req *http.Request, status int, code string, err error) {
	render.Status(req, status)
	render.JSON(w, req, map[string]any{"error": code, "detail": err.Error()})
}
