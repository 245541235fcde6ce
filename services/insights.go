package services

import (
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"hackermove/models"
	"hackermove/utils"
)

// InsightService summarises a dataset for the terminal report.
type InsightService struct {
	logger *utils.Logger
	out    io.Writer
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger, out: os.Stdout}
}

// WithOutput redirects Print.
func (s *InsightService) WithOutput(w io.Writer) *InsightService {
	s.out = w
	return s
}

// Generate computes price and size statistics and top-n slices of ds.
func (s *InsightService) Generate(ds *models.Dataset, n int) *models.Report {
	rows := ds.Rows()
	report := &models.Report{TotalListings: len(rows)}
	if len(rows) == 0 {
		return report
	}

	prices := make([]float64, 0, len(rows))
	var sizes []float64
	var sized, valued []models.Row
	for _, r := range rows {
		prices = append(prices, r.Price)
		if r.Size != nil {
			sizes = append(sizes, *r.Size)
			sized = append(sized, r)
		}
		if r.Value != nil {
			valued = append(valued, r)
		}
	}
	report.SizedListings = len(sized)
	report.MedianPrice = median(prices)
	report.MeanPrice = round2(mean(prices))
	if len(sizes) > 0 {
		report.MedianSize = median(sizes)
		report.MeanSize = round2(mean(sizes))
	}

	// Dataset order is already newest first.
	report.Latest = top(rows, n)

	byPrice := slices.Clone(rows)
	sort.SliceStable(byPrice, func(i, j int) bool { return byPrice[i].Price > byPrice[j].Price })
	report.MostExpensive = top(byPrice, n)

	sort.SliceStable(byPrice, func(i, j int) bool { return byPrice[i].Price < byPrice[j].Price })
	report.LeastExpensive = top(byPrice, n)

	sort.SliceStable(sized, func(i, j int) bool { return *sized[i].Size > *sized[j].Size })
	report.Largest = top(sized, n)

	sort.SliceStable(valued, func(i, j int) bool { return *valued[i].Value < *valued[j].Value })
	report.BestValue = top(valued, n)

	s.logger.Debug("[insights] Report over %d rows (%d sized)", report.TotalListings, report.SizedListings)
	return report
}

func (s *InsightService) Print(r *models.Report) {
	sep := strings.Repeat("═", 72)
	w := s.out

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  PROPERTY SEARCH REPORT\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	s.printSection("Latest", r.Latest)
	s.printSection("Most expensive", r.MostExpensive)
	s.printSection("Least expensive", r.LeastExpensive)
	s.printSection("Sorted by size", r.Largest)
	s.printSection("Sorted by value", r.BestValue)

	fmt.Fprintf(w, "  Total results : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  Median price  : \033[1;32m£%.0f\033[0m\n", r.MedianPrice)
	fmt.Fprintf(w, "  Mean price    : \033[1;32m£%.2f\033[0m\n", r.MeanPrice)
	if r.SizedListings > 0 {
		fmt.Fprintf(w, "  Median size   : \033[1m%.0f sq ft\033[0m (%d with size)\n", r.MedianSize, r.SizedListings)
		fmt.Fprintf(w, "  Mean size     : \033[1m%.2f sq ft\033[0m\n", r.MeanSize)
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func (s *InsightService) printSection(title string, rows []models.Row) {
	w := s.out
	fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", title)
	fmt.Fprintf(w, "  %s\n", strings.Repeat("─", 72))
	if len(rows) == 0 {
		fmt.Fprintf(w, "  No listings\n\n")
		return
	}
	for i, r := range rows {
		fmt.Fprintf(w, "  \033[1m%2d.\033[0m %-40s £%-10.0f %8s %8s  %s  %s\n",
			i+1, truncate(r.Address, 40), r.Price,
			optFloat(r.Size), optInt(r.Value), r.ListedAt.Format("2006-01-02"), r.URL)
	}
	fmt.Fprintln(w)
}

// top copies the first n rows so later re-sorts of rows do not alias it.
func top(rows []models.Row, n int) []models.Row {
	if n <= 0 || len(rows) <= n {
		return slices.Clone(rows)
	}
	return slices.Clone(rows[:n])
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	sort.Float64s(sorted)
	return quantile(sorted, 0.5)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func optFloat(f *float64) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f", *f)
}

func optInt(n *int64) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *n)
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
