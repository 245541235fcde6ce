package services

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"hackermove/models"
	"hackermove/utils"
)

// DefaultSizeSuffix is the unit suffix stripped from display sizes.
const DefaultSizeSuffix = " sq. ft."

// DatasetBuilder turns crawled records into a Dataset.
type DatasetBuilder interface {
	Build(records []models.ListingRecord) *models.Dataset
}

// Builder deduplicates, orders and enriches crawled records.
type Builder struct {
	logger     *utils.Logger
	sizeSuffix string
}

// NewBuilder creates a Builder stripping sizeSuffix (DefaultSizeSuffix when empty).
func NewBuilder(logger *utils.Logger, sizeSuffix string) *Builder {
	if sizeSuffix == "" {
		sizeSuffix = DefaultSizeSuffix
	}
	return &Builder{logger: logger, sizeSuffix: sizeSuffix}
}

// Build keeps the first record per id, orders by listing time (newest first,
// ties in input order), and derives size and value.
func (b *Builder) Build(records []models.ListingRecord) *models.Dataset {
	seen := utils.NewKeySet()
	rows := make([]models.Row, 0, len(records))

	for _, r := range records {
		if !seen.Add(r.ID) {
			b.logger.Debug("[dataset] Duplicate id skipped: %s", r.ID)
			continue
		}
		rows = append(rows, models.Row{ListingRecord: r})
	}

	slices.SortStableFunc(rows, func(a, c models.Row) int {
		return c.ListedAt.Compare(a.ListedAt)
	})

	sized := 0
	for i := range rows {
		rows[i].Size = b.parseSize(rows[i].SizeText)
		rows[i].Value = computeValue(rows[i].Price, rows[i].Size)
		if rows[i].Size != nil {
			sized++
		}
	}

	b.logger.Info("[dataset] Built %d → %d rows (dropped %d duplicates, %d with size)",
		len(records), len(rows), len(records)-len(rows), sized)
	return models.NewDataset(rows)
}

// parseSize strips the unit suffix and thousands separators, e.g.
// "1,234 sq. ft." → 1234. Absent or unparsable text gives nil.
func (b *Builder) parseSize(text *string) *float64 {
	if text == nil {
		return nil
	}
	s := strings.TrimSpace(strings.Replace(*text, b.sizeSuffix, "", 1))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// computeValue is price per unit size rounded half to even.
func computeValue(price float64, size *float64) *int64 {
	if size == nil || *size == 0 {
		return nil
	}
	q := price / *size
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return nil
	}
	v := int64(math.RoundToEven(q))
	return &v
}

// FilterSized returns the rows that have a size.
func FilterSized(ds *models.Dataset) *models.Dataset {
	return ds.Where(func(r models.Row) bool { return r.Size != nil })
}

// FilterPercentile keeps rows whose size lies strictly between the p-th and
// (100-p)-th percentiles of the sized rows. p must be in (0, 50).
func FilterPercentile(ds *models.Dataset, p float64) (*models.Dataset, error) {
	if !(p > 0 && p < 50) {
		return nil, &models.FilterPreconditionError{Reason: fmt.Sprintf("percentile %v outside (0, 50)", p)}
	}

	sizes := make([]float64, 0, ds.Len())
	for _, r := range ds.Rows() {
		if r.Size != nil {
			sizes = append(sizes, *r.Size)
		}
	}
	if len(sizes) == 0 {
		return nil, &models.FilterPreconditionError{Reason: "no rows with a size"}
	}
	sort.Float64s(sizes)

	lo := quantile(sizes, p/100)
	hi := quantile(sizes, (100-p)/100)

	return ds.Where(func(r models.Row) bool {
		return r.Size != nil && *r.Size > lo && *r.Size < hi
	}), nil
}

// quantile interpolates linearly between the closest ranks of sorted at
// position q*(n-1).
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*frac
}
