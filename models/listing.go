package models

import "time"

// Tenure is the coarse ownership classification derived from a listing summary.
type Tenure string

const (
	TenureUnknown   Tenure = "Unknown"
	TenureLeasehold Tenure = "Leasehold"
	TenureFreehold  Tenure = "Freehold"
)

// RawRecord is one untyped property object as delivered by the embedded JSON
// payload. Numbers are kept as json.Number.
type RawRecord map[string]any

// PaginationDescriptor lists the page tokens beyond the first results page.
type PaginationDescriptor struct {
	Tokens []string
}

// ListingRecord is a normalised property-for-sale entry.
type ListingRecord struct {
	ID           string    `json:"id"`
	Address      string    `json:"address"`
	Bedrooms     *int      `json:"bedrooms"`
	Bathrooms    *int      `json:"bathrooms"`
	Price        float64   `json:"price"`
	SizeText     *string   `json:"size_text"`
	URL          string    `json:"url"`
	ListedAt     time.Time `json:"listed_at"`
	PropertyType string    `json:"property_type,omitempty"`
	Tenure       Tenure    `json:"tenure"`
	Summary      string    `json:"summary,omitempty"`
}

// Row is a ListingRecord with its derived numeric columns.
type Row struct {
	ListingRecord
	Size  *float64 `json:"size"`
	Value *int64   `json:"value"`
}

// Dataset is an ordered, deduplicated set of rows. Filters return a new
// Dataset and never modify the receiver.
type Dataset struct {
	rows []Row
}

// NewDataset wraps rows. The slice is owned by the Dataset afterwards.
func NewDataset(rows []Row) *Dataset {
	return &Dataset{rows: rows}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Rows returns a copy of the rows in dataset order.
func (d *Dataset) Rows() []Row {
	if d == nil {
		return nil
	}
	out := make([]Row, len(d.rows))
	copy(out, d.rows)
	return out
}

// Where returns a new Dataset holding the rows for which keep returns true.
func (d *Dataset) Where(keep func(Row) bool) *Dataset {
	out := make([]Row, 0, d.Len())
	for _, r := range d.Rows() {
		if keep(r) {
			out = append(out, r)
		}
	}
	return NewDataset(out)
}

// Report holds the computed summary over a dataset, for presentation.
type Report struct {
	TotalListings  int
	SizedListings  int
	MedianPrice    float64
	MeanPrice      float64
	MedianSize     float64
	MeanSize       float64
	Latest         []Row
	MostExpensive  []Row
	LeastExpensive []Row
	Largest        []Row
	BestValue      []Row
}
