package rightmove

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"hackermove/models"
)

// DefaultOrigin is prefixed to each record's relative property path.
const DefaultOrigin = "https://www.rightmove.co.uk"

// RecordParser maps one raw record to a ListingRecord.
type RecordParser interface {
	Parse(raw models.RawRecord) (models.ListingRecord, error)
}

// Parser is the default RecordParser for the site's property objects.
type Parser struct {
	Origin string

	// SummarySize derives a size text from the free-text summary when the
	// record has no display size. The default returns "" (no size).
	SummarySize func(summary string) string
}

// NewParser returns a Parser that builds absolute URLs from origin.
func NewParser(origin string) *Parser {
	if origin == "" {
		origin = DefaultOrigin
	}
	return &Parser{
		Origin:      strings.TrimRight(origin, "/"),
		SummarySize: func(string) string { return "" },
	}
}

var errNotNumber = errors.New("not a number")

// Parse implements RecordParser. Missing required fields yield *models.ParseError;
// missing optional fields are left nil or Unknown.
func (p *Parser) Parse(raw models.RawRecord) (models.ListingRecord, error) {
	var rec models.ListingRecord

	id, ok := scalarString(raw["id"])
	if !ok || id == "" {
		return rec, &models.ParseError{Field: "id"}
	}
	rec.ID = id

	address, ok := raw["displayAddress"].(string)
	if !ok {
		return rec, &models.ParseError{ID: id, Field: "displayAddress"}
	}
	rec.Address = strings.TrimSpace(address)

	priceObj, _ := raw["price"].(map[string]any)
	amount, present := priceObj["amount"]
	if !present || amount == nil {
		return rec, &models.ParseError{ID: id, Field: "price.amount"}
	}
	price, err := toFloat(amount)
	if err != nil {
		return rec, &models.ParseError{ID: id, Field: "price.amount", Err: err}
	}
	rec.Price = price

	path, ok := raw["propertyUrl"].(string)
	if !ok || path == "" {
		return rec, &models.ParseError{ID: id, Field: "propertyUrl"}
	}
	rec.URL = p.Origin + path

	listedAt, field, err := listingTime(raw)
	if err != nil {
		return rec, &models.ParseError{ID: id, Field: field, Err: err}
	}
	rec.ListedAt = listedAt

	rec.Bedrooms = optionalInt(raw["bedrooms"])
	rec.Bathrooms = optionalInt(raw["bathrooms"])

	summary, _ := raw["summary"].(string)
	rec.Summary = summary
	rec.Tenure = classifyTenure(summary)

	if size, _ := raw["displaySize"].(string); strings.TrimSpace(size) != "" {
		rec.SizeText = &size
	} else if p.SummarySize != nil {
		if derived := p.SummarySize(summary); derived != "" {
			rec.SizeText = &derived
		}
	}

	if t, _ := raw["propertySubType"].(string); t != "" {
		rec.PropertyType = t
	} else if t, _ := raw["propertyTypeFullDescription"].(string); t != "" {
		rec.PropertyType = t
	}

	return rec, nil
}

// classifyTenure is a coarse, case-sensitive heuristic: "lease" is checked
// first, so a summary mentioning both classifies as Leasehold.
func classifyTenure(summary string) models.Tenure {
	switch {
	case strings.Contains(summary, "lease"):
		return models.TenureLeasehold
	case strings.Contains(summary, "freehold"):
		return models.TenureFreehold
	default:
		return models.TenureUnknown
	}
}

// listingTime reads listingUpdate.listingUpdateDate, falling back to
// firstVisibleDate. It returns the field name it used for error reporting.
func listingTime(raw models.RawRecord) (time.Time, string, error) {
	field := "listingUpdate.listingUpdateDate"
	var value string
	if upd, ok := raw["listingUpdate"].(map[string]any); ok {
		value, _ = upd["listingUpdateDate"].(string)
	}
	if value == "" {
		if v, ok := raw["firstVisibleDate"].(string); ok && v != "" {
			field = "firstVisibleDate"
			value = v
		}
	}
	if value == "" {
		return time.Time{}, field, errors.New("missing")
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, field, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	return t, field, nil
}

func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), true
	case json.Number:
		return x.String(), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	default:
		return "", false
	}
}

func toFloat(v any) (float64, error) {
	var f float64
	var err error
	switch x := v.(type) {
	case json.Number:
		f, err = x.Float64()
	case float64:
		f = x
	case string:
		f, err = strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(x), ",", ""), 64)
	default:
		return 0, errNotNumber
	}
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumber
	}
	return f, nil
}

func optionalInt(v any) *int {
	if v == nil {
		return nil
	}
	f, err := toFloat(v)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}
