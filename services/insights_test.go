package services

import (
	"bytes"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackermove/models"
)

func sampleDataset() *models.Dataset {
	return NewBuilder(newTestLogger(), "").Build([]models.ListingRecord{
		record("villa", 900000, "2,000 sq. ft.", 10),
		record("studio", 250000, "400 sq. ft.", 0),
		record("loft", 500000, "1,000 sq. ft.", 5),
		record("cabin", 300000, "", 20),
		record("flat", 450000, "600 sq. ft.", 1),
	})
}

func TestInsightStats(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(sampleDataset(), 3)

	assert.Equal(t, 5, r.TotalListings)
	assert.Equal(t, 4, r.SizedListings)
	assert.Equal(t, 450000.0, r.MedianPrice)
	assert.Equal(t, 480000.0, r.MeanPrice)
	assert.Equal(t, 800.0, r.MedianSize)
	assert.Equal(t, 1000.0, r.MeanSize)
}

func TestInsightSlices(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(sampleDataset(), 2)

	require.Len(t, r.Latest, 2)
	assert.Equal(t, "studio", r.Latest[0].ID)
	assert.Equal(t, "flat", r.Latest[1].ID)

	require.Len(t, r.MostExpensive, 2)
	assert.Equal(t, "villa", r.MostExpensive[0].ID)
	assert.Equal(t, "loft", r.MostExpensive[1].ID)

	require.Len(t, r.LeastExpensive, 2)
	assert.Equal(t, "studio", r.LeastExpensive[0].ID)
	assert.Equal(t, "cabin", r.LeastExpensive[1].ID)

	require.Len(t, r.Largest, 2)
	assert.Equal(t, "villa", r.Largest[0].ID)

	// values: villa 450, studio 625, loft 500, flat 750
	require.Len(t, r.BestValue, 2)
	assert.Equal(t, "villa", r.BestValue[0].ID)
	assert.Equal(t, "loft", r.BestValue[1].ID)
}

func TestInsightEmptyInput(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(models.NewDataset(nil), 10)
	assert.Equal(t, 0, r.TotalListings)
	assert.Empty(t, r.Latest)
}

func TestInsightPrint(t *testing.T) {
	var buf bytes.Buffer
	svc := NewInsightService(newTestLogger()).WithOutput(&buf)

	svc.Print(svc.Generate(sampleDataset(), 10))

	out := buf.String()
	assert.Contains(t, out, "Most expensive")
	assert.Contains(t, out, "Sorted by value")
	assert.Contains(t, out, "villa Example Road")
	assert.Contains(t, out, "Total results")
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	s := "Flat 2, Ærø Court, Ünter den Linden, Königsstraße 12"

	got := truncate(s, 20)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 20, utf8.RuneCountInString(got))
	assert.Equal(t, "Flat 2, Ærø Court...", got)
	assert.Equal(t, "short", truncate("short", 20))
}
