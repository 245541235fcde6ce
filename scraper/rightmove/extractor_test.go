package rightmove

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackermove/models"
)

func TestExtractCounts(t *testing.T) {
	body := page(properties(1, 25), "24", "48")

	desc, raws, err := NewExtractor("").Extract(body)

	require.NoError(t, err)
	assert.Equal(t, []string{"24", "48"}, desc.Tokens)
	assert.Len(t, raws, 25)
}

func TestExtractSinglePage(t *testing.T) {
	desc, raws, err := NewExtractor("").Extract(page(properties(1, 3)))

	require.NoError(t, err)
	assert.Empty(t, desc.Tokens)
	assert.Len(t, raws, 3)
}

func TestExtractKeepsNumbers(t *testing.T) {
	_, raws, err := NewExtractor("").Extract(page(properties(148877303, 1)))

	require.NoError(t, err)
	rec, err := NewParser("").Parse(raws[0])
	require.NoError(t, err)
	assert.Equal(t, "148877303", rec.ID)
}

func TestExtractNumericOptionValues(t *testing.T) {
	body := `<script>window.jsonModel = {"properties":[],"pagination":{"options":[{"value":0},{"value":24},{"value":"48"}]}};</script>`

	desc, raws, err := NewExtractor("").Extract(body)

	require.NoError(t, err)
	assert.Equal(t, []string{"24", "48"}, desc.Tokens)
	assert.Empty(t, raws)
}

func TestExtractMissingPagination(t *testing.T) {
	body := `<script>window.jsonModel = {"properties":[{"id":1}]}</script>`

	desc, raws, err := NewExtractor("").Extract(body)

	require.NoError(t, err)
	assert.Empty(t, desc.Tokens)
	assert.Len(t, raws, 1)
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no marker", `<html><script>var x = {"properties":[]}</script></html>`},
		{"marker outside script", `<html><body>window.jsonModel = {"properties":[]}</body></html>`},
		{"invalid json", `<script>window.jsonModel = {"properties": [</script>`},
		{"trailing data", `<script>window.jsonModel = {"properties":[]} this is not json</script>`},
		{"second value", `<script>window.jsonModel = {"properties":[]} {"properties":[]};</script>`},
		{"null option value", `<script>window.jsonModel = {"properties":[],"pagination":{"options":[{"value":"0"},{"value":null}]}}</script>`},
		{"empty option value", `<script>window.jsonModel = {"properties":[],"pagination":{"options":[{"value":"0"},{"value":""}]}}</script>`},
		{"no properties", `<script>window.jsonModel = {"pagination":{"options":[]}}</script>`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewExtractor("").Extract(tt.body)
			require.Error(t, err)
			var ee *models.ExtractionError
			assert.True(t, errors.As(err, &ee), "want ExtractionError, got %T", err)
		})
	}
}

func TestExtractCustomMarker(t *testing.T) {
	body := `<script>window.PAGE_MODEL = {"properties":[{"id":7}]}</script>`

	_, raws, err := NewExtractor("window.PAGE_MODEL").Extract(body)

	require.NoError(t, err)
	assert.Len(t, raws, 1)
}
