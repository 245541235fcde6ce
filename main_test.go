package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetFlags() cliFlags {
	return cliFlags{beds: -1, minBeds: -1, maxBeds: -1, minPrice: -1, maxPrice: -1}
}

func TestRequestBedsFillsBothBounds(t *testing.T) {
	f := unsetFlags()
	f.location = "Hackney"
	f.beds = 2

	req := f.request()

	require.NotNil(t, req.Query)
	assert.Equal(t, 2, *req.Query.MinBeds)
	assert.Equal(t, 2, *req.Query.MaxBeds)
	assert.Nil(t, req.Query.MinPrice)
}

func TestRequestExplicitBoundsOverrideBeds(t *testing.T) {
	f := unsetFlags()
	f.location = "Hackney"
	f.beds = 2
	f.minBeds = 1
	f.maxBeds = 3

	req := f.request()

	assert.Equal(t, 1, *req.Query.MinBeds)
	assert.Equal(t, 3, *req.Query.MaxBeds)
}

func TestRequestZeroIsASetBound(t *testing.T) {
	f := unsetFlags()
	f.location = "Hackney"
	f.beds = 3
	f.minBeds = 0

	req := f.request()

	assert.Equal(t, 0, *req.Query.MinBeds)
	assert.Equal(t, 3, *req.Query.MaxBeds)
}

func TestRequestURLOnly(t *testing.T) {
	f := unsetFlags()
	f.url = "https://www.rightmove.co.uk/property-for-sale/find.html?locationIdentifier=REGION%5E93953"
	f.percentile = 10

	req := f.request()

	assert.Nil(t, req.Query)
	assert.Equal(t, f.url, req.URL)
	assert.Equal(t, 10.0, req.Percentile)
}
