package services

import (
	"io"
	"time"

	"hackermove/models"
	"hackermove/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLoggerTo(io.Discard, utils.LevelError) }

func strp(s string) *string { return &s }

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func record(id string, price float64, size string, ageHours int) models.ListingRecord {
	r := models.ListingRecord{
		ID:       id,
		Address:  id + " Example Road",
		Price:    price,
		URL:      "https://www.rightmove.co.uk/properties/" + id,
		ListedAt: baseTime.Add(-time.Duration(ageHours) * time.Hour),
		Tenure:   models.TenureUnknown,
	}
	if size != "" {
		r.SizeText = strp(size)
	}
	return r
}

func ids(ds *models.Dataset) []string {
	var out []string
	for _, r := range ds.Rows() {
		out = append(out, r.ID)
	}
	return out
}
