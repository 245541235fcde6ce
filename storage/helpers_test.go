package storage

import (
	"io"
	"time"

	"hackermove/models"
	"hackermove/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLoggerTo(io.Discard, utils.LevelError) }

func sampleRows() []models.Row {
	beds := 2
	sizeText := "1,000 sq. ft."
	size := 1000.0
	value := int64(250)
	return []models.Row{
		{
			ListingRecord: models.ListingRecord{
				ID:           "101",
				Address:      "Mare Street, London E8",
				Bedrooms:     &beds,
				Price:        250000,
				SizeText:     &sizeText,
				URL:          "https://www.rightmove.co.uk/properties/101",
				ListedAt:     time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
				PropertyType: "Flat",
				Tenure:       models.TenureLeasehold,
			},
			Size:  &size,
			Value: &value,
		},
		{
			ListingRecord: models.ListingRecord{
				ID:       "102",
				Address:  "Upper Street, London N1",
				Price:    625000.5,
				URL:      "https://www.rightmove.co.uk/properties/102",
				ListedAt: time.Date(2024, 2, 28, 18, 0, 0, 0, time.UTC),
				Tenure:   models.TenureUnknown,
			},
		},
	}
}
