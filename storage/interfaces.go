package storage

import (
	"context"

	"hackermove/models"
)

// DatasetWriter is the interface any dataset sink must satisfy.
type DatasetWriter interface {
	Write(ctx context.Context, ds *models.Dataset) error
	Close() error
}
