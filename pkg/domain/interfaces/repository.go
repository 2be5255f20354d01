package interfaces

import (
	"context"

	"github.com/secmon-lab/phenodash/pkg/domain/model"
)

// DatasetSource defines the interface for reading the weekly dataset
type DatasetSource interface {
	// Stat returns the current version of the source without reading it
	Stat(ctx context.Context) (model.SourceVersion, error)

	// Load reads the whole source into an immutable snapshot.
	// Failures carry model.ErrTagDataLoad.
	Load(ctx context.Context) (*model.Dataset, error)
}

// DatasetProvider hands out the current dataset snapshot
type DatasetProvider interface {
	Get(ctx context.Context) (*model.Dataset, error)
}
