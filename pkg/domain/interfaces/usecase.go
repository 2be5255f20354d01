package interfaces

import (
	"context"

	"github.com/secmon-lab/phenodash/pkg/domain/model"
)

// Dashboard defines the interface for rendering dashboard views
type Dashboard interface {
	// Render filters, aggregates and projects the current dataset for a query
	Render(ctx context.Context, query model.Query) (*model.View, error)
}
