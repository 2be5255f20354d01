package types

import "github.com/google/uuid"

// DatasetID identifies one loaded snapshot of the dataset
type DatasetID string

// String returns the string representation
func (id DatasetID) String() string {
	return string(id)
}

// NewDatasetID creates a new DatasetID
func NewDatasetID() DatasetID {
	return DatasetID(uuid.New().String())
}
