package model

import "github.com/m-mizutani/goerr/v2"

// ErrTagDataLoad marks every failure to turn the source file into a Dataset.
// It is fatal for the session: there is no fallback dataset.
var ErrTagDataLoad = goerr.NewTag("data_load")

// Sentinel errors for domain operations
var (
	ErrDatasetNotLoaded = goerr.New("dataset not loaded")
)

// IsDataLoadError reports whether err is a DataLoadError
func IsDataLoadError(err error) bool {
	return goerr.HasTag(err, ErrTagDataLoad)
}
