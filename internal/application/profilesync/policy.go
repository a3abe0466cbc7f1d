package profilesync

import "github.com/google/uuid"

// MappingContext carries the identifiers of the enrichment cycle a
// field-mapping failure occurred in.
type MappingContext struct {
	CustomerID  uuid.UUID
	ExternalUID string
}

// MappingErrorPolicy decides whether enrichment continues after a
// field-mapping subscriber fails. Returning true continues with the
// required fields only; returning false aborts the cycle and surfaces the
// failure as a FieldMappingError.
type MappingErrorPolicy func(err error, mctx MappingContext) bool

// ContinueOnMappingError is the default policy: the failure has already
// been logged, enrichment proceeds.
func ContinueOnMappingError(error, MappingContext) bool {
	return true
}

// AbortOnMappingError escalates any field-mapping failure.
func AbortOnMappingError(error, MappingContext) bool {
	return false
}
