package identity

import "fmt"

// ServiceCallError indicates a failed call to the identity service.
// Enrichment treats it as a soft failure: logged, then skipped.
type ServiceCallError struct {
	Op  string // operation that failed, e.g. "get", "update"
	UID string // external UID involved, if known
	Err error
}

// Error implements the error interface
func (e *ServiceCallError) Error() string {
	if e.UID != "" {
		return fmt.Sprintf("identity service %s failed for uid %q: %v", e.Op, e.UID, e.Err)
	}
	return fmt.Sprintf("identity service %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *ServiceCallError) Unwrap() error {
	return e.Err
}

// NewServiceCallError creates a new ServiceCallError
func NewServiceCallError(op, uid string, err error) *ServiceCallError {
	return &ServiceCallError{Op: op, UID: uid, Err: err}
}

// FieldMappingError indicates that an extension field-mapping subscriber
// failed and the configured policy decided to abort enrichment instead of
// continuing with the required fields only.
type FieldMappingError struct {
	UID string // external UID of the account being mapped
	Err error
}

// Error implements the error interface
func (e *FieldMappingError) Error() string {
	return fmt.Sprintf("field mapping failed for uid %q: %v", e.UID, e.Err)
}

// Unwrap returns the underlying error
func (e *FieldMappingError) Unwrap() error {
	return e.Err
}

// NewFieldMappingError creates a new FieldMappingError
func NewFieldMappingError(uid string, err error) *FieldMappingError {
	return &FieldMappingError{UID: uid, Err: err}
}
