package apperr

import "errors"

// ValidationError marks a malformed draft or caller input. A draft failing
// validation is rejected before any persistence attempt and never falls back.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// AcquisitionError reports a failed content fetch. Permanent means the content
// is genuinely not downloadable and re-enrichment would never succeed;
// everything else (network, timeout, 5xx) is transient.
type AcquisitionError struct {
	Message   string
	Permanent bool
	Err       error
}

func (e *AcquisitionError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

func NewAcquisitionPermanent(msg string, err error) *AcquisitionError {
	return &AcquisitionError{Message: msg, Permanent: true, Err: err}
}

func NewAcquisitionTransient(msg string, err error) *AcquisitionError {
	return &AcquisitionError{Message: msg, Err: err}
}

// ExtractionError reports that acquired bytes could not be turned into
// structured content.
type ExtractionError struct {
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func NewExtraction(msg string, err error) *ExtractionError {
	return &ExtractionError{Message: msg, Err: err}
}

// PersistenceError reports a failed store write.
type PersistenceError struct {
	Message string
	Err     error
}

func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func NewPersistence(msg string, err error) *PersistenceError {
	return &PersistenceError{Message: msg, Err: err}
}

// ServiceUnavailableError means a required dependency is unconfigured or
// unreachable at configuration level. No record in a batch could possibly
// succeed, so it fails the whole operation early.
type ServiceUnavailableError struct {
	Service string
	Err     error
}

func (e *ServiceUnavailableError) Error() string {
	if e.Err != nil {
		return "service unavailable: " + e.Service + ": " + e.Err.Error()
	}
	return "service unavailable: " + e.Service
}

func (e *ServiceUnavailableError) Unwrap() error {
	return e.Err
}

func NewServiceUnavailable(service string) *ServiceUnavailableError {
	return &ServiceUnavailableError{Service: service}
}

func NewServiceUnavailableWrap(service string, err error) *ServiceUnavailableError {
	return &ServiceUnavailableError{Service: service, Err: err}
}

// IsValidation reports whether err is a ValidationError anywhere in its chain.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPermanentAcquisition reports whether err carries the permanent
// acquisition classification.
func IsPermanentAcquisition(err error) bool {
	var ae *AcquisitionError
	return errors.As(err, &ae) && ae.Permanent
}

// IsServiceUnavailable reports whether err is configuration-level and should
// abort an entire batch.
func IsServiceUnavailable(err error) bool {
	var se *ServiceUnavailableError
	return errors.As(err, &se)
}
