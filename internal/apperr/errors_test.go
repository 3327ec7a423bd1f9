package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lexfold/canondoc/internal/apperr"
)

func TestNewValidation(t *testing.T) {
	err := apperr.NewValidation("title is required")

	if err.Error() != "title is required" {
		t.Errorf("expected 'title is required', got %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Errorf("expected nil unwrap, got %v", err.Unwrap())
	}
}

func TestNewValidationWrap(t *testing.T) {
	inner := fmt.Errorf("parse failed")
	err := apperr.NewValidationWrap("invalid canonical url", inner)

	if err.Error() != "invalid canonical url: parse failed" {
		t.Errorf("expected 'invalid canonical url: parse failed', got %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("expected Unwrap to return inner error")
	}
}

func TestValidationError_SurvivesFmtWrapping(t *testing.T) {
	original := apperr.NewValidation("missing source id")

	wrapped := fmt.Errorf("map stage: %w", original)
	doubleWrapped := fmt.Errorf("record rejected: %w", wrapped)

	var ve *apperr.ValidationError
	if !errors.As(doubleWrapped, &ve) {
		t.Fatal("errors.As should find ValidationError through double wrapping")
	}
	if ve.Message != "missing source id" {
		t.Errorf("expected 'missing source id', got %q", ve.Message)
	}
	if !apperr.IsValidation(doubleWrapped) {
		t.Error("IsValidation should see through wrapping")
	}
}

func TestAcquisitionError_Classification(t *testing.T) {
	permanent := apperr.NewAcquisitionPermanent("document withdrawn", nil)
	transient := apperr.NewAcquisitionTransient("fetch timed out", errors.New("context deadline exceeded"))

	if !apperr.IsPermanentAcquisition(permanent) {
		t.Error("permanent error should classify as permanent")
	}
	if apperr.IsPermanentAcquisition(transient) {
		t.Error("transient error must not classify as permanent")
	}

	wrapped := fmt.Errorf("acquire stage: %w", permanent)
	if !apperr.IsPermanentAcquisition(wrapped) {
		t.Error("classification should survive wrapping")
	}
}

func TestServiceUnavailable(t *testing.T) {
	err := apperr.NewServiceUnavailable("document store")

	if err.Error() != "service unavailable: document store" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !apperr.IsServiceUnavailable(fmt.Errorf("batch aborted: %w", err)) {
		t.Error("IsServiceUnavailable should see through wrapping")
	}
	if apperr.IsServiceUnavailable(errors.New("plain")) {
		t.Error("plain errors are not service-unavailable")
	}
}
