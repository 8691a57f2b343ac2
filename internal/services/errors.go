package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying pipeline failures. ErrExternalTool,
// ErrValidation, and ErrConfiguration are fatal to a job; the remaining
// classes degrade behavior without failing the job as a whole.
var (
	ErrExternalTool           = errors.New("external tool error")
	ErrValidation             = errors.New("validation error")
	ErrConfiguration          = errors.New("configuration error")
	ErrNotFound               = errors.New("not found")
	ErrDetection              = errors.New("subtitle detection failure")
	ErrAlignment              = errors.New("alignment failure")
	ErrTranslationUnavailable = errors.New("translation unavailable")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error should fail the whole job rather than
// degrade a single stage.
func IsFatal(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrDetection), errors.Is(err, ErrAlignment), errors.Is(err, ErrTranslationUnavailable):
		return false
	default:
		return true
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
