package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCheckpoint marks structural checkpoint failures (missing, empty, or
	// corrupt artifacts). These make the checkpoint categorically
	// untrustworthy and must propagate as hard stops.
	ErrCheckpoint = errors.New("checkpoint error")
	// ErrDataQuality marks field-level defects found during integrity scans.
	// These are absorbed by the repair cycle, never raised to the caller.
	ErrDataQuality = errors.New("data quality error")
	// ErrExternalAPI marks failures of the Freesound or CI status APIs.
	ErrExternalAPI = errors.New("external api error")
	// ErrConfiguration marks unusable configuration values.
	ErrConfiguration = errors.New("configuration error")
	// ErrLocked marks lock contention on the checkpoint resource.
	ErrLocked = errors.New("resource locked")
	// ErrTimeout marks an exhausted wait deadline.
	ErrTimeout = errors.New("timeout")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternalAPI
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsHardStop reports whether the error makes further checkpoint processing
// unsafe. Coordination and data-quality failures degrade gracefully; only
// structural checkpoint and configuration errors abort the run.
func IsHardStop(err error) bool {
	return errors.Is(err, ErrCheckpoint) || errors.Is(err, ErrConfiguration)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
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
