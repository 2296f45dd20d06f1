package engine

import (
	"errors"
	"fmt"
)

// Reason classifies why a command was refused. The presentation layer maps
// these codes to user-facing messages.
type Reason string

const (
	// ReasonInvalidAction covers commands that are illegal in the current
	// phase or for the current player. The game state is untouched.
	ReasonInvalidAction Reason = "INVALID_ACTION"

	// ReasonInsufficientResources covers shortfalls on either side of a
	// deal: player ledger, market stock, or market money pool.
	ReasonInsufficientResources Reason = "INSUFFICIENT_RESOURCES"

	// ReasonDuplicatePendingTrade is returned when a (source, target) pair
	// already has a trade awaiting resolution.
	ReasonDuplicatePendingTrade Reason = "DUPLICATE_PENDING_TRADE"

	// ReasonInvalidConfiguration is fatal and only possible at setup.
	ReasonInvalidConfiguration Reason = "INVALID_CONFIGURATION"
)

// CommandError carries a machine-readable reason code alongside the detail.
type CommandError struct {
	Code   Reason
	Detail string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func refuse(code Reason, format string, args ...interface{}) *CommandError {
	return &CommandError{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the reason code from an engine error, or empty for nil
// and foreign errors.
func ReasonOf(err error) Reason {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
