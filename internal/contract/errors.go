package contract

import "errors"

// Error kinds surfaced to the user. Concrete failures wrap one of these.
var (
	ErrInput              = errors.New("invalid input")
	ErrMetricsUnavailable = errors.New("metrics unavailable")
	ErrHistoryUnavailable = errors.New("history unavailable")
	ErrThresholdExceeded  = errors.New("hotspot threshold exceeded")
)

// Process exit codes.
const (
	ExitOK                 = 0
	ExitInternal           = 1
	ExitInput              = 2
	ExitMetricsUnavailable = 3
	ExitHistoryUnavailable = 4
	ExitThresholdExceeded  = 5
)

// ExitCode maps an error to the process exit code reported for it.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInput):
		return ExitInput
	case errors.Is(err, ErrMetricsUnavailable):
		return ExitMetricsUnavailable
	case errors.Is(err, ErrHistoryUnavailable):
		return ExitHistoryUnavailable
	case errors.Is(err, ErrThresholdExceeded):
		return ExitThresholdExceeded
	default:
		return ExitInternal
	}
}
