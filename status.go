package sla

import "fmt"

// Status is a status/error-kind sentinel, one for each outcome an encoder
// operation can report. Exported operations that can fail return an error
// wrapping a Status; callers recover the kind with errors.Is/errors.As
// against the package-level Status constants below.
type Status int

// Status kinds.
const (
	OK Status = iota
	InvalidArgument
	ExceedHandleCapacity
	InsufficientBufferSize
	InvalidWindowFunctionType
	InvalidChProcessMethod
	FailedToCalculateCoef
	FailedToPredict
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case InvalidArgument:
		return "INVALID_ARGUMENT"
	case ExceedHandleCapacity:
		return "EXCEED_HANDLE_CAPACITY"
	case InsufficientBufferSize:
		return "INSUFFICIENT_BUFFER_SIZE"
	case InvalidWindowFunctionType:
		return "INVALID_WINDOWFUNCTION_TYPE"
	case InvalidChProcessMethod:
		return "INVALID_CHPROCESSMETHOD"
	case FailedToCalculateCoef:
		return "FAILED_TO_CALCULATE_COEF"
	case FailedToPredict:
		return "FAILED_TO_PREDICT"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Error lets Status satisfy the error interface directly, so it can be
// returned bare or wrapped with errutil at a package boundary.
func (s Status) Error() string {
	return s.String()
}
