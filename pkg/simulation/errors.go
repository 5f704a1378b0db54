package simulation

import (
	"fmt"
)

type SimulationErrorType int

const (
	SimulationError_SimulationFailed     SimulationErrorType = 1
	SimulationError_NativeApprove        SimulationErrorType = 2
	SimulationError_ForbiddenApprove     SimulationErrorType = 3
	SimulationError_UntrustedTransfer    SimulationErrorType = 4
	SimulationError_UnsupportedChange    SimulationErrorType = 5
	SimulationError_ReferenceDataMissing SimulationErrorType = 6
	SimulationError_MissingContext       SimulationErrorType = 7
)

func (t SimulationErrorType) String() string {
	switch t {
	case SimulationError_SimulationFailed:
		return "simulation_failed"
	case SimulationError_NativeApprove:
		return "native_approve"
	case SimulationError_ForbiddenApprove:
		return "forbidden_approve"
	case SimulationError_UntrustedTransfer:
		return "untrusted_transfer"
	case SimulationError_UnsupportedChange:
		return "unsupported_change"
	case SimulationError_ReferenceDataMissing:
		return "reference_data_missing"
	case SimulationError_MissingContext:
		return "missing_context"
	}
	return fmt.Sprintf("SimulationErrorType(%d)", int(t))
}

// SimulationError rejects a simulation. Index is -1 when the failure is not tied to one change.
type SimulationError struct {
	Type     SimulationErrorType
	Err      error
	Index    int
	Change   *AssetChange
	Metadata map[string]interface{}
	Message  string
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("SimulationError: %s", e.Err.Error())
}

func (e *SimulationError) Unwrap() error {
	return e.Err
}

func NewSimulationError(t SimulationErrorType, err error) *SimulationError {
	return &SimulationError{
		Type:     t,
		Err:      err,
		Index:    -1,
		Metadata: make(map[string]interface{}),
	}
}

func (e *SimulationError) WithChange(index int, change *AssetChange) *SimulationError {
	e.Index = index
	e.Change = change
	return e
}

func (e *SimulationError) WithMetadata(key string, value interface{}) *SimulationError {
	e.Metadata[key] = value
	return e
}

func (e *SimulationError) WithMessage(message string) *SimulationError {
	e.Message = message
	return e
}
