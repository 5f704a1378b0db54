package validator

import (
	"fmt"

	"github.com/Layr-Labs/txguard/pkg/abis"
)

type AuthorizationErrorType int

const (
	AuthorizationError_UnrecognizedCall     AuthorizationErrorType = 1
	AuthorizationError_FunctionNotAllowed   AuthorizationErrorType = 2
	AuthorizationError_InfiniteApproval     AuthorizationErrorType = 3
	AuthorizationError_ForbiddenSpender     AuthorizationErrorType = 4
	AuthorizationError_BeneficiaryMismatch  AuthorizationErrorType = 5
	AuthorizationError_MalformedArguments   AuthorizationErrorType = 6
	AuthorizationError_ReferenceDataMissing AuthorizationErrorType = 7
	AuthorizationError_MissingContext       AuthorizationErrorType = 8
)

func (t AuthorizationErrorType) String() string {
	switch t {
	case AuthorizationError_UnrecognizedCall:
		return "unrecognized_call"
	case AuthorizationError_FunctionNotAllowed:
		return "function_not_allowed"
	case AuthorizationError_InfiniteApproval:
		return "infinite_approval"
	case AuthorizationError_ForbiddenSpender:
		return "forbidden_spender"
	case AuthorizationError_BeneficiaryMismatch:
		return "beneficiary_mismatch"
	case AuthorizationError_MalformedArguments:
		return "malformed_arguments"
	case AuthorizationError_ReferenceDataMissing:
		return "reference_data_missing"
	case AuthorizationError_MissingContext:
		return "missing_context"
	}
	return fmt.Sprintf("AuthorizationErrorType(%d)", int(t))
}

// AuthorizationError is a rejection of a decoded call. It is final: the call must not be signed
// and retrying the same call yields the same error.
type AuthorizationError struct {
	Type           AuthorizationErrorType
	Err            error
	Classification abis.Classification
	Function       string
	Field          string
	Value          string
	Metadata       map[string]interface{}
	Message        string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("AuthorizationError: %s", e.Err.Error())
}

func (e *AuthorizationError) Unwrap() error {
	return e.Err
}

func NewAuthorizationError(t AuthorizationErrorType, err error) *AuthorizationError {
	return &AuthorizationError{
		Type:     t,
		Err:      err,
		Metadata: make(map[string]interface{}),
	}
}

func (e *AuthorizationError) WithCall(classification abis.Classification, function string) *AuthorizationError {
	e.Classification = classification
	e.Function = function
	return e
}

func (e *AuthorizationError) WithField(field string) *AuthorizationError {
	e.Field = field
	return e
}

func (e *AuthorizationError) WithValue(value string) *AuthorizationError {
	e.Value = value
	return e
}

func (e *AuthorizationError) WithMetadata(key string, value interface{}) *AuthorizationError {
	e.Metadata[key] = value
	return e
}

func (e *AuthorizationError) WithMessage(message string) *AuthorizationError {
	e.Message = message
	return e
}
