// Package validator applies the per-function authorization rules to decoded calls.
package validator

import (
	"errors"
	"fmt"

	"github.com/Layr-Labs/txguard/pkg/abis"
	"github.com/Layr-Labs/txguard/pkg/addressBook"
	"github.com/Layr-Labs/txguard/pkg/decoder"
	"github.com/Layr-Labs/txguard/pkg/utils"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// ValidationContext identifies who is asking to sign and on which chain.
type ValidationContext struct {
	ChainId uint64
	Sender  common.Address
}

const (
	infiniteApprovalMessage = "infinite approval not allowed"
	forbiddenSpenderMessage = "forbidden spender"
)

// beneficiaryArguments maps each lending pool function that moves funds to the position of the
// argument naming who receives them.
var beneficiaryArguments = map[string]int{
	"supply":   2, // onBehalfOf
	"withdraw": 2, // to
	"borrow":   4, // onBehalfOf
	"repay":    3, // onBehalfOf
}

// Validator is stateless beyond its read-only address book and safe for concurrent use.
type Validator struct {
	addressBook addressBook.AddressBook
	logger      *zap.Logger
}

func NewValidator(book addressBook.AddressBook, l *zap.Logger) *Validator {
	return &Validator{
		addressBook: book,
		logger:      l,
	}
}

// ValidateCall returns nil when the call may be signed and an *AuthorizationError otherwise.
// Anything not explicitly allowed below is rejected.
func (v *Validator) ValidateCall(decoded decoder.DecodedCall, vctx *ValidationContext) error {
	err := v.validateCall(decoded, vctx)
	if err != nil {
		v.logger.Sugar().Debugw("Rejected call",
			zap.String("type", err.Type.String()),
			zap.String("function", err.Function),
			zap.String("field", err.Field),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (v *Validator) validateCall(decoded decoder.DecodedCall, vctx *ValidationContext) *AuthorizationError {
	if vctx == nil {
		return NewAuthorizationError(AuthorizationError_MissingContext, errors.New("validation context is required"))
	}

	switch call := decoded.(type) {
	case *decoder.UnrecognizedCall:
		return NewAuthorizationError(AuthorizationError_UnrecognizedCall, fmt.Errorf("unrecognized call: %s", call.Reason))
	case *decoder.RecognizedCall:
		switch call.Classification {
		case abis.Classification_FungibleToken:
			return v.validateFungibleToken(call, vctx)
		case abis.Classification_FeeRouter:
			return v.validateFeeRouter(call)
		case abis.Classification_LendingPool:
			return v.validateLendingPool(call, vctx)
		}
		return NewAuthorizationError(AuthorizationError_UnrecognizedCall, fmt.Errorf("unknown classification: %s", call.Classification)).
			WithCall(call.Classification, call.FunctionName)
	}
	return NewAuthorizationError(AuthorizationError_UnrecognizedCall, errors.New("unrecognized call: no decoded call"))
}

func (v *Validator) validateFungibleToken(call *decoder.RecognizedCall, vctx *ValidationContext) *AuthorizationError {
	switch call.FunctionName {
	case "approve", "increaseAllowance":
		return v.validateApproval(call, vctx)
	}
	return NewAuthorizationError(AuthorizationError_FunctionNotAllowed, fmt.Errorf("function not allowed: %s", call.FunctionName)).
		WithCall(call.Classification, call.FunctionName)
}

// validateApproval checks the amount before the spender so an unlimited approval is always
// reported as such, whoever the spender is.
func (v *Validator) validateApproval(call *decoder.RecognizedCall, vctx *ValidationContext) *AuthorizationError {
	spender, err := call.AddressArgument(0)
	if err != nil {
		return malformedArguments(call, err)
	}
	amount, err := call.BigIntArgument(1)
	if err != nil {
		return malformedArguments(call, err)
	}

	if utils.IsMaxUint256(amount) {
		return NewAuthorizationError(AuthorizationError_InfiniteApproval, errors.New(infiniteApprovalMessage)).
			WithCall(call.Classification, call.FunctionName).
			WithField(call.ArgumentName(1)).
			WithValue(amount.String())
	}

	feeRouter, err := v.addressBook.GetFeeRouter(vctx.ChainId)
	if err != nil {
		return NewAuthorizationError(AuthorizationError_ReferenceDataMissing, fmt.Errorf("%s: %w", forbiddenSpenderMessage, err)).
			WithCall(call.Classification, call.FunctionName).
			WithField(call.ArgumentName(0)).
			WithValue(spender.Hex()).
			WithMetadata("chainId", vctx.ChainId)
	}
	if spender != feeRouter {
		return NewAuthorizationError(AuthorizationError_ForbiddenSpender, errors.New(forbiddenSpenderMessage)).
			WithCall(call.Classification, call.FunctionName).
			WithField(call.ArgumentName(0)).
			WithValue(spender.Hex()).
			WithMetadata("feeRouter", feeRouter.Hex())
	}
	return nil
}

func (v *Validator) validateFeeRouter(call *decoder.RecognizedCall) *AuthorizationError {
	switch call.FunctionName {
	case "depositToAave", "withdrawFromAave":
		// The router resolves the delegator from msg.sender and only moves funds between that
		// delegator and the pool. A wrong appId or asset makes the call revert on-chain; it cannot
		// send funds anywhere else, so the arguments are not checked here.
		return nil
	}
	return NewAuthorizationError(AuthorizationError_FunctionNotAllowed, fmt.Errorf("fee function not allowed: %s", call.FunctionName)).
		WithCall(call.Classification, call.FunctionName)
}

func (v *Validator) validateLendingPool(call *decoder.RecognizedCall, vctx *ValidationContext) *AuthorizationError {
	if call.FunctionName == "setUserUseReserveAsCollateral" {
		return nil
	}

	index, ok := beneficiaryArguments[call.FunctionName]
	if !ok {
		return NewAuthorizationError(AuthorizationError_FunctionNotAllowed, fmt.Errorf("pool function not allowed: %s", call.FunctionName)).
			WithCall(call.Classification, call.FunctionName)
	}

	beneficiary, err := call.AddressArgument(index)
	if err != nil {
		return malformedArguments(call, err)
	}
	if beneficiary != vctx.Sender {
		field := call.ArgumentName(index)
		return NewAuthorizationError(AuthorizationError_BeneficiaryMismatch, fmt.Errorf("%s.%s != sender", call.FunctionName, field)).
			WithCall(call.Classification, call.FunctionName).
			WithField(field).
			WithValue(beneficiary.Hex()).
			WithMetadata("sender", vctx.Sender.Hex())
	}
	return nil
}

func malformedArguments(call *decoder.RecognizedCall, err error) *AuthorizationError {
	return NewAuthorizationError(AuthorizationError_MalformedArguments, fmt.Errorf("malformed arguments: %w", err)).
		WithCall(call.Classification, call.FunctionName)
}
