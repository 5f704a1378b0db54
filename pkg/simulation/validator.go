// Package simulation checks the asset movements predicted for a transaction against the trusted
// address boundary, independently of how the call itself was decoded.
package simulation

import (
	"errors"
	"fmt"

	"github.com/Layr-Labs/txguard/pkg/addressBook"
	"github.com/Layr-Labs/txguard/pkg/validator"
	"go.uber.org/zap"
)

type SimulationValidator struct {
	addressBook addressBook.AddressBook
	logger      *zap.Logger
}

func NewSimulationValidator(book addressBook.AddressBook, l *zap.Logger) *SimulationValidator {
	return &SimulationValidator{
		addressBook: book,
		logger:      l,
	}
}

// ValidateSimulation returns nil when every change stays inside the trusted boundary and a
// *SimulationError for the first change that does not.
func (sv *SimulationValidator) ValidateSimulation(sim *SimulationResult, vctx *validator.ValidationContext) error {
	err := sv.validateSimulation(sim, vctx)
	if err != nil {
		sv.logger.Sugar().Debugw("Rejected simulation",
			zap.String("type", err.Type.String()),
			zap.Int("index", err.Index),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (sv *SimulationValidator) validateSimulation(sim *SimulationResult, vctx *validator.ValidationContext) *SimulationError {
	if sim == nil {
		return NewSimulationError(SimulationError_SimulationFailed, errors.New("simulation failed: no simulation result"))
	}
	if sim.Error != nil {
		return NewSimulationError(SimulationError_SimulationFailed, fmt.Errorf("simulation failed: %s", sim.Error.Message)).
			WithMessage(sim.Error.Message)
	}
	if vctx == nil {
		return NewSimulationError(SimulationError_MissingContext, errors.New("validation context is required"))
	}

	trusted, err := addressBook.NewTrustedAddressSet(sv.addressBook, vctx.ChainId, vctx.Sender)
	if err != nil {
		return NewSimulationError(SimulationError_ReferenceDataMissing, fmt.Errorf("trusted addresses unavailable: %w", err)).
			WithMetadata("chainId", vctx.ChainId)
	}

	for i, change := range sim.Changes {
		if change == nil {
			return NewSimulationError(SimulationError_UnsupportedChange, fmt.Errorf("change %d: unsupported asset/change type", i)).
				WithChange(i, change)
		}

		switch change.AssetKind {
		case AssetKind_Native:
			switch change.ChangeKind {
			case ChangeKind_Transfer:
				if simErr := checkTransfer(trusted, i, change); simErr != nil {
					return simErr
				}
				continue
			case ChangeKind_Approve:
				return NewSimulationError(SimulationError_NativeApprove, fmt.Errorf("change %d: native approve not allowed", i)).
					WithChange(i, change)
			case ChangeKind_Unknown:
			}
		case AssetKind_Fungible:
			switch change.ChangeKind {
			case ChangeKind_Transfer:
				if simErr := checkTransfer(trusted, i, change); simErr != nil {
					return simErr
				}
				continue
			case ChangeKind_Approve:
				if simErr := sv.checkApprove(vctx, i, change); simErr != nil {
					return simErr
				}
				continue
			case ChangeKind_Unknown:
			}
		case AssetKind_Unknown:
		}

		return NewSimulationError(SimulationError_UnsupportedChange, fmt.Errorf("change %d: unsupported asset/change type %s/%s", i, change.AssetKind, change.ChangeKind)).
			WithChange(i, change)
	}
	return nil
}

func checkTransfer(trusted *addressBook.TrustedAddressSet, index int, change *AssetChange) *SimulationError {
	if !trusted.Contains(change.From) {
		return NewSimulationError(SimulationError_UntrustedTransfer, fmt.Errorf("change %d: transfer from untrusted address %s", index, change.From.Hex())).
			WithChange(index, change)
	}
	if !trusted.Contains(change.To) {
		return NewSimulationError(SimulationError_UntrustedTransfer, fmt.Errorf("change %d: transfer to untrusted address %s", index, change.To.Hex())).
			WithChange(index, change)
	}
	return nil
}

func (sv *SimulationValidator) checkApprove(vctx *validator.ValidationContext, index int, change *AssetChange) *SimulationError {
	if change.From != vctx.Sender {
		return NewSimulationError(SimulationError_ForbiddenApprove, fmt.Errorf("change %d: approve from %s is not the sender", index, change.From.Hex())).
			WithChange(index, change)
	}
	feeRouter, err := sv.addressBook.GetFeeRouter(vctx.ChainId)
	if err != nil {
		return NewSimulationError(SimulationError_ReferenceDataMissing, fmt.Errorf("change %d: approve to %s: %w", index, change.To.Hex(), err)).
			WithChange(index, change)
	}
	if change.To != feeRouter {
		return NewSimulationError(SimulationError_ForbiddenApprove, fmt.Errorf("change %d: approve to %s is not the fee router", index, change.To.Hex())).
			WithChange(index, change).
			WithMetadata("feeRouter", feeRouter.Hex())
	}
	return nil
}
