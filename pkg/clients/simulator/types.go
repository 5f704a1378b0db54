package simulator

import (
	"fmt"
	"strings"

	"github.com/Layr-Labs/txguard/pkg/simulation"
	"github.com/Layr-Labs/txguard/pkg/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	AssetType_Native = "NATIVE"
	AssetType_Erc20  = "ERC20"

	ChangeType_Transfer = "TRANSFER"
	ChangeType_Approve  = "APPROVE"
)

// SimulationTransaction is the transaction object sent to the simulator. All fields are 0x hex.
type SimulationTransaction struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value,omitempty"`
	Data  string `json:"data,omitempty"`
}

type AssetChangeResponse struct {
	AssetType       string          `json:"assetType"`
	ChangeType      string          `json:"changeType"`
	From            string          `json:"from"`
	To              string          `json:"to"`
	RawAmount       decimal.Decimal `json:"rawAmount"`
	ContractAddress *string         `json:"contractAddress,omitempty"`
	Symbol          string          `json:"symbol,omitempty"`
	Decimals        *int            `json:"decimals,omitempty"`
}

type SimulationErrorResponse struct {
	Message string `json:"message"`
}

type AssetChangesResponse struct {
	Changes []*AssetChangeResponse   `json:"changes"`
	Error   *SimulationErrorResponse `json:"error,omitempty"`
}

func assetKind(assetType string) simulation.AssetKind {
	switch strings.ToUpper(assetType) {
	case AssetType_Native:
		return simulation.AssetKind_Native
	case AssetType_Erc20:
		return simulation.AssetKind_Fungible
	}
	return simulation.AssetKind_Unknown
}

func changeKind(changeType string) simulation.ChangeKind {
	switch strings.ToUpper(changeType) {
	case ChangeType_Transfer:
		return simulation.ChangeKind_Transfer
	case ChangeType_Approve:
		return simulation.ChangeKind_Approve
	}
	return simulation.ChangeKind_Unknown
}

// ToSimulationResult converts the wire response. A reported failure wins over the changes, which
// are not converted, so a revert is always a failed simulation and never a transport error. Unknown
// asset or change types are kept as Unknown for the validator to reject; malformed addresses or
// amounts fail the conversion.
func (r *AssetChangesResponse) ToSimulationResult() (*simulation.SimulationResult, error) {
	if r.Error != nil {
		return &simulation.SimulationResult{
			Changes: make([]*simulation.AssetChange, 0),
			Error:   &simulation.SimulationFailure{Message: r.Error.Message},
		}, nil
	}

	result := &simulation.SimulationResult{
		Changes: make([]*simulation.AssetChange, 0, len(r.Changes)),
	}
	for i, c := range r.Changes {
		if c == nil {
			return nil, fmt.Errorf("change %d is null", i)
		}
		change, err := c.toAssetChange()
		if err != nil {
			return nil, errors.Wrapf(err, "change %d", i)
		}
		result.Changes = append(result.Changes, change)
	}
	return result, nil
}

func (c *AssetChangeResponse) toAssetChange() (*simulation.AssetChange, error) {
	from, err := utils.ParseAddress(c.From)
	if err != nil {
		return nil, errors.Wrap(err, "from")
	}
	to, err := utils.ParseAddress(c.To)
	if err != nil {
		return nil, errors.Wrap(err, "to")
	}
	if !c.RawAmount.IsInteger() || c.RawAmount.IsNegative() {
		return nil, fmt.Errorf("rawAmount '%s' is not a non-negative integer", c.RawAmount.String())
	}

	change := &simulation.AssetChange{
		AssetKind:  assetKind(c.AssetType),
		ChangeKind: changeKind(c.ChangeType),
		From:       from,
		To:         to,
		RawAmount:  c.RawAmount.BigInt(),
	}
	if c.ContractAddress != nil && *c.ContractAddress != "" {
		contract, err := utils.ParseAddress(*c.ContractAddress)
		if err != nil {
			return nil, errors.Wrap(err, "contractAddress")
		}
		change.ContractAddress = &contract
	}
	return change, nil
}

// FromSimulationResult is the inverse of ToSimulationResult, used when echoing a result back.
func FromSimulationResult(result *simulation.SimulationResult) *AssetChangesResponse {
	res := &AssetChangesResponse{Changes: make([]*AssetChangeResponse, 0, len(result.Changes))}
	if result.Error != nil {
		res.Error = &SimulationErrorResponse{Message: result.Error.Message}
	}
	for _, c := range result.Changes {
		if c == nil {
			continue
		}
		change := &AssetChangeResponse{
			AssetType:  assetTypeName(c.AssetKind),
			ChangeType: changeTypeName(c.ChangeKind),
			From:       c.From.Hex(),
			To:         c.To.Hex(),
			RawAmount:  decimal.Zero,
		}
		if c.RawAmount != nil {
			change.RawAmount = decimal.NewFromBigInt(c.RawAmount, 0)
		}
		if c.ContractAddress != nil {
			contract := c.ContractAddress.Hex()
			change.ContractAddress = &contract
		}
		res.Changes = append(res.Changes, change)
	}
	return res
}

func assetTypeName(k simulation.AssetKind) string {
	switch k {
	case simulation.AssetKind_Native:
		return AssetType_Native
	case simulation.AssetKind_Fungible:
		return AssetType_Erc20
	case simulation.AssetKind_Unknown:
	}
	return "UNKNOWN"
}

func changeTypeName(k simulation.ChangeKind) string {
	switch k {
	case simulation.ChangeKind_Transfer:
		return ChangeType_Transfer
	case simulation.ChangeKind_Approve:
		return ChangeType_Approve
	case simulation.ChangeKind_Unknown:
	}
	return "UNKNOWN"
}

func newSimulationTransaction(from common.Address, to common.Address, value string, data string) *SimulationTransaction {
	return &SimulationTransaction{
		From:  from.Hex(),
		To:    to.Hex(),
		Value: value,
		Data:  data,
	}
}
