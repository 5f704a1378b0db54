package simulation

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// AssetKind zero value is Unknown so an unset field is always rejected.
type AssetKind int

const (
	AssetKind_Unknown AssetKind = iota
	AssetKind_Native
	AssetKind_Fungible
)

func (k AssetKind) String() string {
	switch k {
	case AssetKind_Unknown:
		return "Unknown"
	case AssetKind_Native:
		return "Native"
	case AssetKind_Fungible:
		return "Fungible"
	}
	return fmt.Sprintf("AssetKind(%d)", int(k))
}

type ChangeKind int

const (
	ChangeKind_Unknown ChangeKind = iota
	ChangeKind_Transfer
	ChangeKind_Approve
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeKind_Unknown:
		return "Unknown"
	case ChangeKind_Transfer:
		return "Transfer"
	case ChangeKind_Approve:
		return "Approve"
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// AssetChange is one predicted movement reported by the simulator. Every field is untrusted.
type AssetChange struct {
	AssetKind       AssetKind
	ChangeKind      ChangeKind
	From            common.Address
	To              common.Address
	RawAmount       *big.Int
	ContractAddress *common.Address
}

func (c *AssetChange) String() string {
	contract := "-"
	if c.ContractAddress != nil {
		contract = c.ContractAddress.Hex()
	}
	amount := "<nil>"
	if c.RawAmount != nil {
		amount = c.RawAmount.String()
	}
	return fmt.Sprintf("%s %s from=%s to=%s amount=%s contract=%s",
		c.AssetKind, c.ChangeKind, c.From.Hex(), c.To.Hex(), amount, contract)
}

type SimulationFailure struct {
	Message string
}

type SimulationResult struct {
	Changes []*AssetChange
	// set when the simulated transaction reverted or the simulator could not run it
	Error *SimulationFailure
}
