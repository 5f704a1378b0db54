package decoder

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/Layr-Labs/txguard/pkg/abis"
	"github.com/Layr-Labs/txguard/pkg/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const UnknownTransactionReason = "unknown transaction type; could not decode"

// LowLevelCall is the raw transaction payload under evaluation.
type LowLevelCall struct {
	To    common.Address
	Data  []byte
	Value *big.Int
}

// NewLowLevelCall parses the string form used by the CLI and the HTTP gateway. Value accepts
// decimal or 0x-prefixed hex and defaults to zero.
func NewLowLevelCall(to string, data string, value string) (*LowLevelCall, error) {
	toAddress, err := utils.ParseAddress(to)
	if err != nil {
		return nil, fmt.Errorf("invalid 'to': %w", err)
	}

	var dataBytes []byte
	if data != "" && data != "0x" {
		dataBytes, err = hexutil.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("invalid 'data': %w", err)
		}
	}

	v, err := ParseUint256(value)
	if err != nil {
		return nil, fmt.Errorf("invalid 'value': %w", err)
	}

	return &LowLevelCall{
		To:    toAddress,
		Data:  dataBytes,
		Value: v,
	}, nil
}

func ParseUint256(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return big.NewInt(0), nil
	}
	v := new(big.Int)
	var ok bool
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, ok = v.SetString(s[2:], 16)
	} else {
		v, ok = v.SetString(s, 10)
	}
	if !ok {
		return nil, fmt.Errorf("'%s' is not an integer", s)
	}
	if v.Sign() < 0 || v.BitLen() > 256 {
		return nil, fmt.Errorf("'%s' is out of uint256 range", s)
	}
	return v, nil
}

type Argument struct {
	Name  string
	Type  string
	Value interface{}
}

// String renders the value the same way regardless of its go type so it can be logged and
// returned over JSON without losing uint256 precision.
func (a Argument) String() string {
	switch v := a.Value.(type) {
	case common.Address:
		return v.Hex()
	case *big.Int:
		return v.String()
	case []byte:
		return hexutil.Encode(v)
	case [32]byte:
		return hexutil.Encode(v[:])
	default:
		return fmt.Sprintf("%v", v)
	}
}

// DecodedCall is either *RecognizedCall or *UnrecognizedCall. The unexported method keeps the
// set of variants closed to this package.
type DecodedCall interface {
	isDecodedCall()
}

type RecognizedCall struct {
	Classification abis.Classification
	FunctionName   string
	Selector       string
	Arguments      []Argument
	To             common.Address
	Value          *big.Int
}

func (*RecognizedCall) isDecodedCall() {}

type UnrecognizedCall struct {
	Reason string
}

func (*UnrecognizedCall) isDecodedCall() {}

func (rc *RecognizedCall) argument(index int) (Argument, error) {
	if index < 0 || index >= len(rc.Arguments) {
		return Argument{}, fmt.Errorf("%s: argument %d out of range (have %d)", rc.FunctionName, index, len(rc.Arguments))
	}
	return rc.Arguments[index], nil
}

func (rc *RecognizedCall) AddressArgument(index int) (common.Address, error) {
	arg, err := rc.argument(index)
	if err != nil {
		return common.Address{}, err
	}
	address, ok := arg.Value.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s.%s: expected address, got %T", rc.FunctionName, arg.Name, arg.Value)
	}
	return address, nil
}

func (rc *RecognizedCall) BigIntArgument(index int) (*big.Int, error) {
	arg, err := rc.argument(index)
	if err != nil {
		return nil, err
	}
	v, ok := arg.Value.(*big.Int)
	if !ok || v == nil {
		return nil, fmt.Errorf("%s.%s: expected uint256, got %T", rc.FunctionName, arg.Name, arg.Value)
	}
	return v, nil
}

func (rc *RecognizedCall) ArgumentName(index int) string {
	arg, err := rc.argument(index)
	if err != nil {
		return fmt.Sprintf("arg%d", index)
	}
	return arg.Name
}
