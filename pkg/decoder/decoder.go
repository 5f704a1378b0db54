// Package decoder classifies raw calldata against the interface registry.
package decoder

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/Layr-Labs/txguard/pkg/abis"
	"go.uber.org/zap"
)

const selectorLength = 4

type Decoder struct {
	registry *abis.Registry
	logger   *zap.Logger
}

func NewDecoder(r *abis.Registry, l *zap.Logger) *Decoder {
	return &Decoder{
		registry: r,
		logger:   l,
	}
}

// Decode tries every registered interface in priority order and returns the first match.
// It never fails: calldata no interface accepts comes back as *UnrecognizedCall.
func (d *Decoder) Decode(call *LowLevelCall) DecodedCall {
	if call == nil {
		return &UnrecognizedCall{Reason: UnknownTransactionReason}
	}
	for _, iface := range d.registry.Interfaces() {
		recognized, ok := decodeWithInterface(iface, call)
		if !ok {
			continue
		}
		d.logger.Debug("Decoded call",
			zap.String("interface", iface.Name),
			zap.String("classification", recognized.Classification.String()),
			zap.String("function", recognized.FunctionName),
			zap.String("to", call.To.Hex()),
		)
		return recognized
	}
	d.logger.Debug("Failed to decode call against any interface",
		zap.String("to", call.To.Hex()),
		zap.Int("dataLength", len(call.Data)),
	)
	return &UnrecognizedCall{Reason: UnknownTransactionReason}
}

// decodeWithInterface returns ok=false for a short payload, an unknown selector, arguments that
// fail to unpack, or arguments that are not in canonical encoding.
func decodeWithInterface(iface *abis.InterfaceDescriptor, call *LowLevelCall) (rc *RecognizedCall, ok bool) {
	// unpacking attacker-controlled bytes must never take the caller down
	defer func() {
		if r := recover(); r != nil {
			rc, ok = nil, false
		}
	}()

	if len(call.Data) < selectorLength {
		return nil, false
	}
	method, err := iface.Abi.MethodById(call.Data[:selectorLength])
	if err != nil {
		return nil, false
	}

	payload := call.Data[selectorLength:]
	values, err := method.Inputs.Unpack(payload)
	if err != nil || len(values) != len(method.Inputs) {
		return nil, false
	}

	// Re-encoding must reproduce the payload. This rejects dirty padding and non-standard offsets
	// that the unpacker tolerates but which make the decoded view disagree with the raw bytes.
	// Trailing bytes after the arguments are ignored, matching on-chain decoding.
	canonical, err := method.Inputs.Pack(values...)
	if err != nil || len(canonical) > len(payload) || !bytes.Equal(canonical, payload[:len(canonical)]) {
		return nil, false
	}

	arguments := make([]Argument, len(method.Inputs))
	for i, input := range method.Inputs {
		arguments[i] = Argument{
			Name:  input.Name,
			Type:  input.Type.String(),
			Value: values[i],
		}
	}

	value := new(big.Int)
	if call.Value != nil {
		value.Set(call.Value)
	}

	return &RecognizedCall{
		Classification: iface.Classification,
		FunctionName:   method.RawName,
		Selector:       fmt.Sprintf("0x%x", method.ID),
		Arguments:      arguments,
		To:             call.To,
		Value:          value,
	}, true
}
