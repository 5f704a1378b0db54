package gatekeeper

import (
	"fmt"
	"time"

	"github.com/Layr-Labs/txguard/pkg/decoder"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Stage names the step that decided a verdict.
type Stage string

const (
	Stage_Decode     Stage = "decode"
	Stage_Rules      Stage = "rules"
	Stage_Simulation Stage = "simulation"
	// only full authorizations end here
	Stage_Approved Stage = "approved"
)

type Verdict struct {
	Id        uuid.UUID
	Approved  bool
	Stage     Stage
	Reason    string
	Call      *decoder.LowLevelCall
	Decoded   decoder.DecodedCall
	ChainId   uint64
	Sender    common.Address
	CreatedAt time.Time
	// *validator.AuthorizationError or *simulation.SimulationError when rejected
	Err error
}

func newVerdict(call *decoder.LowLevelCall, chainId uint64, sender common.Address) *Verdict {
	return &Verdict{
		Id:        uuid.New(),
		Call:      call,
		ChainId:   chainId,
		Sender:    sender,
		CreatedAt: time.Now().UTC(),
	}
}

func (v *Verdict) approve(stage Stage) *Verdict {
	v.Approved = true
	v.Stage = stage
	v.Reason = ""
	v.Err = nil
	return v
}

func (v *Verdict) reject(stage Stage, err error) *Verdict {
	v.Approved = false
	v.Stage = stage
	v.Reason = err.Error()
	v.Err = err
	return v
}

// FunctionName is empty unless the call was recognized.
func (v *Verdict) FunctionName() string {
	if rc, ok := v.Decoded.(*decoder.RecognizedCall); ok {
		return rc.FunctionName
	}
	return ""
}

func (v *Verdict) Classification() string {
	if rc, ok := v.Decoded.(*decoder.RecognizedCall); ok {
		return rc.Classification.String()
	}
	return ""
}

func (v *Verdict) String() string {
	if v.Approved {
		return fmt.Sprintf("approved (%s)", v.Stage)
	}
	return fmt.Sprintf("rejected at %s: %s", v.Stage, v.Reason)
}
