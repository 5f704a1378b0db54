package rpcServer

import (
	"time"

	"github.com/Layr-Labs/txguard/pkg/clients/simulator"
	"github.com/Layr-Labs/txguard/pkg/decoder"
	"github.com/Layr-Labs/txguard/pkg/gatekeeper"
	"github.com/Layr-Labs/txguard/pkg/simulation"
	"github.com/Layr-Labs/txguard/pkg/validator"
	"github.com/Layr-Labs/txguard/pkg/verdictStore"
)

type CallRequest struct {
	To    string `json:"to"`
	Data  string `json:"data"`
	Value string `json:"value"`
}

func (c *CallRequest) toLowLevelCall() (*decoder.LowLevelCall, error) {
	return decoder.NewLowLevelCall(c.To, c.Data, c.Value)
}

type ValidateRequest struct {
	Call    *CallRequest `json:"call"`
	ChainId uint64       `json:"chainId"`
	Sender  string       `json:"sender"`
}

type SimulationValidateRequest struct {
	Simulation *simulator.AssetChangesResponse `json:"simulation"`
	ChainId    uint64                          `json:"chainId"`
	Sender     string                          `json:"sender"`
}

type ArgumentResponse struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

type DecodeResponse struct {
	Recognized     bool                `json:"recognized"`
	Classification string              `json:"classification,omitempty"`
	FunctionName   string              `json:"functionName,omitempty"`
	Selector       string              `json:"selector,omitempty"`
	To             string              `json:"to,omitempty"`
	Value          string              `json:"value,omitempty"`
	Arguments      []*ArgumentResponse `json:"arguments,omitempty"`
	Reason         string              `json:"reason,omitempty"`
}

type RejectionResponse struct {
	Kind    string `json:"kind"`
	Type    string `json:"type"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Index   *int   `json:"index,omitempty"`
	Message string `json:"message"`
}

type VerdictResponse struct {
	Id        string             `json:"id"`
	Approved  bool               `json:"approved"`
	Stage     string             `json:"stage"`
	Reason    string             `json:"reason,omitempty"`
	ChainId   uint64             `json:"chainId"`
	Sender    string             `json:"sender"`
	Decoded   *DecodeResponse    `json:"decoded,omitempty"`
	Rejection *RejectionResponse `json:"rejection,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

type StoredVerdictResponse struct {
	Id             string    `json:"id"`
	Approved       bool      `json:"approved"`
	Stage          string    `json:"stage"`
	Reason         string    `json:"reason,omitempty"`
	ChainId        uint64    `json:"chainId"`
	Sender         string    `json:"sender"`
	CallTo         string    `json:"callTo,omitempty"`
	CallData       string    `json:"callData,omitempty"`
	CallValue      string    `json:"callValue,omitempty"`
	Classification string    `json:"classification,omitempty"`
	FunctionName   string    `json:"functionName,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type HealthResponse struct {
	Status            string   `json:"status"`
	Version           string   `json:"version"`
	Commit            string   `json:"commit"`
	SimulationEnabled bool     `json:"simulationEnabled"`
	StoreEnabled      bool     `json:"storeEnabled"`
	SupportedChains   []uint64 `json:"supportedChains"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func convertDecodedCall(decoded decoder.DecodedCall) *DecodeResponse {
	switch d := decoded.(type) {
	case *decoder.RecognizedCall:
		args := make([]*ArgumentResponse, 0, len(d.Arguments))
		for _, a := range d.Arguments {
			args = append(args, &ArgumentResponse{Name: a.Name, Type: a.Type, Value: a.String()})
		}
		res := &DecodeResponse{
			Recognized:     true,
			Classification: d.Classification.String(),
			FunctionName:   d.FunctionName,
			Selector:       d.Selector,
			To:             d.To.Hex(),
			Arguments:      args,
		}
		if d.Value != nil {
			res.Value = d.Value.String()
		}
		return res
	case *decoder.UnrecognizedCall:
		return &DecodeResponse{Recognized: false, Reason: d.Reason}
	}
	return nil
}

func convertRejection(err error) *RejectionResponse {
	switch e := err.(type) {
	case *validator.AuthorizationError:
		return &RejectionResponse{
			Kind:    "authorization",
			Type:    e.Type.String(),
			Field:   e.Field,
			Value:   e.Value,
			Message: e.Error(),
		}
	case *simulation.SimulationError:
		res := &RejectionResponse{
			Kind:    "simulation",
			Type:    e.Type.String(),
			Message: e.Error(),
		}
		if e.Index >= 0 {
			index := e.Index
			res.Index = &index
		}
		return res
	}
	return nil
}

func convertVerdict(v *gatekeeper.Verdict) *VerdictResponse {
	res := &VerdictResponse{
		Id:        v.Id.String(),
		Approved:  v.Approved,
		Stage:     string(v.Stage),
		Reason:    v.Reason,
		ChainId:   v.ChainId,
		Sender:    v.Sender.Hex(),
		CreatedAt: v.CreatedAt,
	}
	if v.Decoded != nil {
		res.Decoded = convertDecodedCall(v.Decoded)
	}
	if v.Err != nil {
		res.Rejection = convertRejection(v.Err)
	}
	return res
}

func convertStoredVerdict(v *verdictStore.Verdict) *StoredVerdictResponse {
	return &StoredVerdictResponse{
		Id:             v.Id,
		Approved:       v.Approved,
		Stage:          v.Stage,
		Reason:         v.Reason,
		ChainId:        v.ChainId,
		Sender:         v.Sender,
		CallTo:         v.CallTo,
		CallData:       v.CallData,
		CallValue:      v.CallValue,
		Classification: v.Classification,
		FunctionName:   v.FunctionName,
		CreatedAt:      v.CreatedAt,
	}
}

type ChainResponse struct {
	ChainId       uint64   `json:"chainId"`
	LendingPool   string   `json:"lendingPool"`
	ReceiptTokens []string `json:"receiptTokens"`
	FeeRouter     string   `json:"feeRouter,omitempty"`
}

type ListChainsResponse struct {
	Chains []*ChainResponse `json:"chains"`
}

type ListVerdictsResponse struct {
	Verdicts []*StoredVerdictResponse `json:"verdicts"`
}
