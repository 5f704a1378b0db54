package simulator

import (
	"encoding/json"
	"time"
)

type RequestMethod struct {
	Name    string
	Timeout time.Duration
}

type ResponseParserFunc[T any] func(res json.RawMessage) (T, error)

type RequestResponseHandler[T any] struct {
	RequestMethod  *RequestMethod
	ResponseParser ResponseParserFunc[T]
}

var (
	RPCMethod_simulateAssetChanges = &RequestResponseHandler[*AssetChangesResponse]{
		RequestMethod: &RequestMethod{
			Name:    "alchemy_simulateAssetChanges",
			Timeout: time.Second * 10,
		},
		ResponseParser: func(res json.RawMessage) (*AssetChangesResponse, error) {
			changes := &AssetChangesResponse{}

			if err := json.Unmarshal(res, changes); err != nil {
				return nil, err
			}
			return changes, nil
		},
	}
)

func SimulateAssetChangesRequest(tx *SimulationTransaction, id uint) *RPCRequest {
	return &RPCRequest{
		JSONRPC: jsonRPCVersion,
		Method:  RPCMethod_simulateAssetChanges.RequestMethod.Name,
		Params:  []interface{}{tx},
		ID:      id,
	}
}
