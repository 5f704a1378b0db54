// Package simulator is a JSON-RPC client for an asset-change simulation endpoint.
package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Layr-Labs/txguard/internal/config"
	"github.com/Layr-Labs/txguard/pkg/decoder"
	"github.com/Layr-Labs/txguard/pkg/simulation"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var jsonRPCVersion = "2.0"

type RPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      uint   `json:"id"`
}

// RPCError is an error returned by the endpoint itself. It is never retried.
type RPCError struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *uint           `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

type SimulatorClientConfig struct {
	BaseUrl string
	// per request; zero uses the method's default
	Timeout time.Duration
	// wait before each retry; len(Backoffs) is the retry count
	Backoffs []time.Duration
}

func ConvertGlobalConfigToSimulatorConfig(cfg *config.SimulationConfig) *SimulatorClientConfig {
	return &SimulatorClientConfig{
		BaseUrl:  cfg.RpcUrl,
		Timeout:  time.Duration(cfg.TimeoutSeconds) * time.Second,
		Backoffs: DefaultBackoffs(cfg.MaxRetries),
	}
}

// DefaultBackoffs doubles from 250ms, capped at 5s.
func DefaultBackoffs(retries int) []time.Duration {
	backoffs := make([]time.Duration, 0, retries)
	next := 250 * time.Millisecond
	for i := 0; i < retries; i++ {
		backoffs = append(backoffs, next)
		next *= 2
		if next > 5*time.Second {
			next = 5 * time.Second
		}
	}
	return backoffs
}

type Client struct {
	Logger       *zap.Logger
	httpClient   *http.Client
	clientConfig *SimulatorClientConfig
}

func NewClient(cfg *SimulatorClientConfig, l *zap.Logger) *Client {
	client := &http.Client{
		Timeout: time.Second * 30,
	}

	l.Sugar().Infow("Creating new simulator client",
		zap.String("baseUrl", cfg.BaseUrl),
		zap.Int("retries", len(cfg.Backoffs)),
	)

	return &Client{
		httpClient:   client,
		Logger:       l,
		clientConfig: cfg,
	}
}

func (c *Client) SetHttpClient(client *http.Client) {
	c.httpClient = client
}

// Simulate predicts the asset changes of executing call from the given sender.
func (c *Client) Simulate(ctx context.Context, call *decoder.LowLevelCall, from common.Address) (*simulation.SimulationResult, error) {
	if call == nil {
		return nil, errors.New("no call to simulate")
	}
	value := "0x0"
	if call.Value != nil {
		value = hexutil.EncodeBig(call.Value)
	}
	data := ""
	if len(call.Data) > 0 {
		data = hexutil.Encode(call.Data)
	}

	changes, err := c.SimulateAssetChanges(ctx, newSimulationTransaction(from, call.To, value, data))
	if err != nil {
		return nil, err
	}
	result, err := changes.ToSimulationResult()
	if err != nil {
		return nil, errors.Wrap(err, "malformed simulation response")
	}
	return result, nil
}

func (c *Client) SimulateAssetChanges(ctx context.Context, tx *SimulationTransaction) (*AssetChangesResponse, error) {
	res, err := c.Call(ctx, SimulateAssetChangesRequest(tx, 1))
	if err != nil {
		return nil, err
	}
	changes, err := RPCMethod_simulateAssetChanges.ResponseParser(res.Result)
	if err != nil {
		c.Logger.Sugar().Errorw("failed to parse asset changes",
			zap.Error(err),
			zap.String("raw response", string(res.Result)),
		)
		return nil, errors.Wrap(err, "failed to parse asset changes")
	}
	return changes, nil
}

func (c *Client) timeout() time.Duration {
	if c.clientConfig.Timeout > 0 {
		return c.clientConfig.Timeout
	}
	return RPCMethod_simulateAssetChanges.RequestMethod.Timeout
}

func (c *Client) call(ctx context.Context, rpcRequest *RPCRequest) (*RPCResponse, error) {
	requestBody, err := json.Marshal(rpcRequest)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}
	c.Logger.Sugar().Debugw("Request body", zap.String("requestBody", string(requestBody)))

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.clientConfig.BaseUrl, bytes.NewReader(requestBody))
	if err != nil {
		return nil, errors.Wrap(err, "failed to make request")
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read body")
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received http error code %+v", response.StatusCode)
	}

	destination := &RPCResponse{}
	if err := json.Unmarshal(responseBody, destination); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal response")
	}

	if destination.Error != nil {
		return nil, destination.Error
	}
	return destination, nil
}

// Call retries transport failures using the configured backoffs. Errors reported by the endpoint
// and context cancellation end the loop immediately.
func (c *Client) Call(ctx context.Context, rpcRequest *RPCRequest) (*RPCResponse, error) {
	var lastErr error
	for attempt := 0; attempt <= len(c.clientConfig.Backoffs); attempt++ {
		if attempt > 0 {
			backoff := c.clientConfig.Backoffs[attempt-1]
			select {
			case <-ctx.Done():
				return nil, errors.Wrap(ctx.Err(), "simulation cancelled")
			case <-time.After(backoff):
			}
		}

		res, err := c.call(ctx, rpcRequest)
		if err == nil {
			if attempt > 0 {
				c.Logger.Sugar().Infow("Successfully called after backoff",
					zap.Int("attempt", attempt),
					zap.String("method", rpcRequest.Method),
				)
			}
			return res, nil
		}
		lastErr = err

		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			c.Logger.Sugar().Errorw("Simulator returned an error",
				zap.Int64("code", rpcErr.Code),
				zap.String("message", rpcErr.Message),
			)
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "simulation cancelled")
		}
		c.Logger.Sugar().Errorw("Failed to call",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.String("method", rpcRequest.Method),
		)
	}
	c.Logger.Sugar().Errorw("Exceeded retries for Call", zap.String("method", rpcRequest.Method))
	return nil, errors.Wrap(lastErr, "exceeded retries for call")
}
