package rpcServer

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Layr-Labs/txguard/internal/version"
	"github.com/Layr-Labs/txguard/pkg/utils"
	"github.com/Layr-Labs/txguard/pkg/validator"
	"github.com/Layr-Labs/txguard/pkg/verdictStore"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type handlerFunc func(r *http.Request, pathParams map[string]string) (interface{}, error)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (rpc *RpcServer) wrap(pattern string, h handlerFunc) runtime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		r.Body = http.MaxBytesReader(rec, r.Body, maxRequestBodyBytes)

		res, err := h(r, pathParams)
		if err != nil {
			rpc.writeError(rec, pattern, err)
		} else {
			rpc.writeJSON(rec, http.StatusOK, res)
		}
		rpc.recordRequest(pattern, rec.status, time.Since(start))
	}
}

func (rpc *RpcServer) writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		rpc.Logger.Sugar().Errorw("Failed to write response", zap.Error(err))
	}
}

// writeError maps a grpc status onto the equivalent http status. Errors without a status are internal.
func (rpc *RpcServer) writeError(w http.ResponseWriter, pattern string, err error) {
	st, ok := status.FromError(err)
	if !ok {
		st = status.New(codes.Internal, err.Error())
	}
	if st.Code() == codes.Internal || st.Code() == codes.Unavailable {
		rpc.Logger.Sugar().Errorw("Request failed", zap.String("path", pattern), zap.Error(err))
	}
	rpc.writeJSON(w, runtime.HTTPStatusFromCode(st.Code()), &ErrorResponse{
		Code:    st.Code().String(),
		Message: st.Message(),
	})
}

func decodeBody(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request body: %s", err.Error())
	}
	return nil
}

func parseValidationContext(chainId uint64, sender string) (*validator.ValidationContext, error) {
	if chainId == 0 {
		return nil, status.Error(codes.InvalidArgument, "chainId is required")
	}
	senderAddress, err := utils.ParseAddress(sender)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid sender: %s", err.Error())
	}
	return &validator.ValidationContext{ChainId: chainId, Sender: senderAddress}, nil
}

func (rpc *RpcServer) Decode(r *http.Request, _ map[string]string) (interface{}, error) {
	var req CallRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	call, err := req.toLowLevelCall()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return convertDecodedCall(rpc.gatekeeper.Decode(call)), nil
}

func (rpc *RpcServer) Validate(r *http.Request, _ map[string]string) (interface{}, error) {
	var req ValidateRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	if req.Call == nil {
		return nil, status.Error(codes.InvalidArgument, "call is required")
	}
	call, err := req.Call.toLowLevelCall()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	vctx, err := parseValidationContext(req.ChainId, req.Sender)
	if err != nil {
		return nil, err
	}
	return convertVerdict(rpc.gatekeeper.Precheck(call, vctx)), nil
}

func (rpc *RpcServer) ValidateSimulation(r *http.Request, _ map[string]string) (interface{}, error) {
	var req SimulationValidateRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	if req.Simulation == nil {
		return nil, status.Error(codes.InvalidArgument, "simulation is required")
	}
	sim, err := req.Simulation.ToSimulationResult()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	vctx, err := parseValidationContext(req.ChainId, req.Sender)
	if err != nil {
		return nil, err
	}
	return convertVerdict(rpc.gatekeeper.CheckSimulation(sim, vctx)), nil
}

func (rpc *RpcServer) Authorize(r *http.Request, _ map[string]string) (interface{}, error) {
	if !rpc.gatekeeper.SimulationEnabled() {
		return nil, status.Error(codes.FailedPrecondition, "simulation is not configured")
	}
	var req ValidateRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	if req.Call == nil {
		return nil, status.Error(codes.InvalidArgument, "call is required")
	}
	call, err := req.Call.toLowLevelCall()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	vctx, err := parseValidationContext(req.ChainId, req.Sender)
	if err != nil {
		return nil, err
	}

	verdict, err := rpc.gatekeeper.Authorize(r.Context(), call, vctx)
	if err != nil {
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	return convertVerdict(verdict), nil
}

func (rpc *RpcServer) GetVerdict(_ *http.Request, pathParams map[string]string) (interface{}, error) {
	if rpc.verdicts == nil {
		return nil, status.Error(codes.Unimplemented, "verdict store is disabled")
	}
	id, err := uuid.Parse(pathParams["id"])
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid verdict id '%s'", pathParams["id"])
	}

	verdict, err := rpc.verdicts.GetVerdictById(id.String())
	if err != nil {
		if errors.Is(err, verdictStore.ErrVerdictNotFound) {
			return nil, status.Errorf(codes.NotFound, "verdict '%s' not found", id.String())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return convertStoredVerdict(verdict), nil
}

func (rpc *RpcServer) ListVerdicts(r *http.Request, _ map[string]string) (interface{}, error) {
	if rpc.verdicts == nil {
		return nil, status.Error(codes.Unimplemented, "verdict store is disabled")
	}
	query := r.URL.Query()

	sender, err := utils.ParseAddress(query.Get("sender"))
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid sender: %s", err.Error())
	}
	chainId, err := strconv.ParseUint(query.Get("chainId"), 10, 64)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid chainId '%s'", query.Get("chainId"))
	}
	limit := 0
	if l := query.Get("limit"); l != "" {
		if limit, err = strconv.Atoi(l); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid limit '%s'", l)
		}
	}
	if limit > verdictStore.MaxListLimit {
		return nil, status.Errorf(codes.InvalidArgument, "limit must not exceed %d", verdictStore.MaxListLimit)
	}

	records, err := rpc.verdicts.ListVerdictsForSender(sender, chainId, limit)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	res := &ListVerdictsResponse{Verdicts: make([]*StoredVerdictResponse, 0, len(records))}
	for _, record := range records {
		res.Verdicts = append(res.Verdicts, convertStoredVerdict(record))
	}
	return res, nil
}

func (rpc *RpcServer) ListChains(_ *http.Request, _ map[string]string) (interface{}, error) {
	res := &ListChainsResponse{Chains: make([]*ChainResponse, 0)}
	for _, chainId := range rpc.addressBook.SupportedChains() {
		pool, err := rpc.addressBook.GetLendingPool(chainId)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		tokens, err := rpc.addressBook.GetReceiptTokens(chainId)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		chain := &ChainResponse{
			ChainId:       chainId,
			LendingPool:   pool.Hex(),
			ReceiptTokens: make([]string, 0, len(tokens)),
		}
		for _, token := range tokens {
			chain.ReceiptTokens = append(chain.ReceiptTokens, token.Hex())
		}
		// unset fee routers are reported as absent
		if feeRouter, err := rpc.addressBook.GetFeeRouter(chainId); err == nil {
			chain.FeeRouter = feeRouter.Hex()
		}
		res.Chains = append(res.Chains, chain)
	}
	return res, nil
}

func (rpc *RpcServer) Health(_ *http.Request, _ map[string]string) (interface{}, error) {
	return &HealthResponse{
		Status:            "SERVING",
		Version:           version.GetVersion(),
		Commit:            version.GetCommit(),
		SimulationEnabled: rpc.gatekeeper.SimulationEnabled(),
		StoreEnabled:      rpc.verdicts != nil,
		SupportedChains:   rpc.addressBook.SupportedChains(),
	}, nil
}
