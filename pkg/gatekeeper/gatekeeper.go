// Package gatekeeper runs the full authorization sequence for a transaction: decode, rule
// validation, simulation and simulation validation. It never signs; it returns the verdict a
// signer must obey.
package gatekeeper

import (
	"context"
	"strconv"
	"time"

	"github.com/Layr-Labs/txguard/internal/metrics"
	"github.com/Layr-Labs/txguard/internal/metrics/metricsTypes"
	"github.com/Layr-Labs/txguard/pkg/decoder"
	"github.com/Layr-Labs/txguard/pkg/eventBus/eventBusTypes"
	"github.com/Layr-Labs/txguard/pkg/simulation"
	"github.com/Layr-Labs/txguard/pkg/validator"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrSimulatorNotConfigured = errors.New("simulator is not configured")

type Simulator interface {
	Simulate(ctx context.Context, call *decoder.LowLevelCall, from common.Address) (*simulation.SimulationResult, error)
}

type Gatekeeper struct {
	decoder             *decoder.Decoder
	validator           *validator.Validator
	simulationValidator *simulation.SimulationValidator
	// nil disables Authorize
	simulator   Simulator
	eventBus    eventBusTypes.IEventBus
	metricsSink *metrics.MetricsSink
	logger      *zap.Logger
}

func NewGatekeeper(
	d *decoder.Decoder,
	v *validator.Validator,
	sv *simulation.SimulationValidator,
	sim Simulator,
	eb eventBusTypes.IEventBus,
	ms *metrics.MetricsSink,
	l *zap.Logger,
) *Gatekeeper {
	return &Gatekeeper{
		decoder:             d,
		validator:           v,
		simulationValidator: sv,
		simulator:           sim,
		eventBus:            eb,
		metricsSink:         ms,
		logger:              l,
	}
}

func (g *Gatekeeper) SimulationEnabled() bool {
	return g.simulator != nil
}

func (g *Gatekeeper) Decode(call *decoder.LowLevelCall) decoder.DecodedCall {
	decoded := g.decoder.Decode(call)

	classification := "Unrecognized"
	if rc, ok := decoded.(*decoder.RecognizedCall); ok {
		classification = rc.Classification.String()
	}
	_ = g.metricsSink.Incr(metricsTypes.Metric_Incr_DecodeResult, []metricsTypes.MetricsLabel{
		{Name: "classification", Value: classification},
	}, 1)
	return decoded
}

// Precheck decodes and applies the rule set without simulating. An approved precheck is not an
// authorization to sign.
func (g *Gatekeeper) Precheck(call *decoder.LowLevelCall, vctx *validator.ValidationContext) *Verdict {
	start := time.Now()
	verdict := g.precheck(call, vctx)
	g.finish(verdict, start)
	return verdict
}

func (g *Gatekeeper) precheck(call *decoder.LowLevelCall, vctx *validator.ValidationContext) *Verdict {
	verdict := newVerdict(call, contextChainId(vctx), contextSender(vctx))
	verdict.Decoded = g.Decode(call)

	if err := g.validator.ValidateCall(verdict.Decoded, vctx); err != nil {
		stage := Stage_Rules
		if _, unrecognized := verdict.Decoded.(*decoder.UnrecognizedCall); unrecognized {
			stage = Stage_Decode
		}
		return verdict.reject(stage, err)
	}
	return verdict.approve(Stage_Rules)
}

// Authorize runs every check. The returned error is set only when the simulator could not be
// reached; the caller must not sign in that case either.
func (g *Gatekeeper) Authorize(ctx context.Context, call *decoder.LowLevelCall, vctx *validator.ValidationContext) (*Verdict, error) {
	if g.simulator == nil {
		return nil, ErrSimulatorNotConfigured
	}
	start := time.Now()

	verdict := g.precheck(call, vctx)
	if !verdict.Approved {
		g.finish(verdict, start)
		return verdict, nil
	}

	simStart := time.Now()
	sim, err := g.simulator.Simulate(ctx, call, vctx.Sender)
	_ = g.metricsSink.Timing(metricsTypes.Metric_Timing_SimulationDuration, time.Since(simStart), nil)
	if err != nil {
		_ = g.metricsSink.Incr(metricsTypes.Metric_Incr_SimulationResult, []metricsTypes.MetricsLabel{
			{Name: "status", Value: "error"},
		}, 1)
		g.logger.Sugar().Errorw("Failed to simulate call",
			zap.String("verdictId", verdict.Id.String()),
			zap.Uint64("chainId", verdict.ChainId),
			zap.Error(err),
		)
		return nil, errors.Wrap(err, "failed to simulate call")
	}

	if err := g.simulationValidator.ValidateSimulation(sim, vctx); err != nil {
		g.recordSimulationStatus(err)
		verdict.reject(Stage_Simulation, err)
		g.finish(verdict, start)
		return verdict, nil
	}
	g.recordSimulationStatus(nil)

	verdict.approve(Stage_Approved)
	g.finish(verdict, start)
	return verdict, nil
}

// CheckSimulation validates a simulation produced elsewhere.
func (g *Gatekeeper) CheckSimulation(sim *simulation.SimulationResult, vctx *validator.ValidationContext) *Verdict {
	start := time.Now()
	verdict := newVerdict(nil, contextChainId(vctx), contextSender(vctx))

	err := g.simulationValidator.ValidateSimulation(sim, vctx)
	g.recordSimulationStatus(err)
	if err != nil {
		verdict.reject(Stage_Simulation, err)
	} else {
		verdict.approve(Stage_Simulation)
	}
	g.finish(verdict, start)
	return verdict
}

func (g *Gatekeeper) recordSimulationStatus(err error) {
	status := "accepted"
	if err != nil {
		status = "rejected"
		var simErr *simulation.SimulationError
		if errors.As(err, &simErr) && simErr.Type == simulation.SimulationError_SimulationFailed {
			status = "failed"
		}
	}
	_ = g.metricsSink.Incr(metricsTypes.Metric_Incr_SimulationResult, []metricsTypes.MetricsLabel{
		{Name: "status", Value: status},
	}, 1)
}

func (g *Gatekeeper) finish(verdict *Verdict, start time.Time) {
	_ = g.metricsSink.Incr(metricsTypes.Metric_Incr_Verdict, []metricsTypes.MetricsLabel{
		{Name: "stage", Value: string(verdict.Stage)},
		{Name: "approved", Value: strconv.FormatBool(verdict.Approved)},
	}, 1)
	_ = g.metricsSink.Timing(metricsTypes.Metric_Timing_AuthorizeDuration, time.Since(start), []metricsTypes.MetricsLabel{
		{Name: "stage", Value: string(verdict.Stage)},
	})

	fields := []zap.Field{
		zap.String("verdictId", verdict.Id.String()),
		zap.Bool("approved", verdict.Approved),
		zap.String("stage", string(verdict.Stage)),
		zap.Uint64("chainId", verdict.ChainId),
		zap.String("sender", verdict.Sender.Hex()),
		zap.String("function", verdict.FunctionName()),
	}
	if !verdict.Approved {
		fields = append(fields, zap.String("reason", verdict.Reason))
	}
	g.logger.Info("Verdict", fields...)

	if g.eventBus == nil {
		return
	}
	name := eventBusTypes.Event_VerdictRejected
	if verdict.Approved {
		name = eventBusTypes.Event_VerdictApproved
	}
	g.eventBus.Publish(&eventBusTypes.Event{
		Name: name,
		Data: verdict,
	})
}

func contextChainId(vctx *validator.ValidationContext) uint64 {
	if vctx == nil {
		return 0
	}
	return vctx.ChainId
}

func contextSender(vctx *validator.ValidationContext) common.Address {
	if vctx == nil {
		return common.Address{}
	}
	return vctx.Sender
}
