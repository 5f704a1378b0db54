package gatekeeper

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/Layr-Labs/txguard/internal/metrics"
	"github.com/Layr-Labs/txguard/internal/metrics/metricsTypes"
	"github.com/Layr-Labs/txguard/pkg/abis"
	"github.com/Layr-Labs/txguard/pkg/addressBook"
	"github.com/Layr-Labs/txguard/pkg/decoder"
	"github.com/Layr-Labs/txguard/pkg/eventBus"
	"github.com/Layr-Labs/txguard/pkg/eventBus/eventBusTypes"
	"github.com/Layr-Labs/txguard/pkg/simulation"
	"github.com/Layr-Labs/txguard/pkg/validator"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	sender    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	stranger  = common.HexToAddress("0x9999999999999999999999999999999999999999")
	feeRouter = common.HexToAddress("0x2222222222222222222222222222222222222222")
	usdc      = common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913")
	basePool  = common.HexToAddress("0xA238Dd80C259a72e81d7e4664a9801593F98d1c5")
	aBasUSDC  = common.HexToAddress("0x4e65fE4DbA92790696d040ac24Aa414708F5c0AB")
)

type fakeSimulator struct {
	result *simulation.SimulationResult
	err    error
	calls  int
}

func (f *fakeSimulator) Simulate(ctx context.Context, call *decoder.LowLevelCall, from common.Address) (*simulation.SimulationResult, error) {
	f.calls++
	return f.result, f.err
}

type countingClient struct {
	mu     sync.Mutex
	counts map[string]float64
}

func (c *countingClient) key(name string, labels []metricsTypes.MetricsLabel) string {
	k := name
	for _, l := range labels {
		k += "," + l.Name + "=" + l.Value
	}
	return k
}

func (c *countingClient) Incr(name string, labels []metricsTypes.MetricsLabel, value float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[c.key(name, labels)] += value
	return nil
}

func (c *countingClient) Gauge(name string, value float64, labels []metricsTypes.MetricsLabel) error {
	return nil
}

func (c *countingClient) Timing(name string, value time.Duration, labels []metricsTypes.MetricsLabel) error {
	return nil
}

type fixture struct {
	gatekeeper *Gatekeeper
	simulator  *fakeSimulator
	metrics    *countingClient
	events     *eventBusTypes.Consumer
	registry   *abis.Registry
}

func setup(t *testing.T, withSimulator bool) *fixture {
	l := zap.NewNop()
	book, err := addressBook.NewDefaultAddressBook().WithFeeRouters(map[uint64]common.Address{
		addressBook.Chain_Base: feeRouter,
	})
	require.Nil(t, err)

	counting := &countingClient{counts: make(map[string]float64)}
	sink, err := metrics.NewMetricsSink(&metrics.MetricsSinkConfig{}, []metricsTypes.IMetricsClient{counting})
	require.Nil(t, err)

	eb := eventBus.NewEventBus(l)
	consumer := &eventBusTypes.Consumer{Id: "test", Channel: make(chan *eventBusTypes.Event, 100), Context: context.Background()}
	eb.Subscribe(consumer)

	registry := abis.MustNewDefaultRegistry()
	sim := &fakeSimulator{}
	var simulator Simulator
	if withSimulator {
		simulator = sim
	}

	return &fixture{
		gatekeeper: NewGatekeeper(
			decoder.NewDecoder(registry, l),
			validator.NewValidator(book, l),
			simulation.NewSimulationValidator(book, l),
			simulator,
			eb,
			sink,
			l,
		),
		simulator: sim,
		metrics:   counting,
		events:    consumer,
		registry:  registry,
	}
}

func (f *fixture) call(t *testing.T, to common.Address, c abis.Classification, method string, args ...interface{}) *decoder.LowLevelCall {
	d, ok := f.registry.Get(c)
	require.True(t, ok)
	data, err := d.Abi.Pack(method, args...)
	require.Nil(t, err)
	return &decoder.LowLevelCall{To: to, Data: data, Value: big.NewInt(0)}
}

func (f *fixture) nextEvent(t *testing.T) *eventBusTypes.Event {
	select {
	case e := <-f.events.Channel:
		return e
	default:
		t.Fatal("expected a published verdict event")
		return nil
	}
}

func Test_Gatekeeper(t *testing.T) {
	vctx := &validator.ValidationContext{ChainId: addressBook.Chain_Base, Sender: sender}

	t.Run("Precheck", func(t *testing.T) {
		f := setup(t, false)

		t.Run("Should approve a supply for the sender at the rules stage", func(t *testing.T) {
			call := f.call(t, basePool, abis.Classification_LendingPool, "supply", usdc, big.NewInt(100), sender, uint16(0))
			verdict := f.gatekeeper.Precheck(call, vctx)

			assert.True(t, verdict.Approved)
			assert.Equal(t, Stage_Rules, verdict.Stage)
			assert.Equal(t, "supply", verdict.FunctionName())
			assert.Equal(t, "LendingPool", verdict.Classification())
			assert.Equal(t, sender, verdict.Sender)
			assert.NotEqual(t, [16]byte{}, [16]byte(verdict.Id))

			event := f.nextEvent(t)
			assert.Equal(t, eventBusTypes.Event_VerdictApproved, event.Name)
			assert.Same(t, verdict, event.Data)
		})

		t.Run("Should reject undecodable calldata at the decode stage", func(t *testing.T) {
			verdict := f.gatekeeper.Precheck(&decoder.LowLevelCall{To: basePool, Data: []byte{0x01}}, vctx)
			assert.False(t, verdict.Approved)
			assert.Equal(t, Stage_Decode, verdict.Stage)
			assert.Contains(t, verdict.Reason, decoder.UnknownTransactionReason)

			event := f.nextEvent(t)
			assert.Equal(t, eventBusTypes.Event_VerdictRejected, event.Name)
		})

		t.Run("Should reject rule violations with the typed error", func(t *testing.T) {
			call := f.call(t, basePool, abis.Classification_LendingPool, "withdraw", usdc, big.NewInt(1), stranger)
			verdict := f.gatekeeper.Precheck(call, vctx)
			assert.False(t, verdict.Approved)
			assert.Equal(t, Stage_Rules, verdict.Stage)
			assert.Contains(t, verdict.Reason, "withdraw.to != sender")

			var authErr *validator.AuthorizationError
			assert.True(t, errors.As(verdict.Err, &authErr))
			f.nextEvent(t)
		})

		assert.Equal(t, float64(1), f.metrics.counts["verdict,stage=rules,approved=true"])
		assert.Equal(t, float64(1), f.metrics.counts["verdict,stage=rules,approved=false"])
		assert.Equal(t, float64(1), f.metrics.counts["verdict,stage=decode,approved=false"])
		assert.Equal(t, float64(2), f.metrics.counts["decode.result,classification=LendingPool"])
		assert.Equal(t, float64(1), f.metrics.counts["decode.result,classification=Unrecognized"])
	})

	t.Run("Authorize", func(t *testing.T) {
		t.Run("Should refuse to authorize without a simulator", func(t *testing.T) {
			f := setup(t, false)
			call := f.call(t, basePool, abis.Classification_LendingPool, "supply", usdc, big.NewInt(100), sender, uint16(0))
			verdict, err := f.gatekeeper.Authorize(context.Background(), call, vctx)
			assert.Nil(t, verdict)
			assert.True(t, errors.Is(err, ErrSimulatorNotConfigured))
			assert.False(t, f.gatekeeper.SimulationEnabled())
		})

		t.Run("Should approve when the rules and the simulation both accept", func(t *testing.T) {
			f := setup(t, true)
			f.simulator.result = &simulation.SimulationResult{Changes: []*simulation.AssetChange{
				{AssetKind: simulation.AssetKind_Fungible, ChangeKind: simulation.ChangeKind_Transfer, From: sender, To: aBasUSDC, RawAmount: big.NewInt(100), ContractAddress: &usdc},
				{AssetKind: simulation.AssetKind_Fungible, ChangeKind: simulation.ChangeKind_Transfer, From: common.Address{}, To: sender, RawAmount: big.NewInt(100), ContractAddress: &aBasUSDC},
			}}

			call := f.call(t, basePool, abis.Classification_LendingPool, "supply", usdc, big.NewInt(100), sender, uint16(0))
			verdict, err := f.gatekeeper.Authorize(context.Background(), call, vctx)
			require.Nil(t, err)
			assert.True(t, verdict.Approved)
			assert.Equal(t, Stage_Approved, verdict.Stage)
			assert.Equal(t, 1, f.simulator.calls)
			assert.Equal(t, float64(1), f.metrics.counts["simulation.result,status=accepted"])
			assert.Equal(t, eventBusTypes.Event_VerdictApproved, f.nextEvent(t).Name)
		})

		t.Run("Should not simulate when the rules reject", func(t *testing.T) {
			f := setup(t, true)
			call := f.call(t, usdc, abis.Classification_FungibleToken, "transfer", stranger, big.NewInt(1))
			verdict, err := f.gatekeeper.Authorize(context.Background(), call, vctx)
			require.Nil(t, err)
			assert.False(t, verdict.Approved)
			assert.Equal(t, Stage_Rules, verdict.Stage)
			assert.Equal(t, 0, f.simulator.calls)
		})

		t.Run("Should reject when the simulation leaves the trusted boundary", func(t *testing.T) {
			f := setup(t, true)
			f.simulator.result = &simulation.SimulationResult{Changes: []*simulation.AssetChange{
				{AssetKind: simulation.AssetKind_Fungible, ChangeKind: simulation.ChangeKind_Transfer, From: sender, To: stranger, RawAmount: big.NewInt(100), ContractAddress: &usdc},
			}}

			call := f.call(t, basePool, abis.Classification_LendingPool, "supply", usdc, big.NewInt(100), sender, uint16(0))
			verdict, err := f.gatekeeper.Authorize(context.Background(), call, vctx)
			require.Nil(t, err)
			assert.False(t, verdict.Approved)
			assert.Equal(t, Stage_Simulation, verdict.Stage)

			var simErr *simulation.SimulationError
			require.True(t, errors.As(verdict.Err, &simErr))
			assert.Equal(t, 0, simErr.Index)
			assert.Equal(t, float64(1), f.metrics.counts["simulation.result,status=rejected"])
		})

		t.Run("Should reject a reverted simulation", func(t *testing.T) {
			f := setup(t, true)
			f.simulator.result = &simulation.SimulationResult{Error: &simulation.SimulationFailure{Message: "execution reverted"}}

			call := f.call(t, usdc, abis.Classification_FungibleToken, "approve", feeRouter, big.NewInt(5))
			verdict, err := f.gatekeeper.Authorize(context.Background(), call, vctx)
			require.Nil(t, err)
			assert.False(t, verdict.Approved)
			assert.Contains(t, verdict.Reason, "simulation failed")
			assert.Equal(t, float64(1), f.metrics.counts["simulation.result,status=failed"])
		})

		t.Run("Should surface simulator failures as errors", func(t *testing.T) {
			f := setup(t, true)
			f.simulator.err = errors.New("connection refused")

			call := f.call(t, basePool, abis.Classification_LendingPool, "setUserUseReserveAsCollateral", usdc, true)
			verdict, err := f.gatekeeper.Authorize(context.Background(), call, vctx)
			assert.Nil(t, verdict)
			require.NotNil(t, err)
			assert.Contains(t, err.Error(), "connection refused")
			assert.Equal(t, float64(1), f.metrics.counts["simulation.result,status=error"])
		})
	})

	t.Run("CheckSimulation", func(t *testing.T) {
		f := setup(t, false)

		verdict := f.gatekeeper.CheckSimulation(&simulation.SimulationResult{Changes: []*simulation.AssetChange{
			{AssetKind: simulation.AssetKind_Fungible, ChangeKind: simulation.ChangeKind_Approve, From: sender, To: feeRouter, RawAmount: big.NewInt(1), ContractAddress: &usdc},
		}}, vctx)
		assert.True(t, verdict.Approved)
		assert.Equal(t, Stage_Simulation, verdict.Stage)

		verdict = f.gatekeeper.CheckSimulation(&simulation.SimulationResult{Changes: []*simulation.AssetChange{
			{AssetKind: simulation.AssetKind_Native, ChangeKind: simulation.ChangeKind_Approve, From: sender, To: feeRouter},
		}}, vctx)
		assert.False(t, verdict.Approved)
		assert.Equal(t, "rejected at simulation: "+verdict.Reason, verdict.String())
	})
}
