package cmd

import (
	"github.com/Layr-Labs/txguard/internal/config"
	"github.com/Layr-Labs/txguard/internal/metrics"
	"github.com/Layr-Labs/txguard/pkg/abis"
	"github.com/Layr-Labs/txguard/pkg/addressBook"
	"github.com/Layr-Labs/txguard/pkg/clients/simulator"
	"github.com/Layr-Labs/txguard/pkg/decoder"
	"github.com/Layr-Labs/txguard/pkg/eventBus/eventBusTypes"
	"github.com/Layr-Labs/txguard/pkg/gatekeeper"
	"github.com/Layr-Labs/txguard/pkg/simulation"
	"github.com/Layr-Labs/txguard/pkg/utils"
	"github.com/Layr-Labs/txguard/pkg/validator"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// buildAddressBook layers the CSV file and the configured fee routers over the built-in data.
func buildAddressBook(cfg *config.Config, l *zap.Logger) (*addressBook.StaticAddressBook, error) {
	book := addressBook.NewDefaultAddressBook()

	if cfg.AddressBookConfig.File != "" {
		records, err := addressBook.LoadCSV(cfg.AddressBookConfig.File)
		if err != nil {
			return nil, err
		}
		if book, err = book.WithRecords(records); err != nil {
			return nil, errors.Wrapf(err, "invalid address book file '%s'", cfg.AddressBookConfig.File)
		}
		l.Sugar().Infow("Loaded address book file",
			zap.String("file", cfg.AddressBookConfig.File),
			zap.Int("records", len(records)),
		)
	}

	if len(cfg.AddressBookConfig.FeeRouters) > 0 {
		routers := make(map[uint64]common.Address, len(cfg.AddressBookConfig.FeeRouters))
		for chainId, address := range cfg.AddressBookConfig.FeeRouters {
			router, err := utils.ParseAddress(address)
			if err != nil {
				return nil, errors.Wrapf(err, "invalid fee router for chain %d", chainId)
			}
			routers[chainId] = router
		}
		var err error
		if book, err = book.WithFeeRouters(routers); err != nil {
			return nil, err
		}
	}
	return book, nil
}

// buildGatekeeper leaves simulation disabled when no simulation url is configured.
func buildGatekeeper(
	cfg *config.Config,
	book addressBook.AddressBook,
	eb eventBusTypes.IEventBus,
	sink *metrics.MetricsSink,
	l *zap.Logger,
) (*gatekeeper.Gatekeeper, error) {
	registry, err := abis.NewDefaultRegistry()
	if err != nil {
		return nil, err
	}

	var sim gatekeeper.Simulator
	if cfg.SimulationEnabled() {
		sim = simulator.NewClient(simulator.ConvertGlobalConfigToSimulatorConfig(&cfg.SimulationConfig), l)
	} else {
		l.Sugar().Infow("No simulation url configured; full authorization is disabled")
	}

	return gatekeeper.NewGatekeeper(
		decoder.NewDecoder(registry, l),
		validator.NewValidator(book, l),
		simulation.NewSimulationValidator(book, l),
		sim,
		eb,
		sink,
		l,
	), nil
}
