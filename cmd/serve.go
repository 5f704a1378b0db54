package cmd

import (
	"context"
	"time"

	"github.com/Layr-Labs/txguard/internal/config"
	"github.com/Layr-Labs/txguard/internal/logger"
	"github.com/Layr-Labs/txguard/internal/metrics"
	"github.com/Layr-Labs/txguard/internal/metrics/metricsTypes"
	"github.com/Layr-Labs/txguard/internal/metrics/prometheus"
	"github.com/Layr-Labs/txguard/internal/shutdown"
	"github.com/Layr-Labs/txguard/internal/sqlite"
	"github.com/Layr-Labs/txguard/internal/version"
	"github.com/Layr-Labs/txguard/pkg/eventBus"
	"github.com/Layr-Labs/txguard/pkg/postgres"
	"github.com/Layr-Labs/txguard/pkg/postgres/migrations"
	"github.com/Layr-Labs/txguard/pkg/rpcServer"
	"github.com/Layr-Labs/txguard/pkg/verdictStore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the txguard rpc server",
	Run: func(cmd *cobra.Command, args []string) {
		bindCommandFlags(cmd)
		cfg := config.NewConfig()

		l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug, Name: "txguard"})

		if err := cfg.Validate(); err != nil {
			l.Sugar().Fatalw("Invalid configuration", zap.Error(err))
		}

		l.Sugar().Infow("txguard",
			zap.String("version", version.GetVersion()),
			zap.String("commit", version.GetCommit()),
		)

		metricsClients, err := metrics.InitMetricsSinksFromConfig(cfg, l)
		if err != nil {
			l.Sugar().Fatal("Failed to setup metrics sink", zap.Error(err))
		}

		sink, err := metrics.NewMetricsSink(&metrics.MetricsSinkConfig{}, metricsClients.Clients)
		if err != nil {
			l.Sugar().Fatal("Failed to setup metrics sink", zap.Error(err))
		}

		book, err := buildAddressBook(cfg, l)
		if err != nil {
			l.Sugar().Fatalw("Failed to build address book", zap.Error(err))
		}
		_ = sink.Gauge(metricsTypes.Metric_Gauge_SupportedChains, float64(len(book.SupportedChains())), nil)

		eb := eventBus.NewEventBus(l)

		gk, err := buildGatekeeper(cfg, book, eb, sink, l)
		if err != nil {
			l.Sugar().Fatalw("Failed to build gatekeeper", zap.Error(err))
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var verdicts rpcServer.VerdictReader
		if cfg.DatabaseConfig.Enabled {
			grm, err := openVerdictDatabase(cfg, l)
			if err != nil {
				l.Sugar().Fatalw("Failed to open verdict database", zap.Error(err))
			}
			store := verdictStore.NewVerdictStore(grm, l)
			verdictStore.NewVerdictRecorder(store, eb, 0, l).Start(ctx)
			verdicts = store
		}

		rpc, err := rpcServer.NewRpcServer(&rpcServer.RpcServerConfig{
			GrpcPort:       cfg.RpcConfig.GrpcPort,
			HttpPort:       cfg.RpcConfig.HttpPort,
			AllowedOrigins: cfg.RpcConfig.CorsAllowedOrigins,
		}, gk, book, verdicts, sink, l)
		if err != nil {
			l.Sugar().Fatalw("Failed to create rpc server", zap.Error(err))
		}

		// RPC channel to notify the RPC server to shutdown gracefully
		rpcChannel := make(chan bool)
		if err := rpc.Start(rpcChannel); err != nil {
			l.Sugar().Fatalw("Failed to start rpc server", zap.Error(err))
		}

		handlers := []func(){
			func() { rpcChannel <- true },
		}

		if metricsClients.Prometheus != nil {
			promChannel := make(chan bool)
			promServer := prometheus.NewPrometheusServer(&prometheus.PrometheusServerConfig{
				Port: cfg.PrometheusConfig.Port,
			}, metricsClients.Prometheus.Registry(), l)
			if err := promServer.Start(promChannel); err != nil {
				l.Sugar().Fatalw("Failed to start prometheus server", zap.Error(err))
			}
			handlers = append(handlers, func() { promChannel <- true })
		}
		handlers = append(handlers, cancel)

		l.Sugar().Info("Started txguard")

		gracefulShutdown := shutdown.CreateGracefulShutdownChannel()
		done := make(chan bool)
		shutdown.ListenForShutdown(gracefulShutdown, done, time.Second*5, l, handlers...)
	},
}

// openVerdictDatabase prefers the sqlite file when one is configured and migrates either backend.
func openVerdictDatabase(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	if cfg.DatabaseConfig.SqlitePath != "" {
		grm, err := sqlite.NewGormSqliteFromSqlite(sqlite.NewSqlite(cfg.DatabaseConfig.SqlitePath))
		if err != nil {
			return nil, err
		}
		migrator, err := migrations.NewMigrator(nil, grm, l)
		if err != nil {
			return nil, err
		}
		return grm, migrator.MigrateAll()
	}

	pgConfig := postgres.PostgresConfigFromDbConfig(&cfg.DatabaseConfig)
	pgConfig.CreateDbIfNotExists = true

	pg, err := postgres.NewPostgres(pgConfig, l)
	if err != nil {
		return nil, err
	}

	grm, err := postgres.NewGormFromPostgresConnection(pg.Db)
	if err != nil {
		return nil, err
	}

	migrator, err := migrations.NewMigrator(pg.Db, grm, l)
	if err != nil {
		return nil, err
	}
	return grm, migrator.MigrateAll()
}
