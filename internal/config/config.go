package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const ENV_PREFIX = "TXGUARD"

const (
	Debug = "debug"

	RpcGrpcPort           = "rpc.grpc-port"
	RpcHttpPort           = "rpc.http-port"
	RpcCorsAllowedOrigins = "rpc.cors-allowed-origins"

	SimulationRpcUrl         = "simulation.rpc-url"
	SimulationTimeoutSeconds = "simulation.timeout-seconds"
	SimulationMaxRetries     = "simulation.max-retries"

	AddressBookFile       = "address-book.file"
	AddressBookFeeRouters = "address-book.fee-routers"

	DatabaseEnabled    = "database.enabled"
	DatabaseHost       = "database.host"
	DatabasePort       = "database.port"
	DatabaseUser       = "database.user"
	DatabasePassword   = "database.password"
	DatabaseDbName     = "database.db_name"
	DatabaseSchemaName = "database.schema_name"
	DatabaseSSLMode    = "database.ssl_mode"
	DatabaseSqlitePath = "database.sqlite-path"

	DataDogStatsdEnabled    = "datadog.statsd.enabled"
	DataDogStatsdUrl        = "datadog.statsd.url"
	DataDogStatsdSampleRate = "datadog.statsd.sample-rate"

	PrometheusEnabled = "prometheus.enabled"
	PrometheusPort    = "prometheus.port"
)

type Config struct {
	Debug             bool
	RpcConfig         RpcConfig
	SimulationConfig  SimulationConfig
	AddressBookConfig AddressBookConfig
	DatabaseConfig    DatabaseConfig
	DataDogConfig     DataDogConfig
	PrometheusConfig  PrometheusConfig
}

type RpcConfig struct {
	GrpcPort           int
	HttpPort           int
	CorsAllowedOrigins []string
}

type SimulationConfig struct {
	RpcUrl         string
	TimeoutSeconds int
	MaxRetries     int
}

type AddressBookConfig struct {
	File string
	// chain id -> fee router address, parsed from "chainId=address" entries
	FeeRouters map[uint64]string
}

type DatabaseConfig struct {
	Enabled    bool
	Host       string
	Port       int
	User       string
	Password   string
	DbName     string
	SchemaName string
	SSLMode    string
	// when set, verdicts go to this sqlite file instead of postgres
	SqlitePath string
}

type DataDogConfig struct {
	StatsdConfig StatsdConfig
}

type StatsdConfig struct {
	Enabled    bool
	Url        string
	SampleRate float64
}

type PrometheusConfig struct {
	Enabled bool
	Port    int
}

func NewConfig() *Config {
	return &Config{
		Debug: viper.GetBool(normalizeFlagName(Debug)),

		RpcConfig: RpcConfig{
			GrpcPort: viper.GetInt(normalizeFlagName(RpcGrpcPort)),
			HttpPort: viper.GetInt(normalizeFlagName(RpcHttpPort)),

			CorsAllowedOrigins: StringWithDefaults(viper.GetStringSlice(normalizeFlagName(RpcCorsAllowedOrigins)), []string{"*"}),
		},

		SimulationConfig: SimulationConfig{
			RpcUrl:         viper.GetString(normalizeFlagName(SimulationRpcUrl)),
			TimeoutSeconds: viper.GetInt(normalizeFlagName(SimulationTimeoutSeconds)),
			MaxRetries:     viper.GetInt(normalizeFlagName(SimulationMaxRetries)),
		},

		AddressBookConfig: AddressBookConfig{
			File:       viper.GetString(normalizeFlagName(AddressBookFile)),
			FeeRouters: ParseFeeRouters(StringWithDefaults(viper.GetStringSlice(normalizeFlagName(AddressBookFeeRouters)), nil)),
		},

		DatabaseConfig: DatabaseConfig{
			Enabled:    viper.GetBool(normalizeFlagName(DatabaseEnabled)),
			Host:       viper.GetString(normalizeFlagName(DatabaseHost)),
			Port:       viper.GetInt(normalizeFlagName(DatabasePort)),
			User:       viper.GetString(normalizeFlagName(DatabaseUser)),
			Password:   viper.GetString(normalizeFlagName(DatabasePassword)),
			DbName:     viper.GetString(normalizeFlagName(DatabaseDbName)),
			SchemaName: viper.GetString(normalizeFlagName(DatabaseSchemaName)),
			SSLMode:    viper.GetString(normalizeFlagName(DatabaseSSLMode)),
			SqlitePath: viper.GetString(normalizeFlagName(DatabaseSqlitePath)),
		},

		DataDogConfig: DataDogConfig{
			StatsdConfig: StatsdConfig{
				Enabled:    viper.GetBool(normalizeFlagName(DataDogStatsdEnabled)),
				Url:        viper.GetString(normalizeFlagName(DataDogStatsdUrl)),
				SampleRate: viper.GetFloat64(normalizeFlagName(DataDogStatsdSampleRate)),
			},
		},

		PrometheusConfig: PrometheusConfig{
			Enabled: viper.GetBool(normalizeFlagName(PrometheusEnabled)),
			Port:    viper.GetInt(normalizeFlagName(PrometheusPort)),
		},
	}
}

// ParseFeeRouters turns "chainId=address" entries into a map. Malformed entries are skipped
// so a typo never results in a trusted address being registered for the wrong chain.
func ParseFeeRouters(entries []string) map[uint64]string {
	routers := make(map[uint64]string)
	for _, entry := range entries {
		parts := strings.SplitN(strings.TrimSpace(entry), "=", 2)
		if len(parts) != 2 {
			continue
		}
		chainId, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil {
			continue
		}
		address := strings.TrimSpace(parts[1])
		if address == "" {
			continue
		}
		routers[chainId] = address
	}
	return routers
}

func StringWithDefaults(values []string, defaults []string) []string {
	l := make([]string, 0)
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				l = append(l, s)
			}
		}
	}
	if len(l) == 0 {
		return defaults
	}
	return l
}

func (c *Config) SimulationEnabled() bool {
	return c.SimulationConfig.RpcUrl != ""
}

func (c *Config) Validate() error {
	if c.RpcConfig.GrpcPort != 0 && c.RpcConfig.GrpcPort == c.RpcConfig.HttpPort {
		return fmt.Errorf("grpc and http ports must differ, both set to %d", c.RpcConfig.GrpcPort)
	}
	if c.SimulationConfig.TimeoutSeconds < 0 {
		return fmt.Errorf("%s must not be negative", SimulationTimeoutSeconds)
	}
	return nil
}

func normalizeFlagName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

func KebabToSnakeCase(str string) string {
	return strings.ReplaceAll(str, "-", "_")
}
