package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Layr-Labs/txguard/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "txguard",
	Short: "txguard decides whether a lending transaction may be signed on behalf of a user",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	initConfig(rootCmd)

	rootCmd.PersistentFlags().Bool(config.Debug, false, `"true" or "false"`)

	rootCmd.PersistentFlags().Int(config.RpcGrpcPort, 7100, `gRPC port`)
	rootCmd.PersistentFlags().Int(config.RpcHttpPort, 7101, `http rpc port`)
	rootCmd.PersistentFlags().StringSlice(config.RpcCorsAllowedOrigins, []string{"*"}, `Origins allowed to call the http rpc`)

	rootCmd.PersistentFlags().String(config.SimulationRpcUrl, "", `Simulation endpoint, e.g. "https://base-mainnet.g.alchemy.com/v2/<key>"`)
	rootCmd.PersistentFlags().Int(config.SimulationTimeoutSeconds, 10, `Timeout for a single simulation request`)
	rootCmd.PersistentFlags().Int(config.SimulationMaxRetries, 3, `Retries for failed simulation requests`)

	rootCmd.PersistentFlags().String(config.AddressBookFile, "", `CSV file with chain_id,role,address,label rows merged over the built-in address book`)
	rootCmd.PersistentFlags().StringSlice(config.AddressBookFeeRouters, nil, `Fee router per chain, e.g. "8453=0x..."`)

	rootCmd.PersistentFlags().Bool(config.DatabaseEnabled, false, `Persist verdicts`)
	rootCmd.PersistentFlags().String(config.DatabaseHost, "localhost", `PostgreSQL host`)
	rootCmd.PersistentFlags().Int(config.DatabasePort, 5432, `PostgreSQL port`)
	rootCmd.PersistentFlags().String(config.DatabaseUser, "txguard", `PostgreSQL username`)
	rootCmd.PersistentFlags().String(config.DatabasePassword, "", `PostgreSQL password`)
	rootCmd.PersistentFlags().String(config.DatabaseDbName, "txguard", `PostgreSQL database name`)
	rootCmd.PersistentFlags().String(config.DatabaseSchemaName, "", `PostgreSQL schema name (default "public")`)
	rootCmd.PersistentFlags().String(config.DatabaseSSLMode, "disable", `PostgreSQL ssl mode (disable, require, verify-ca, verify-full)`)
	rootCmd.PersistentFlags().String(config.DatabaseSqlitePath, "", `Store verdicts in this sqlite file instead of PostgreSQL`)

	rootCmd.PersistentFlags().Bool(config.DataDogStatsdEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().String(config.DataDogStatsdUrl, "", `e.g. "localhost:8125"`)
	rootCmd.PersistentFlags().Float64(config.DataDogStatsdSampleRate, 1.0, `The sample rate to use for statsd metrics`)

	rootCmd.PersistentFlags().Bool(config.PrometheusEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().Int(config.PrometheusPort, 2112, `The port to run the prometheus server on`)

	// setup sub commands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(chainsCmd)
	rootCmd.AddCommand(runVersionCmd)

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		viper.BindPFlag(key, f) //nolint:errcheck
		viper.BindEnv(key)      //nolint:errcheck
	})
}

func initConfig(cmd *cobra.Command) {
	viper.SetEnvPrefix(config.ENV_PREFIX)

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.AutomaticEnv()
}

// bindCommandFlags binds a subcommand's local flags the same way the persistent flags are bound.
func bindCommandFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := viper.BindPFlag(config.KebabToSnakeCase(f.Name), f); err != nil {
			fmt.Printf("Failed to bind flag '%s' - %+v\n", f.Name, err)
		}
		if err := viper.BindEnv(f.Name); err != nil {
			fmt.Printf("Failed to bind env '%s' - %+v\n", f.Name, err)
		}
	})
}
