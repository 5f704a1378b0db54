package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Layr-Labs/txguard/internal/config"
	"github.com/Layr-Labs/txguard/internal/logger"
	"github.com/Layr-Labs/txguard/internal/metrics"
	"github.com/Layr-Labs/txguard/pkg/gatekeeper"
	"github.com/Layr-Labs/txguard/pkg/utils"
	"github.com/Layr-Labs/txguard/pkg/validator"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// exit code for a rejected call, distinct from usage errors
const exitRejected = 2

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether a call may be signed for a sender",
	Run: func(cmd *cobra.Command, args []string) {
		bindCommandFlags(cmd)
		cfg := config.NewConfig()

		l := zap.NewNop()
		if cfg.Debug {
			l, _ = logger.NewLogger(&logger.LoggerConfig{Debug: true, Name: "txguard"})
		}

		call, err := callFromFlags(cmd)
		if err != nil {
			color.Red("%s", err.Error())
			os.Exit(1)
		}
		chainId, _ := cmd.Flags().GetUint64("chain-id")
		senderFlag, _ := cmd.Flags().GetString("sender")
		sender, err := utils.ParseAddress(senderFlag)
		if err != nil {
			color.Red("invalid sender: %s", err.Error())
			os.Exit(1)
		}
		simulate, _ := cmd.Flags().GetBool("simulate")

		book, err := buildAddressBook(cfg, l)
		if err != nil {
			color.Red("%s", err.Error())
			os.Exit(1)
		}
		gk, err := buildGatekeeper(cfg, book, nil, metrics.NewNoopMetricsSink(), l)
		if err != nil {
			color.Red("%s", err.Error())
			os.Exit(1)
		}

		vctx := &validator.ValidationContext{ChainId: chainId, Sender: sender}

		var verdict *gatekeeper.Verdict
		if simulate {
			verdict, err = gk.Authorize(context.Background(), call, vctx)
			if err != nil {
				color.Red("could not authorize: %s", err.Error())
				os.Exit(1)
			}
		} else {
			verdict = gk.Precheck(call, vctx)
		}

		if verdict.Decoded != nil {
			printDecodedCall(verdict.Decoded)
		}
		printVerdict(verdict)
		if !verdict.Approved {
			os.Exit(exitRejected)
		}
	},
}

func init() {
	addCallFlags(checkCmd)
	checkCmd.Flags().Uint64("chain-id", 0, "Chain the call will be sent on")
	checkCmd.Flags().String("sender", "", "Address that will sign the call")
	checkCmd.Flags().Bool("simulate", false, "Also simulate the call; requires --simulation.rpc-url")
}

func printVerdict(v *gatekeeper.Verdict) {
	if v.Approved {
		color.New(color.FgGreen, color.Bold).Printf("APPROVED")
		fmt.Printf(" at %s\n", v.Stage)
		if v.Stage == gatekeeper.Stage_Rules {
			color.Yellow("  rules passed; run with --simulate before signing")
		}
	} else {
		color.New(color.FgRed, color.Bold).Printf("REJECTED")
		fmt.Printf(" at %s: %s\n", v.Stage, v.Reason)
	}
	fmt.Printf("  verdict %s\n", v.Id)
}
