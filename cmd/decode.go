package cmd

import (
	"fmt"
	"os"

	"github.com/Layr-Labs/txguard/pkg/abis"
	"github.com/Layr-Labs/txguard/pkg/decoder"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode calldata against the recognized interfaces",
	Run: func(cmd *cobra.Command, args []string) {
		call, err := callFromFlags(cmd)
		if err != nil {
			color.Red("%s", err.Error())
			os.Exit(1)
		}

		d := decoder.NewDecoder(abis.MustNewDefaultRegistry(), zap.NewNop())
		printDecodedCall(d.Decode(call))
	},
}

func init() {
	addCallFlags(decodeCmd)
}

func addCallFlags(cmd *cobra.Command) {
	cmd.Flags().String("to", "", "Destination contract address")
	cmd.Flags().String("data", "0x", "Hex encoded calldata")
	cmd.Flags().String("value", "0", "Native value in wei, decimal or 0x hex")
}

func callFromFlags(cmd *cobra.Command) (*decoder.LowLevelCall, error) {
	to, _ := cmd.Flags().GetString("to")
	data, _ := cmd.Flags().GetString("data")
	value, _ := cmd.Flags().GetString("value")
	return decoder.NewLowLevelCall(to, data, value)
}

func printDecodedCall(decoded decoder.DecodedCall) {
	switch d := decoded.(type) {
	case *decoder.RecognizedCall:
		bold := color.New(color.Bold)
		bold.Printf("%s.%s", d.Classification, d.FunctionName)
		fmt.Printf(" (%s)\n", d.Selector)
		for _, arg := range d.Arguments {
			fmt.Printf("  %-20s %-10s %s\n", arg.Name, arg.Type, arg.String())
		}
	case *decoder.UnrecognizedCall:
		color.Yellow("unrecognized: %s", d.Reason)
	}
}
