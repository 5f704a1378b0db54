package cmd

import (
	"fmt"
	"os"

	"github.com/Layr-Labs/txguard/internal/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List the chains and trusted addresses in the address book",
	Run: func(cmd *cobra.Command, args []string) {
		bindCommandFlags(cmd)
		cfg := config.NewConfig()

		book, err := buildAddressBook(cfg, zap.NewNop())
		if err != nil {
			color.Red("%s", err.Error())
			os.Exit(1)
		}

		header := color.New(color.Bold)
		for _, chainId := range book.SupportedChains() {
			chain, err := book.Chain(chainId)
			if err != nil {
				color.Red("%s", err.Error())
				os.Exit(1)
			}
			header.Printf("%d %s\n", chain.ChainId, chain.Name)
			printAddress("lending pool", chain.LendingPool, chain.Labels)
			for _, token := range chain.ReceiptTokens {
				printAddress("receipt token", token, chain.Labels)
			}
			if chain.FeeRouter == (common.Address{}) {
				color.Yellow("  %-14s not configured", "fee router")
			} else {
				printAddress("fee router", chain.FeeRouter, chain.Labels)
			}
		}
	},
}

func printAddress(role string, address common.Address, labels map[common.Address]string) {
	fmt.Printf("  %-14s %s %s\n", role, address.Hex(), labels[address])
}
