package main

import (
	"os"

	"github.com/spf13/cobra"

	"paybridge/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "paybridge",
		Short: "Paybridge - ECPay payment and EZPay e-invoice gateway service",
		Long:  `Paybridge hosts a checkout page, reconciles asynchronous ECPay payment callbacks against pending orders, and issues EZPay e-invoices.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
