package main

import (
	"fmt"
	"os"

	"github.com/boddenberg/pix-gateway-proxy/internal/config"
	"github.com/boddenberg/pix-gateway-proxy/internal/infra/gateway"
	"github.com/boddenberg/pix-gateway-proxy/internal/infra/observability"
	"github.com/boddenberg/pix-gateway-proxy/internal/service"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd(proxyFromEnv).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// proxyFromEnv builds a TransactionProxy from the same environment the
// server reads.
func proxyFromEnv(envFile string) (*service.TransactionProxy, error) {
	if envFile != "" {
		if err := config.LoadDotEnv(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg := config.Load()

	logger := observability.NewLogger(cfg.LogLevel)
	metrics := observability.NewMetrics()
	client := gateway.NewFromConfig(cfg, metrics, logger)

	return service.NewTransactionProxy(client, metrics, logger), nil
}

type proxyFactory func(envFile string) (*service.TransactionProxy, error)

func newRootCmd(newProxy proxyFactory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pixctl",
		Short:         "pixctl - create and inspect PIX charges on the payment gateway",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("env-file", "", "dotenv file with GATEWAY_* settings")

	rootCmd.AddCommand(createCmd(newProxy))
	rootCmd.AddCommand(statusCmd(newProxy))

	return rootCmd
}
