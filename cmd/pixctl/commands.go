package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/boddenberg/pix-gateway-proxy/internal/domain"
	"github.com/boddenberg/pix-gateway-proxy/internal/service"

	"github.com/spf13/cobra"
)

func createCmd(newProxy proxyFactory) *cobra.Command {
	var form domain.ChargeForm
	var amount string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a PIX charge",
		Long: `Create a PIX charge on the gateway and print the normalized
transaction together with the gateway's document.

Amounts are in reais; "10,50" and "10.50" are both accepted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proxy, err := loadProxy(cmd, newProxy)
			if err != nil {
				return err
			}

			form.Amount = domain.FlexibleAmount(amount)
			result, err := proxy.CreateCharge(cmd.Context(), &form)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount in reais (required)")
	cmd.Flags().StringVarP(&form.Name, "name", "n", "", "Customer name")
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "Customer email")
	cmd.Flags().StringVarP(&form.Document, "document", "d", "", "CPF or CNPJ")
	cmd.Flags().StringVarP(&form.Phone, "phone", "p", "", "Customer phone")
	cmd.Flags().IntVar(&form.ExpiresInDays, "expires-in-days", 1, "Days until the PIX code expires")
	cmd.Flags().StringVar(&form.Description, "description", "", "Item description")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func statusCmd(newProxy proxyFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "status [id]",
		Short: "Show the status of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proxy, err := loadProxy(cmd, newProxy)
			if err != nil {
				return err
			}

			result, err := proxy.Status(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result)
		},
	}
}

func loadProxy(cmd *cobra.Command, newProxy proxyFactory) (*service.TransactionProxy, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	return newProxy(envFile)
}

// printResult writes the charge view as indented JSON. A non-2xx gateway
// status still prints the document but fails the command.
func printResult(w io.Writer, result *domain.ProxyResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(domain.ChargeView{
		Transaction: result.Transaction,
		Gateway:     result.Body,
	}); err != nil {
		return err
	}

	if result.StatusCode < 200 || result.StatusCode >= 300 {
		return fmt.Errorf("gateway answered HTTP %d", result.StatusCode)
	}
	return nil
}
