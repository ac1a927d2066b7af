package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "flowdist-cli",
		Short: "FlowDistributor CLI tool",
		Long:  `A command line interface for interacting with the FlowDistributor API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the FlowDistributor API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		accountCmd(),
		orderCmd(),
		saleCmd(),
		transferCmd(),
		fxCmd(),
		ledgerCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var name, currency string
	var allowNegative bool
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/accounts/", map[string]any{
				"name":                   name,
				"currency":               currency,
				"allow_negative_balance": allowNegative,
			})
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "Account name")
	createCmd.Flags().StringVar(&currency, "currency", "MXN", "ISO 4217 currency code")
	createCmd.Flags().BoolVar(&allowNegative, "allow-negative", false, "Allow negative balance")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/accounts/")
		},
	}

	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Get an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/accounts/" + args[0])
		},
	}

	reconcileCmd := &cobra.Command{
		Use:   "reconcile [id]",
		Short: "Recompute an account balance from its movement history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repair, _ := cmd.Flags().GetBool("repair")
			return postJSON(fmt.Sprintf("/api/v1/accounts/%s/reconcile?repair=%t", args[0], repair), nil)
		},
	}
	reconcileCmd.Flags().Bool("repair", false, "Overwrite a drifted cached balance")

	cmd.AddCommand(createCmd, listCmd, getCmd, reconcileCmd)
	return cmd
}

func orderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Purchase order operations",
	}

	var orderID, distributorID, distributorName, productID, unitCost string
	var quantity int64
	receiveCmd := &cobra.Command{
		Use:   "receive",
		Short: "Receive a purchase order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/orders/", map[string]any{
				"order_id":         orderID,
				"distributor_id":   distributorID,
				"distributor_name": distributorName,
				"product_id":       productID,
				"quantity":         quantity,
				"unit_cost":        unitCost,
			})
		},
	}
	receiveCmd.Flags().StringVar(&orderID, "oc", "", "OC number")
	receiveCmd.Flags().StringVar(&distributorID, "distributor", "", "Distributor ID")
	receiveCmd.Flags().StringVar(&distributorName, "distributor-name", "", "Distributor name")
	receiveCmd.Flags().StringVar(&productID, "product", "", "Product ID")
	receiveCmd.Flags().Int64Var(&quantity, "quantity", 0, "Ordered quantity")
	receiveCmd.Flags().StringVar(&unitCost, "unit-cost", "0", "Unit cost")

	var accountID, amount string
	payCmd := &cobra.Command{
		Use:   "pay [oc]",
		Short: "Apply an abono against a purchase order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/orders/"+args[0]+"/payments", map[string]any{
				"account_id": accountID,
				"amount":     amount,
			})
		},
	}
	payCmd.Flags().StringVar(&accountID, "account", "", "Paying account ID")
	payCmd.Flags().StringVar(&amount, "amount", "0", "Payment amount")

	getCmd := &cobra.Command{
		Use:   "get [oc]",
		Short: "Get a purchase order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/orders/" + args[0])
		},
	}

	cmd.AddCommand(receiveCmd, payCmd, getCmd)
	return cmd
}

func saleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sale",
		Short: "Sale operations",
	}

	var clientID, clientName, productID, unitPrice, freight, initialPayment string
	var quantity int64
	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "Record a sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/sales/", map[string]any{
				"client_id":        clientID,
				"client_name":      clientName,
				"product_id":       productID,
				"quantity":         quantity,
				"unit_price":       unitPrice,
				"freight_per_unit": freight,
				"initial_payment":  initialPayment,
			})
		},
	}
	recordCmd.Flags().StringVar(&clientID, "client", "", "Client ID")
	recordCmd.Flags().StringVar(&clientName, "client-name", "", "Client name")
	recordCmd.Flags().StringVar(&productID, "product", "", "Product ID")
	recordCmd.Flags().Int64Var(&quantity, "quantity", 0, "Sold quantity")
	recordCmd.Flags().StringVar(&unitPrice, "unit-price", "0", "Unit price")
	recordCmd.Flags().StringVar(&freight, "freight", "0", "Freight per unit")
	recordCmd.Flags().StringVar(&initialPayment, "initial-payment", "0", "Initial payment")

	var amount string
	payCmd := &cobra.Command{
		Use:   "pay [id]",
		Short: "Apply a client abono against a sale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/sales/"+args[0]+"/payments", map[string]any{
				"amount": amount,
			})
		},
	}
	payCmd.Flags().StringVar(&amount, "amount", "0", "Payment amount")

	getCmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Get a sale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/sales/" + args[0])
		},
	}

	cmd.AddCommand(recordCmd, payCmd, getCmd)
	return cmd
}

func transferCmd() *cobra.Command {
	var from, to, amount, description string
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move funds between same-currency accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/transfers/", map[string]any{
				"from_account_id": from,
				"to_account_id":   to,
				"amount":          amount,
				"description":     description,
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Source account ID")
	cmd.Flags().StringVar(&to, "to", "", "Destination account ID")
	cmd.Flags().StringVar(&amount, "amount", "0", "Amount")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	return cmd
}

func fxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fx",
		Short: "Currency conversion operations",
	}

	var from, to, amount, rate string
	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert funds between accounts in different currencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"from_account_id": from,
				"to_account_id":   to,
				"amount":          amount,
			}
			if rate != "" {
				body["rate"] = rate
			}
			return postJSON("/api/v1/fx/convert", body)
		},
	}
	convertCmd.Flags().StringVar(&from, "from", "", "Source account ID")
	convertCmd.Flags().StringVar(&to, "to", "", "Destination account ID")
	convertCmd.Flags().StringVar(&amount, "amount", "0", "Amount in source currency")
	convertCmd.Flags().StringVar(&rate, "rate", "", "Override exchange rate")

	quoteCmd := &cobra.Command{
		Use:   "quote [from] [to] [amount]",
		Short: "Preview a conversion without moving funds",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(fmt.Sprintf("/api/v1/fx/quote?from=%s&to=%s&amount=%s", args[0], args[1], args[2]))
		},
	}

	cmd.AddCommand(convertCmd, quoteCmd)
	return cmd
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/ledger/consistency")
		},
	}

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a reconciliation report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/ledger/report")
		},
	}

	cmd.AddCommand(consistencyCmd, reportCmd)
	return cmd
}

func getJSON(path string) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printResponse(resp)
}

func postJSON(path string, body map[string]any) error {
	payload := []byte("{}")
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.New().String())

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(body), 500))
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		fmt.Println(string(body))
		return nil
	}

	printJSON(decoded)
	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
