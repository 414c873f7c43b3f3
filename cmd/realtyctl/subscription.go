package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fastygo/realty/domain"
	"github.com/fastygo/realty/usecase/workspace"
)

var subscriptionCmd = &cobra.Command{
	Use:     "subscription",
	Aliases: []string{"sub"},
	Short:   "Show or pay the listing subscription",
}

var subscriptionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the billing summary",
	RunE:  runSubscriptionShow,
}

var subscriptionPayCmd = &cobra.Command{
	Use:   "pay",
	Short: "Pay the amount due, or --amount",
	RunE:  runSubscriptionPay,
}

var payAmount string

func init() {
	subscriptionPayCmd.Flags().StringVar(&payAmount, "amount", "", "override the amount due")
	subscriptionCmd.AddCommand(subscriptionShowCmd, subscriptionPayCmd)
}

func runSubscriptionShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	var summary workspace.Summary
	if err := newClient().Get(ctx, "/subscription", nil, &summary); err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), summary)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "status:     %s\n", summary.Account.Status)
	fmt.Fprintf(out, "listings:   %d\n", summary.ListingCount)
	fmt.Fprintf(out, "amount due: %s\n", summary.AmountDue.String())
	if !summary.Account.NextPaymentDate.IsZero() {
		fmt.Fprintf(out, "paid until: %s\n", summary.Account.NextPaymentDate.Format("2006-01-02"))
	}
	return nil
}

func runSubscriptionPay(cmd *cobra.Command, args []string) error {
	body := map[string]interface{}{}
	if payAmount != "" {
		amount, err := decimal.NewFromString(payAmount)
		if err != nil {
			return fmt.Errorf("--amount: %w", err)
		}
		body["amount"] = amount
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	var out struct {
		Payment      domain.PaymentRecord `json:"payment"`
		Subscription workspace.Summary    `json:"subscription"`
	}
	if err := newClient().Post(ctx, "/subscription/pay", body, &out); err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), out)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "paid %s (payment %s), status %s\n",
		out.Payment.Amount.String(), out.Payment.ID, out.Subscription.Account.Status)
	return nil
}
