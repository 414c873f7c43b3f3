package main

import (
	"fmt"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fastygo/realty/domain"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Review agent applications (admin role)",
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print review queue counters",
	RunE:  runAdminStats,
}

var adminProposalsCmd = &cobra.Command{
	Use:   "proposals",
	Short: "List agent applications",
	RunE:  runAdminProposals,
}

var adminApproveCmd = &cobra.Command{
	Use:   "approve <proposal-id>",
	Short: "Approve an application",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminApprove,
}

var adminRejectCmd = &cobra.Command{
	Use:   "reject <proposal-id>",
	Short: "Reject an application with --reason",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminReject,
}

var (
	proposalStatus string
	rejectReason   string
)

func init() {
	adminProposalsCmd.Flags().StringVar(&proposalStatus, "status", "pending", "pending, approved, rejected or empty for all")
	adminRejectCmd.Flags().StringVar(&rejectReason, "reason", "", "reason shown to the applicant")
	adminCmd.AddCommand(adminStatsCmd, adminProposalsCmd, adminApproveCmd, adminRejectCmd)
}

func runAdminStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	var stats domain.ReviewStats
	if err := newClient().Get(ctx, "/admin/stats", nil, &stats); err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), stats)
}

func runAdminProposals(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	var query url.Values
	if proposalStatus != "" {
		query = url.Values{"status": {proposalStatus}}
	}
	var proposals []domain.Proposal
	if err := newClient().Get(ctx, "/admin/proposals", query, &proposals); err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), proposals)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTATUS\tSUBMITTED")
	for _, p := range proposals {
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\n",
			p.ID, p.FirstName, p.LastName, p.Email, p.Status, p.SubmittedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func runAdminApprove(cmd *cobra.Command, args []string) error {
	return decide(cmd, "/admin/proposals/"+url.PathEscape(args[0])+"/approve", nil)
}

func runAdminReject(cmd *cobra.Command, args []string) error {
	return decide(cmd, "/admin/proposals/"+url.PathEscape(args[0])+"/reject", map[string]string{"reason": rejectReason})
}

func decide(cmd *cobra.Command, path string, body interface{}) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	var p domain.Proposal
	if err := newClient().Put(ctx, path, body, &p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "proposal %s is %s\n", p.ID, p.Status)
	return nil
}
