package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	connectionrequestdomain "github.com/smallbiznis/netbill/internal/connectionrequest/domain"
	contractdomain "github.com/smallbiznis/netbill/internal/contract/domain"
	"github.com/smallbiznis/netbill/internal/validation"
	"github.com/spf13/cobra"
)

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "Manage service contracts",
}

var contractsTerminateCmd = &cobra.Command{
	Use:   "terminate <id>",
	Short: "End a contract today",
	Long: `Set the contract end date to today. Terminating an already ended
contract is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		var contracts contractdomain.Service
		return runCommand(cmd, func(ctx context.Context) error {
			changed, err := contracts.Terminate(ctx, id)
			if msg := terminateMessage(id, changed, err); msg != "" {
				fmt.Fprintln(cmd.OutOrStdout(), msg)
			}
			return err
		}, &contracts)
	},
}

// terminateMessage renders the outcome of a terminate call. Rejections carry
// the field messages so the operator sees why, e.g. a contract that has not
// started yet. Other errors are left to the caller.
func terminateMessage(id snowflake.ID, changed bool, err error) string {
	if err != nil {
		verr, ok := validation.As(err)
		if !ok || verr.Empty() {
			return ""
		}
		reasons := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			reasons = append(reasons, f.Message)
		}
		return fmt.Sprintf("contract %s not terminated: %s", id, strings.Join(reasons, "; "))
	}
	if !changed {
		return fmt.Sprintf("contract %s already ended", id)
	}
	return fmt.Sprintf("contract %s terminated", id)
}

var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "Approve or decline connection requests",
	Long: `Connection request decisions.

Examples:
  netbill requests approve 1790212345678901234 --start-date 2024-03-01 --equipment 42 --equipment 43
  netbill requests decline 1790212345678901234`,
}

var requestsApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a request, creating its contract and first invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runRequestsApprove,
}

var requestsDeclineCmd = &cobra.Command{
	Use:   "decline <id>",
	Short: "Decline a request that has no contract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		var requests connectionrequestdomain.Service
		return runCommand(cmd, func(ctx context.Context) error {
			if err := requests.Decline(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "request %s declined\n", id)
			return nil
		}, &requests)
	},
}

func runRequestsApprove(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	req := connectionrequestdomain.ApproveRequest{}
	if req.StartDate, err = dateFlag(cmd, "start-date"); err != nil {
		return err
	}
	if req.EndDate, err = dateFlag(cmd, "end-date"); err != nil {
		return err
	}
	equipment, _ := cmd.Flags().GetInt64Slice("equipment")
	for _, raw := range equipment {
		req.EquipmentIDs = append(req.EquipmentIDs, snowflake.ID(raw))
	}

	var requests connectionrequestdomain.Service
	return runCommand(cmd, func(ctx context.Context) error {
		result, err := requests.Approve(ctx, id, req)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "request %s approved, contract %s\n", id, result.ContractID)
		if result.Partial != nil {
			fmt.Fprintf(out, "warning: equipment or first invoice not recorded: %v\n", result.Partial)
			return nil
		}
		fmt.Fprintf(out, "first invoice %s\n", result.InvoiceID)
		return nil
	}, &requests)
}

func dateFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, raw)
	}
	return &t, nil
}

func init() {
	requestsApproveCmd.Flags().String("start-date", "", "contract start date (YYYY-MM-DD), defaults to today")
	requestsApproveCmd.Flags().String("end-date", "", "optional contract end date (YYYY-MM-DD)")
	requestsApproveCmd.Flags().Int64Slice("equipment", nil, "equipment id to attach, repeatable")

	contractsCmd.AddCommand(contractsTerminateCmd)
	requestsCmd.AddCommand(requestsApproveCmd)
	requestsCmd.AddCommand(requestsDeclineCmd)

	rootCmd.AddCommand(contractsCmd)
	rootCmd.AddCommand(requestsCmd)
}
