package main

import (
	"context"
	"encoding/json"
	"fmt"

	billingoverviewdomain "github.com/smallbiznis/netbill/internal/billingoverview/domain"
	"github.com/smallbiznis/netbill/internal/scheduler"
	"github.com/spf13/cobra"
)

var billingCmd = &cobra.Command{
	Use:   "billing",
	Short: "Run billing jobs on demand",
	Long: `On-demand billing runs. Both commands are safe to repeat: invoices are
keyed by contract and due date and the overdue sweep only touches pending rows.

Examples:
  netbill billing run
  netbill billing overdue`,
}

var billingRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Sweep overdue invoices and bill contracts due tomorrow",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSchedulerJob(cmd, scheduler.JobGenerateInvoices, (*scheduler.Scheduler).RunBillingSlot)
	},
}

var billingOverdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "Mark pending invoices past their due date as overdue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSchedulerJob(cmd, scheduler.JobOverdueSweep, (*scheduler.Scheduler).RunOverdueSweep)
	},
}

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Balance allocation jobs",
}

var paymentsAllocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Settle open invoices from customer balances, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSchedulerJob(cmd, scheduler.JobAllocatePayments, (*scheduler.Scheduler).RunPaymentSlot)
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the financial overview",
	RunE: func(cmd *cobra.Command, args []string) error {
		var overview billingoverviewdomain.Service
		return runCommand(cmd, func(ctx context.Context) error {
			summary, err := overview.GetSummary(ctx)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}, &overview)
	},
}

func runSchedulerJob(cmd *cobra.Command, job string, run func(*scheduler.Scheduler, context.Context) error) error {
	var sched *scheduler.Scheduler
	return runCommand(cmd, func(ctx context.Context) error {
		if err := run(sched, scheduler.WithStrictTimeouts(ctx)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s completed\n", job)
		return nil
	}, &sched)
}

func init() {
	billingCmd.AddCommand(billingRunCmd)
	billingCmd.AddCommand(billingOverdueCmd)
	paymentsCmd.AddCommand(paymentsAllocateCmd)

	rootCmd.AddCommand(billingCmd)
	rootCmd.AddCommand(paymentsCmd)
	rootCmd.AddCommand(summaryCmd)
}
