package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"heritage/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRunLifespans bool
	yesConfirm      bool
)

// reconcileCmd is the parent command for all reconcile operations.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute derived data across the whole dataset",
}

// lifespansReconcileCmd recomputes monarch associations.
var lifespansReconcileCmd = &cobra.Command{
	Use:   "lifespans",
	Short: "Recompute which reigns overlap each member's lifetime",
	Long: `Recompute the monarch association of every member with a known birth year.

A dry run is always performed first. Changes are applied only after
confirmation, and the dataset is backed up (trigger auto-bulk) beforehand.

Examples:
  # Report only
  reconcile lifespans --dry-run

  # Apply with interactive confirmation
  reconcile lifespans

  # Apply without prompting
  reconcile lifespans --yes`,
	RunE: runLifespansReconcile,
}

func init() {
	reconcileCmd.AddCommand(lifespansReconcileCmd)

	lifespansReconcileCmd.Flags().BoolVar(&dryRunLifespans, "dry-run", false, "Report changes without writing them")
	lifespansReconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	RootCmd.AddCommand(reconcileCmd)
}

func runLifespansReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	l := a.logger
	defer l.Sync()

	l.Info("Planning reconciliation...")
	plan, err := a.service.RunReconciliation(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to plan reconciliation: %w", err)
	}
	printReconcileReport(l, plan)

	if dryRunLifespans {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if plan.Updated == 0 {
		l.Info("No actions required.")
		return nil
	}
	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	l.Info("Applying changes...")
	report, err := a.service.RunReconciliation(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to apply reconciliation: %w", err)
	}
	l.Info(report.Message, zap.String("backup", report.Backup))

	if st := a.service.Status(); st.PendingOperations > 0 {
		l.Warn("Mirror update is pending and will be lost when this command exits; run 'sync push' later",
			zap.Int("pending", st.PendingOperations))
	}
	return nil
}

// printReconcileReport logs the summary and a sample of the changes.
func printReconcileReport(l *zap.Logger, report reconcile.Report) {
	l.Info("Reconciliation report",
		zap.Int("total", report.Total),
		zap.Int("processed", report.Processed),
		zap.Int("would_update", report.Updated),
	)

	const maxShow = 5
	shown := 0
	for _, res := range report.Results {
		if res.Status != reconcile.StatusWouldUpdate {
			continue
		}
		if shown == maxShow {
			l.Info("Additional changes not shown", zap.Int("count", report.Updated-maxShow))
			break
		}
		l.Info("Sample change",
			zap.String("id", res.ExternalID),
			zap.String("name", res.Name),
			zap.Strings("from", res.Previous),
			zap.Strings("to", res.Computed),
		)
		shown++
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
