package cmd

import (
	"context"
	"fmt"
	"os"

	"heritage/core/backup"
	"heritage/core/dataset"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var backupTrigger string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage dataset backups in the mirror bucket",
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		list, err := a.service.ListBackups(ctx)
		if err != nil {
			return err
		}
		for _, m := range list {
			a.logger.Info("Backup",
				zap.String("filename", m.Filename),
				zap.String("trigger", string(m.Trigger)),
				zap.Int("records", m.RecordCount),
				zap.Int64("bytes", m.SizeBytes),
			)
		}
		a.logger.Info("Backups found", zap.Int("count", len(list)))
		return nil
	},
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Snapshot the current dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		trigger, err := backup.ParseTrigger(backupTrigger)
		if err != nil {
			return err
		}

		ctx := context.Background()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		meta, err := a.service.CreateBackup(ctx, trigger)
		if err != nil {
			return err
		}
		a.logger.Info("Backup created", zap.String("filename", meta.Filename), zap.Int("records", meta.RecordCount))
		return nil
	},
}

var backupShowCmd = &cobra.Command{
	Use:   "show <filename>",
	Short: "Print the records of a backup as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		records, err := a.service.GetBackupContent(ctx, args[0])
		if err != nil {
			return err
		}
		data, err := dataset.Encode(records)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(os.Stdout, string(data))
		return err
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <filename>",
	Short: "Replace the dataset with a backup",
	Long: `Replace the whole dataset with the records of a backup.

The current dataset is first saved with trigger pre-restore, so a restore
can itself be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		if !confirmDestructiveAction() {
			a.logger.Warn("Operation cancelled by user. No changes were made.")
			return nil
		}

		res, err := a.service.RestoreBackup(ctx, args[0])
		if err != nil {
			return err
		}
		a.logger.Info("Restore complete",
			zap.Int("records", res.Restored),
			zap.String("snapshot", res.Snapshot))
		return nil
	},
}

func init() {
	backupCreateCmd.Flags().StringVar(&backupTrigger, "trigger", string(backup.TriggerManual), "Backup trigger (manual, auto-bulk, pre-restore)")
	backupRestoreCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm the restore (non-interactive)")

	backupCmd.AddCommand(backupListCmd, backupCreateCmd, backupShowCmd, backupRestoreCmd)
	RootCmd.AddCommand(backupCmd)
}
