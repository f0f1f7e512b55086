package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Inspect and drive replication to the mirror bucket",
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the mirror and show replication settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		a.service.TestConnection(ctx)
		st := a.service.Status()
		a.logger.Info("Sync status",
			zap.Bool("available", st.Available),
			zap.Bool("connected", st.Connected),
			zap.String("data_path", a.cfg.Sync.DataPath),
			zap.Duration("short_delay", a.cfg.Sync.ShortDelay),
			zap.Duration("long_delay", a.cfg.Sync.LongDelay),
			zap.String("error", st.Error),
		)
		return nil
	},
}

var syncTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the connection to the mirror",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		res := a.service.TestConnection(ctx)
		if !res.Connected {
			return errors.New(res.Error)
		}
		a.logger.Info("Mirror reachable", zap.String("bucket", a.cfg.Storage.Bucket))
		return nil
	},
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push the current dataset to the mirror",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		res, err := a.service.Push(ctx)
		if err != nil {
			return err
		}
		if !res.Success {
			return errors.New(res.Error)
		}
		a.logger.Info("Dataset pushed", zap.String("path", a.cfg.Sync.DataPath))
		return nil
	},
}

func init() {
	syncCmd.AddCommand(syncStatusCmd, syncTestCmd, syncPushCmd)
	RootCmd.AddCommand(syncCmd)
}
