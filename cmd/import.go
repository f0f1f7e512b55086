package cmd

import (
	"context"
	"fmt"
	"os"

	"heritage/core/dataset"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importRecords string
	importReigns  string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load members and/or the reign list from JSON files",
	Long: `Load data into the record store.

--reigns replaces the reign reference list. --records replaces the whole
member dataset and triggers a bulk sync. Reigns are loaded first so a
following 'reconcile lifespans' sees them.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importRecords, "records", "", "JSON array of members")
	importCmd.Flags().StringVar(&importReigns, "reigns", "", "JSON array of reigns (id, name, reignFrom, reignTo)")
	RootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if importRecords == "" && importReigns == "" {
		return fmt.Errorf("nothing to import, pass --records and/or --reigns")
	}

	ctx := context.Background()
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	if importReigns != "" {
		data, err := os.ReadFile(importReigns)
		if err != nil {
			return err
		}
		var intervals []dataset.Interval
		if err := json.Unmarshal(data, &intervals); err != nil {
			return fmt.Errorf("invalid reigns file: %w", err)
		}
		if err := a.store.ReplaceIntervals(ctx, intervals); err != nil {
			return err
		}
		a.logger.Info("Reigns imported", zap.Int("count", len(intervals)))
	}

	if importRecords != "" {
		data, err := os.ReadFile(importRecords)
		if err != nil {
			return err
		}
		records, err := dataset.Decode(data)
		if err != nil {
			return err
		}
		out, err := a.store.ReplaceAll(ctx, records)
		if err != nil {
			return err
		}
		a.logger.Info("Records imported", zap.Int("count", len(out)))
	}
	return nil
}
