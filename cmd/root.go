package cmd

import (
	"fmt"
	"os"

	"heritage/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "heritage",
	Short: "Heritage family data service",
	Long: `Heritage keeps the family record store mirrored into a versioned bucket,
manages point-in-time backups, and recomputes which reigns each member lived under.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console output with ISO timestamps reads best for a CLI failure.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
