package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pluffgo/pluffgo/pkg/pluff"
)

var (
	scanStopAllOnUpgrade bool
	scanStopAllOnInstall bool
	scanNoUpgrade        bool
	scanRestartActive    bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan configured directories for plug-ins to install or upgrade",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, ctx, err := loadHost()
		if err != nil {
			return err
		}
		defer ctx.Destroy(cmd.Context())

		var flags pluff.ScanFlags
		if !scanNoUpgrade {
			flags |= pluff.ScanUpgrade
		}
		if scanStopAllOnUpgrade {
			flags |= pluff.ScanStopAllOnUpgrade
		}
		if scanStopAllOnInstall {
			flags |= pluff.ScanStopAllOnInstall
		}
		if scanRestartActive {
			flags |= pluff.ScanRestartActive
		}

		result, err := ctx.Scan(cmd.Context(), flags)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "installed: %v\n", result.Installed)
		fmt.Fprintf(cmd.OutOrStdout(), "upgraded:  %v\n", result.Upgraded)
		fmt.Fprintf(cmd.OutOrStdout(), "skipped:   %v\n", result.Skipped)
		for id, scanErr := range result.Errors {
			fmt.Fprintf(cmd.OutOrStdout(), "error: %s: %v\n", id, scanErr)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&scanNoUpgrade, "no-upgrade", false, "do not upgrade plug-ins with a newer on-disk version")
	scanCmd.Flags().BoolVar(&scanStopAllOnUpgrade, "stop-all-on-upgrade", false, "stop every active plug-in before any upgrade")
	scanCmd.Flags().BoolVar(&scanStopAllOnInstall, "stop-all-on-install", false, "stop every active plug-in before any fresh install")
	scanCmd.Flags().BoolVar(&scanRestartActive, "restart-active", true, "restart plug-ins that were active before an upgrade")
}
