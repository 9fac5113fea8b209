package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pluffgo/pluffgo/internal/manifest"
)

var installCmd = &cobra.Command{
	Use:   "install <plugin-dir>",
	Short: "Parse and install a single plug-in directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, ctx, err := loadHost()
		if err != nil {
			return err
		}
		defer ctx.Destroy(cmd.Context())

		d, err := manifest.New().Parse(args[0])
		if err != nil {
			return err
		}
		info, err := ctx.Install(d)
		if err != nil {
			return err
		}
		defer ctx.ReleaseInfo(info)
		fmt.Fprintf(cmd.OutOrStdout(), "installed %s (state %s)\n", info.Descriptor.ID, info.State)
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Resolve a plug-in and its imports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, ctx, err := loadHost()
		if err != nil {
			return err
		}
		defer ctx.Destroy(cmd.Context())
		if _, err := ctx.Scan(cmd.Context(), 0); err != nil {
			return err
		}
		return ctx.Resolve(cmd.Context(), args[0])
	},
}

var startCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Start a plug-in, resolving and starting its imports first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, ctx, err := loadHost()
		if err != nil {
			return err
		}
		defer ctx.Destroy(cmd.Context())
		if _, err := ctx.Scan(cmd.Context(), 0); err != nil {
			return err
		}
		return ctx.Start(cmd.Context(), args[0])
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop <id>",
	Short: "Stop a plug-in, stopping its dependents first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, ctx, err := loadHost()
		if err != nil {
			return err
		}
		defer ctx.Destroy(cmd.Context())
		if _, err := ctx.Scan(cmd.Context(), 0); err != nil {
			return err
		}
		return ctx.Stop(cmd.Context(), args[0])
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <id>",
	Short: "Stop and uninstall a plug-in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, ctx, err := loadHost()
		if err != nil {
			return err
		}
		defer ctx.Destroy(cmd.Context())
		if _, err := ctx.Scan(cmd.Context(), 0); err != nil {
			return err
		}
		return ctx.Uninstall(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(installCmd, resolveCmd, startCmd, stopCmd, uninstallCmd)
}
