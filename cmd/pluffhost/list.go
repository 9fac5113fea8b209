package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pluffgo/pluffgo/pkg/pluff"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every plug-in registered in this context",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, ctx, err := loadHost()
		if err != nil {
			return err
		}
		defer ctx.Destroy(cmd.Context())

		if _, err := ctx.Scan(cmd.Context(), pluff.ScanUpgrade|pluff.ScanRestartActive); err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tVersion\tState\tProvider")
		fmt.Fprintln(w, "--\t-------\t-----\t--------")
		infos := ctx.ListInfo()
		for _, info := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				info.Descriptor.ID, info.Descriptor.Version, info.State, info.Descriptor.Provider)
			ctx.ReleaseInfo(info)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
