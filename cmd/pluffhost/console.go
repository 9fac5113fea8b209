package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pluffgo/pluffgo/internal/manifest"
	"github.com/pluffgo/pluffgo/pkg/pluff"
)

// runConsole implements an interactive line command console over ctx,
// grounded on original_source/c-pluff/console/console.c's command set
// (help/add-plugin-dir/load-plugin/list-plugins/show-plugin-info/exit) and
// corrreia-gostrike/internal/manager/commands.go's verb-dispatch switch
// shape.
func runConsole(ctx context.Context, pctx *pluff.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "pluffgo console. Type 'help' for a command list.")
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "pluff> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		args := strings.Fields(line)
		verb, rest := args[0], args[1:]

		switch verb {
		case "help":
			printConsoleHelp(out)
		case "exit", "quit":
			return nil
		case "add-dir":
			if len(rest) != 1 {
				fmt.Fprintln(out, "usage: add-dir <path>")
				continue
			}
			pctx.AddDirectory(rest[0])
		case "remove-dir":
			if len(rest) != 1 {
				fmt.Fprintln(out, "usage: remove-dir <path>")
				continue
			}
			pctx.RemoveDirectory(rest[0])
		case "dirs":
			for _, d := range pctx.Directories() {
				fmt.Fprintln(out, d)
			}
		case "scan":
			result, err := pctx.Scan(ctx, pluff.ScanUpgrade|pluff.ScanRestartActive)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			fmt.Fprintf(out, "installed %v upgraded %v skipped %v\n", result.Installed, result.Upgraded, result.Skipped)
		case "load":
			if len(rest) != 1 {
				fmt.Fprintln(out, "usage: load <plugin-dir>")
				continue
			}
			d, err := manifest.New().Parse(rest[0])
			if err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			info, err := pctx.Install(d)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			pctx.ReleaseInfo(info)
			fmt.Fprintf(out, "installed %s\n", info.Descriptor.ID)
		case "list":
			for _, info := range pctx.ListInfo() {
				fmt.Fprintf(out, "%s\t%s\t%s\n", info.Descriptor.ID, info.Descriptor.Version, info.State)
				pctx.ReleaseInfo(info)
			}
		case "info":
			if len(rest) != 1 {
				fmt.Fprintln(out, "usage: info <id>")
				continue
			}
			info, ok := pctx.GetInfo(rest[0])
			if !ok {
				fmt.Fprintln(out, "no such plug-in:", rest[0])
				continue
			}
			fmt.Fprintf(out, "id: %s\nversion: %s\nstate: %s\nprovider: %s\nimports: %d\nextension points: %d\nextensions: %d\n",
				info.Descriptor.ID, info.Descriptor.Version, info.State, info.Descriptor.Provider,
				len(info.Descriptor.Imports), len(info.Descriptor.ExtensionPoints), len(info.Descriptor.Extensions))
			pctx.ReleaseInfo(info)
		case "start":
			if len(rest) != 1 {
				fmt.Fprintln(out, "usage: start <id>")
				continue
			}
			if err := pctx.Start(ctx, rest[0]); err != nil {
				fmt.Fprintln(out, "error:", err)
			}
		case "stop":
			if len(rest) != 1 {
				fmt.Fprintln(out, "usage: stop <id>")
				continue
			}
			if err := pctx.Stop(ctx, rest[0]); err != nil {
				fmt.Fprintln(out, "error:", err)
			}
		case "uninstall":
			if len(rest) != 1 {
				fmt.Fprintln(out, "usage: uninstall <id>")
				continue
			}
			if err := pctx.Uninstall(ctx, rest[0]); err != nil {
				fmt.Fprintln(out, "error:", err)
			}
		default:
			fmt.Fprintf(out, "unknown command %q, type 'help'\n", verb)
		}
	}
}

func printConsoleHelp(out io.Writer) {
	fmt.Fprintln(out, `commands:
  help                 show this message
  add-dir <path>       add a plug-in directory to scan
  remove-dir <path>    remove a plug-in directory
  dirs                 list configured plug-in directories
  scan                 scan directories, installing/upgrading plug-ins
  load <dir>           parse and install a single plug-in directory
  list                 list every registered plug-in
  info <id>            show details for one plug-in
  start <id>           start a plug-in
  stop <id>            stop a plug-in
  uninstall <id>       uninstall a plug-in
  exit                 leave the console`)
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start an interactive command console",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, ctx, err := loadHost()
		if err != nil {
			return err
		}
		defer ctx.Destroy(cmd.Context())
		return runConsole(cmd.Context(), ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}
