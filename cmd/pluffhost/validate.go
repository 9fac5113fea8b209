package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pluffgo/pluffgo/internal/manifest"
)

var validatePrintSchema bool

var validateCmd = &cobra.Command{
	Use:   "validate [plugin-dir]",
	Short: "Validate a plugin.yaml file without installing it, or print its JSON Schema",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if validatePrintSchema {
			schema, err := manifest.GenerateSchema()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(schema)
			return err
		}
		if len(args) != 1 {
			return fmt.Errorf("validate: a plugin directory is required unless --print-schema is set")
		}
		d, err := manifest.New().Parse(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (provider %q)\n", d.ID, d.Provider)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validatePrintSchema, "print-schema", false, "print the plugin.yaml JSON Schema instead of validating a directory")
}
