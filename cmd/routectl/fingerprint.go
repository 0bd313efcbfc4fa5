package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFingerprintCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the version id of the definition file",
		Long: `Print the fingerprint used as the version id of cached route tables.
Two files with the same content in different formats share a fingerprint.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, version, err := a.loadFile()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}
