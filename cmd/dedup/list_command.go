package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/helixir/reference-dedup-service/internal/readers"
	"github.com/helixir/reference-dedup-service/internal/report"
)

func newListCommand(verbose *bool) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list <input>...",
		Short: "Write a readable listing of titles and abstracts, sorted by year",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := loadEnvironment(*verbose)
			if err != nil {
				return err
			}

			records, err := readers.ReadFiles(args)
			if err != nil {
				return err
			}
			logger.Debug().Int("records", len(records)).Msg("records loaded")

			if output == "" {
				return report.WriteListing(cmd.OutOrStdout(), records)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create listing file: %w", err)
			}
			if err := report.WriteListing(f, records); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close listing file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Listing of %d records written to %s\n", len(records), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Listing file (stdout when omitted)")

	return cmd
}
