package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helixir/reference-dedup-service/internal/filter"
	"github.com/helixir/reference-dedup-service/internal/readers"
	"github.com/helixir/reference-dedup-service/internal/writers"
)

func newFilterCommand(verbose *bool) *cobra.Command {
	var (
		field          string
		include        []string
		exclude        []string
		output         string
		excludedOutput string
	)

	cmd := &cobra.Command{
		Use:   "filter <input>...",
		Short: "Split record files into relevant and excluded sets by keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadEnvironment(*verbose)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("field") {
				field = cfg.Filter.Field
			}
			if !cmd.Flags().Changed("include") {
				include = cfg.Filter.Include
			}
			if !cmd.Flags().Changed("exclude") {
				exclude = cfg.Filter.Exclude
			}

			records, err := readers.ReadFiles(args)
			if err != nil {
				return err
			}

			relevant, excluded := filter.New(field, include, exclude).Split(records)

			logger.Info().
				Int("records", len(records)).
				Int("relevant", len(relevant)).
				Int("excluded", len(excluded)).
				Str("field", field).
				Msg("keyword filter applied")

			if err := writers.WriteFile(output, relevant); err != nil {
				return fmt.Errorf("write relevant records: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d records relevant, written to %s\n",
				len(relevant), len(records), output)

			if excludedOutput != "" {
				if err := writers.WriteFile(excludedOutput, excluded); err != nil {
					return fmt.Errorf("write excluded records: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d excluded records written to %s\n",
					len(excluded), excludedOutput)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&field, "field", "", "Record field matched against the keywords (default from config)")
	cmd.Flags().StringSliceVar(&include, "include", nil, "Keywords at least one of which must match")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Keywords none of which may match")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file for relevant records")
	cmd.Flags().StringVar(&excludedOutput, "excluded-output", "", "Optional output file for excluded records")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
