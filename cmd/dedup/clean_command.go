package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helixir/reference-dedup-service/internal/dedup"
	"github.com/helixir/reference-dedup-service/internal/readers"
	"github.com/helixir/reference-dedup-service/internal/report"
	"github.com/helixir/reference-dedup-service/internal/writers"
)

func newCleanCommand(verbose *bool) *cobra.Command {
	var (
		output          string
		reportPath      string
		strategy        string
		titleThreshold  float64
		authorThreshold float64
	)

	cmd := &cobra.Command{
		Use:   "clean <input>...",
		Short: "Deduplicate record files and write the unique records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadEnvironment(*verbose)
			if err != nil {
				return err
			}

			engineCfg := cfg.Dedup.Engine()
			if cmd.Flags().Changed("strategy") {
				engineCfg.Strategy = dedup.Strategy(strategy)
			}
			if cmd.Flags().Changed("title-threshold") {
				engineCfg.TitleThreshold = titleThreshold
			}
			if cmd.Flags().Changed("author-threshold") {
				engineCfg.AuthorThreshold = authorThreshold
			}
			if reportPath == "" {
				reportPath = cfg.Report.Path
			}

			records, err := readers.ReadFiles(args)
			if err != nil {
				return err
			}

			fileSink, err := report.NewFileSink(reportPath, cfg.Report.Fields...)
			if err != nil {
				return fmt.Errorf("open duplicates report: %w", err)
			}
			defer fileSink.Close()

			sink := report.MultiSink{fileSink, report.NewLogSink(logger, cfg.Report.Fields...)}

			detector, err := dedup.NewDetector(engineCfg, sink, logger)
			if err != nil {
				return err
			}

			partition, stats := detector.Detect(records)

			if err := writers.WriteFile(output, partition.Unique); err != nil {
				return fmt.Errorf("write unique records: %w", err)
			}

			report.WriteSummary(cmd.OutOrStdout(), partition, stats)
			fmt.Fprintf(cmd.OutOrStdout(), "Unique records written to %s\n", output)
			fmt.Fprintf(cmd.OutOrStdout(), "Duplicates report written to %s\n", reportPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file for unique records (format from extension)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Duplicates report file (default from config)")
	cmd.Flags().StringVar(&strategy, "strategy", "", "Detection strategy: exact-key or group-key")
	cmd.Flags().Float64Var(&titleThreshold, "title-threshold", 0, "Fuzzy title similarity threshold")
	cmd.Flags().Float64Var(&authorThreshold, "author-threshold", 0, "Fuzzy author similarity threshold")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
