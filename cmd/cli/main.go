package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"filmdash/adapters/excel"
	"filmdash/internal/analysis"
	"filmdash/internal/charts"
	"filmdash/internal/dashboard"
	"filmdash/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	var datasetFile string
	rootCmd := &cobra.Command{
		Use:   "filmdash-cli",
		Short: "Inspect the film dataset and the chart catalog built from it",
	}
	rootCmd.PersistentFlags().StringVar(&datasetFile, "dataset", os.Getenv("DATASET_FILE"), "Path to the prepared dataset (.xlsx or .csv)")

	rootCmd.AddCommand(
		newKeysCmd(&datasetFile),
		newChartCmd(&datasetFile),
		newStatsCmd(&datasetFile),
		newThumbnailsCmd(&datasetFile),
		newSampleCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func build(ctx context.Context, datasetFile string) (*dashboard.Snapshot, error) {
	if datasetFile == "" {
		return nil, fmt.Errorf("no dataset: pass --dataset or set DATASET_FILE")
	}
	return dashboard.Build(ctx, dashboard.FileSource(datasetFile), charts.DefaultOptions())
}

func newKeysCmd(datasetFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List every chart variant key",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := build(cmd.Context(), *datasetFile)
			if err != nil {
				return err
			}
			for _, k := range snap.Catalog.Keys() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}

func newChartCmd(datasetFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chart [key]",
		Short: "Print the figure JSON of one variant",
		Long: `Print the figure JSON of one variant.

Example: filmdash-cli chart genre-mean-revenue/highlight/errors`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := build(cmd.Context(), *datasetFile)
			if err != nil {
				return err
			}
			variant, err := snap.Catalog.LookupString(args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(variant.JSON(), '\n'))
			return err
		},
	}
}

func newStatsCmd(datasetFile *string) *cobra.Command {
	var by string
	var xlsxOut string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print revenue statistics per genre or distributor",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := build(cmd.Context(), *datasetFile)
			if err != nil {
				return err
			}

			var stats []analysis.CategoryStat
			switch by {
			case "genres", "genre":
				stats = snap.Genres
			case "distributors", "distributor":
				stats = snap.Distributors
			default:
				return fmt.Errorf("unknown grouping %q (use genres or distributors)", by)
			}

			if xlsxOut != "" {
				return writeStatsWorkbook(xlsxOut, stats)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tFILMS\tTOTAL\tMEAN\tSTD DEV\tSTD ERR")
			for _, s := range stats {
				m := s.Revenue()
				fmt.Fprintf(w, "%s\t%d\t%.0f\t%.0f\t%.0f\t%.0f\n", s.Category, s.Count, m.Sum, m.Mean, m.StdDev, m.StdErr)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&by, "by", "genres", "Grouping: genres or distributors")
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "Write the table to this workbook instead of stdout")
	return cmd
}

func writeStatsWorkbook(path string, stats []analysis.CategoryStat) error {
	rows := make([][]interface{}, len(stats))
	for i, s := range stats {
		m := s.Revenue()
		rows[i] = []interface{}{s.Category, s.Count, m.Sum, m.Mean, m.StdDev, m.StdErr}
	}
	headers := []string{"Category", "Films", "Total Revenue", "Mean Revenue", "Std Dev", "Std Err"}
	return excel.WriteWorkbook(path, "Statistics", headers, rows)
}

func newThumbnailsCmd(datasetFile *string) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "thumbnails",
		Short: "Render the dashboard card images as PNG files",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := build(cmd.Context(), *datasetFile)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			for page, image := range snap.Thumbnails {
				path := filepath.Join(outDir, page+".png")
				if err := os.WriteFile(path, image, 0o644); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "thumbnails", "Output directory")
	return cmd
}

func newSampleCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a small sample dataset for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := testkit.WriteSampleWorkbook(out, testkit.SampleFilms()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d films to %s\n", len(testkit.SampleFilms()), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "prepared_dataset.xlsx", "Output workbook")
	return cmd
}
