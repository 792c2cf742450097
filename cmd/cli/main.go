package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"decorana/adapters/tabular"
	"decorana/app"
	"decorana/domain/ordination"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "decorana",
		Short: "Detrended correspondence analysis for ecological abundance tables",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newConvertCmd(),
		newNamesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var (
		analysis   string
		downweight bool
		rescale    int
		segments   int
		shortest   float64
		axes       int
		plotPath   string
		reportPath string
		jsonPath   string
	)

	cmd := &cobra.Command{
		Use:   "run [abundance-file]",
		Short: "Run an ordination over a CSV or Excel abundance table",
		Long: `Run detrended correspondence analysis (or basic reciprocal averaging)
over a sites x species abundance table and print site and species scores.

Example: decorana run gauch.csv --rescale 4 --plot biplot.png --report run.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matrix, labels, err := tabular.NewReader(args[0]).Read()
			if err != nil {
				return err
			}

			cfg := ordination.Config{
				Analysis:         ordination.AnalysisType(analysis),
				DownweightRare:   downweight,
				RescalingCycles:  rescale,
				Segments:         segments,
				ShortestGradient: shortest,
				Axes:             axes,
			}

			svc := app.NewOrdinationService(nil)
			run, err := svc.Execute(context.Background(), app.RunRequest{
				Matrix:     matrix,
				Labels:     labels,
				Config:     cfg,
				PlotPath:   plotPath,
				ReportPath: reportPath,
			})
			if err != nil {
				return err
			}

			if jsonPath != "" {
				data, err := json.MarshalIndent(run, "", "  ")
				if err != nil {
					return err
				}
				return os.WriteFile(jsonPath, data, 0o644)
			}
			printScores(cmd, run)
			return nil
		},
	}

	cmd.Flags().StringVar(&analysis, "analysis", string(ordination.AnalysisDetrended), "detrended or basic_reciprocal_averaging")
	cmd.Flags().BoolVar(&downweight, "downweight", false, "downweight rare species")
	cmd.Flags().IntVar(&rescale, "rescale", 0, "number of rescaling cycles")
	cmd.Flags().IntVar(&segments, "segments", 0, "detrending/rescaling segments (default 26)")
	cmd.Flags().Float64Var(&shortest, "shortest", 0, "shortest gradient to rescale, in sd units")
	cmd.Flags().IntVar(&axes, "axes", 0, "number of axes to extract (default 4)")
	cmd.Flags().StringVar(&plotPath, "plot", "", "write a biplot to this file (png/svg/pdf)")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a markdown report to this file")
	cmd.Flags().StringVar(&jsonPath, "json", "", "write the full run as JSON to this file")

	return cmd
}

func printScores(cmd *cobra.Command, run *ordination.Run) {
	res := run.Result
	cmd.Printf("Run %s: %d axes, eigenvalues", run.ID, res.Axes())
	for _, ev := range res.Eigenvalues {
		cmd.Printf(" %.4f", ev)
	}
	cmd.Println()

	cmd.Println("\nSite scores:")
	for i, row := range res.SiteScores {
		cmd.Printf("%-12s", res.Labels.Sites[i])
		for _, v := range row {
			cmd.Printf(" %8.3f", v)
		}
		cmd.Println()
	}

	cmd.Println("\nSpecies scores:")
	for j, row := range res.SpeciesScores {
		cmd.Printf("%-12s", res.Labels.Species[j])
		for _, v := range row {
			cmd.Printf(" %8.3f", v)
		}
		cmd.Println()
	}
}

func newConvertCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Convert between tabular abundance files and the condensed CEP format",
		Long: `Convert a CSV/Excel abundance table to the Cornell Ecology Programs
condensed format, or a .cep file back to CSV, based on file extensions.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]
			switch {
			case strings.EqualFold(filepath.Ext(out), ".cep"):
				return encodeCEP(in, out, title)
			case strings.EqualFold(filepath.Ext(in), ".cep"):
				return decodeCEP(in, out)
			default:
				return fmt.Errorf("one of input/output must have a .cep extension")
			}
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "title line for the CEP file")
	return cmd
}

func encodeCEP(in, out, title string) error {
	matrix, labels, err := tabular.NewReader(in).Read()
	if err != nil {
		return err
	}
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()
	return tabular.EncodeCEP(f, title, matrix.Values(), labels)
}

func decodeCEP(in, out string) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()

	values, labels, err := tabular.DecodeCEP(f)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("site")
	for _, sp := range labels.Species {
		b.WriteString("," + sp)
	}
	b.WriteString("\n")
	for i, row := range values {
		b.WriteString(labels.Sites[i])
		for _, v := range row {
			fmt.Fprintf(&b, ",%g", v)
		}
		b.WriteString("\n")
	}
	return os.WriteFile(out, []byte(b.String()), 0o644)
}

func newNamesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "names [name...]",
		Short: "Abbreviate species names to 8-character CEP identifiers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, abbr := range tabular.CEPNames(args) {
				cmd.Println(abbr)
			}
			return nil
		},
	}
}
