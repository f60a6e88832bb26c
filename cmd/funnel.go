package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/funnel-analytics/internal/orchestrator"
)

var funnelShowInsights bool

var funnelCmd = &cobra.Command{
	Use:   "funnel",
	Short: "Print the current conversion funnel",
	Long: `Computes the five-stage conversion funnel from the prospect pipeline
and outreach engagement data and prints it.

Examples:
  # Funnel table only
  funnel-analytics funnel

  # Include per-stage insights and recommendations
  funnel-analytics funnel --insights`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "funnel")
		if err != nil {
			return err
		}
		defer env.Close()

		renderFunnel(os.Stdout, env.Orch.View(), funnelShowInsights)
		return nil
	},
}

func init() {
	funnelCmd.Flags().BoolVar(&funnelShowInsights, "insights", false, "print per-stage insights")
	rootCmd.AddCommand(funnelCmd)
}

func renderFunnel(w io.Writer, view orchestrator.View, withInsights bool) {
	fmt.Fprintf(w, "Data status: %s\n", view.Status)
	fmt.Fprintf(w, "Computed at: %s\n\n", view.ComputedAt.Format("2006-01-02 15:04:05 MST"))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tCOUNT\t% OF PREVIOUS")
	for _, stage := range view.Funnel.Stages {
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", stage.Label, stage.Value, stage.PercentOfPrevious)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nEnd-to-end conversion: %.2f%%\n", view.Funnel.EndToEndConversionRate)

	if !withInsights {
		return
	}

	for _, bundle := range view.Insights {
		fmt.Fprintf(w, "\n[%s]\n", bundle.StageKey)
		for _, text := range bundle.Insights {
			fmt.Fprintf(w, "  - %s\n", text)
		}
		for _, text := range bundle.Recommendations {
			fmt.Fprintf(w, "  > %s\n", text)
		}
	}
}
