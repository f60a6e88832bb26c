package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/funnel-analytics/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the funnel and insights to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "export")
		if err != nil {
			return err
		}
		defer env.Close()

		view := env.Orch.View()
		if err := export.SaveXLSX(exportOut, view); err != nil {
			return err
		}

		zap.L().Info("funnel exported",
			zap.String("path", exportOut),
			zap.String("status", string(view.Status)))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "funnel.xlsx", "output file path")
	rootCmd.AddCommand(exportCmd)
}
