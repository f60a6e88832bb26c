package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/funnel-analytics/internal/ingest"
)

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import prospects from an XLSX upload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("funnel"); err != nil {
			return err
		}

		prospects, err := ingest.ReadProspectsXLSX(args[0])
		if err != nil {
			return err
		}
		if len(prospects) == 0 {
			return eris.Errorf("no prospects found in %s", args[0])
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		if err := st.InsertProspects(ctx, prospects); err != nil {
			return err
		}

		zap.L().Info("prospects imported",
			zap.String("file", args[0]),
			zap.Int("count", len(prospects)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
