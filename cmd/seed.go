package main

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/funnel-analytics/internal/model"
	"github.com/sells-group/funnel-analytics/internal/source"
)

var seedDemo bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the store with outreach configuration",
	Long: `Pulls accounts and campaigns from the outreach service into the local
store so the funnel resolver sees current configuration.

With --demo, generates local demo data instead and needs no API key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if seedDemo {
			return seedDemoData(ctx)
		}

		if err := cfg.Validate("seed"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		src := source.NewLive(st, initOutreachClient(), legacyFromConfig())
		return src.SyncRemoteConfig(ctx)
	},
}

// seedDemoData fills the store with a small realistic data set.
func seedDemoData(ctx context.Context) error {
	if err := cfg.Validate("funnel"); err != nil {
		return err
	}

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return eris.Wrap(err, "migrate store")
	}

	if err := st.UpsertAccount(ctx, model.AccountRef{ID: "demo-account", Name: "Demo Workspace", IsDefault: true}); err != nil {
		return err
	}
	if err := st.UpsertCampaign(ctx, model.CampaignRef{
		ID:                 "demo-campaign",
		ExternalCampaignID: "ext-demo",
		Name:               "Q3 Prospect Outreach",
		IsDefault:          true,
		AccountID:          "demo-account",
	}); err != nil {
		return err
	}

	prospects := demoProspects(40)
	if err := st.InsertProspects(ctx, prospects); err != nil {
		return err
	}

	zap.L().Info("demo data seeded", zap.Int("prospects", len(prospects)))
	return nil
}

// demoProspects generates n prospects spread across the pipeline stages:
// most complete, some still processing, a few failed, and a portion of
// the completed ones already pushed to the demo campaign.
func demoProspects(n int) []model.Prospect {
	campaign := "demo-campaign"
	prospects := make([]model.Prospect, 0, n)
	for i := 0; i < n; i++ {
		p := model.Prospect{
			Email:   fmt.Sprintf("prospect%02d@example.com", i+1),
			Name:    fmt.Sprintf("Prospect %02d", i+1),
			Company: fmt.Sprintf("Company %02d", i+1),
		}
		switch {
		case i%10 == 9:
			p.Status = model.ProspectStatusFailed
		case i%10 >= 7:
			p.Status = model.ProspectStatusProcessing
		default:
			p.Status = model.ProspectStatusComplete
			if i%2 == 0 {
				p.SentToCampaignID = &campaign
			}
		}
		prospects = append(prospects, p)
	}
	return prospects
}

func init() {
	seedCmd.Flags().BoolVar(&seedDemo, "demo", false, "seed generated demo data instead of syncing")
	rootCmd.AddCommand(seedCmd)
}
