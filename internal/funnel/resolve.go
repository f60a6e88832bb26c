// Package funnel implements the pipeline funnel analytics engine: active
// configuration resolution, data availability classification, five-stage
// funnel aggregation, and per-stage insight generation. Everything here is
// a pure function over already-fetched snapshots; nothing performs I/O.
package funnel

import "github.com/sells-group/funnel-analytics/internal/model"

// SelectAccount picks the active account from the configured list: the
// explicitly default-flagged account wins, otherwise the first in list
// order. Returns nil for an empty list. Order sensitivity is intentional;
// upstream guarantees a stable ordering.
func SelectAccount(accounts []model.AccountRef) *model.AccountRef {
	for i := range accounts {
		if accounts[i].IsDefault {
			a := accounts[i]
			return &a
		}
	}
	if len(accounts) > 0 {
		a := accounts[0]
		return &a
	}
	return nil
}

// SelectCampaign picks the active campaign with the same tie-break as
// SelectAccount: default flag wins, else first in list order.
func SelectCampaign(campaigns []model.CampaignRef) *model.CampaignRef {
	for i := range campaigns {
		if campaigns[i].IsDefault {
			c := campaigns[i]
			return &c
		}
	}
	if len(campaigns) > 0 {
		c := campaigns[0]
		return &c
	}
	return nil
}

// Resolve determines the active account/campaign selection. The campaign
// list is expected to already be scoped to the account SelectAccount will
// pick. With no accounts configured, a legacy API key degrades to a
// synthetic campaign-only selection rather than an error. Absence of any
// configuration yields {nil, nil}; this function never fails.
func Resolve(accounts []model.AccountRef, campaigns []model.CampaignRef, legacy model.LegacyConfig) model.ActiveSelection {
	if len(accounts) > 0 {
		return model.ActiveSelection{
			Account:  SelectAccount(accounts),
			Campaign: SelectCampaign(campaigns),
		}
	}

	if legacy.HasAPIKey && legacy.CampaignID != "" {
		return model.ActiveSelection{
			Campaign: &model.CampaignRef{
				ID:                 "legacy",
				ExternalCampaignID: legacy.CampaignID,
				Name:               "Legacy campaign",
			},
		}
	}

	return model.ActiveSelection{}
}
