// Package store persists prospects and outreach configuration behind a
// backend-agnostic interface with Postgres and SQLite implementations.
package store

import (
	"context"

	"github.com/sells-group/funnel-analytics/internal/model"
)

// Store defines the persistence interface for the funnel dashboard.
type Store interface {
	// Prospects
	InsertProspects(ctx context.Context, prospects []model.Prospect) error
	UpdateProspectStatus(ctx context.Context, prospectID string, status model.ProspectStatus) error
	MarkSentToCampaign(ctx context.Context, prospectID, campaignID string) error
	ListProspects(ctx context.Context, limit int) ([]model.Prospect, error)
	// PipelineSummary derives the status counts and the sent counter in a
	// single pass; callers never walk the full prospect list for totals.
	PipelineSummary(ctx context.Context) (*model.PipelineSnapshot, error)

	// Outreach configuration (the default flags live here, not in the engine)
	UpsertAccount(ctx context.Context, account model.AccountRef) error
	UpsertCampaign(ctx context.Context, campaign model.CampaignRef) error
	ListAccounts(ctx context.Context) ([]model.AccountRef, error)
	ListCampaigns(ctx context.Context, accountID string) ([]model.CampaignRef, error)
	SetDefaultAccount(ctx context.Context, accountID string) error
	SetDefaultCampaign(ctx context.Context, campaignID string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
