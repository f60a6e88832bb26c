package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/funnel-analytics/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "funnel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLite_InsertAndSummarize(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	campaign := "c1"
	require.NoError(t, s.InsertProspects(ctx, []model.Prospect{
		{Email: "a@example.com", Status: model.ProspectStatusComplete, SentToCampaignID: &campaign},
		{Email: "b@example.com", Status: model.ProspectStatusComplete},
		{Email: "c@example.com", Status: model.ProspectStatusProcessing},
		{Email: "d@example.com", Status: model.ProspectStatusFailed},
		{Email: "e@example.com"},
	}))

	snap, err := s.PipelineSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, &model.PipelineSnapshot{
		TotalUploaded:       5,
		Completed:           2,
		Processing:          1,
		Failed:              1,
		SentToCampaignCount: 1,
	}, snap)
}

func TestSQLite_EmptySummary(t *testing.T) {
	s := newTestStore(t)

	snap, err := s.PipelineSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &model.PipelineSnapshot{}, snap)
}

func TestSQLite_StatusTransitionsAndMarkSent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertProspects(ctx, []model.Prospect{
		{ID: "p1", Email: "a@example.com"},
	}))

	require.NoError(t, s.UpdateProspectStatus(ctx, "p1", model.ProspectStatusComplete))
	require.NoError(t, s.MarkSentToCampaign(ctx, "p1", "c9"))

	prospects, err := s.ListProspects(ctx, 10)
	require.NoError(t, err)
	require.Len(t, prospects, 1)
	assert.Equal(t, model.ProspectStatusComplete, prospects[0].Status)
	require.NotNil(t, prospects[0].SentToCampaignID)
	assert.Equal(t, "c9", *prospects[0].SentToCampaignID)
}

func TestSQLite_UpdateMissingProspect(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateProspectStatus(context.Background(), "nope", model.ProspectStatusComplete)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestSQLite_InsertGeneratesIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertProspects(ctx, []model.Prospect{
		{Email: "a@example.com"},
		{Email: "b@example.com"},
	}))

	prospects, err := s.ListProspects(ctx, 10)
	require.NoError(t, err)
	require.Len(t, prospects, 2)
	assert.NotEmpty(t, prospects[0].ID)
	assert.NotEmpty(t, prospects[1].ID)
	assert.NotEqual(t, prospects[0].ID, prospects[1].ID)
	assert.Equal(t, model.ProspectStatusQueued, prospects[0].Status)
}

func TestSQLite_AccountsPreserveInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertAccount(ctx, model.AccountRef{ID: "a1", Name: "First"}))
	require.NoError(t, s.UpsertAccount(ctx, model.AccountRef{ID: "a2", Name: "Second"}))
	require.NoError(t, s.UpsertAccount(ctx, model.AccountRef{ID: "a3", Name: "Third"}))

	accounts, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "a1", accounts[0].ID)
	assert.Equal(t, "a2", accounts[1].ID)
	assert.Equal(t, "a3", accounts[2].ID)
}

func TestSQLite_UpsertAccountKeepsPosition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertAccount(ctx, model.AccountRef{ID: "a1", Name: "First"}))
	require.NoError(t, s.UpsertAccount(ctx, model.AccountRef{ID: "a2", Name: "Second"}))
	require.NoError(t, s.UpsertAccount(ctx, model.AccountRef{ID: "a1", Name: "Renamed"}))

	accounts, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "a1", accounts[0].ID)
	assert.Equal(t, "Renamed", accounts[0].Name)
}

func TestSQLite_SetDefaultAccountIsExclusive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertAccount(ctx, model.AccountRef{ID: "a1", Name: "First", IsDefault: true}))
	require.NoError(t, s.UpsertAccount(ctx, model.AccountRef{ID: "a2", Name: "Second"}))

	require.NoError(t, s.SetDefaultAccount(ctx, "a2"))

	accounts, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	assert.False(t, accounts[0].IsDefault)
	assert.True(t, accounts[1].IsDefault)
}

func TestSQLite_SetDefaultMissingAccount(t *testing.T) {
	s := newTestStore(t)
	err := s.SetDefaultAccount(context.Background(), "nope")
	require.Error(t, err)
}

func TestSQLite_CampaignsScopedToAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertAccount(ctx, model.AccountRef{ID: "a1", Name: "First"}))
	require.NoError(t, s.UpsertAccount(ctx, model.AccountRef{ID: "a2", Name: "Second"}))
	require.NoError(t, s.UpsertCampaign(ctx, model.CampaignRef{ID: "c1", Name: "One", AccountID: "a1", ExternalCampaignID: "ext-1"}))
	require.NoError(t, s.UpsertCampaign(ctx, model.CampaignRef{ID: "c2", Name: "Two", AccountID: "a2"}))

	campaigns, err := s.ListCampaigns(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, "c1", campaigns[0].ID)
	assert.Equal(t, "ext-1", campaigns[0].ExternalCampaignID)
}

func TestSQLite_SetDefaultCampaign(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertAccount(ctx, model.AccountRef{ID: "a1", Name: "First"}))
	require.NoError(t, s.UpsertCampaign(ctx, model.CampaignRef{ID: "c1", Name: "One", AccountID: "a1"}))
	require.NoError(t, s.UpsertCampaign(ctx, model.CampaignRef{ID: "c2", Name: "Two", AccountID: "a1"}))

	require.NoError(t, s.SetDefaultCampaign(ctx, "c2"))

	campaigns, err := s.ListCampaigns(ctx, "a1")
	require.NoError(t, err)
	assert.False(t, campaigns[0].IsDefault)
	assert.True(t, campaigns[1].IsDefault)
}
