package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/funnel-analytics/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS prospects (
	id                  TEXT PRIMARY KEY,
	email               TEXT NOT NULL,
	name                TEXT NOT NULL DEFAULT '',
	company             TEXT NOT NULL DEFAULT '',
	status              TEXT NOT NULL DEFAULT 'queued',
	sent_to_campaign_id TEXT,
	created_at          DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at          DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS outreach_accounts (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	is_default INTEGER NOT NULL DEFAULT 0,
	position   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS outreach_campaigns (
	id                   TEXT PRIMARY KEY,
	external_campaign_id TEXT NOT NULL DEFAULT '',
	name                 TEXT NOT NULL,
	is_default           INTEGER NOT NULL DEFAULT 0,
	account_id           TEXT NOT NULL REFERENCES outreach_accounts(id),
	position             INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_prospects_status ON prospects(status);
CREATE INDEX IF NOT EXISTS idx_prospects_sent ON prospects(sent_to_campaign_id);
CREATE INDEX IF NOT EXISTS idx_campaigns_account ON outreach_campaigns(account_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) InsertProspects(ctx context.Context, prospects []model.Prospect) error {
	if len(prospects) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin insert prospects")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO prospects (id, email, name, company, status, sent_to_campaign_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert prospect")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, pr := range prospects {
		id := pr.ID
		if id == "" {
			id = uuid.New().String()
		}
		status := pr.Status
		if status == "" {
			status = model.ProspectStatusQueued
		}
		if _, err := stmt.ExecContext(ctx, id, pr.Email, pr.Name, pr.Company, string(status), pr.SentToCampaignID, now, now); err != nil {
			return eris.Wrapf(err, "sqlite: insert prospect %s", pr.Email)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit insert prospects")
}

func (s *SQLiteStore) UpdateProspectStatus(ctx context.Context, prospectID string, status model.ProspectStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE prospects SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), prospectID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update prospect status %s", prospectID)
	}
	return checkRowsAffected(res, "prospect", prospectID)
}

func (s *SQLiteStore) MarkSentToCampaign(ctx context.Context, prospectID, campaignID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE prospects SET sent_to_campaign_id = ?, updated_at = ? WHERE id = ?`,
		campaignID, time.Now().UTC(), prospectID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark sent %s", prospectID)
	}
	return checkRowsAffected(res, "prospect", prospectID)
}

func (s *SQLiteStore) ListProspects(ctx context.Context, limit int) ([]model.Prospect, error) {
	if limit <= 0 {
		limit = 1000
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, name, company, status, sent_to_campaign_id, created_at, updated_at
		 FROM prospects ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list prospects")
	}
	defer rows.Close()

	var prospects []model.Prospect
	for rows.Next() {
		var pr model.Prospect
		var sent sql.NullString
		if err := rows.Scan(&pr.ID, &pr.Email, &pr.Name, &pr.Company, &pr.Status, &sent, &pr.CreatedAt, &pr.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan prospect")
		}
		if sent.Valid {
			pr.SentToCampaignID = &sent.String
		}
		prospects = append(prospects, pr)
	}
	return prospects, eris.Wrap(rows.Err(), "sqlite: list prospects iterate")
}

func (s *SQLiteStore) PipelineSummary(ctx context.Context) (*model.PipelineSnapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'complete' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'processing' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN sent_to_campaign_id IS NOT NULL AND sent_to_campaign_id != '' THEN 1 ELSE 0 END), 0)
		FROM prospects`,
	)

	var snap model.PipelineSnapshot
	if err := row.Scan(&snap.TotalUploaded, &snap.Completed, &snap.Processing, &snap.Failed, &snap.SentToCampaignCount); err != nil {
		return nil, eris.Wrap(err, "sqlite: pipeline summary")
	}
	return &snap, nil
}

func (s *SQLiteStore) UpsertAccount(ctx context.Context, account model.AccountRef) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outreach_accounts (id, name, is_default, position)
		 VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM outreach_accounts))
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, is_default = excluded.is_default`,
		account.ID, account.Name, boolToInt(account.IsDefault),
	)
	return eris.Wrapf(err, "sqlite: upsert account %s", account.ID)
}

func (s *SQLiteStore) UpsertCampaign(ctx context.Context, campaign model.CampaignRef) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outreach_campaigns (id, external_campaign_id, name, is_default, account_id, position)
		 VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM outreach_campaigns))
		 ON CONFLICT(id) DO UPDATE SET external_campaign_id = excluded.external_campaign_id,
		                               name = excluded.name,
		                               is_default = excluded.is_default,
		                               account_id = excluded.account_id`,
		campaign.ID, campaign.ExternalCampaignID, campaign.Name, boolToInt(campaign.IsDefault), campaign.AccountID,
	)
	return eris.Wrapf(err, "sqlite: upsert campaign %s", campaign.ID)
}

// ListAccounts returns accounts in insertion order. The resolver's
// first-in-list tie-break depends on this ordering staying stable.
func (s *SQLiteStore) ListAccounts(ctx context.Context) ([]model.AccountRef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, is_default FROM outreach_accounts ORDER BY position`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list accounts")
	}
	defer rows.Close()

	var accounts []model.AccountRef
	for rows.Next() {
		var a model.AccountRef
		var isDefault int
		if err := rows.Scan(&a.ID, &a.Name, &isDefault); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan account")
		}
		a.IsDefault = isDefault != 0
		accounts = append(accounts, a)
	}
	return accounts, eris.Wrap(rows.Err(), "sqlite: list accounts iterate")
}

func (s *SQLiteStore) ListCampaigns(ctx context.Context, accountID string) ([]model.CampaignRef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, external_campaign_id, name, is_default, account_id
		 FROM outreach_campaigns WHERE account_id = ? ORDER BY position`,
		accountID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list campaigns")
	}
	defer rows.Close()

	var campaigns []model.CampaignRef
	for rows.Next() {
		var c model.CampaignRef
		var isDefault int
		if err := rows.Scan(&c.ID, &c.ExternalCampaignID, &c.Name, &isDefault, &c.AccountID); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan campaign")
		}
		c.IsDefault = isDefault != 0
		campaigns = append(campaigns, c)
	}
	return campaigns, eris.Wrap(rows.Err(), "sqlite: list campaigns iterate")
}

func (s *SQLiteStore) SetDefaultAccount(ctx context.Context, accountID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin set default account")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE outreach_accounts SET is_default = 0`); err != nil {
		return eris.Wrap(err, "sqlite: clear default accounts")
	}
	res, err := tx.ExecContext(ctx, `UPDATE outreach_accounts SET is_default = 1 WHERE id = ?`, accountID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set default account %s", accountID)
	}
	if err := checkRowsAffected(res, "account", accountID); err != nil {
		return err
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit set default account")
}

func (s *SQLiteStore) SetDefaultCampaign(ctx context.Context, campaignID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin set default campaign")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE outreach_campaigns SET is_default = 0`); err != nil {
		return eris.Wrap(err, "sqlite: clear default campaigns")
	}
	res, err := tx.ExecContext(ctx, `UPDATE outreach_campaigns SET is_default = 1 WHERE id = ?`, campaignID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set default campaign %s", campaignID)
	}
	if err := checkRowsAffected(res, "campaign", campaignID); err != nil {
		return err
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit set default campaign")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
