package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/funnel-analytics/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses, satisfied by pgxmock
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool, used by tests.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS prospects (
	id                  TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	email               TEXT NOT NULL,
	name                TEXT NOT NULL DEFAULT '',
	company             TEXT NOT NULL DEFAULT '',
	status              TEXT NOT NULL DEFAULT 'queued',
	sent_to_campaign_id TEXT,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS outreach_accounts (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	is_default BOOLEAN NOT NULL DEFAULT false,
	position   SERIAL
);

CREATE TABLE IF NOT EXISTS outreach_campaigns (
	id                   TEXT PRIMARY KEY,
	external_campaign_id TEXT NOT NULL DEFAULT '',
	name                 TEXT NOT NULL,
	is_default           BOOLEAN NOT NULL DEFAULT false,
	account_id           TEXT NOT NULL REFERENCES outreach_accounts(id),
	position             SERIAL
);

CREATE INDEX IF NOT EXISTS idx_prospects_status ON prospects(status);
CREATE INDEX IF NOT EXISTS idx_prospects_sent ON prospects(sent_to_campaign_id);
CREATE INDEX IF NOT EXISTS idx_campaigns_account ON outreach_campaigns(account_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) InsertProspects(ctx context.Context, prospects []model.Prospect) error {
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
		_, err := s.pool.Exec(ctx,
			`INSERT INTO prospects (id, email, name, company, status, sent_to_campaign_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id, pr.Email, pr.Name, pr.Company, string(status), pr.SentToCampaignID, now, now,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert prospect %s", pr.Email)
		}
	}
	return nil
}

func (s *PostgresStore) UpdateProspectStatus(ctx context.Context, prospectID string, status model.ProspectStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE prospects SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), prospectID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update prospect status %s", prospectID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("prospect not found: %s", prospectID)
	}
	return nil
}

func (s *PostgresStore) MarkSentToCampaign(ctx context.Context, prospectID, campaignID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE prospects SET sent_to_campaign_id = $1, updated_at = $2 WHERE id = $3`,
		campaignID, time.Now().UTC(), prospectID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark sent %s", prospectID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("prospect not found: %s", prospectID)
	}
	return nil
}

func (s *PostgresStore) ListProspects(ctx context.Context, limit int) ([]model.Prospect, error) {
	if limit <= 0 {
		limit = 1000
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, email, name, company, status, sent_to_campaign_id, created_at, updated_at
		 FROM prospects ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list prospects")
	}
	defer rows.Close()

	var prospects []model.Prospect
	for rows.Next() {
		var pr model.Prospect
		if err := rows.Scan(&pr.ID, &pr.Email, &pr.Name, &pr.Company, &pr.Status, &pr.SentToCampaignID, &pr.CreatedAt, &pr.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan prospect")
		}
		prospects = append(prospects, pr)
	}
	return prospects, eris.Wrap(rows.Err(), "postgres: list prospects iterate")
}

func (s *PostgresStore) PipelineSummary(ctx context.Context) (*model.PipelineSnapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'complete'),
		       COUNT(*) FILTER (WHERE status = 'processing'),
		       COUNT(*) FILTER (WHERE status = 'failed'),
		       COUNT(*) FILTER (WHERE sent_to_campaign_id IS NOT NULL AND sent_to_campaign_id != '')
		FROM prospects`,
	)

	var snap model.PipelineSnapshot
	if err := row.Scan(&snap.TotalUploaded, &snap.Completed, &snap.Processing, &snap.Failed, &snap.SentToCampaignCount); err != nil {
		return nil, eris.Wrap(err, "postgres: pipeline summary")
	}
	return &snap, nil
}

func (s *PostgresStore) UpsertAccount(ctx context.Context, account model.AccountRef) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO outreach_accounts (id, name, is_default) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, is_default = EXCLUDED.is_default`,
		account.ID, account.Name, account.IsDefault,
	)
	return eris.Wrapf(err, "postgres: upsert account %s", account.ID)
}

func (s *PostgresStore) UpsertCampaign(ctx context.Context, campaign model.CampaignRef) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO outreach_campaigns (id, external_campaign_id, name, is_default, account_id)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET external_campaign_id = EXCLUDED.external_campaign_id,
		                                name = EXCLUDED.name,
		                                is_default = EXCLUDED.is_default,
		                                account_id = EXCLUDED.account_id`,
		campaign.ID, campaign.ExternalCampaignID, campaign.Name, campaign.IsDefault, campaign.AccountID,
	)
	return eris.Wrapf(err, "postgres: upsert campaign %s", campaign.ID)
}

// ListAccounts returns accounts in insertion order. The resolver's
// first-in-list tie-break depends on this ordering staying stable.
func (s *PostgresStore) ListAccounts(ctx context.Context) ([]model.AccountRef, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, is_default FROM outreach_accounts ORDER BY position`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list accounts")
	}
	defer rows.Close()

	var accounts []model.AccountRef
	for rows.Next() {
		var a model.AccountRef
		if err := rows.Scan(&a.ID, &a.Name, &a.IsDefault); err != nil {
			return nil, eris.Wrap(err, "postgres: scan account")
		}
		accounts = append(accounts, a)
	}
	return accounts, eris.Wrap(rows.Err(), "postgres: list accounts iterate")
}

func (s *PostgresStore) ListCampaigns(ctx context.Context, accountID string) ([]model.CampaignRef, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, external_campaign_id, name, is_default, account_id
		 FROM outreach_campaigns WHERE account_id = $1 ORDER BY position`,
		accountID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list campaigns")
	}
	defer rows.Close()

	var campaigns []model.CampaignRef
	for rows.Next() {
		var c model.CampaignRef
		if err := rows.Scan(&c.ID, &c.ExternalCampaignID, &c.Name, &c.IsDefault, &c.AccountID); err != nil {
			return nil, eris.Wrap(err, "postgres: scan campaign")
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, eris.Wrap(rows.Err(), "postgres: list campaigns iterate")
}

func (s *PostgresStore) SetDefaultAccount(ctx context.Context, accountID string) error {
	if _, err := s.pool.Exec(ctx, `UPDATE outreach_accounts SET is_default = false`); err != nil {
		return eris.Wrap(err, "postgres: clear default accounts")
	}
	tag, err := s.pool.Exec(ctx, `UPDATE outreach_accounts SET is_default = true WHERE id = $1`, accountID)
	if err != nil {
		return eris.Wrapf(err, "postgres: set default account %s", accountID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("account not found: %s", accountID)
	}
	return nil
}

func (s *PostgresStore) SetDefaultCampaign(ctx context.Context, campaignID string) error {
	if _, err := s.pool.Exec(ctx, `UPDATE outreach_campaigns SET is_default = false`); err != nil {
		return eris.Wrap(err, "postgres: clear default campaigns")
	}
	tag, err := s.pool.Exec(ctx, `UPDATE outreach_campaigns SET is_default = true WHERE id = $1`, campaignID)
	if err != nil {
		return eris.Wrapf(err, "postgres: set default campaign %s", campaignID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("campaign not found: %s", campaignID)
	}
	return nil
}

// IsNotFound reports whether the error is the store's row-missing error.
func IsNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "not found")
}
