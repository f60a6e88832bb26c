package model

// AccountRef identifies a configured outreach service account.
type AccountRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

// CampaignRef identifies a campaign belonging to exactly one account.
// ExternalCampaignID is the outreach service's own identifier.
type CampaignRef struct {
	ID                 string `json:"id"`
	ExternalCampaignID string `json:"external_campaign_id"`
	Name               string `json:"name"`
	IsDefault          bool   `json:"is_default"`
	AccountID          string `json:"account_id"`
}

// ActiveSelection is the resolved account/campaign pair the dashboard is
// currently reporting on. Either side may be nil: legacy single-key mode
// has a campaign but no account, an unconfigured workspace has neither.
// Built fresh on every resolution, never persisted.
type ActiveSelection struct {
	Account  *AccountRef  `json:"account"`
	Campaign *CampaignRef `json:"campaign"`
}

// LegacyConfig is the pre-accounts configuration shape: a single API key
// and optionally a single campaign id.
type LegacyConfig struct {
	HasAPIKey  bool   `json:"has_api_key"`
	CampaignID string `json:"campaign_id,omitempty"`
}

// CampaignConfig bundles the configured accounts and the campaigns of the
// account the resolver will select, as fetched from the collaborator that
// owns configuration storage.
type CampaignConfig struct {
	Accounts  []AccountRef  `json:"accounts"`
	Campaigns []CampaignRef `json:"campaigns"`
}

// DataLevel indicates the granularity of externally supplied statistics.
// Passed through unmodified from the outreach service.
type DataLevel string

const (
	DataLevelCampaign   DataLevel = "campaign-specific"
	DataLevelAggregated DataLevel = "aggregated"
	DataLevelBasic      DataLevel = "basic"
)

// CampaignStats is a point-in-time snapshot of engagement statistics from
// the external outreach service. The three rates are supplied by the
// service, not derived from the counts here: the service's denominators
// can include contacts outside the uploaded set, so the two can disagree
// and the supplied rates win for display.
type CampaignStats struct {
	EmailsSent       int       `json:"emails_sent"`
	EmailsOpened     int       `json:"emails_opened"`
	EmailsClicked    int       `json:"emails_clicked"`
	EmailsReplied    int       `json:"emails_replied"`
	OverallOpenRate  float64   `json:"overall_open_rate"`
	OverallClickRate float64   `json:"overall_click_rate"`
	OverallReplyRate float64   `json:"overall_reply_rate"`
	DataLevel        DataLevel `json:"data_level,omitempty"`
}

// FetchOutcome is the tri-state result of a campaign-statistics fetch.
type FetchOutcome string

const (
	FetchSuccess FetchOutcome = "success"
	FetchFailure FetchOutcome = "failure"
	FetchPending FetchOutcome = "pending"
)
