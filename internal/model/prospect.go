package model

import "time"

// ProspectStatus represents the current state of a prospect in the
// research pipeline.
type ProspectStatus string

const (
	ProspectStatusQueued     ProspectStatus = "queued"
	ProspectStatusProcessing ProspectStatus = "processing"
	ProspectStatusComplete   ProspectStatus = "complete"
	ProspectStatusFailed     ProspectStatus = "failed"
)

// Prospect is a single uploaded contact moving through the research
// pipeline. SentToCampaignID is set once the prospect has been pushed to
// the external outreach service.
type Prospect struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	Name             string         `json:"name,omitempty"`
	Company          string         `json:"company,omitempty"`
	Status           ProspectStatus `json:"status"`
	SentToCampaignID *string        `json:"sent_to_campaign_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// PipelineSnapshot is a point-in-time summary of the internal prospect
// pipeline. The status counts need not sum to TotalUploaded: prospects can
// sit in states the summary does not break out. No field is ever negative;
// ingestion clamps anything suspect to zero.
type PipelineSnapshot struct {
	TotalUploaded       int `json:"total_uploaded"`
	Completed           int `json:"completed"`
	Processing          int `json:"processing"`
	Failed              int `json:"failed"`
	SentToCampaignCount int `json:"sent_to_campaign_count"`
}
