// Package ingest normalizes raw collaborator payloads into engine
// snapshots. All field-name aliasing lives here, in explicit ordered
// resolution tables evaluated once at the boundary; nothing downstream
// ever probes alternate spellings.
package ingest

import (
	"math"

	"github.com/sells-group/funnel-analytics/internal/model"
)

// statAliases maps each logical statistic to the payload keys that may
// carry it, in resolution order. The outreach service has shipped several
// spellings over time; first present key wins.
var statAliases = map[string][]string{
	"emails_sent":    {"emails_sent", "emailsSent", "sent_count", "total_sent"},
	"emails_opened":  {"emails_opened", "emailsOpened", "open_count", "unique_opens"},
	"emails_clicked": {"emails_clicked", "emailsClicked", "click_count", "unique_clicks"},
	"emails_replied": {"emails_replied", "emailsReplied", "reply_count", "replies"},
	"open_rate":      {"overall_open_rate", "overallOpenRate", "open_rate"},
	"click_rate":     {"overall_click_rate", "overallClickRate", "click_rate"},
	"reply_rate":     {"overall_reply_rate", "overallReplyRate", "reply_rate"},
	"data_level":     {"data_level", "dataLevel", "level"},
}

// ResolveStatistics builds a CampaignStats snapshot from a raw statistics
// payload. Missing fields default to zero, counts clamp at zero, rates
// clamp into [0, 100]; a nil payload yields the zero snapshot. Never
// returns an error: partial upstream data is expected, not exceptional.
func ResolveStatistics(raw map[string]any) model.CampaignStats {
	return model.CampaignStats{
		EmailsSent:       resolveCount(raw, "emails_sent"),
		EmailsOpened:     resolveCount(raw, "emails_opened"),
		EmailsClicked:    resolveCount(raw, "emails_clicked"),
		EmailsReplied:    resolveCount(raw, "emails_replied"),
		OverallOpenRate:  resolveRate(raw, "open_rate"),
		OverallClickRate: resolveRate(raw, "click_rate"),
		OverallReplyRate: resolveRate(raw, "reply_rate"),
		DataLevel:        resolveDataLevel(raw),
	}
}

func resolveCount(raw map[string]any, logical string) int {
	v, ok := resolve(raw, logical)
	if !ok {
		return 0
	}
	n, ok := toInt(v)
	if !ok || n < 0 {
		return 0
	}
	return n
}

func resolveRate(raw map[string]any, logical string) float64 {
	v, ok := resolve(raw, logical)
	if !ok {
		return 0
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return f
}

func resolveDataLevel(raw map[string]any) model.DataLevel {
	v, ok := resolve(raw, "data_level")
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	switch model.DataLevel(s) {
	case model.DataLevelCampaign, model.DataLevelAggregated, model.DataLevelBasic:
		return model.DataLevel(s)
	}
	return ""
}

// resolve probes the alias list for a logical field and returns the first
// value present in the payload.
func resolve(raw map[string]any, logical string) (any, bool) {
	for _, key := range statAliases[logical] {
		if v, ok := raw[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64: // encoding/json default for numbers
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
