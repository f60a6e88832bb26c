package funnel

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/funnel-analytics/internal/model"
)

// printer formats counts with thousands separators for insight text.
var printer = message.NewPrinter(language.English)

// Benchmark bands for externally supplied engagement rates. Rough cold
// outreach industry figures, used only for phrasing.
const (
	goodOpenRate  = 40.0
	okOpenRate    = 20.0
	goodReplyRate = 5.0
	okReplyRate   = 2.0
)

// Insights generates the per-stage insight and recommendation text. Pure
// template fill over the funnel, its raw inputs, and the availability
// status: no randomness, no external calls, so identical inputs always
// produce identical output (golden-testable). Bundles come back in
// canonical stage order.
func Insights(f model.FunnelSnapshot, pipe model.PipelineSnapshot, stats model.CampaignStats, status model.AvailabilityStatus) []model.InsightBundle {
	return []model.InsightBundle{
		uploadedInsights(f, pipe),
		researchedInsights(f, pipe),
		sentInsights(f, pipe, status),
		openedInsights(f, stats, status),
		repliedInsights(f, stats, status),
	}
}

func uploadedInsights(f model.FunnelSnapshot, pipe model.PipelineSnapshot) model.InsightBundle {
	total := f.Stage(model.StageUploaded).Value

	insights := []string{
		printer.Sprintf("%d contacts uploaded into the research pipeline", total),
		printer.Sprintf("%d prospects are currently being researched", pipe.Processing),
	}
	if pipe.Failed > 0 {
		insights = append(insights, printer.Sprintf("%d prospects failed research and need attention", pipe.Failed))
	} else {
		insights = append(insights, "No research failures recorded")
	}

	var recs []string
	if total == 0 {
		recs = append(recs,
			"Upload a contact list to start filling the funnel",
			"Import prospects from your CRM or a CSV export",
		)
	} else {
		recs = append(recs, "Keep uploading contact lists to maintain funnel volume")
		if pipe.Failed > 0 {
			recs = append(recs, "Review failed prospects and re-queue them for research")
		} else {
			recs = append(recs, "Monitor research throughput as new batches arrive")
		}
	}

	return model.InsightBundle{StageKey: model.StageUploaded, Insights: insights, Recommendations: recs}
}

func researchedInsights(f model.FunnelSnapshot, pipe model.PipelineSnapshot) model.InsightBundle {
	stage := f.Stage(model.StageResearched)
	rate := stage.PercentOfPrevious

	insights := []string{
		printer.Sprintf("%d of %d prospects completed research (%.0f%%)", stage.Value, pipe.TotalUploaded, rate),
		printer.Sprintf("%d prospects still in progress", pipe.Processing),
	}
	switch {
	case rate >= 90:
		insights = append(insights, "Research completion is excellent")
	case rate >= 70:
		insights = append(insights, "Research completion is healthy")
	case pipe.TotalUploaded == 0:
		insights = append(insights, "No prospects to research yet")
	default:
		insights = append(insights, "Research completion is lagging behind uploads")
	}

	var recs []string
	if pipe.TotalUploaded == 0 {
		recs = append(recs,
			"Upload contacts so the research pipeline has work to do",
			"Verify the research pipeline is enabled for this workspace",
		)
	} else if rate < 70 {
		recs = append(recs,
			"Check the research queue for stuck or slow prospects",
			"Re-run research on failed prospects",
		)
	} else {
		recs = append(recs,
			"Research is keeping pace, no action needed",
			"Consider raising upload volume to use spare capacity",
		)
	}

	return model.InsightBundle{StageKey: model.StageResearched, Insights: insights, Recommendations: recs}
}

func sentInsights(f model.FunnelSnapshot, pipe model.PipelineSnapshot, status model.AvailabilityStatus) model.InsightBundle {
	stage := f.Stage(model.StageSent)

	insights := []string{
		printer.Sprintf("%d researched prospects pushed to the outreach campaign", stage.Value),
		printer.Sprintf("%.0f%% of completed research has been sent", stage.PercentOfPrevious),
	}
	switch remaining := pipe.Completed - stage.Value; {
	case pipe.Completed > 0 && stage.Value == 0:
		insights = append(insights, "Completed prospects are waiting to be sent")
	case remaining > 0:
		insights = append(insights, printer.Sprintf("%d completed prospects remain to be sent", remaining))
	default:
		insights = append(insights, "All completed research has been sent")
	}

	var recs []string
	if status == model.StatusNotConfigured {
		// Configuration is the blocker, not campaign performance.
		recs = append(recs,
			"Connect an outreach account and select a default campaign",
			"Verify the outreach API key in workspace settings",
		)
	} else {
		recs = append(recs, "Monitor campaign performance as sends accumulate")
		if pipe.Completed > 0 && stage.Value == 0 {
			recs = append(recs, "Push completed prospects to the active campaign")
		} else {
			recs = append(recs, "Keep send volume steady to protect sender reputation")
		}
	}

	return model.InsightBundle{StageKey: model.StageSent, Insights: insights, Recommendations: recs}
}

func openedInsights(f model.FunnelSnapshot, stats model.CampaignStats, status model.AvailabilityStatus) model.InsightBundle {
	stage := f.Stage(model.StageOpened)

	if status != model.StatusLive {
		return model.InsightBundle{
			StageKey: model.StageOpened,
			Insights: []string{
				"Engagement data is unavailable",
				unavailableReason(status),
				"Open metrics will populate once statistics load",
			},
			Recommendations: unavailableRecs(status),
		}
	}

	insights := []string{
		printer.Sprintf("%d emails opened out of %d sent", stage.Value, stats.EmailsSent),
		printer.Sprintf("Overall open rate is %.1f%%", stats.OverallOpenRate),
		printer.Sprintf("Click-to-open rate is %.0f%%", ClickToOpenRate(stats)),
	}
	switch {
	case stats.OverallOpenRate >= goodOpenRate:
		insights = append(insights, "Open rate is strong for cold outreach")
	case stats.OverallOpenRate >= okOpenRate:
		insights = append(insights, "Open rate is within the typical range")
	default:
		insights = append(insights, "Open rate is below the typical range")
	}

	var recs []string
	if stats.OverallOpenRate < okOpenRate {
		recs = append(recs,
			"Test new subject lines to lift open rates",
			"Check sender domain reputation and deliverability",
		)
	} else {
		recs = append(recs,
			"Current subject lines are working, keep iterating",
			"Segment by opener behavior for follow-up sequences",
		)
	}

	return model.InsightBundle{StageKey: model.StageOpened, Insights: insights, Recommendations: recs}
}

func repliedInsights(f model.FunnelSnapshot, stats model.CampaignStats, status model.AvailabilityStatus) model.InsightBundle {
	stage := f.Stage(model.StageReplied)

	if status != model.StatusLive {
		return model.InsightBundle{
			StageKey: model.StageReplied,
			Insights: []string{
				"Reply data is unavailable",
				unavailableReason(status),
				"Conversion metrics will populate once statistics load",
			},
			Recommendations: unavailableRecs(status),
		}
	}

	insights := []string{
		printer.Sprintf("%d replies received", stage.Value),
		printer.Sprintf("Overall reply rate is %.1f%%", stats.OverallReplyRate),
		printer.Sprintf("End-to-end conversion from upload to reply is %.2f%%", f.EndToEndConversionRate),
	}
	switch {
	case stats.OverallReplyRate >= goodReplyRate:
		insights = append(insights, "Reply rate is strong for cold outreach")
	case stats.OverallReplyRate >= okReplyRate:
		insights = append(insights, "Reply rate is within the typical range")
	default:
		insights = append(insights, "Reply rate is below the typical range")
	}

	var recs []string
	if stats.OverallReplyRate < okReplyRate {
		recs = append(recs,
			"Sharpen the call to action in the email body",
			"Tighten targeting so researched prospects better fit the offer",
		)
	} else {
		recs = append(recs,
			"Route replies to the sales team promptly",
			"Document what is working in the current sequence",
		)
	}

	return model.InsightBundle{StageKey: model.StageReplied, Insights: insights, Recommendations: recs}
}

func unavailableReason(status model.AvailabilityStatus) string {
	if status == model.StatusRateLimited {
		return "The outreach service is temporarily unavailable, try refreshing shortly"
	}
	return "No outreach account is configured for this workspace"
}

func unavailableRecs(status model.AvailabilityStatus) []string {
	if status == model.StatusRateLimited {
		return []string{
			"Retry the refresh in a few minutes",
			"Check the outreach service status page if this persists",
		}
	}
	return []string{
		"Connect an outreach account in workspace settings",
		"Select a default campaign to start tracking engagement",
	}
}
