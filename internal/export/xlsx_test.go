package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/funnel-analytics/internal/funnel"
	"github.com/sells-group/funnel-analytics/internal/model"
	"github.com/sells-group/funnel-analytics/internal/orchestrator"
)

func testView() orchestrator.View {
	pipe := model.PipelineSnapshot{
		TotalUploaded:       1200,
		Completed:           900,
		Processing:          150,
		Failed:              100,
		SentToCampaignCount: 250,
	}
	stats := model.CampaignStats{
		EmailsSent:       600,
		EmailsOpened:     240,
		EmailsReplied:    30,
		OverallOpenRate:  40,
		OverallReplyRate: 5,
	}
	f := funnel.Aggregate(pipe, stats, model.StatusLive)
	return orchestrator.View{
		Funnel:     f,
		Insights:   funnel.Insights(f, pipe, stats, model.StatusLive),
		Status:     model.StatusLive,
		ComputedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testView()))
	assert.NotZero(t, buf.Len())
}

func TestSaveXLSX_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funnel.xlsx")
	view := testView()
	require.NoError(t, SaveXLSX(path, view))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)

	funnelSheet, ok := f.Sheet["Funnel"]
	require.True(t, ok)

	// meta row, spacer, header, five stages, spacer, total
	require.GreaterOrEqual(t, len(funnelSheet.Rows), 10)
	assert.Equal(t, "Data status", funnelSheet.Rows[0].Cells[2].String())
	assert.Equal(t, "live", funnelSheet.Rows[0].Cells[3].String())
	assert.Equal(t, "Stage", funnelSheet.Rows[2].Cells[0].String())

	uploaded := funnelSheet.Rows[3]
	assert.Equal(t, "Contacts Uploaded", uploaded.Cells[0].String())
	n, err := uploaded.Cells[1].Int()
	require.NoError(t, err)
	assert.Equal(t, 1200, n)

	total := funnelSheet.Rows[9]
	assert.Equal(t, "End-to-end conversion %", total.Cells[0].String())
	rate, err := total.Cells[1].Float()
	require.NoError(t, err)
	assert.InDelta(t, 2.5, rate, 0.001)
}

func TestSaveXLSX_InsightsSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funnel.xlsx")
	require.NoError(t, SaveXLSX(path, testView()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet["Insights"]
	require.True(t, ok)

	// header plus at least three insights and two recommendations per stage
	assert.GreaterOrEqual(t, len(sheet.Rows), 1+5*5)
	assert.Equal(t, "uploaded", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "insight", sheet.Rows[1].Cells[1].String())
	assert.NotEmpty(t, sheet.Rows[1].Cells[2].String())
}
