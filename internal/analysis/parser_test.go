package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredmail-be/internal/models"
)

func testMessages(n int) []models.NormalizedMessage {
	msgs := make([]models.NormalizedMessage, 0, n)
	for i := 0; i < n; i++ {
		msgs = append(msgs, models.NormalizedMessage{
			ID:       fmt.Sprintf("m%d", i+1),
			ThreadID: fmt.Sprintf("t%d", i+1),
			Snippet:  fmt.Sprintf("snippet %d", i+1),
			Headers: map[string]string{
				"from":    fmt.Sprintf("sender%d@example.com", i+1),
				"subject": fmt.Sprintf("Subject %d", i+1),
			},
		})
	}
	return msgs
}

func TestParseReportMalformedJSON(t *testing.T) {
	msgs := testMessages(3)
	settings := models.DefaultScanSettings()

	report := ParseReport(`{"summary": "ok"`, msgs, settings)
	require.NotNil(t, report)

	assert.Empty(t, report.RepliesToGenerate)
	assert.NotNil(t, report.RepliesToGenerate)
	assert.Len(t, report.EmailSummaries, len(msgs))
	assert.Len(t, report.EmailsAnalysis, len(msgs))
	assert.Equal(t, 3, report.TotalEmails)
	assert.Contains(t, report.OverallInsights, "format issue")

	for i, s := range report.EmailSummaries {
		assert.Equal(t, i+1, s.EmailNumber)
		assert.Equal(t, "medium", s.Importance)
		assert.Equal(t, "normal", s.Urgency)
	}
}

func TestParseReportFillsDefaults(t *testing.T) {
	msgs := testMessages(2)
	settings := models.DefaultScanSettings()

	// Valid JSON missing overallInsights and most optional fields.
	report := ParseReport(`{"summary": "All quiet"}`, msgs, settings)

	assert.Equal(t, "All quiet", report.Summary)
	assert.Equal(t, "AI analysis completed with insights", report.OverallInsights)
	assert.Equal(t, "No replies need to be generated", report.ReplySummary)
	assert.NotNil(t, report.PriorityActions)
	assert.NotNil(t, report.TimeSensitiveItems)
	assert.Len(t, report.EmailSummaries, 2)
	assert.Equal(t, "sender1@example.com", report.EmailSummaries[0].From)
	assert.Equal(t, "2 emails reviewed", report.ProductivityStats.EmailsNeedingAction)
}

func TestParseReportStripsCodeFence(t *testing.T) {
	msgs := testMessages(1)
	raw := "```json\n{\"summary\": \"fenced\", \"overallInsights\": \"insight\"}\n```"

	report := ParseReport(raw, msgs, models.DefaultScanSettings())
	assert.Equal(t, "fenced", report.Summary)
	assert.Equal(t, "insight", report.OverallInsights)
}

func TestParseReportKeepsModelContent(t *testing.T) {
	msgs := testMessages(1)
	raw := `{
		"summary": "One reply needed",
		"emailsAnalysis": [{"emailNumber": 1, "from": "a@example.com", "subject": "S", "summary": "sum", "needsReply": true}],
		"repliesToGenerate": [{"emailNumber": 1, "to": "a@example.com", "subject": "Re: S", "content": "On it.", "priority": "high"}]
	}`

	report := ParseReport(raw, msgs, models.DefaultScanSettings())
	require.Len(t, report.RepliesToGenerate, 1)
	assert.Equal(t, "Re: S", report.RepliesToGenerate[0].Subject)
	require.Len(t, report.EmailsAnalysis, 1)
	assert.True(t, report.EmailsAnalysis[0].NeedsReply)
	// Per-entry defaults filled for fields the model omitted.
	assert.Equal(t, "medium", report.EmailsAnalysis[0].Importance)
	assert.Equal(t, "normal", report.EmailsAnalysis[0].Urgency)
}

func TestParseReportSummaryShapeInAllInOneMode(t *testing.T) {
	msgs := testMessages(1)
	settings := models.DefaultScanSettings()
	settings.AIMode = models.AIModeAllInOne

	raw := `{"emailSummaries": [{"emailNumber": 1, "from": "a@example.com", "subject": "S", "summary": "sum"}]}`
	report := ParseReport(raw, msgs, settings)

	require.Len(t, report.EmailsAnalysis, 1)
	assert.Equal(t, "a@example.com", report.EmailsAnalysis[0].From)
}

func TestEstimateCostScalesWithProcessingLevel(t *testing.T) {
	assert.Equal(t, "0.04", EstimateCost(10, models.LevelSummary))
	assert.Equal(t, "0.05", EstimateCost(10, models.LevelDetailed)) // 0.04 * 1.3
	assert.Equal(t, "0.06", EstimateCost(10, models.LevelAction))   // 0.04 * 1.6
	assert.Equal(t, "0.04", EstimateCost(10, "unknown"))
	assert.Equal(t, "0.00", EstimateCost(0, models.LevelAction))
}
