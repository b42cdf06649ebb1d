package analysis

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"alfredmail-be/internal/models"
)

// rawReport mirrors the JSON shape the completion service is steered
// toward. Absent fields stay zero-valued and get defaults later.
type rawReport struct {
	Summary            string                      `json:"summary"`
	TotalEmails        int                         `json:"totalEmails"`
	EmailSummaries     []models.EmailSummary       `json:"emailSummaries"`
	EmailsAnalysis     []models.EmailAnalysis      `json:"emailsAnalysis"`
	RepliesToGenerate  []models.ReplySuggestion    `json:"repliesToGenerate"`
	ReplySummary       string                      `json:"replySummary"`
	OverallInsights    string                      `json:"overallInsights"`
	PriorityActions    []string                    `json:"priorityActions"`
	TimeSensitiveItems []string                    `json:"timeSensitiveItems"`
	Productivity       *models.ProductivityMetrics `json:"productivityMetrics"`
}

// ParseReport turns the completion service's raw text into a fully
// populated report. Malformed model output is a normal, expected
// condition: this routine never fails, it degrades to a fallback
// report synthesized from the scanned messages.
func ParseReport(raw string, msgs []models.NormalizedMessage, settings models.ScanSettings) *models.AnalysisReport {
	cleaned := stripCodeFence(raw)

	var parsed rawReport
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		log.Printf("analysis: completion response is not valid JSON, using fallback report: %v", err)
		return buildReport(nil, msgs, settings)
	}
	return buildReport(&parsed, msgs, settings)
}

// stripCodeFence removes a markdown code fence wrapping, which some
// models add despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// buildReport is the single defaults-filling step: a pure function
// from (parsed-or-nil, original messages) to a report in which no
// field is left absent. parsed == nil means the response could not be
// parsed at all.
func buildReport(parsed *rawReport, msgs []models.NormalizedMessage, settings models.ScanSettings) *models.AnalysisReport {
	report := &models.AnalysisReport{
		TotalEmails:   len(msgs),
		EstimatedCost: EstimateCost(len(msgs), settings.AIProcessingLevel),
	}

	if parsed == nil {
		report.Summary = "AI analysis completed, but response format parsing failed. Using fallback analysis."
		report.EmailSummaries = fallbackSummaries(msgs)
		report.EmailsAnalysis = fallbackAnalysis(msgs)
		report.RepliesToGenerate = []models.ReplySuggestion{}
		report.ReplySummary = "No automatic replies generated due to parsing error"
		report.OverallInsights = "AI analysis encountered a format issue. Please review emails manually and try again."
		report.PriorityActions = []string{
			"Review all emails manually",
			"Check for urgent items",
			"Consider re-running analysis",
		}
		report.TimeSensitiveItems = []string{}
		report.ProductivityStats = models.ProductivityMetrics{
			EmailsNeedingAction:  fmt.Sprintf("%d emails require manual review", len(msgs)),
			EstimatedTimeSaved:   "0 minutes (fallback mode)",
			PriorityDistribution: "Manual assessment required",
		}
		return report
	}

	report.Summary = defaultString(parsed.Summary, "AI analysis completed successfully")

	report.EmailSummaries = parsed.EmailSummaries
	if len(report.EmailSummaries) == 0 {
		report.EmailSummaries = synthesizedSummaries(msgs)
	}
	normalizeSummaries(report.EmailSummaries)

	// The model sometimes answers with the summary-mode shape even in
	// ALL-in-One mode; accept it.
	report.EmailsAnalysis = parsed.EmailsAnalysis
	if len(report.EmailsAnalysis) == 0 && len(parsed.EmailSummaries) > 0 {
		report.EmailsAnalysis = analysisFromSummaries(parsed.EmailSummaries)
	}
	if report.EmailsAnalysis == nil {
		report.EmailsAnalysis = []models.EmailAnalysis{}
	}
	normalizeAnalysis(report.EmailsAnalysis)

	report.RepliesToGenerate = parsed.RepliesToGenerate
	if report.RepliesToGenerate == nil {
		report.RepliesToGenerate = []models.ReplySuggestion{}
	}

	report.ReplySummary = defaultString(parsed.ReplySummary, "No replies need to be generated")
	report.OverallInsights = defaultString(parsed.OverallInsights, "AI analysis completed with insights")

	report.PriorityActions = parsed.PriorityActions
	if report.PriorityActions == nil {
		report.PriorityActions = []string{}
	}
	report.TimeSensitiveItems = parsed.TimeSensitiveItems
	if report.TimeSensitiveItems == nil {
		report.TimeSensitiveItems = []string{}
	}

	if parsed.Productivity != nil {
		report.ProductivityStats = *parsed.Productivity
	} else {
		report.ProductivityStats = models.ProductivityMetrics{
			EmailsNeedingAction:  fmt.Sprintf("%d emails reviewed", len(msgs)),
			EstimatedTimeSaved:   "5-10 minutes per email",
			PriorityDistribution: "Mixed priority levels",
		}
	}

	return report
}

// synthesizedSummaries derives one entry per scanned message so the
// frontend always has something to render.
func synthesizedSummaries(msgs []models.NormalizedMessage) []models.EmailSummary {
	out := make([]models.EmailSummary, 0, len(msgs))
	for i, m := range msgs {
		out = append(out, models.EmailSummary{
			EmailNumber:    i + 1,
			From:           m.From(),
			Subject:        m.Subject(),
			Summary:        defaultString(m.Snippet, "No content available"),
			Importance:     "medium",
			KeyPoints:      []string{"Content analysis completed"},
			ActionRequired: "Review recommended",
			Urgency:        "normal",
		})
	}
	return out
}

func fallbackSummaries(msgs []models.NormalizedMessage) []models.EmailSummary {
	out := make([]models.EmailSummary, 0, len(msgs))
	for i, m := range msgs {
		out = append(out, models.EmailSummary{
			EmailNumber:    i + 1,
			From:           m.From(),
			Subject:        m.Subject(),
			Summary:        defaultString(m.Snippet, "No content available"),
			Importance:     "medium",
			KeyPoints:      []string{"Email content available", "Requires manual review"},
			ActionRequired: "Manual review recommended",
			Urgency:        "normal",
		})
	}
	return out
}

func fallbackAnalysis(msgs []models.NormalizedMessage) []models.EmailAnalysis {
	out := make([]models.EmailAnalysis, 0, len(msgs))
	for i, m := range msgs {
		out = append(out, models.EmailAnalysis{
			EmailNumber:     i + 1,
			From:            m.From(),
			Subject:         m.Subject(),
			Summary:         defaultString(m.Snippet, "No content available"),
			NeedsReply:      false,
			ReplyReason:     "Manual review required",
			Importance:      "medium",
			Urgency:         "normal",
			KeyPoints:       []string{"Content available for review"},
			BusinessContext: "Requires human assessment",
		})
	}
	return out
}

func analysisFromSummaries(summaries []models.EmailSummary) []models.EmailAnalysis {
	out := make([]models.EmailAnalysis, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, models.EmailAnalysis{
			EmailNumber: s.EmailNumber,
			From:        s.From,
			Subject:     s.Subject,
			Summary:     s.Summary,
			Importance:  s.Importance,
			Urgency:     s.Urgency,
			KeyPoints:   s.KeyPoints,
		})
	}
	return out
}

func normalizeSummaries(entries []models.EmailSummary) {
	for i := range entries {
		entries[i].Importance = defaultString(entries[i].Importance, "medium")
		entries[i].Urgency = defaultString(entries[i].Urgency, "normal")
		if entries[i].KeyPoints == nil {
			entries[i].KeyPoints = []string{}
		}
	}
}

func normalizeAnalysis(entries []models.EmailAnalysis) {
	for i := range entries {
		entries[i].Importance = defaultString(entries[i].Importance, "medium")
		entries[i].Urgency = defaultString(entries[i].Urgency, "normal")
		if entries[i].KeyPoints == nil {
			entries[i].KeyPoints = []string{}
		}
	}
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// baseCostPerEmail is the blended per-email rate across the model
// tiers the selector can pick.
const baseCostPerEmail = 0.004

// EstimateCost returns the dollar estimate for analyzing emailCount
// messages at the given processing level. Computed independently of
// parse success.
func EstimateCost(emailCount int, processingLevel string) string {
	multiplier := 1.0
	switch processingLevel {
	case models.LevelDetailed:
		multiplier = 1.3
	case models.LevelAction:
		multiplier = 1.6
	}
	return fmt.Sprintf("%.2f", float64(emailCount)*baseCostPerEmail*multiplier)
}
