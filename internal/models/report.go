package models

// EmailSummary is one per-email entry in a summary-mode report.
type EmailSummary struct {
	EmailNumber    int      `json:"emailNumber" bson:"emailNumber"`
	From           string   `json:"from" bson:"from"`
	Subject        string   `json:"subject" bson:"subject"`
	Summary        string   `json:"summary" bson:"summary"`
	Importance     string   `json:"importance" bson:"importance"` // low, medium, high
	KeyPoints      []string `json:"keyPoints" bson:"keyPoints"`
	ActionRequired string   `json:"actionRequired" bson:"actionRequired"`
	Urgency        string   `json:"urgency" bson:"urgency"` // normal, urgent
}

// EmailAnalysis extends EmailSummary with the all-in-one-mode fields.
type EmailAnalysis struct {
	EmailNumber     int      `json:"emailNumber" bson:"emailNumber"`
	From            string   `json:"from" bson:"from"`
	Subject         string   `json:"subject" bson:"subject"`
	Summary         string   `json:"summary" bson:"summary"`
	NeedsReply      bool     `json:"needsReply" bson:"needsReply"`
	ReplyReason     string   `json:"replyReason" bson:"replyReason"`
	Importance      string   `json:"importance" bson:"importance"`
	Urgency         string   `json:"urgency" bson:"urgency"`
	KeyPoints       []string `json:"keyPoints" bson:"keyPoints"`
	BusinessContext string   `json:"businessContext" bson:"businessContext"`
}

// ReplySuggestion is one model-proposed draft reply.
type ReplySuggestion struct {
	EmailNumber int      `json:"emailNumber" bson:"emailNumber"`
	To          string   `json:"to" bson:"to"`
	Subject     string   `json:"subject" bson:"subject"`
	Content     string   `json:"content" bson:"content"`
	Tone        string   `json:"tone" bson:"tone"`
	Priority    string   `json:"priority" bson:"priority"` // low, medium, high
	ActionItems []string `json:"actionItems" bson:"actionItems"`
	FollowUp    string   `json:"followUp" bson:"followUp"`
}

// ProductivityMetrics summarizes the workflow impact of a scan.
type ProductivityMetrics struct {
	EmailsNeedingAction  string `json:"emailsNeedingAction" bson:"emailsNeedingAction"`
	EstimatedTimeSaved   string `json:"estimatedTimeSaved" bson:"estimatedTimeSaved"`
	PriorityDistribution string `json:"priorityDistribution" bson:"priorityDistribution"`
}

// DraftResult records the outcome of one draft-creation attempt. Either
// DraftID/ThreadID/Status are set (success) or Error is (failure); the
// originating reply payload is carried either way.
type DraftResult struct {
	DraftID         string           `json:"id,omitempty" bson:"id,omitempty"`
	ThreadID        string           `json:"threadId,omitempty" bson:"threadId,omitempty"`
	Status          string           `json:"status,omitempty" bson:"status,omitempty"`
	Error           string           `json:"error,omitempty" bson:"error,omitempty"`
	ReplyData       *ReplySuggestion `json:"replyData,omitempty" bson:"replyData,omitempty"`
	OriginalMessage string           `json:"originalMessageId,omitempty" bson:"originalMessageId,omitempty"`
}

// AnalysisReport is the fully-populated structured AI output. Every
// field is filled with a safe default when the completion service omits
// it, so the presentation layer never branches on absence.
type AnalysisReport struct {
	Summary       string `json:"summary" bson:"summary"`
	TotalEmails   int    `json:"totalEmails" bson:"totalEmails"`
	EstimatedCost string `json:"estimatedCost" bson:"estimatedCost"`

	// Summary mode
	EmailSummaries []EmailSummary `json:"emailSummaries" bson:"emailSummaries"`

	// ALL-in-One mode
	EmailsAnalysis     []EmailAnalysis     `json:"emailsAnalysis" bson:"emailsAnalysis"`
	RepliesToGenerate  []ReplySuggestion   `json:"repliesToGenerate" bson:"repliesToGenerate"`
	ReplySummary       string              `json:"replySummary" bson:"replySummary"`
	ProductivityStats  ProductivityMetrics `json:"productivityMetrics" bson:"productivityMetrics"`

	// Always present
	OverallInsights    string   `json:"overallInsights" bson:"overallInsights"`
	PriorityActions    []string `json:"priorityActions" bson:"priorityActions"`
	TimeSensitiveItems []string `json:"timeSensitiveItems" bson:"timeSensitiveItems"`

	// Filled after the draft pass in ALL-in-One mode.
	DraftResults []DraftResult `json:"draftResults,omitempty" bson:"draftResults,omitempty"`
	DraftCount   int           `json:"draftCount,omitempty" bson:"draftCount,omitempty"`
}
