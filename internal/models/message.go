package models

import (
	"strings"
	"time"
)

// Gmail system labels used for inbox-membership filtering.
const (
	LabelInbox = "INBOX"
	LabelSent  = "SENT"
	LabelDraft = "DRAFT"
	LabelSpam  = "SPAM"
	LabelTrash = "TRASH"
)

// MessagePart is a decoded MIME node: its own body plus ordered child parts.
type MessagePart struct {
	MimeType string         `json:"mimeType" bson:"mimeType"`
	Body     string         `json:"body,omitempty" bson:"body,omitempty"`
	Parts    []*MessagePart `json:"parts,omitempty" bson:"parts,omitempty"`
}

// NormalizedMessage is the provider-agnostic message representation the
// pipeline operates on. Headers are keyed by lowercased header name.
type NormalizedMessage struct {
	ID       string            `json:"id" bson:"_id"`
	ThreadID string            `json:"threadId" bson:"threadId"`
	Labels   []string          `json:"labelIds" bson:"labelIds"`
	Snippet  string            `json:"snippet" bson:"snippet"`
	SentAt   time.Time         `json:"sentAt" bson:"sentAt"`
	Headers  map[string]string `json:"headers" bson:"headers"`
	Payload  *MessagePart      `json:"payload,omitempty" bson:"payload,omitempty"`
}

// Header returns a header value by case-insensitive name.
func (m *NormalizedMessage) Header(name string) string {
	return m.Headers[strings.ToLower(name)]
}

// From is the sender header, or "Unknown" when absent.
func (m *NormalizedMessage) From() string {
	if v := m.Header("from"); v != "" {
		return v
	}
	return "Unknown"
}

// Subject is the subject header, or "No Subject" when absent.
func (m *NormalizedMessage) Subject() string {
	if v := m.Header("subject"); v != "" {
		return v
	}
	return "No Subject"
}

// HasLabel reports whether the message carries the given label.
func (m *NormalizedMessage) HasLabel(label string) bool {
	for _, l := range m.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// IsInboxMail reports the strict inbox predicate: the INBOX label is
// present and none of SENT/DRAFT/SPAM/TRASH are.
func (m *NormalizedMessage) IsInboxMail() bool {
	return m.HasLabel(LabelInbox) && m.IsNotExcluded()
}

// IsNotExcluded is the relaxed predicate: merely not sent/draft/spam/trash.
func (m *NormalizedMessage) IsNotExcluded() bool {
	return !m.HasLabel(LabelSent) && !m.HasLabel(LabelDraft) &&
		!m.HasLabel(LabelSpam) && !m.HasLabel(LabelTrash)
}

// AI processing modes.
const (
	AIModeSummary  = "summary"
	AIModeAllInOne = "all-in-one"
)

// AI processing levels (affect the cost estimate only).
const (
	LevelSummary  = "summary"
	LevelDetailed = "detailed"
	LevelAction   = "action"
)

// ScanSettings configures a single inbox scan.
type ScanSettings struct {
	MaxEmails         int    `json:"maxEmails" bson:"maxEmails"`
	TimeRange         string `json:"timeRange" bson:"timeRange"` // 1d, 3d, 7d, 14d, 30d
	Important         bool   `json:"important" bson:"important"`
	Unread            bool   `json:"unread" bson:"unread"`
	AIMode            string `json:"aiMode" bson:"aiMode"`
	AIProcessingLevel string `json:"aiProcessingLevel" bson:"aiProcessingLevel"`
}

// DefaultScanSettings mirrors the frontend defaults.
func DefaultScanSettings() ScanSettings {
	return ScanSettings{
		MaxEmails:         50,
		TimeRange:         "7d",
		AIMode:            AIModeSummary,
		AIProcessingLevel: LevelDetailed,
	}
}

// TimeRangeDays maps the recognized time ranges to a day-count cutoff.
// Unrecognized values fall back to a week.
func (s ScanSettings) TimeRangeDays() int {
	switch s.TimeRange {
	case "1d":
		return 1
	case "3d":
		return 3
	case "7d":
		return 7
	case "14d":
		return 14
	case "30d":
		return 30
	}
	return 7
}
