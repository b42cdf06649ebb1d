package provider

import (
	"context"

	"golang.org/x/oauth2"

	"alfredmail-be/config"
	"alfredmail-be/internal/models"
)

// Session is an authenticated provider session. It is owned by exactly
// one Provider instance and destroyed on disconnect. The token is
// provider-issued and time-bounded; it lives only for the session.
type Session struct {
	Provider  string        `json:"provider" bson:"provider"`
	Token     *oauth2.Token `json:"-" bson:"token"`
	Connected bool          `json:"connected" bson:"connected"`
	Email     string        `json:"email,omitempty" bson:"email,omitempty"`
}

// DraftRequest carries the fields needed to build one outgoing message.
type DraftRequest struct {
	To        string
	Subject   string
	Content   string
	ThreadID  string
	MessageID string
}

// Provider is the capability set every mail provider implements. Only
// Gmail is implemented today; other kinds fail every call with a
// ConfigurationError.
type Provider interface {
	// Connect exchanges an OAuth authorization code for an access
	// credential and opens a session.
	Connect(ctx context.Context, code string) (*Session, error)

	// Restore re-attaches a previously opened session, e.g. one loaded
	// from the state store between HTTP requests.
	Restore(s *Session) error

	// ScanInbox returns inbox mail only: every returned message carries
	// the INBOX label and none of SENT/DRAFT/SPAM/TRASH, except under
	// the loosest fallback tier where inbox membership is not required
	// but the exclusions still hold.
	ScanInbox(ctx context.Context, settings models.ScanSettings) ([]models.NormalizedMessage, error)

	// CreateDraftReply builds and stores a draft. Failures come back as
	// *DraftError and do not poison the rest of a batch.
	CreateDraftReply(ctx context.Context, req DraftRequest) (*models.DraftResult, error)

	// SendMessage sends a message immediately rather than drafting it.
	SendMessage(ctx context.Context, req DraftRequest) error

	// Disconnect revokes the credential best-effort and clears session
	// state unconditionally. It never returns an error for a failed
	// revoke.
	Disconnect(ctx context.Context) error

	// GetUserProfile returns the account email address. Best-effort:
	// callers treat an error as "unknown user", not a failure.
	GetUserProfile(ctx context.Context) (string, error)
}

// Provider kinds.
const (
	KindGmail   = "gmail"
	KindOutlook = "outlook"
	KindYahoo   = "yahoo"
)

// New returns the adapter for the given provider kind.
func New(kind string, cfg *config.Config) (Provider, error) {
	switch kind {
	case KindGmail:
		return NewGmail(cfg), nil
	case KindOutlook, KindYahoo:
		return &unimplemented{kind: kind}, nil
	}
	return nil, &ConfigurationError{Reason: "unsupported email provider: " + kind}
}

// Infos lists the selectable providers the frontend renders.
func Infos() []models.ProviderInfo {
	features := []string{
		"Smart inbox analysis",
		"AI-powered email summaries",
		"Automatic draft replies",
		"Priority email identification",
	}
	return []models.ProviderInfo{
		{ID: KindGmail, Name: "Gmail", Description: "Connect to your Gmail account for intelligent email management", Features: features},
		{ID: KindOutlook, Name: "Outlook", Description: "Connect to your Outlook account (Coming Soon)", Features: features, ComingSoon: true},
		{ID: KindYahoo, Name: "Yahoo Mail", Description: "Connect to your Yahoo Mail account (Coming Soon)", Features: features, ComingSoon: true},
	}
}

// unimplemented is the variant for providers that are advertised but
// not built yet.
type unimplemented struct {
	kind string
}

func (u *unimplemented) err() error {
	return &ConfigurationError{Reason: u.kind + " provider not implemented"}
}

func (u *unimplemented) Connect(context.Context, string) (*Session, error) { return nil, u.err() }
func (u *unimplemented) Restore(*Session) error                           { return u.err() }
func (u *unimplemented) ScanInbox(context.Context, models.ScanSettings) ([]models.NormalizedMessage, error) {
	return nil, u.err()
}
func (u *unimplemented) CreateDraftReply(context.Context, DraftRequest) (*models.DraftResult, error) {
	return nil, u.err()
}
func (u *unimplemented) SendMessage(context.Context, DraftRequest) error { return u.err() }
func (u *unimplemented) Disconnect(context.Context) error                { return nil }
func (u *unimplemented) GetUserProfile(context.Context) (string, error)  { return "", u.err() }
