package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/oauth2"
)

// SessionState is the per-session document persisted between requests:
// which provider is connected, its OAuth credentials, and the outcome
// of the most recent scan.
type SessionState struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	SessionID string             `bson:"sessionId" json:"sessionId"`
	Provider  string             `bson:"provider,omitempty" json:"provider,omitempty"`
	Connected bool               `bson:"connected" json:"connected"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`

	// OAuth token for the connected provider. Never serialized to API
	// responses.
	Token *oauth2.Token `bson:"token,omitempty" json:"-"`

	// When the access-token gate window for this session closes.
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`

	// Outcome of the most recent scan. The scanned messages are kept so
	// a later draft re-run can still match replies to their sources.
	LastReport   *AnalysisReport     `bson:"lastReport,omitempty" json:"lastReport,omitempty"`
	LastMessages []NormalizedMessage `bson:"lastMessages,omitempty" json:"-"`
	LastError    string              `bson:"lastError,omitempty" json:"lastError,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
