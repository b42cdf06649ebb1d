package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"alfredmail-be/internal/models"
	"alfredmail-be/internal/provider"
)

// ErrSessionNotFound is returned when no state exists for a session ID.
var ErrSessionNotFound = errors.New("session not found")

type StateRepository struct {
	collection *mongo.Collection
}

func NewStateRepository(db *mongo.Database) *StateRepository {
	return &StateRepository{
		collection: db.Collection("sessions"),
	}
}

// Create inserts a fresh session record when the access-token gate
// hands out a new session.
func (r *StateRepository) Create(ctx context.Context, sessionID string, expiresAt time.Time) (*models.SessionState, error) {
	now := time.Now()
	state := &models.SessionState{
		SessionID: sessionID,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := r.collection.InsertOne(ctx, state)
	if err != nil {
		return nil, err
	}
	state.ID = res.InsertedID.(primitive.ObjectID)
	return state, nil
}

func (r *StateRepository) Find(ctx context.Context, sessionID string) (*models.SessionState, error) {
	var state models.SessionState
	err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&state)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &state, nil
}

// SaveConnection records a successful provider connect: the provider
// kind, the granted OAuth token, and the account address.
func (r *StateRepository) SaveConnection(ctx context.Context, sessionID string, sess *provider.Session) error {
	update := bson.M{
		"$set": bson.M{
			"provider":  sess.Provider,
			"connected": sess.Connected,
			"email":     sess.Email,
			"token":     sess.Token,
			"updatedAt": time.Now(),
		},
	}
	return r.update(ctx, sessionID, update)
}

// SaveReport stores the latest analysis report with the messages it
// was built from, and clears any error left over from a previous
// failed scan.
func (r *StateRepository) SaveReport(ctx context.Context, sessionID string, report *models.AnalysisReport, msgs []models.NormalizedMessage) error {
	update := bson.M{
		"$set": bson.M{
			"lastReport":   report,
			"lastMessages": msgs,
			"updatedAt":    time.Now(),
		},
		"$unset": bson.M{"lastError": ""},
	}
	return r.update(ctx, sessionID, update)
}

func (r *StateRepository) SaveError(ctx context.Context, sessionID, message string) error {
	update := bson.M{
		"$set": bson.M{
			"lastError": message,
			"updatedAt": time.Now(),
		},
	}
	return r.update(ctx, sessionID, update)
}

// ClearConnection wipes provider credentials on disconnect. The session
// record itself survives so the JWT keeps working until it expires.
func (r *StateRepository) ClearConnection(ctx context.Context, sessionID string) error {
	update := bson.M{
		"$set": bson.M{
			"connected": false,
			"updatedAt": time.Now(),
		},
		"$unset": bson.M{
			"provider": "",
			"email":    "",
			"token":    "",
		},
	}
	return r.update(ctx, sessionID, update)
}

func (r *StateRepository) update(ctx context.Context, sessionID string, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"sessionId": sessionID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}
