package repository

import (
	"context"
	"errors"
	"fmt"

	"tutor-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SessionRepository persists learner sessions in MongoDB, one document
// per session id.
type SessionRepository struct {
	Col *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{Col: db.Collection("sessions")}
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownSession, id)
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	_, err := r.Col.InsertOne(ctx, session)
	return err
}

// Replace writes the whole updated session document. Batches are
// applied all-or-nothing, so partial field updates are never needed.
func (r *SessionRepository) Replace(ctx context.Context, session *models.Session) error {
	res, err := r.Col.ReplaceOne(ctx, bson.M{"_id": session.ID}, session)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", models.ErrUnknownSession, session.ID)
	}
	return nil
}
