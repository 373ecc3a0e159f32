package repository

import (
	"context"
	"time"

	"qanda-backend/internal/database"
	"qanda-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type AnswerRepo struct {
	collection *mongo.Collection
}

func NewAnswerRepo() *AnswerRepo {
	return &AnswerRepo{
		collection: database.GetCollection("answers"),
	}
}

func (r *AnswerRepo) Create(ctx context.Context, answer *models.Answer) error {
	answer.CreatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, answer)
	if err != nil {
		return err
	}
	answer.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

// FindForQuestion returns the answer a user gave to a question on a
// given calendar day, if any. Used for same-day partner cross-delivery.
func (r *AnswerRepo) FindForQuestion(ctx context.Context, questionID, userID bson.ObjectID, day string) (*models.Answer, error) {
	var answer models.Answer
	err := r.collection.FindOne(ctx, bson.M{
		"question_id": questionID,
		"user_id":     userID,
		"answered_on": day,
	}).Decode(&answer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &answer, nil
}

// ListRecentByUser returns a user's most recent answers, newest first.
func (r *AnswerRepo) ListRecentByUser(ctx context.Context, userID bson.ObjectID, limit int64) ([]models.Answer, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var answers []models.Answer
	if err := cursor.All(ctx, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

// EnsureIndexes creates necessary indexes for the answers collection
func (r *AnswerRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "question_id", Value: 1},
				{Key: "user_id", Value: 1},
				{Key: "answered_on", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
