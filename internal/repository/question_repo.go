package repository

import (
	"context"

	"qanda-backend/internal/database"
	"qanda-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type QuestionRepo struct {
	collection *mongo.Collection
}

func NewQuestionRepo() *QuestionRepo {
	return &QuestionRepo{
		collection: database.GetCollection("questions"),
	}
}

// FindByDate looks up the question scheduled for a month/day, e.g.
// "12/14". Questions recur yearly.
func (r *QuestionRepo) FindByDate(ctx context.Context, monthDay string) (*models.Question, error) {
	var question models.Question
	err := r.collection.FindOne(ctx, bson.M{"date_to_ask": monthDay}).Decode(&question)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &question, nil
}

// EnsureIndexes creates necessary indexes for the questions collection
func (r *QuestionRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date_to_ask", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
