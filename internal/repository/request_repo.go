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

type RequestRepo struct {
	collection *mongo.Collection
}

func NewRequestRepo() *RequestRepo {
	return &RequestRepo{
		collection: database.GetCollection("partnership_requests"),
	}
}

func (r *RequestRepo) Create(ctx context.Context, requesterID, requesteeID bson.ObjectID) (*models.PartnershipRequest, error) {
	req := &models.PartnershipRequest{
		RequesterID: requesterID,
		RequesteeID: requesteeID,
		CreatedAt:   time.Now(),
	}
	result, err := r.collection.InsertOne(ctx, req)
	if err != nil {
		return nil, err
	}
	req.ID = result.InsertedID.(bson.ObjectID)
	return req, nil
}

// FindByRequester returns the outstanding request made by the given
// user, if any.
func (r *RequestRepo) FindByRequester(ctx context.Context, requesterID bson.ObjectID) (*models.PartnershipRequest, error) {
	return r.findOne(ctx, bson.M{"requester_id": requesterID})
}

// FindByRequestee returns the outstanding request received by the given
// user, if any.
func (r *RequestRepo) FindByRequestee(ctx context.Context, requesteeID bson.ObjectID) (*models.PartnershipRequest, error) {
	return r.findOne(ctx, bson.M{"requestee_id": requesteeID})
}

func (r *RequestRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *RequestRepo) findOne(ctx context.Context, filter bson.M) (*models.PartnershipRequest, error) {
	var req models.PartnershipRequest
	err := r.collection.FindOne(ctx, filter).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// EnsureIndexes creates necessary indexes for the partnership_requests
// collection. The unique compound index enforces at most one request
// per ordered (requester, requestee) pair.
func (r *RequestRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "requester_id", Value: 1}, {Key: "requestee_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "requestee_id", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
