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

type UserRepo struct {
	collection *mongo.Collection
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		collection: database.GetCollection("users"),
	}
}

func (r *UserRepo) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"phone": phone}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	user.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *UserRepo) UpdateStage(ctx context.Context, id bson.ObjectID, stage int) error {
	return r.set(ctx, id, bson.M{"setup_stage": stage})
}

func (r *UserRepo) UpdateName(ctx context.Context, id bson.ObjectID, name string, stage int) error {
	return r.set(ctx, id, bson.M{"first_name": name, "setup_stage": stage})
}

func (r *UserRepo) UpdateTimezone(ctx context.Context, id bson.ObjectID, timezone string) error {
	return r.set(ctx, id, bson.M{"timezone": timezone})
}

func (r *UserRepo) UpdatePendingPartnerPhone(ctx context.Context, id bson.ObjectID, phone string, stage int) error {
	return r.set(ctx, id, bson.M{"pending_partner_phone": phone, "setup_stage": stage})
}

// SetPartners links both users in a single bulk write so the partner
// reference is always symmetric.
func (r *UserRepo) SetPartners(ctx context.Context, a, b bson.ObjectID) error {
	now := time.Now()
	writes := []mongo.WriteModel{
		mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": a}).
			SetUpdate(bson.M{"$set": bson.M{"partner_id": b, "updated_at": now}}),
		mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": b}).
			SetUpdate(bson.M{"$set": bson.M{"partner_id": a, "updated_at": now}}),
	}
	_, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	return err
}

// ListCompleted returns every user who finished account setup. Used by
// the daily broadcast.
func (r *UserRepo) ListCompleted(ctx context.Context) ([]models.User, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"setup_stage": bson.M{"$gte": models.StageComplete}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepo) set(ctx context.Context, id bson.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	return err
}

// EnsureIndexes creates necessary indexes for the users collection
func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "phone", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
