package setup

import (
	"context"

	"qanda-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Store interfaces the conversation logic depends on. The Mongo
// repositories satisfy them in production; tests use the in-memory
// implementations from the setuptest package.

type UserStore interface {
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateStage(ctx context.Context, id bson.ObjectID, stage int) error
	UpdateName(ctx context.Context, id bson.ObjectID, name string, stage int) error
	UpdateTimezone(ctx context.Context, id bson.ObjectID, timezone string) error
	UpdatePendingPartnerPhone(ctx context.Context, id bson.ObjectID, phone string, stage int) error
	SetPartners(ctx context.Context, a, b bson.ObjectID) error
	ListCompleted(ctx context.Context) ([]models.User, error)
}

type RequestStore interface {
	Create(ctx context.Context, requesterID, requesteeID bson.ObjectID) (*models.PartnershipRequest, error)
	FindByRequester(ctx context.Context, requesterID bson.ObjectID) (*models.PartnershipRequest, error)
	FindByRequestee(ctx context.Context, requesteeID bson.ObjectID) (*models.PartnershipRequest, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

type QuestionStore interface {
	FindByDate(ctx context.Context, monthDay string) (*models.Question, error)
}

type AnswerStore interface {
	Create(ctx context.Context, answer *models.Answer) error
	FindForQuestion(ctx context.Context, questionID, userID bson.ObjectID, day string) (*models.Answer, error)
	ListRecentByUser(ctx context.Context, userID bson.ObjectID, limit int64) ([]models.Answer, error)
}
