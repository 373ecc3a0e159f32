package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// PartnershipRequest is a directed, pending partner invitation. It is
// deleted when accepted (converted into a symmetric partner link) or
// declined. The (requester_id, requestee_id) pair is unique.
type PartnershipRequest struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	RequesterID bson.ObjectID `bson:"requester_id" json:"requester_id"`
	RequesteeID bson.ObjectID `bson:"requestee_id" json:"requestee_id"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at"`
}
