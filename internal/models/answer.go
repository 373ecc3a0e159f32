package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Answer struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     bson.ObjectID `bson:"user_id" json:"user_id"`
	QuestionID bson.ObjectID `bson:"question_id" json:"question_id"`
	Text       string        `bson:"text" json:"text"`
	AnsweredOn string        `bson:"answered_on" json:"answered_on"` // calendar day in the user's timezone, "2006-01-02"
	CreatedAt  time.Time     `bson:"created_at" json:"created_at"`
}

// Day formats a timestamp the way answers are keyed by calendar day.
func Day(t time.Time) string {
	return t.Format("2006-01-02")
}
