package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Question recurs yearly on DateToAsk ("M/D", no leading zeros).
type Question struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	DateToAsk string        `bson:"date_to_ask" json:"date_to_ask"`
	Text      string        `bson:"text" json:"text"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
}

// MonthDay formats a date the way questions are keyed, e.g. "12/14".
func MonthDay(t time.Time) string {
	return t.Format("1/2")
}
