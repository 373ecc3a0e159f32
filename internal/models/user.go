package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Setup stages a user walks through over SMS before they start
// receiving daily questions. Stage values at or above StageComplete
// mean onboarding is finished.
const (
	StageAwaitingName            = 0
	StageConfirmingName          = 1
	StageConfirmingZip           = 2
	StageConfirmingPartnerIntent = 3
	StageConfirmingPartnerPhone  = 4
	StageComplete                = 5
)

type User struct {
	ID                  bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	Phone               string         `bson:"phone" json:"phone"`
	FirstName           string         `bson:"first_name,omitempty" json:"first_name,omitempty"`
	Timezone            string         `bson:"timezone,omitempty" json:"timezone,omitempty"`
	SetupStage          int            `bson:"setup_stage" json:"setup_stage"`
	PendingPartnerPhone string         `bson:"pending_partner_phone,omitempty" json:"pending_partner_phone,omitempty"`
	PartnerID           *bson.ObjectID `bson:"partner_id,omitempty" json:"partner_id,omitempty"`
	CreatedAt           time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `bson:"updated_at" json:"updated_at"`
}

func (u *User) SetupComplete() bool {
	return u.SetupStage >= StageComplete
}

// StageKnown reports whether the stored stage is one this service
// understands. Anything outside the range is a data-integrity fault.
func (u *User) StageKnown() bool {
	return u.SetupStage >= StageAwaitingName && u.SetupStage <= StageComplete
}

// Location resolves the user's IANA timezone, falling back to UTC when
// it is unset or unparseable.
func (u *User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
