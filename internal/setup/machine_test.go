package setup_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"qanda-backend/internal/classify"
	"qanda-backend/internal/models"
	"qanda-backend/internal/setup"
	"qanda-backend/internal/setup/setuptest"
	"qanda-backend/internal/sms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	users     *setuptest.Users
	requests  *setuptest.Requests
	questions *setuptest.Questions
	sender    *sms.MockSender
	machine   *setup.Machine
}

func newFixture() *fixture {
	f := &fixture{
		users:     setuptest.NewUsers(),
		requests:  setuptest.NewRequests(),
		questions: setuptest.NewQuestions(),
		sender:    sms.NewMockSender(),
	}
	f.machine = &setup.Machine{
		Users:          f.users,
		Requests:       f.requests,
		Questions:      f.questions,
		SMS:            f.sender,
		SupportContact: "support@qanda.example",
		Now:            func() time.Time { return time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC) },
	}
	return f
}

func (f *fixture) addUser(stage int) *models.User {
	return f.users.Add(models.User{
		Phone:      "+13105550100",
		FirstName:  "Gabriel",
		Timezone:   "America/Los_Angeles",
		SetupStage: stage,
	})
}

func TestNameIsStoredAndConfirmed(t *testing.T) {
	f := newFixture()
	user := f.users.Add(models.User{Phone: "+13105550100", SetupStage: models.StageAwaitingName})

	err := f.machine.HandleReply(context.Background(), user, classify.Result{Raw: "Gabriel"}, "90210")
	require.NoError(t, err)

	stored := f.users.Get(user.ID)
	assert.Equal(t, "Gabriel", stored.FirstName)
	assert.Equal(t, models.StageConfirmingName, stored.SetupStage)

	msgs := f.sender.SentTo(user.Phone)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Nice to meet you, Gabriel")
	assert.Contains(t, msgs[0], "Did I spell your name correctly?")
}

func TestNameConfirmedAdvancesToZip(t *testing.T) {
	f := newFixture()
	user := f.addUser(models.StageConfirmingName)

	err := f.machine.HandleReply(context.Background(), user, classify.Result{Affirmative: true}, "90210")
	require.NoError(t, err)

	assert.Equal(t, models.StageConfirmingZip, f.users.Get(user.ID).SetupStage)
	msgs := f.sender.SentTo(user.Phone)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "90210")
	assert.Contains(t, msgs[0], "America/Los_Angeles")
}

func TestNameRejectedRollsBack(t *testing.T) {
	f := newFixture()
	user := f.addUser(models.StageConfirmingName)

	err := f.machine.HandleReply(context.Background(), user, classify.Result{Negative: true, Raw: "nope"}, "")
	require.NoError(t, err)

	assert.Equal(t, models.StageAwaitingName, f.users.Get(user.ID).SetupStage)
	msgs := f.sender.SentTo(user.Phone)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "How do you spell that, again?")
}

func TestNameConfirmWithoutCarrierZipAsksOutright(t *testing.T) {
	f := newFixture()
	user := f.addUser(models.StageConfirmingName)

	err := f.machine.HandleReply(context.Background(), user, classify.Result{Affirmative: true}, "")
	require.NoError(t, err)

	assert.Equal(t, models.StageConfirmingZip, f.users.Get(user.ID).SetupStage)
	msgs := f.sender.SentTo(user.Phone)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "5-digit zipcode")
}

func TestZipReplyStoresTimezoneWithoutAdvancing(t *testing.T) {
	f := newFixture()
	user := f.users.Add(models.User{
		Phone:      "+13105550100",
		FirstName:  "Gabriel",
		Timezone:   "America/New_York",
		SetupStage: models.StageConfirmingZip,
	})

	err := f.machine.HandleReply(context.Background(), user, classify.Result{
		Zip:      "90210",
		Timezone: "America/Los_Angeles",
		Raw:      "90210",
	}, "")
	require.NoError(t, err)

	stored := f.users.Get(user.ID)
	assert.Equal(t, "America/Los_Angeles", stored.Timezone)
	assert.Equal(t, models.StageConfirmingZip, stored.SetupStage, "a zip reply confirms, it does not advance")

	msgs := f.sender.SentTo(user.Phone)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "90210")
	assert.Contains(t, msgs[0], "America/Los_Angeles")
}

func TestZipRejectedAsksForZip(t *testing.T) {
	f := newFixture()
	user := f.addUser(models.StageConfirmingZip)
	before := f.users.Get(user.ID)

	err := f.machine.HandleReply(context.Background(), user, classify.Result{Negative: true}, "")
	require.NoError(t, err)

	after := f.users.Get(user.ID)
	assert.Equal(t, before.SetupStage, after.SetupStage)
	assert.Equal(t, before.Timezone, after.Timezone)
	msgs := f.sender.SentTo(user.Phone)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "5-digit zipcode")
}

func TestZipConfirmedAsksPartnerIntent(t *testing.T) {
	f := newFixture()
	user := f.addUser(models.StageConfirmingZip)

	err := f.machine.HandleReply(context.Background(), user, classify.Result{Affirmative: true}, "")
	require.NoError(t, err)

	assert.Equal(t, models.StageConfirmingPartnerIntent, f.users.Get(user.ID).SetupStage)
	msgs := f.sender.SentTo(user.Phone)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "do you have a partner")
}

func TestPartnerIntentYesAsksForPhone(t *testing.T) {
	f := newFixture()
	user := f.addUser(models.StageConfirmingPartnerIntent)

	err := f.machine.HandleReply(context.Background(), user, classify.Result{Affirmative: true}, "")
	require.NoError(t, err)

	// No mutation: still waiting at the same stage for the number.
	assert.Equal(t, models.StageConfirmingPartnerIntent, f.users.Get(user.ID).SetupStage)
	msgs := f.sender.SentTo(user.Phone)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "10-digit phone number")
}

func TestPartnerIntentNoCompletesSolo(t *testing.T) {
	f := newFixture()
	f.questions.Add("3/14", "What made you laugh today?")
	user := f.addUser(models.StageConfirmingPartnerIntent)

	err := f.machine.HandleReply(context.Background(), user, classify.Result{Negative: true}, "")
	require.NoError(t, err)

	assert.True(t, f.users.Get(user.ID).SetupComplete())
	msgs := f.sender.SentTo(user.Phone)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0], "just for you")
	assert.Contains(t, msgs[1], "What made you laugh today?")
}

func TestPartnerPhoneStoredAndConfirmed(t *testing.T) {
	f := newFixture()
	user := f.addUser(models.StageConfirmingPartnerIntent)

	err := f.machine.HandleReply(context.Background(), user, classify.Result{Phone: "+13105550199"}, "")
	require.NoError(t, err)

	stored := f.users.Get(user.ID)
	assert.Equal(t, "+13105550199", stored.PendingPartnerPhone)
	assert.Equal(t, models.StageConfirmingPartnerPhone, stored.SetupStage)
	msgs := f.sender.SentTo(user.Phone)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "+13105550199")
}

func TestPartnerPhoneRejectedRollsBack(t *testing.T) {
	f := newFixture()
	user := f.users.Add(models.User{
		Phone:               "+13105550100",
		FirstName:           "Gabriel",
		Timezone:            "America/Los_Angeles",
		SetupStage:          models.StageConfirmingPartnerPhone,
		PendingPartnerPhone: "+13105550199",
	})

	err := f.machine.HandleReply(context.Background(), user, classify.Result{Negative: true}, "")
	require.NoError(t, err)

	stored := f.users.Get(user.ID)
	assert.Equal(t, models.StageConfirmingPartnerIntent, stored.SetupStage)
	// Rollback changes the stage and nothing else.
	assert.Equal(t, "+13105550199", stored.PendingPartnerPhone)
	assert.Equal(t, "Gabriel", stored.FirstName)
	msgs := f.sender.SentTo(user.Phone)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Did you still want")
}

// Unrecognized replies must never mutate the record, at any stage.
func TestUnrecognizedIsIdempotent(t *testing.T) {
	stages := []int{
		models.StageConfirmingName,
		models.StageConfirmingZip,
		models.StageConfirmingPartnerIntent,
		models.StageConfirmingPartnerPhone,
	}
	for _, stage := range stages {
		f := newFixture()
		user := f.users.Add(models.User{
			Phone:               "+13105550100",
			FirstName:           "Gabriel",
			Timezone:            "America/Los_Angeles",
			SetupStage:          stage,
			PendingPartnerPhone: "+13105550199",
		})
		before := f.users.Get(user.ID)

		err := f.machine.HandleReply(context.Background(), user, classify.Result{Raw: "hmm, not sure"}, "")
		require.NoError(t, err, "stage %d", stage)

		after := f.users.Get(user.ID)
		assert.Equal(t, before.SetupStage, after.SetupStage, "stage %d", stage)
		assert.Equal(t, before.FirstName, after.FirstName, "stage %d", stage)
		assert.Equal(t, before.Timezone, after.Timezone, "stage %d", stage)
		assert.Equal(t, before.PendingPartnerPhone, after.PendingPartnerPhone, "stage %d", stage)
		assert.Equal(t, before.PartnerID, after.PartnerID, "stage %d", stage)
		assert.Len(t, f.sender.SentTo(user.Phone), 1, "stage %d re-asks exactly once", stage)
	}
}

// Same (stage, signal) pair always lands on the same next stage.
func TestTransitionsAreDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		f := newFixture()
		user := f.addUser(models.StageConfirmingName)
		err := f.machine.HandleReply(context.Background(), user, classify.Result{Affirmative: true}, "")
		require.NoError(t, err)
		assert.Equal(t, models.StageConfirmingZip, f.users.Get(user.ID).SetupStage)
	}
}

func TestStageOutOfRangeIsAFault(t *testing.T) {
	f := newFixture()
	user := f.addUser(9)

	err := f.machine.HandleReply(context.Background(), user, classify.Result{Raw: "hello"}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, setup.ErrStageOutOfRange))

	msgs := f.sender.SentTo(user.Phone)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "something wrong with your account")
}
