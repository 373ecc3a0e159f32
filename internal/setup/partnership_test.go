package setup_test

import (
	"context"
	"testing"

	"qanda-backend/internal/classify"
	"qanda-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	requesterPhone = "+13105550100"
	partnerPhone   = "+13105550199"
)

func (f *fixture) addRequester() *models.User {
	return f.users.Add(models.User{
		Phone:               requesterPhone,
		FirstName:           "Gabriel",
		Timezone:            "America/Los_Angeles",
		SetupStage:          models.StageConfirmingPartnerPhone,
		PendingPartnerPhone: partnerPhone,
	})
}

func (f *fixture) addPartner() *models.User {
	return f.users.Add(models.User{
		Phone:      partnerPhone,
		FirstName:  "Dana",
		Timezone:   "America/Los_Angeles",
		SetupStage: models.StageComplete,
	})
}

func confirm(t *testing.T, f *fixture, requester *models.User) {
	t.Helper()
	err := f.machine.HandleReply(context.Background(), requester, classify.Result{Affirmative: true}, "")
	require.NoError(t, err)
}

func TestResolveInvitesUnknownNumber(t *testing.T) {
	f := newFixture()
	requester := f.addRequester()

	confirm(t, f, requester)

	assert.True(t, f.users.Get(requester.ID).SetupComplete())
	// No account means no request record to attach.
	assert.Equal(t, 0, f.requests.Count())

	invites := f.sender.SentTo(partnerPhone)
	require.Len(t, invites, 1)
	assert.Contains(t, invites[0], "Gabriel sent you an invite")

	replies := f.sender.SentTo(requesterPhone)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "sent a partnership request")
}

func TestResolveAlreadyLinkedIsIdempotent(t *testing.T) {
	f := newFixture()
	requester := f.addRequester()
	partner := f.addPartner()
	require.NoError(t, f.users.SetPartners(context.Background(), requester.ID, partner.ID))

	confirm(t, f, f.users.Get(requester.ID))

	assert.True(t, f.users.Get(requester.ID).SetupComplete())
	assert.Equal(t, 0, f.requests.Count())
	assert.Empty(t, f.sender.SentTo(partnerPhone))

	replies := f.sender.SentTo(requesterPhone)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "already have a partnership set up with Dana")
}

func TestResolveAutoAcceptsInboundRequest(t *testing.T) {
	f := newFixture()
	requester := f.addRequester()
	partner := f.addPartner()
	_, err := f.requests.Create(context.Background(), partner.ID, requester.ID)
	require.NoError(t, err)

	confirm(t, f, requester)

	// Linkage is symmetric and the request is consumed.
	storedRequester := f.users.Get(requester.ID)
	storedPartner := f.users.Get(partner.ID)
	require.NotNil(t, storedRequester.PartnerID)
	require.NotNil(t, storedPartner.PartnerID)
	assert.Equal(t, partner.ID, *storedRequester.PartnerID)
	assert.Equal(t, requester.ID, *storedPartner.PartnerID)
	assert.Equal(t, 0, f.requests.Count())
	assert.True(t, storedRequester.SetupComplete())

	partnerMsgs := f.sender.SentTo(partnerPhone)
	require.Len(t, partnerMsgs, 1)
	assert.Contains(t, partnerMsgs[0], "Gabriel confirmed your partnership")

	requesterMsgs := f.sender.SentTo(requesterPhone)
	require.Len(t, requesterMsgs, 1)
	assert.Contains(t, requesterMsgs[0], "set up the partnership with Dana")
}

func TestResolveDuplicateRequestIsANoOp(t *testing.T) {
	f := newFixture()
	requester := f.addRequester()
	partner := f.addPartner()
	_, err := f.requests.Create(context.Background(), requester.ID, partner.ID)
	require.NoError(t, err)

	confirm(t, f, requester)

	assert.Equal(t, 1, f.requests.Count(), "the existing request is left alone")
	assert.True(t, f.users.Get(requester.ID).SetupComplete())
	assert.Nil(t, f.users.Get(requester.ID).PartnerID)

	replies := f.sender.SentTo(requesterPhone)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "already sent a request to that number")
}

func TestResolveConflictNotifiesBothSides(t *testing.T) {
	f := newFixture()
	requester := f.addRequester()
	partner := f.addPartner()
	other := f.users.Add(models.User{Phone: "+13105550177", FirstName: "Sam", SetupStage: models.StageComplete})
	require.NoError(t, f.users.SetPartners(context.Background(), partner.ID, other.ID))

	confirm(t, f, requester)

	assert.True(t, f.users.Get(requester.ID).SetupComplete())
	assert.Nil(t, f.users.Get(requester.ID).PartnerID)
	assert.Equal(t, 0, f.requests.Count())

	partnerMsgs := f.sender.SentTo(partnerPhone)
	require.Len(t, partnerMsgs, 1)
	assert.Contains(t, partnerMsgs[0], "Gabriel tried to request a Q&A partnership")

	replies := f.sender.SentTo(requesterPhone)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "unable to process the partner request")
}

func TestResolveCreatesRequestForFreePartner(t *testing.T) {
	f := newFixture()
	requester := f.addRequester()
	partner := f.addPartner()

	confirm(t, f, requester)

	assert.Equal(t, 1, f.requests.Count())
	created, err := f.requests.FindByRequester(context.Background(), requester.ID)
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, partner.ID, created.RequesteeID)
	assert.True(t, f.users.Get(requester.ID).SetupComplete())

	partnerMsgs := f.sender.SentTo(partnerPhone)
	require.Len(t, partnerMsgs, 1)
	assert.Contains(t, partnerMsgs[0], "Dana, you have a request from Gabriel")
	assert.Contains(t, partnerMsgs[0], "Accept")

	replies := f.sender.SentTo(requesterPhone)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "sent a partnership request")
}

// At most one request can exist per ordered pair; the memstore mirrors
// the unique index the repository creates.
func TestRequestPairUniqueness(t *testing.T) {
	f := newFixture()
	requester := f.addRequester()
	partner := f.addPartner()

	_, err := f.requests.Create(context.Background(), requester.ID, partner.ID)
	require.NoError(t, err)
	_, err = f.requests.Create(context.Background(), requester.ID, partner.ID)
	assert.Error(t, err)
	assert.Equal(t, 1, f.requests.Count())
}
