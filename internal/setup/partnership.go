package setup

import (
	"context"

	"qanda-backend/internal/models"
)

// resolvePartnership decides what to do with the confirmed candidate
// partner number:
//
//  1. No account for that number — invite them, finish the requester's
//     setup without creating a request (the invitee has no record to
//     attach one to; a request is created the normal way once they
//     register and name the requester).
//  2. Candidate is already partnered with the requester — idempotent.
//  3. Candidate already requested the requester — auto-accept.
//  4. Requester already requested the candidate — still pending.
//  5. Candidate is otherwise attached — conflict, notify both sides.
//  6. Candidate is free — create the request, notify both sides.
//
// Every branch finishes the requester's setup.
func (m *Machine) resolvePartnership(ctx context.Context, user *models.User) error {
	candidate := user.PendingPartnerPhone

	partner, err := m.Users.FindByPhone(ctx, candidate)
	if err != nil {
		return err
	}

	if partner == nil {
		if err := m.SMS.Send(ctx, candidate, msgInvite(user.FirstName)); err != nil {
			return err
		}
		return m.completeSetup(ctx, user, msgRequestSent(user.FirstName))
	}

	if partner.PartnerID != nil && *partner.PartnerID == user.ID {
		return m.completeSetup(ctx, user, msgAlreadyPartners(user.FirstName, partner.FirstName))
	}

	made, err := m.Requests.FindByRequester(ctx, partner.ID)
	if err != nil {
		return err
	}
	received, err := m.Requests.FindByRequestee(ctx, partner.ID)
	if err != nil {
		return err
	}

	switch {
	case made != nil && made.RequesteeID == user.ID:
		// They asked for us first — cement the partnership.
		if err := m.Users.SetPartners(ctx, user.ID, partner.ID); err != nil {
			return err
		}
		if err := m.Requests.Delete(ctx, made.ID); err != nil {
			return err
		}
		if err := m.SMS.Send(ctx, partner.Phone, msgPartnershipAcceptedNotice(user.FirstName)); err != nil {
			return err
		}
		return m.completeSetup(ctx, user, msgPartnershipCreated(partner.FirstName))

	case received != nil && received.RequesterID == user.ID:
		// We already asked them — nothing to mutate.
		return m.completeSetup(ctx, user, msgRequestStillPending(user.FirstName))

	case partner.PartnerID != nil || made != nil || received != nil:
		// Attached to someone else, one way or another.
		if err := m.SMS.Send(ctx, partner.Phone, msgConflictToPartner(user.FirstName, m.SupportContact)); err != nil {
			return err
		}
		return m.completeSetup(ctx, user, msgConflictToRequester(user.FirstName))

	default:
		if _, err := m.Requests.Create(ctx, user.ID, partner.ID); err != nil {
			return err
		}
		if err := m.SMS.Send(ctx, partner.Phone, msgRequestToPartner(partner.FirstName, user.FirstName, user.Phone)); err != nil {
			return err
		}
		return m.completeSetup(ctx, user, msgRequestSent(user.FirstName))
	}
}
