// Package setup implements the account-setup conversation: a finite
// sequence of stages (name, zipcode/timezone, partner opt-in, partner
// phone number, partnership resolution) driven by classified free-text
// replies. Every unrecognized reply is a no-op retry — the same
// question is re-asked and no record is mutated — so a misunderstood
// message can never corrupt a user's setup state.
package setup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"qanda-backend/internal/alert"
	"qanda-backend/internal/classify"
	"qanda-backend/internal/models"
	"qanda-backend/internal/sms"
)

// ErrStageOutOfRange marks a user record whose stored setup stage this
// service does not understand. The flow is terminal for that user until
// the record is repaired.
var ErrStageOutOfRange = errors.New("setup stage out of range")

// Machine advances a user through account setup. All collaborators are
// injected; the machine itself keeps no state between replies.
type Machine struct {
	Users     UserStore
	Requests  RequestStore
	Questions QuestionStore
	SMS       sms.Sender
	Alerts    alert.Notifier

	// SupportContact is quoted in messages that ask the user to reach a
	// human.
	SupportContact string

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

func (m *Machine) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// HandleReply processes one classified reply for a user who has not
// finished setup. fromZip is the carrier-supplied originating ZIP,
// best-effort and possibly empty.
func (m *Machine) HandleReply(ctx context.Context, user *models.User, res classify.Result, fromZip string) error {
	switch user.SetupStage {

	case models.StageAwaitingName:
		return m.handleName(ctx, user, res)

	case models.StageConfirmingName:
		return m.handleNameConfirmation(ctx, user, res, fromZip)

	case models.StageConfirmingZip:
		return m.handleZipConfirmation(ctx, user, res)

	case models.StageConfirmingPartnerIntent:
		return m.handlePartnerIntent(ctx, user, res)

	case models.StageConfirmingPartnerPhone:
		return m.handlePartnerPhoneConfirmation(ctx, user, res)

	default:
		// Stage 5 is routed to answer recording before this machine is
		// ever invoked, so any value landing here is a corrupt record.
		if m.Alerts != nil {
			_ = m.Alerts.Publish(ctx, "setup stage out of range",
				fmt.Sprintf("user %s has setup_stage %d", user.ID.Hex(), user.SetupStage))
		}
		if err := m.SMS.Send(ctx, user.Phone, msgStageFault(user.FirstName, m.SupportContact)); err != nil {
			log.Printf("⚠️  Failed to send stage-fault apology to %s: %v", user.Phone, err)
		}
		return fmt.Errorf("user %s stage %d: %w", user.ID.Hex(), user.SetupStage, ErrStageOutOfRange)
	}
}

// Stage 0: whatever they sent is their first name.
func (m *Machine) handleName(ctx context.Context, user *models.User, res classify.Result) error {
	name := res.Raw
	if err := m.Users.UpdateName(ctx, user.ID, name, models.StageConfirmingName); err != nil {
		return err
	}
	return m.SMS.Send(ctx, user.Phone, msgConfirmName(name))
}

// Stage 1: did we spell the name right?
func (m *Machine) handleNameConfirmation(ctx context.Context, user *models.User, res classify.Result, fromZip string) error {
	switch {
	case res.Affirmative:
		if err := m.Users.UpdateStage(ctx, user.ID, models.StageConfirmingZip); err != nil {
			return err
		}
		if fromZip != "" && user.Timezone != "" {
			return m.SMS.Send(ctx, user.Phone, msgConfirmCarrierZip(fromZip, user.Timezone))
		}
		// No carrier ZIP to confirm — ask outright.
		return m.SMS.Send(ctx, user.Phone, msgAskZip)
	case res.Negative:
		// Rollback: let them re-enter the name.
		if err := m.Users.UpdateStage(ctx, user.ID, models.StageAwaitingName); err != nil {
			return err
		}
		return m.SMS.Send(ctx, user.Phone, msgAskNameAgain)
	default:
		return m.SMS.Send(ctx, user.Phone, msgReconfirmName(user.FirstName))
	}
}

// Stage 2: confirm the zipcode / timezone. A ZIP reply updates the
// timezone but does not advance; the next affirmative does.
func (m *Machine) handleZipConfirmation(ctx context.Context, user *models.User, res classify.Result) error {
	switch {
	case res.Affirmative:
		if err := m.Users.UpdateStage(ctx, user.ID, models.StageConfirmingPartnerIntent); err != nil {
			return err
		}
		return m.SMS.Send(ctx, user.Phone, msgAskPartnerIntent)
	case res.Negative:
		return m.SMS.Send(ctx, user.Phone, msgAskZip)
	case res.Zip != "":
		if err := m.Users.UpdateTimezone(ctx, user.ID, res.Timezone); err != nil {
			return err
		}
		return m.SMS.Send(ctx, user.Phone, msgConfirmResolvedZip(res.Zip, res.Timezone))
	default:
		return m.SMS.Send(ctx, user.Phone, msgReaskZip)
	}
}

// Stage 3: do they want a partner at all?
func (m *Machine) handlePartnerIntent(ctx context.Context, user *models.User, res classify.Result) error {
	switch {
	case res.Affirmative:
		return m.SMS.Send(ctx, user.Phone, msgAskPartnerPhone)
	case res.Negative:
		return m.completeSetup(ctx, user, msgSoloMode)
	case res.Phone != "":
		if err := m.Users.UpdatePendingPartnerPhone(ctx, user.ID, res.Phone, models.StageConfirmingPartnerPhone); err != nil {
			return err
		}
		return m.SMS.Send(ctx, user.Phone, msgConfirmPartnerPhone(res.Phone))
	default:
		return m.SMS.Send(ctx, user.Phone, msgReaskPartnerIntent)
	}
}

// Stage 4: confirm the pending partner number, then resolve it.
func (m *Machine) handlePartnerPhoneConfirmation(ctx context.Context, user *models.User, res classify.Result) error {
	if user.PendingPartnerPhone == "" {
		// Record lost the candidate number; start the partner flow over.
		if err := m.Users.UpdateStage(ctx, user.ID, models.StageConfirmingPartnerIntent); err != nil {
			return err
		}
		return m.SMS.Send(ctx, user.Phone, msgReaskPartnerIntent)
	}
	switch {
	case res.Affirmative:
		return m.resolvePartnership(ctx, user)
	case res.Negative:
		// Rollback: back to the opt-in question.
		if err := m.Users.UpdateStage(ctx, user.ID, models.StageConfirmingPartnerIntent); err != nil {
			return err
		}
		return m.SMS.Send(ctx, user.Phone, msgRollbackIntent)
	default:
		return m.SMS.Send(ctx, user.Phone, msgReconfirmPartnerPhone(user.PendingPartnerPhone))
	}
}

// completeSetup moves the user to the terminal stage, sends the closing
// message, and follows up with today's question when one is scheduled.
func (m *Machine) completeSetup(ctx context.Context, user *models.User, body string) error {
	if err := m.Users.UpdateStage(ctx, user.ID, models.StageComplete); err != nil {
		return err
	}
	if err := m.SMS.Send(ctx, user.Phone, body+completionFooter); err != nil {
		return err
	}
	m.sendTodaysQuestion(ctx, user)
	return nil
}

// sendTodaysQuestion is best-effort: a missing question or failed send
// is logged, not surfaced, since setup itself already succeeded.
func (m *Machine) sendTodaysQuestion(ctx context.Context, user *models.User) {
	if m.Questions == nil {
		return
	}
	today := models.MonthDay(m.now().In(user.Location()))
	question, err := m.Questions.FindByDate(ctx, today)
	if err != nil {
		log.Printf("⚠️  Failed to load question for %s: %v", today, err)
		return
	}
	if question == nil {
		return
	}
	greeting := user.FirstName
	if greeting == "" {
		greeting = "there"
	}
	if err := m.SMS.Send(ctx, user.Phone, fmt.Sprintf("Hello, %s. %s", greeting, question.Text)); err != nil {
		log.Printf("⚠️  Failed to send today's question to %s: %v", user.Phone, err)
	}
}
