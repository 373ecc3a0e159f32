package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"qanda-backend/internal/classify"
	"qanda-backend/internal/models"
	"qanda-backend/internal/setup"
	"qanda-backend/internal/sms"

	"github.com/google/uuid"
)

// Deduper filters webhook retries so one text message is handled once.
type Deduper interface {
	Seen(ctx context.Context, id string) bool
}

type TokenStore interface {
	Create(ctx context.Context, token *models.AuthToken) error
	FindByToken(ctx context.Context, token string) (*models.AuthToken, error)
	MarkUsed(ctx context.Context, token string) error
	CountRecentByPhone(ctx context.Context, phone string, duration time.Duration) (int64, error)
}

// InboundHandler is the message router: every inbound SMS lands here.
// It loads (or creates) the sender's account and dispatches to the
// setup machine or the daily-answer path.
type InboundHandler struct {
	Users      setup.UserStore
	Questions  setup.QuestionStore
	Answers    setup.AnswerStore
	Requests   setup.RequestStore
	Tokens     TokenStore
	Machine    *setup.Machine
	Classifier *classify.Classifier
	SMS        sms.Sender
	Dedup      Deduper
	BaseURL    string

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

const msgWelcome = "Welcome to Q&A, a simple SMS app that asks you daily questions and sends your answers to your partner. Q&A also saves your answers, year after year, so you can see how your answers have changed over time.\n\nWhat's your first name?"

const msgHelp = "Here's what you can text me:\n- Anything, on a question day, to answer the daily question\n- \"Dashboard\" for a link to your settings\n- \"Accept\" or \"Decline\" when you have a pending partner request\n- \"Help\" for this list"

const msgNoQuestionToday = "I don't have a question for you today, but I'll text you as soon as the next one is ready."

// --- POST /sms/inbound ---

func (h *InboundHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid form body"})
		return
	}

	from := r.PostFormValue("From")
	body := strings.TrimSpace(r.PostFormValue("Body"))
	fromZip := r.PostFormValue("FromZip")
	messageSid := r.PostFormValue("MessageSid")

	if from == "" || body == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "From and Body are required"})
		return
	}

	ctx := r.Context()

	// Providers retry webhooks; the same message must not be handled
	// twice or a retried "yes" could advance a conversation two steps.
	if h.Dedup != nil && messageSid != "" && h.Dedup.Seen(ctx, messageSid) {
		log.Printf("Skipping duplicate delivery %s", messageSid)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	user, err := h.Users.FindByPhone(ctx, from)
	if err != nil {
		log.Printf("Error finding user %s: %v", from, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if user == nil {
		h.welcomeNewUser(ctx, w, from, fromZip)
		return
	}

	if !user.SetupComplete() || !user.StageKnown() {
		result := h.Classifier.Classify(body)
		if err := h.Machine.HandleReply(ctx, user, result, fromZip); err != nil {
			log.Printf("Error handling setup reply from %s: %v", from, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.handleComplete(ctx, w, user, body)
}

// welcomeNewUser creates an account at stage 0 (timezone best-effort
// from the carrier ZIP) and asks for their first name.
func (h *InboundHandler) welcomeNewUser(ctx context.Context, w http.ResponseWriter, from, fromZip string) {
	timezone := ""
	if h.Classifier != nil && h.Classifier.ZipToTimezone != nil {
		timezone = h.Classifier.ZipToTimezone(fromZip)
	}
	user := &models.User{
		Phone:      from,
		Timezone:   timezone,
		SetupStage: models.StageAwaitingName,
	}
	if err := h.Users.Create(ctx, user); err != nil {
		log.Printf("Error creating user %s: %v", from, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if err := h.SMS.Send(ctx, from, msgWelcome); err != nil {
		log.Printf("Error welcoming %s: %v", from, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleComplete handles messages from fully-onboarded users: keywords
// first, then a pending partner request, then the daily answer.
func (h *InboundHandler) handleComplete(ctx context.Context, w http.ResponseWriter, user *models.User, body string) {
	switch strings.ToLower(body) {
	case "help":
		h.reply(ctx, w, user.Phone, msgHelp)
		return
	case "dashboard":
		h.sendDashboardLink(ctx, w, user)
		return
	}

	pending, err := h.Requests.FindByRequestee(ctx, user.ID)
	if err != nil {
		log.Printf("Error loading pending request for %s: %v", user.Phone, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if pending != nil {
		switch strings.ToLower(body) {
		case "accept":
			h.acceptRequest(ctx, w, user, pending)
			return
		case "decline":
			h.declineRequest(ctx, w, user, pending)
			return
		}
		// Anything else is an ordinary message; the request stays open.
	}

	h.recordAnswer(ctx, w, user, body)
}

func (h *InboundHandler) acceptRequest(ctx context.Context, w http.ResponseWriter, user *models.User, pending *models.PartnershipRequest) {
	requester, err := h.Users.FindByID(ctx, pending.RequesterID)
	if err != nil {
		log.Printf("Error loading requester %s: %v", pending.RequesterID.Hex(), err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if requester == nil {
		// Stale request pointing at a record that no longer resolves.
		if err := h.Requests.Delete(ctx, pending.ID); err != nil {
			log.Printf("Error deleting stale request %s: %v", pending.ID.Hex(), err)
		}
		h.reply(ctx, w, user.Phone, "It looks like that partner request is no longer valid, so I've cleared it out.")
		return
	}

	if err := h.Users.SetPartners(ctx, user.ID, requester.ID); err != nil {
		log.Printf("Error linking partners %s and %s: %v", user.ID.Hex(), requester.ID.Hex(), err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if err := h.Requests.Delete(ctx, pending.ID); err != nil {
		log.Printf("Error deleting accepted request %s: %v", pending.ID.Hex(), err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := h.SMS.Send(ctx, requester.Phone, fmt.Sprintf("Congrats! %s accepted your partner request. When either of you replies to a Daily Question, the other will be sent the answer. As the years go by, you'll also be reminded of previous years' answers. Have fun!", user.FirstName)); err != nil {
		log.Printf("Error notifying requester %s: %v", requester.Phone, err)
	}
	h.reply(ctx, w, user.Phone, fmt.Sprintf("Congrats! You and %s are connected. When either of you replies to a Daily Question, the other will be sent the answer. As the years go by, you'll also be reminded of previous years' answers. Have fun!", requester.FirstName))
}

func (h *InboundHandler) declineRequest(ctx context.Context, w http.ResponseWriter, user *models.User, pending *models.PartnershipRequest) {
	if err := h.Requests.Delete(ctx, pending.ID); err != nil {
		log.Printf("Error deleting declined request %s: %v", pending.ID.Hex(), err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	requester, err := h.Users.FindByID(ctx, pending.RequesterID)
	if err != nil {
		log.Printf("Error loading requester %s: %v", pending.RequesterID.Hex(), err)
	}
	if requester != nil {
		if err := h.SMS.Send(ctx, requester.Phone, fmt.Sprintf("%s declined your partner request. You can always send another one later from your dashboard.", user.FirstName)); err != nil {
			log.Printf("Error notifying requester %s: %v", requester.Phone, err)
		}
	}
	h.reply(ctx, w, user.Phone, "No problem, I've declined that request. Your answers stay just between you and me.")
}

// recordAnswer stores the message as today's answer and cross-delivers
// the partner's same-day answer when there is one.
func (h *InboundHandler) recordAnswer(ctx context.Context, w http.ResponseWriter, user *models.User, body string) {
	localNow := h.now().In(user.Location())

	question, err := h.Questions.FindByDate(ctx, models.MonthDay(localNow))
	if err != nil {
		log.Printf("Error loading today's question: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if question == nil {
		h.reply(ctx, w, user.Phone, msgNoQuestionToday)
		return
	}

	day := models.Day(localNow)
	answer := &models.Answer{
		UserID:     user.ID,
		QuestionID: question.ID,
		Text:       body,
		AnsweredOn: day,
	}
	if err := h.Answers.Create(ctx, answer); err != nil {
		log.Printf("Error creating answer for %s: %v", user.Phone, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if user.PartnerID == nil {
		h.reply(ctx, w, user.Phone, "Great. I'll save your answer — next year you'll get to see how it changes.")
		return
	}

	if err := h.SMS.Send(ctx, user.Phone, "Great. I'll share your answer with your partner."); err != nil {
		log.Printf("Error confirming answer to %s: %v", user.Phone, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	partnerAnswer, err := h.Answers.FindForQuestion(ctx, question.ID, *user.PartnerID, day)
	if err != nil {
		log.Printf("Error loading partner answer: %v", err)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if partnerAnswer != nil {
		partner, err := h.Users.FindByID(ctx, *user.PartnerID)
		if err != nil || partner == nil {
			log.Printf("Error loading partner %s: %v", user.PartnerID.Hex(), err)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err := h.SMS.Send(ctx, user.Phone, fmt.Sprintf("%s answered with:\n\n%s", partner.FirstName, partnerAnswer.Text)); err != nil {
			log.Printf("Error forwarding partner answer to %s: %v", user.Phone, err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// sendDashboardLink texts a single-use login link, rate limited per
// phone number.
func (h *InboundHandler) sendDashboardLink(ctx context.Context, w http.ResponseWriter, user *models.User) {
	count, err := h.Tokens.CountRecentByPhone(ctx, user.Phone, 10*time.Minute)
	if err != nil {
		log.Printf("Error checking token rate limit: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if count >= 5 {
		h.reply(ctx, w, user.Phone, "I've already texted you a few dashboard links. Try the latest one, or wait a few minutes and ask again.")
		return
	}

	token := &models.AuthToken{
		Phone:     user.Phone,
		Token:     uuid.New().String(),
		ExpiresAt: h.now().Add(15 * time.Minute),
	}
	if err := h.Tokens.Create(ctx, token); err != nil {
		log.Printf("Error creating dashboard token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	link := fmt.Sprintf("%s/dashboard/verify?token=%s", h.BaseURL, token.Token)
	h.reply(ctx, w, user.Phone, fmt.Sprintf("Here's your dashboard link: %s\n\nIt expires in 15 minutes and can only be used once.", link))
}

func (h *InboundHandler) reply(ctx context.Context, w http.ResponseWriter, to, body string) {
	if err := h.SMS.Send(ctx, to, body); err != nil {
		log.Printf("Error sending reply to %s: %v", to, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InboundHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
