// Package scheduler broadcasts the daily question. Instead of one
// fixed send time, the hourly tick delivers to each user at noon in
// their own timezone.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"qanda-backend/internal/models"
	"qanda-backend/internal/setup"
	"qanda-backend/internal/sms"

	"github.com/robfig/cron/v3"
)

const broadcastHour = 12

type Service struct {
	Users     setup.UserStore
	Questions setup.QuestionStore
	SMS       sms.Sender

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// Start runs the broadcast at the top of every hour and returns the
// cron so the caller can Stop it on shutdown.
func (s *Service) Start() *cron.Cron {
	c := cron.New()
	_, _ = c.AddFunc("0 * * * *", func() {
		s.Broadcast(context.Background())
	})
	c.Start()
	return c
}

// Broadcast sends today's question to every fully-onboarded user whose
// local time is currently in the broadcast hour. Per-user failures are
// logged and skipped so one bad record never blocks the rest.
func (s *Service) Broadcast(ctx context.Context) {
	users, err := s.Users.ListCompleted(ctx)
	if err != nil {
		log.Printf("⚠️  Broadcast: failed to list users: %v", err)
		return
	}

	now := s.now()
	sent := 0
	for i := range users {
		user := &users[i]
		local := now.In(user.Location())
		if local.Hour() != broadcastHour {
			continue
		}

		question, err := s.Questions.FindByDate(ctx, models.MonthDay(local))
		if err != nil {
			log.Printf("⚠️  Broadcast: failed to load question for %s: %v", user.Phone, err)
			continue
		}
		if question == nil {
			continue
		}

		name := user.FirstName
		if name == "" {
			name = "there"
		}
		if err := s.SMS.Send(ctx, user.Phone, fmt.Sprintf("Hello, %s. %s", name, question.Text)); err != nil {
			log.Printf("⚠️  Broadcast: failed to send to %s: %v", user.Phone, err)
			continue
		}
		sent++
	}
	if sent > 0 {
		log.Printf("📬 Broadcast sent today's question to %d user(s)", sent)
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
