// Package setuptest provides in-memory implementations of the setup
// store interfaces for tests, mirroring the Mongo repositories' nil-on-
// not-found behavior. Find methods return copies, the way a database
// decode would.
package setuptest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"qanda-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// --- Users ---

type Users struct {
	mu   sync.Mutex
	byID map[bson.ObjectID]*models.User
}

func NewUsers() *Users {
	return &Users{byID: make(map[bson.ObjectID]*models.User)}
}

// Add inserts a user directly, assigning an ID, and returns a copy.
func (s *Users) Add(user models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = bson.NewObjectID()
	s.byID[user.ID] = &user
	copied := user
	return &copied
}

// Get returns a copy of the stored record, or nil.
func (s *Users) Get(id bson.ObjectID) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil
	}
	copied := *u
	return &copied
}

func (s *Users) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Phone == phone {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *Users) FindByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	if u := s.Get(id); u != nil {
		return u, nil
	}
	return nil, nil
}

func (s *Users) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = bson.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	copied := *user
	s.byID[user.ID] = &copied
	return nil
}

func (s *Users) UpdateStage(_ context.Context, id bson.ObjectID, stage int) error {
	return s.update(id, func(u *models.User) { u.SetupStage = stage })
}

func (s *Users) UpdateName(_ context.Context, id bson.ObjectID, name string, stage int) error {
	return s.update(id, func(u *models.User) {
		u.FirstName = name
		u.SetupStage = stage
	})
}

func (s *Users) UpdateTimezone(_ context.Context, id bson.ObjectID, timezone string) error {
	return s.update(id, func(u *models.User) { u.Timezone = timezone })
}

func (s *Users) UpdatePendingPartnerPhone(_ context.Context, id bson.ObjectID, phone string, stage int) error {
	return s.update(id, func(u *models.User) {
		u.PendingPartnerPhone = phone
		u.SetupStage = stage
	})
}

func (s *Users) SetPartners(_ context.Context, a, b bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ua, oka := s.byID[a]
	ub, okb := s.byID[b]
	if !oka || !okb {
		return fmt.Errorf("setuptest: missing user in SetPartners")
	}
	ua.PartnerID = &b
	ub.PartnerID = &a
	return nil
}

func (s *Users) ListCompleted(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.byID {
		if u.SetupStage >= models.StageComplete {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *Users) update(id bson.ObjectID, fn func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("setuptest: no user %s", id.Hex())
	}
	fn(u)
	u.UpdatedAt = time.Now()
	return nil
}

// --- Requests ---

type Requests struct {
	mu   sync.Mutex
	byID map[bson.ObjectID]*models.PartnershipRequest
}

func NewRequests() *Requests {
	return &Requests{byID: make(map[bson.ObjectID]*models.PartnershipRequest)}
}

func (s *Requests) Create(_ context.Context, requesterID, requesteeID bson.ObjectID) (*models.PartnershipRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.byID {
		if r.RequesterID == requesterID && r.RequesteeID == requesteeID {
			// Mirrors the unique compound index.
			return nil, fmt.Errorf("setuptest: duplicate partnership request")
		}
	}
	req := &models.PartnershipRequest{
		ID:          bson.NewObjectID(),
		RequesterID: requesterID,
		RequesteeID: requesteeID,
		CreatedAt:   time.Now(),
	}
	s.byID[req.ID] = req
	copied := *req
	return &copied, nil
}

func (s *Requests) FindByRequester(_ context.Context, requesterID bson.ObjectID) (*models.PartnershipRequest, error) {
	return s.findOne(func(r *models.PartnershipRequest) bool { return r.RequesterID == requesterID })
}

func (s *Requests) FindByRequestee(_ context.Context, requesteeID bson.ObjectID) (*models.PartnershipRequest, error) {
	return s.findOne(func(r *models.PartnershipRequest) bool { return r.RequesteeID == requesteeID })
}

func (s *Requests) Delete(_ context.Context, id bson.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

func (s *Requests) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *Requests) findOne(match func(*models.PartnershipRequest) bool) (*models.PartnershipRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.byID {
		if match(r) {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

// --- Questions ---

type Questions struct {
	mu     sync.Mutex
	byDate map[string]*models.Question
}

func NewQuestions() *Questions {
	return &Questions{byDate: make(map[string]*models.Question)}
}

func (s *Questions) Add(monthDay, text string) *models.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := &models.Question{
		ID:        bson.NewObjectID(),
		DateToAsk: monthDay,
		Text:      text,
		CreatedAt: time.Now(),
	}
	s.byDate[monthDay] = q
	copied := *q
	return &copied
}

func (s *Questions) FindByDate(_ context.Context, monthDay string) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.byDate[monthDay]
	if !ok {
		return nil, nil
	}
	copied := *q
	return &copied, nil
}

// --- Answers ---

type Answers struct {
	mu  sync.Mutex
	all []models.Answer
}

func NewAnswers() *Answers {
	return &Answers{}
}

func (s *Answers) Create(_ context.Context, answer *models.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	answer.ID = bson.NewObjectID()
	answer.CreatedAt = time.Now()
	s.all = append(s.all, *answer)
	return nil
}

func (s *Answers) FindForQuestion(_ context.Context, questionID, userID bson.ObjectID, day string) (*models.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.all {
		a := s.all[i]
		if a.QuestionID == questionID && a.UserID == userID && a.AnsweredOn == day {
			return &a, nil
		}
	}
	return nil, nil
}

func (s *Answers) ListRecentByUser(_ context.Context, userID bson.ObjectID, limit int64) ([]models.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Answer
	for i := len(s.all) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if s.all[i].UserID == userID {
			out = append(out, s.all[i])
		}
	}
	return out, nil
}

func (s *Answers) All() []models.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Answer, len(s.all))
	copy(out, s.all)
	return out
}

// --- Tokens ---

type Tokens struct {
	mu      sync.Mutex
	byToken map[string]*models.AuthToken
}

func NewTokens() *Tokens {
	return &Tokens{byToken: make(map[string]*models.AuthToken)}
}

func (s *Tokens) Create(_ context.Context, token *models.AuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	token.ID = bson.NewObjectID()
	token.CreatedAt = time.Now()
	copied := *token
	s.byToken[token.Token] = &copied
	return nil
}

func (s *Tokens) FindByToken(_ context.Context, token string) (*models.AuthToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byToken[token]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (s *Tokens) MarkUsed(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.byToken[token]; ok {
		t.IsUsed = true
	}
	return nil
}

func (s *Tokens) CountRecentByPhone(_ context.Context, phone string, duration time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	since := time.Now().Add(-duration)
	var count int64
	for _, t := range s.byToken {
		if t.Phone == phone && t.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}
