package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"qanda-backend/internal/handlers"
	"qanda-backend/internal/middleware"
	"qanda-backend/internal/models"
	"qanda-backend/internal/setup/setuptest"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newDashboard() (*handlers.DashboardHandler, *setuptest.Users, *setuptest.Answers, *setuptest.Tokens) {
	users := setuptest.NewUsers()
	answers := setuptest.NewAnswers()
	tokens := setuptest.NewTokens()
	h := &handlers.DashboardHandler{
		Users:     users,
		Answers:   answers,
		Tokens:    tokens,
		JWTSecret: testSecret,
	}
	return h, users, answers, tokens
}

func TestVerifyTokenIssuesSession(t *testing.T) {
	h, users, _, tokens := newDashboard()
	user := users.Add(models.User{Phone: "+13105550100", FirstName: "Gabriel", SetupStage: models.StageComplete})

	require.NoError(t, tokens.Create(context.Background(), &models.AuthToken{
		Phone:     user.Phone,
		Token:     "tok-1",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}))

	rec := httptest.NewRecorder()
	h.VerifyToken(rec, httptest.NewRequest(http.MethodGet, "/dashboard/verify?token=tok-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handlers.VerifyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.Phone, resp.User.Phone)

	// Single use: a second exchange fails.
	rec = httptest.NewRecorder()
	h.VerifyToken(rec, httptest.NewRequest(http.MethodGet, "/dashboard/verify?token=tok-1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	h, users, _, tokens := newDashboard()
	user := users.Add(models.User{Phone: "+13105550100", SetupStage: models.StageComplete})

	require.NoError(t, tokens.Create(context.Background(), &models.AuthToken{
		Phone:     user.Phone,
		Token:     "tok-old",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	rec := httptest.NewRecorder()
	h.VerifyToken(rec, httptest.NewRequest(http.MethodGet, "/dashboard/verify?token=tok-old", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyTokenRejectsUnknown(t *testing.T) {
	h, _, _, _ := newDashboard()

	rec := httptest.NewRecorder()
	h.VerifyToken(rec, httptest.NewRequest(http.MethodGet, "/dashboard/verify?token=nope", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.VerifyToken(rec, httptest.NewRequest(http.MethodGet, "/dashboard/verify", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeRequiresAndUsesSession(t *testing.T) {
	h, users, answers, tokens := newDashboard()
	user := users.Add(models.User{Phone: "+13105550100", FirstName: "Gabriel", SetupStage: models.StageComplete})
	partner := users.Add(models.User{Phone: "+13105550199", FirstName: "Dana", SetupStage: models.StageComplete})
	require.NoError(t, users.SetPartners(context.Background(), user.ID, partner.ID))
	require.NoError(t, answers.Create(context.Background(), &models.Answer{UserID: user.ID, Text: "Coffee", AnsweredOn: "2026-03-14"}))

	require.NoError(t, tokens.Create(context.Background(), &models.AuthToken{
		Phone:     user.Phone,
		Token:     "tok-1",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}))

	rec := httptest.NewRecorder()
	h.VerifyToken(rec, httptest.NewRequest(http.MethodGet, "/dashboard/verify?token=tok-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var session handlers.VerifyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&session))

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(testSecret))
		r.Get("/me", h.Me)
	})

	// Without a token
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// With the session token
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		User    *models.User    `json:"user"`
		Partner *models.User    `json:"partner"`
		Answers []models.Answer `json:"answers"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Gabriel", body.User.FirstName)
	require.NotNil(t, body.Partner)
	assert.Equal(t, "Dana", body.Partner.FirstName)
	require.Len(t, body.Answers, 1)
	assert.Equal(t, "Coffee", body.Answers[0].Text)
}
