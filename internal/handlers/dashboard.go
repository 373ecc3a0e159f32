package handlers

import (
	"log"
	"net/http"
	"time"

	"qanda-backend/internal/middleware"
	"qanda-backend/internal/models"
	"qanda-backend/internal/setup"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// DashboardHandler exchanges texted one-time tokens for dashboard
// sessions and serves the profile endpoint behind them.
type DashboardHandler struct {
	Users     setup.UserStore
	Answers   setup.AnswerStore
	Tokens    TokenStore
	JWTSecret string
}

type VerifyResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// --- GET /dashboard/verify ---

func (h *DashboardHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	tokenValue := r.URL.Query().Get("token")
	if tokenValue == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "token is required"})
		return
	}

	authToken, err := h.Tokens.FindByToken(r.Context(), tokenValue)
	if err != nil {
		log.Printf("Error finding token: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if authToken == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		return
	}
	if authToken.IsExpired() {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token has expired"})
		return
	}
	if authToken.IsUsed {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token has already been used"})
		return
	}

	if err := h.Tokens.MarkUsed(r.Context(), tokenValue); err != nil {
		log.Printf("Error marking token as used: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	user, err := h.Users.FindByPhone(r.Context(), authToken.Phone)
	if err != nil {
		log.Printf("Error finding user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}

	// 30-day dashboard session
	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID.Hex(),
		"phone":   user.Phone,
		"exp":     time.Now().Add(30 * 24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	})
	tokenString, err := jwtToken.SignedString([]byte(h.JWTSecret))
	if err != nil {
		log.Printf("Error signing JWT: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, VerifyResponse{
		Token: tokenString,
		User:  user,
	})
}

// --- GET /me ---

func (h *DashboardHandler) Me(w http.ResponseWriter, r *http.Request) {
	userIDHex := middleware.GetUserID(r.Context())
	if userIDHex == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	userID, err := bson.ObjectIDFromHex(userIDHex)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user ID"})
		return
	}

	user, err := h.Users.FindByID(r.Context(), userID)
	if err != nil {
		log.Printf("Error finding user: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if user == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}

	var partner *models.User
	if user.PartnerID != nil {
		partner, err = h.Users.FindByID(r.Context(), *user.PartnerID)
		if err != nil {
			log.Printf("Error finding partner: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
	}

	answers, err := h.Answers.ListRecentByUser(r.Context(), user.ID, 30)
	if err != nil {
		log.Printf("Error listing answers: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":    user,
		"partner": partner,
		"answers": answers,
	})
}
