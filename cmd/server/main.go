package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"qanda-backend/internal/alert"
	"qanda-backend/internal/classify"
	"qanda-backend/internal/database"
	"qanda-backend/internal/dedup"
	"qanda-backend/internal/handlers"
	customMiddleware "qanda-backend/internal/middleware"
	"qanda-backend/internal/repository"
	"qanda-backend/internal/scheduler"
	"qanda-backend/internal/setup"
	"qanda-backend/internal/sms"
	"qanda-backend/internal/zipcode"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env (ignore error in production — env vars set directly)
	_ = godotenv.Load()

	// Required env vars
	mongoURI := getEnv("MONGODB_URI", "")
	dbName := getEnv("DB_NAME", "qanda")
	jwtSecret := getEnv("JWT_SECRET", "")
	port := getEnv("PORT", "8080")
	baseURL := getEnv("BASE_URL", "http://localhost:"+port)
	supportContact := getEnv("SUPPORT_CONTACT", "support@qanda.example")

	if mongoURI == "" {
		log.Fatal("❌ MONGODB_URI is required")
	}
	if jwtSecret == "" {
		log.Fatal("❌ JWT_SECRET is required")
	}

	// Connect to MongoDB
	if err := database.Connect(mongoURI, dbName); err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepo()
	requestRepo := repository.NewRequestRepo()
	questionRepo := repository.NewQuestionRepo()
	answerRepo := repository.NewAnswerRepo()
	tokenRepo := repository.NewAuthTokenRepo()

	// Ensure indexes
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to create user indexes: %v", err)
	}
	if err := requestRepo.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to create request indexes: %v", err)
	}
	if err := questionRepo.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to create question indexes: %v", err)
	}
	if err := answerRepo.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to create answer indexes: %v", err)
	}
	if err := tokenRepo.EnsureIndexes(ctx); err != nil {
		log.Printf("⚠️  Warning: failed to create token indexes: %v", err)
	}

	// SMS gateway (mock when Twilio credentials are not configured)
	var sender sms.Sender = sms.NewMockSender()
	if sid := getEnv("TWILIO_ACCOUNT_SID", ""); sid != "" {
		sender = sms.NewTwilioSender(sid, getEnv("TWILIO_AUTH_TOKEN", ""), getEnv("TWILIO_PHONE", ""))
		log.Println("✅ Twilio sender configured")
	} else {
		log.Println("⚠️  TWILIO_ACCOUNT_SID not set, using mock SMS sender")
	}

	// Operator alerts (mock when Resend is not configured)
	var alerts alert.Notifier = alert.NewMockNotifier()
	if apiKey := getEnv("RESEND_API_KEY", ""); apiKey != "" {
		alerts = alert.NewResendNotifier(apiKey, getEnv("ALERT_FROM_EMAIL", ""), getEnv("ALERT_TO_EMAIL", supportContact))
		log.Println("✅ Resend alert notifier configured")
	} else {
		log.Println("⚠️  RESEND_API_KEY not set, using mock alert notifier")
	}

	// Webhook retry dedup (optional)
	var deduper handlers.Deduper
	if redisURL := getEnv("REDIS_URL", ""); redisURL != "" {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("❌ Invalid REDIS_URL: %v", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		log.Println("✅ Connected to Redis")
		deduper = dedup.NewRedisDeduper(client, 24*time.Hour)
	} else {
		log.Println("⚠️  REDIS_URL not set, webhook dedup disabled")
	}

	classifier := classify.New(zipcode.Timezone)

	machine := &setup.Machine{
		Users:          userRepo,
		Requests:       requestRepo,
		Questions:      questionRepo,
		SMS:            sender,
		Alerts:         alerts,
		SupportContact: supportContact,
	}

	inboundHandler := &handlers.InboundHandler{
		Users:      userRepo,
		Questions:  questionRepo,
		Answers:    answerRepo,
		Requests:   requestRepo,
		Tokens:     tokenRepo,
		Machine:    machine,
		Classifier: classifier,
		SMS:        sender,
		Dedup:      deduper,
		BaseURL:    baseURL,
	}
	dashboardHandler := &handlers.DashboardHandler{
		Users:     userRepo,
		Answers:   answerRepo,
		Tokens:    tokenRepo,
		JWTSecret: jwtSecret,
	}

	// Daily question broadcast at each user's local noon
	broadcast := &scheduler.Service{
		Users:     userRepo,
		Questions: questionRepo,
		SMS:       sender,
	}
	cronJob := broadcast.Start()
	defer cronJob.Stop()

	// Setup chi router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"qanda-backend"}`))
	})

	// Messaging-provider webhook
	r.Post("/sms/inbound", inboundHandler.Receive)

	// Dashboard (token exchange is public, profile requires JWT)
	r.Get("/dashboard/verify", dashboardHandler.VerifyToken)
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.JWTAuth(jwtSecret))
		r.Get("/me", dashboardHandler.Me)
	})

	// Start server
	log.Printf("🚀 Q&A backend starting on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
