package rest

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cyberqa/internal/logger"
	"cyberqa/internal/service"
	"cyberqa/internal/storage"
	"cyberqa/internal/transport/rest/handler"
	"cyberqa/internal/transport/rest/middleware"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService     *service.AuthService
	QuestionService *service.QuestionService
	AnswerService   *service.AnswerService
	Store           *storage.LocalStore
	Logger          *logger.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService, c.Logger)
	questionHandler := handler.NewQuestionHandler(c.QuestionService, c.Store, c.Logger)
	answerHandler := handler.NewAnswerHandler(c.AnswerService, c.Store, c.Logger)

	authMW := middleware.NewAuthMiddleware(c.AuthService)
	metrics := middleware.NewMetrics()

	r.Use(corsMiddleware)
	r.Use(metrics.Instrument)
	r.Use(requestLogger(c.Logger))

	// Health check and metrics
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Stored images
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(c.Store.Root()))),
	).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/questions", questionHandler.List).Methods("GET", "OPTIONS")
	api.HandleFunc("/questions/{id}", questionHandler.Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/answers/question/{questionId}", answerHandler.ByQuestion).Methods("GET", "OPTIONS")

	// Authenticated routes
	userRoutes := api.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireAuthenticated)

	userRoutes.HandleFunc("/auth/me", authHandler.Me).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/answers/user", answerHandler.Mine).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/answers/{questionId}", answerHandler.Submit).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/answers/{id}/resubmit", answerHandler.Resubmit).Methods("PUT", "OPTIONS")

	// Admin routes
	adminRoutes := api.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/questions", questionHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/questions/upload-images", questionHandler.UploadImages).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/questions/{id}", questionHandler.Update).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/questions/{id}", questionHandler.Delete).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/answers/pending", answerHandler.Pending).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/answers/{id}/verify", answerHandler.Verify).Methods("PUT", "POST", "OPTIONS")
	adminRoutes.HandleFunc("/answers/{id}/suggest", answerHandler.Suggest).Methods("PUT", "POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func requestLogger(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"duration_ms": time.Since(start).Milliseconds(),
			}).Debug("request handled")
		})
	}
}
