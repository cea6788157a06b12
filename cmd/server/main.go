package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cyberqa/internal/cache"
	"cyberqa/internal/config"
	"cyberqa/internal/logger"
	"cyberqa/internal/repository"
	"cyberqa/internal/service"
	"cyberqa/internal/storage"
	"cyberqa/internal/transport/rest"
)

func main() {
	cfg := config.Load()
	log := logger.New("cyberqa-api")

	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.WithField("error", err.Error()).Fatal("failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.WithField("error", err.Error()).Fatal("failed to ping MongoDB")
	}
	log.Info("connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.WithField("error", err.Error()).Fatal("failed to ping Redis")
	}
	log.Info("connected to Redis")

	// Repositories
	accountRepo := repository.NewAccountRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)
	txRunner := repository.NewTxRunner(mongoClient)

	if err := accountRepo.EnsureIndexes(ctx); err != nil {
		log.WithField("error", err.Error()).Fatal("failed to create account indexes")
	}

	// Services
	sessionCache := cache.NewSessionCache(rdb)
	authSvc := service.NewAuthService(accountRepo, sessionCache, cfg)
	questionSvc := service.NewQuestionService(questionRepo, answerRepo)
	answerSvc := service.NewAnswerService(answerRepo, accountRepo, questionRepo, txRunner, cfg)

	store := storage.NewLocalStore(cfg.UploadDir)

	router := rest.NewRouter(&rest.Container{
		AuthService:     authSvc,
		QuestionService: questionSvc,
		AnswerService:   answerSvc,
		Store:           store,
		Logger:          log,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithField("error", err.Error()).Fatal("ListenAndServe")
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithField("error", err.Error()).Fatal("server forced to shutdown")
	}

	log.Info("server exited")
}
