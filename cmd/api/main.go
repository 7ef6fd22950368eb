package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/caretaker-api/internal/application/chat"
	"github.com/caretaker-api/internal/application/contact"
	"github.com/caretaker-api/internal/application/entry"
	"github.com/caretaker-api/internal/application/export"
	"github.com/caretaker-api/internal/application/session"
	"github.com/caretaker-api/internal/application/verification"
	"github.com/caretaker-api/internal/application/wellness"
	"github.com/caretaker-api/internal/config"
	"github.com/caretaker-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/caretaker-api/internal/infrastructure/jwt"
	s3infra "github.com/caretaker-api/internal/infrastructure/s3"
	"github.com/caretaker-api/internal/infrastructure/smtp"
	"github.com/caretaker-api/internal/infrastructure/sns"
	transport "github.com/caretaker-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx := context.Background()

	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	sessionRepo := dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions)
	entryRepo := dynamo.NewEntryRepo(dynamoClient, cfg.DynamoTables.Entries)
	contactRepo := dynamo.NewContactRepo(dynamoClient, cfg.DynamoTables.Contacts)
	challengeRepo := dynamo.NewChallengeRepo(dynamoClient, cfg.DynamoTables.Challenges)
	alertRepo := dynamo.NewAlertRepo(dynamoClient, cfg.DynamoTables.Alerts)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		slog.Warn("JWT keys unavailable, falling back to X-Session-ID auth", "err", err)
		jwtProvider = nil
	}

	smsSender, err := sns.NewSender(cfg)
	if err != nil {
		slog.Error("failed to initialise SNS sender", "err", err)
		os.Exit(1)
	}
	mailer := smtp.NewMailer(cfg)
	objectStore := s3infra.NewStore(s3infra.NewClient(cfg), cfg.S3BucketName)

	var signer session.TokenSigner
	if jwtProvider != nil {
		signer = jwtProvider
	}
	sessionSvc := session.NewService(sessionRepo, signer)
	entrySvc := entry.NewService(entry.ServiceDeps{
		EntryRepo:     entryRepo,
		ContactRepo:   contactRepo,
		AlertRepo:     alertRepo,
		SMSSender:     smsSender,
		NotifyTimeout: cfg.NotifyTimeout,
	})
	contactSvc := contact.NewService(contactRepo)
	verificationSvc := verification.NewService(verification.ServiceDeps{
		ContactRepo:   contactRepo,
		ChallengeRepo: challengeRepo,
		AlertRepo:     alertRepo,
		SMSSender:     smsSender,
		Mailer:        mailer,
		NotifyTimeout: cfg.NotifyTimeout,
	})
	chatSvc := chat.NewService(contactRepo, alertRepo)
	wellnessSvc := wellness.NewService(sessionRepo, entryRepo)
	exportSvc := export.NewService(export.ServiceDeps{
		SessionRepo: sessionRepo,
		EntryRepo:   entryRepo,
		AlertRepo:   alertRepo,
		ContactRepo: contactRepo,
		ObjectStore: objectStore,
	})

	router := transport.NewRouter(transport.RouterDeps{
		Config:       cfg,
		JWTProvider:  jwtProvider,
		Sessions:     sessionSvc,
		Entries:      entrySvc,
		Contacts:     contactSvc,
		Verification: verificationSvc,
		Chat:         chatSvc,
		Wellness:     wellnessSvc,
		Export:       exportSvc,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "err", err)
	}

	// Drain in-flight OTP and alert deliveries before exiting.
	entrySvc.Wait()
	verificationSvc.Wait()
	slog.Info("server stopped")
}
