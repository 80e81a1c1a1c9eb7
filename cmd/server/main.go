package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"

	"github.com/focusnest/exposure-service/internal/achievement"
	"github.com/focusnest/exposure-service/internal/challenge"
	"github.com/focusnest/exposure-service/internal/config"
	"github.com/focusnest/exposure-service/internal/httpapi"
	"github.com/focusnest/exposure-service/internal/platform/auth"
	"github.com/focusnest/exposure-service/internal/platform/logging"
	"github.com/focusnest/exposure-service/internal/platform/server"
	"github.com/focusnest/exposure-service/internal/progression"
	"github.com/focusnest/exposure-service/internal/remotelog"
	"github.com/focusnest/exposure-service/internal/scheduler"
	"github.com/focusnest/exposure-service/internal/sentiment"
	"github.com/focusnest/exposure-service/internal/store"
)

const serviceName = "exposure-service"

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger(serviceName)

	kv, cleanup, err := newStore(ctx, cfg)
	if err != nil {
		panic(fmt.Errorf("store init error: %w", err))
	}
	defer cleanup()

	catalog, err := challenge.Default()
	if err != nil {
		panic(fmt.Errorf("catalog error: %w", err))
	}
	selector := challenge.NewSelector(catalog,
		challenge.NewGenerator(catalog.Templates(), nil),
		challenge.WithGenerationProbability(cfg.Selection.GenerationProbability),
	)

	loc, err := cfg.Location()
	if err != nil {
		panic(fmt.Errorf("timezone error: %w", err))
	}

	engine, err := progression.NewEngine(progression.Config{
		Store:     kv,
		Selector:  selector,
		Evaluator: achievement.NewEvaluator(nil),
		Analyzer:  newAnalyzer(ctx, cfg, logger),
		Recorder:  newRecorder(cfg),
		Calendar:  progression.NewLocationCalendar(loc),
		Logger:    logger,
	})
	if err != nil {
		panic(fmt.Errorf("engine init error: %w", err))
	}

	rollover := scheduler.NewRollover(engine, loc, logger)
	if err := rollover.Schedule(cfg.Rollover.Schedule); err != nil {
		panic(err)
	}
	rollover.Start()

	verifier, err := auth.NewVerifier(auth.Config{
		Mode:     cfg.Auth.Mode,
		JWKSURL:  cfg.Auth.JWKSURL,
		Audience: cfg.Auth.Audience,
		Issuer:   cfg.Auth.Issuer,

		AuthorizedParties: cfg.Auth.AuthorizedParties,
	})
	if err != nil {
		panic(fmt.Errorf("auth verifier error: %w", err))
	}

	router := server.NewRouter(serviceName, logger, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(verifier))

			httpapi.RegisterRoutes(r, engine, logger)
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	err = server.Run(ctx, srv, logger,
		rollover.Stop,
		func(context.Context) { engine.Wait() },
	)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

func newStore(ctx context.Context, cfg config.Config) (store.Store, func(), error) {
	switch cfg.DataStore {
	case config.DatastoreFirestore:
		if cfg.Firestore.EmulatorHost != "" {
			if err := os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.Firestore.EmulatorHost); err != nil {
				return nil, nil, fmt.Errorf("set FIRESTORE_EMULATOR_HOST: %w", err)
			}
		}

		var (
			client *firestore.Client
			err    error
		)
		if cfg.Firestore.Database != "" {
			client, err = firestore.NewClientWithDatabase(ctx, cfg.GCPProjectID, cfg.Firestore.Database)
		} else {
			client, err = firestore.NewClient(ctx, cfg.GCPProjectID)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("firestore client: %w", err)
		}
		return store.NewFirestoreStore(client), func() { _ = client.Close() }, nil
	case config.DatastoreSQLite:
		s, err := store.NewSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite store: %w", err)
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return store.NewMemoryStore(), func() {}, nil
	}
}

func newAnalyzer(ctx context.Context, cfg config.Config, logger *slog.Logger) sentiment.Analyzer {
	lexicon := sentiment.NewLexiconAnalyzer()
	if cfg.Sentiment.APIKey == "" {
		logger.Info("no gemini api key, using lexicon sentiment")
		return lexicon
	}
	gemini, err := sentiment.NewGeminiAnalyzer(ctx, sentiment.GeminiConfig{
		APIKey: cfg.Sentiment.APIKey,
		Model:  cfg.Sentiment.Model,
	})
	if err != nil {
		logger.Warn("gemini analyzer unavailable, using lexicon sentiment", slog.Any("error", err))
		return lexicon
	}
	return sentiment.Fallback{Primary: gemini, Secondary: lexicon}
}

func newRecorder(cfg config.Config) remotelog.Recorder {
	if cfg.RemoteLog.URL == "" {
		return remotelog.Noop{}
	}
	return remotelog.NewClient(cfg.RemoteLog.URL, cfg.RemoteLog.APIKey)
}
