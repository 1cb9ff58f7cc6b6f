package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cat-trivia-service/internal/app"
	"cat-trivia-service/internal/config"
	"cat-trivia-service/internal/infra/generative"
	"cat-trivia-service/internal/infra/memory"
	"cat-trivia-service/internal/infra/opentdb"
	"cat-trivia-service/internal/infra/postgres"
	redisstore "cat-trivia-service/internal/infra/redis"
	"cat-trivia-service/internal/quiz"
	transport "cat-trivia-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	sessionTTL := config.TTLDuration(cfg.Session.TTL, 30*time.Minute)
	var store app.SessionStore
	if redisClient != nil {
		store = redisstore.NewSessionStore(redisClient, sessionTTL)
	} else {
		memStore := memory.NewSessionStore(sessionTTL)
		go memStore.Run(ctx, config.TTLDuration(cfg.Session.SweepInterval, time.Minute))
		store = memStore
	}

	service := app.NewGameService(store, buildSourceChain(cfg, redisClient, pool), quiz.NewBuilder())

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("starting trivia service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

// buildSourceChain orders sources from most to least preferred. The bundled
// static set always comes last.
func buildSourceChain(cfg config.Config, redisClient *redis.Client, pool *pgxpool.Pool) *app.SourceChain {
	cacheTTL := config.TTLDuration(cfg.Questions.CacheTTL, 5*time.Minute)
	cached := func(src app.QuestionSource) app.QuestionSource {
		if redisClient != nil {
			return redisstore.NewPoolCache(redisClient, src, cacheTTL)
		}
		return memory.NewPoolCache(src, cacheTTL)
	}

	var sources []app.QuestionSource
	if pool != nil {
		sources = append(sources, cached(postgres.NewQuestionStore(pool)))
	}

	tdb := cfg.Sources.OpenTDB
	if tdb.Enabled {
		timeout := config.TTLDuration(tdb.Timeout, 5*time.Second)
		sources = append(sources, cached(opentdb.NewSource(tdb.BaseURL, tdb.Category, timeout)))
	}

	gen := cfg.Sources.Anthropic
	if gen.Enabled {
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			log.Printf("anthropic source enabled but ANTHROPIC_API_KEY is empty; skipping")
		} else {
			model := gen.Model
			if model == "" {
				model = generative.DefaultModel
			}
			sources = append(sources, generative.NewSource(generative.NewAPIClient(apiKey, model, gen.MaxTokens), gen.Count))
		}
	}

	sources = append(sources, memory.NewStaticSource(memory.DefaultQuestions()))
	for _, src := range sources {
		log.Printf("question source: %s", src.Name())
	}
	return app.NewSourceChain(sources...)
}
