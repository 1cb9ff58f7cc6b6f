package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"cat-trivia-service/internal/app"
	"cat-trivia-service/internal/domain"
	"cat-trivia-service/internal/infra/memory"
	"cat-trivia-service/internal/infra/postgres"
	pgmigrations "cat-trivia-service/internal/infra/postgres/migrations"
	infraredis "cat-trivia-service/internal/infra/redis"
	"cat-trivia-service/internal/quiz"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestGameEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	report := seedQuestions(t, ctx, pgURL, memory.DefaultQuestions())
	if report.Inserted != len(memory.DefaultQuestions()) {
		t.Fatalf("expected all questions inserted, got %+v", report)
	}
	// A second import only finds duplicates.
	report = seedQuestions(t, ctx, pgURL, memory.DefaultQuestions())
	if report.Inserted != 0 || report.Duplicates != len(memory.DefaultQuestions()) {
		t.Fatalf("expected duplicates on re-import, got %+v", report)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	// Only the database feeds the chain so every question must come from it.
	chain := app.NewSourceChain(infraredis.NewPoolCache(redisClient, postgres.NewQuestionStore(pool), 5*time.Minute))
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	service := app.NewGameService(sessionStore, chain, quiz.NewBuilder())

	state, err := service.Start(ctx, app.StartRequest{Difficulty: "hard", Category: "cats", Count: 5})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if state.TotalQuestions != 5 {
		t.Fatalf("expected 5 questions, got %d", state.TotalQuestions)
	}
	for _, q := range state.Questions {
		if q.Difficulty != domain.DifficultyHard || !quiz.MatchesCategory(q.Category, "cat") {
			t.Fatalf("unexpected question %+v", q)
		}
	}

	first := state.Questions[0]
	res, err := service.RecordAnswer(ctx, state.SessionID, 0, first.CorrectIndex)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !res.IsCorrect || res.Score != 1 {
		t.Fatalf("expected correct answer, got %+v", res)
	}

	stopped, err := service.Stop(ctx, state.SessionID)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if stopped.FinalScore != 1 || stopped.TotalQuestions != 5 {
		t.Fatalf("unexpected stop result %+v", stopped)
	}
	if _, err := service.Get(ctx, state.SessionID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session removed, got %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "trivia", "POSTGRES_PASSWORD": "triviapass", "POSTGRES_DB": "triviadb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://trivia:triviapass@%s:%s/triviadb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedQuestions(t *testing.T, ctx context.Context, dsn string, questions []domain.Question) postgres.ImportReport {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	report, err := postgres.NewImporter(db).Import(ctx, questions)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	return report
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
