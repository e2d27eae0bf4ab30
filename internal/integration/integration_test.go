package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"brain-brawl-service/internal/app"
	"brain-brawl-service/internal/domain"
	"brain-brawl-service/internal/infra/memory"
	"brain-brawl-service/internal/infra/postgres"
	pgmigrations "brain-brawl-service/internal/infra/postgres/migrations"
	infraredis "brain-brawl-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestUserStatsEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	store := postgres.NewUserStore(pool)

	if err := store.RecordResult(ctx, "alice", true, 300); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.RecordResult(ctx, "bob", false, 150); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.RecordResult(ctx, "alice", true, 50); err != nil {
		t.Fatalf("record: %v", err)
	}

	profile, err := store.Profile(ctx, "alice")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Score != 350 || profile.GamesPlayed != 2 || profile.GamesWon != 2 || profile.WinRate != 100 {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	top, err := store.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 || top[0].PlayerID != "alice" || top[0].Rank != 1 || top[1].PlayerID != "bob" {
		t.Fatalf("unexpected leaderboard: %+v", top)
	}

	// Unknown players fall back to the raw id as display name.
	if name := store.UsernameFor(ctx, "ghost"); name != "ghost" {
		t.Fatalf("username fallback: got %q", name)
	}
	if name := store.UsernameFor(ctx, "alice"); name != "alice" {
		t.Fatalf("username: got %q", name)
	}
}

func TestFullDuelWithRealBackends(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

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

	questions := []domain.Question{
		{ID: "1", Prompt: "First?", CorrectAnswer: "alpha", IncorrectAnswers: []string{"x", "y", "z"}},
	}
	questionRepo := infraredis.NewQuestionRepository(redisClient, memory.NewStaticQuestionLoader(questions), 5*time.Minute)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	userStore := postgres.NewUserStore(pool)
	leaderboard := infraredis.NewLeaderboard(redisClient)

	tuning := app.DefaultTuning()
	tuning.InitialHealth = 100
	tuning.BasePoints = 100
	tuning.PerSecondBonus = 5
	tuning.StartCountdown = 10 * time.Millisecond
	tuning.RevealDelay = 40 * time.Millisecond
	tuning.QuestionWindow = 5 * time.Second

	svc := app.NewBattleService(sessionStore, questionRepo, app.MultiStats{userStore, leaderboard}, userStore, tuning)

	alice := make(chan domain.Event, 32)
	bob := make(chan domain.Event, 32)
	if err := svc.JoinWaitingRoom(ctx, "alice", "knight", alice); err != nil {
		t.Fatalf("join waiting room: %v", err)
	}
	if err := svc.JoinWaitingRoom(ctx, "bob", "wizard", bob); err != nil {
		t.Fatalf("join waiting room: %v", err)
	}
	found := waitEvent(t, alice, domain.EventMatchFound).Payload.(domain.MatchFoundPayload)
	waitEvent(t, bob, domain.EventMatchFound)

	if _, err := svc.JoinSession(ctx, found.SessionID, "alice", "", alice); err != nil {
		t.Fatalf("join session: %v", err)
	}
	if _, err := svc.JoinSession(ctx, found.SessionID, "bob", "", bob); err != nil {
		t.Fatalf("join session: %v", err)
	}

	waitEvent(t, alice, domain.EventNewQuestion)
	if _, err := svc.SubmitAnswer(ctx, found.SessionID, "alice", "alpha", 3000); err != nil {
		t.Fatalf("alice submit: %v", err)
	}
	if _, err := svc.SubmitAnswer(ctx, found.SessionID, "bob", "wrong", 3000); err != nil {
		t.Fatalf("bob submit: %v", err)
	}

	final := waitEvent(t, bob, domain.EventGameOver).Payload.(domain.FinalResults)
	if final.Winner != "alice" {
		t.Fatalf("expected alice to win, got %+v", final)
	}

	// Stat writes are fire-and-forget after game_over; poll until they land.
	deadline := time.Now().Add(5 * time.Second)
	for {
		profile, err := userStore.Profile(ctx, "alice")
		if err == nil && profile.GamesWon == 1 {
			if profile.Score != 115 {
				t.Fatalf("winner score: got %d, want 115", profile.Score)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("stats never landed: %v %+v", err, profile)
		}
		time.Sleep(50 * time.Millisecond)
	}

	top, err := leaderboard.Top(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(top) == 0 || top[0].PlayerID != "alice" || top[0].Score != 115 {
		t.Fatalf("unexpected leaderboard: %+v", top)
	}
}

func waitEvent(t *testing.T, ch chan domain.Event, want domain.EventType) domain.Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
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
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "battle", "POSTGRES_PASSWORD": "battlepass", "POSTGRES_DB": "battledb"},
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
	dsn := fmt.Sprintf("postgres://battle:battlepass@%s:%s/battledb?sslmode=disable", host, port.Port())
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
