package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brain-brawl-service/internal/app"
	"brain-brawl-service/internal/config"
	"brain-brawl-service/internal/infra/memory"
	"brain-brawl-service/internal/infra/opentdb"
	"brain-brawl-service/internal/infra/postgres"
	infraredis "brain-brawl-service/internal/infra/redis"
	transport "brain-brawl-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the battle server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

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
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	loader := opentdb.New(cfg.Trivia.URL, cfg.Trivia.Amount, cfg.Trivia.Category)
	triviaTTL := config.TTLDuration(cfg.Trivia.TTL, 10*time.Minute)
	var questionRepo app.QuestionRepository
	if redisClient != nil {
		questionRepo = infraredis.NewQuestionRepository(redisClient, loader, triviaTTL)
	} else {
		questionRepo = memory.NewQuestionRepository(loader, triviaTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = infraredis.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	var userStore *postgres.UserStore
	if pool != nil {
		userStore = postgres.NewUserStore(pool)
	}
	var redisBoard *infraredis.Leaderboard
	if redisClient != nil {
		redisBoard = infraredis.NewLeaderboard(redisClient)
	}

	var stats app.StatRecorder
	var identity app.IdentityLookup
	recorders := app.MultiStats{}
	if userStore != nil {
		recorders = append(recorders, userStore)
		identity = userStore
	}
	if redisBoard != nil {
		recorders = append(recorders, redisBoard)
	}
	if len(recorders) > 0 {
		stats = recorders
	}

	service := app.NewBattleService(store, questionRepo, stats, identity, tuningFromConfig(cfg))
	wsHandler := transport.NewWSHandler(service)

	var leaderboard transport.LeaderboardProvider
	var profiles transport.ProfileProvider
	if redisBoard != nil {
		leaderboard = redisBoard
	} else if userStore != nil {
		leaderboard = userStore
	}
	if userStore != nil {
		profiles = userStore
	}
	apiHandler := transport.NewAPIHandler(leaderboard, profiles)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	apiHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting battle service on :%s", finalPort)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func tuningFromConfig(cfg config.Config) app.Tuning {
	t := app.DefaultTuning()
	if cfg.Game.InitialHealth > 0 {
		t.InitialHealth = cfg.Game.InitialHealth
	}
	if cfg.Game.BasePoints > 0 {
		t.BasePoints = cfg.Game.BasePoints
	}
	if cfg.Game.PerSecondBonus > 0 {
		t.PerSecondBonus = cfg.Game.PerSecondBonus
	}
	t.QuestionWindow = config.TTLDuration(cfg.Game.QuestionWindow, t.QuestionWindow)
	t.RevealDelay = config.TTLDuration(cfg.Game.RevealDelay, t.RevealDelay)
	t.StartCountdown = config.TTLDuration(cfg.Game.StartCountdown, t.StartCountdown)
	t.CleanupGrace = config.TTLDuration(cfg.Game.CleanupGrace, t.CleanupGrace)
	return t
}
