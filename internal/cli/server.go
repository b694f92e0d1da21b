package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"emoji-guess-service/internal/app"
	"emoji-guess-service/internal/config"
	"emoji-guess-service/internal/domain"
	"emoji-guess-service/internal/game"
	"emoji-guess-service/internal/infra/memory"
	pgloader "emoji-guess-service/internal/infra/postgres"
	redisinfra "emoji-guess-service/internal/infra/redis"
	"emoji-guess-service/internal/ratelimit"
	transport "emoji-guess-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
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
	sessionTTL := config.TTLDuration(cfg.Session.TTL, time.Hour)
	questionsTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(sampleQuestions())
	if pool != nil {
		loader = pgloader.NewQuestionLoader(pool)
	}

	var questions app.QuestionRepository
	if redisClient != nil {
		questions = redisinfra.NewQuestionRepository(redisClient, loader, questionsTTL)
	} else {
		questions = memory.NewQuestionRepository(loader, questionsTTL)
	}

	var sessions app.SessionStore
	var board app.LeaderboardStore
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, sessionTTL)
		board = redisinfra.NewLeaderboard(redisClient)
	} else {
		sessions = memory.NewSessionStore(sessionTTL)
		board = memory.NewLeaderboard()
	}

	limiter := ratelimit.New()
	globalQuota := ratelimit.Quota{Max: config.Limit(cfg.RateLimit.GlobalPerMinute, 100), Window: time.Minute}
	sessionQuota := ratelimit.Quota{Max: config.Limit(cfg.RateLimit.SessionPerMinute, 10), Window: time.Minute}
	answerQuota := ratelimit.Quota{Max: config.Limit(cfg.RateLimit.AnswerPerSecond, 1), Window: time.Second}

	serverCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	manager := game.NewManager(serverCtx, questions, limiter, answerQuota)
	wsHandler := transport.NewWSHandler(manager, limiter, globalQuota, sessionQuota)

	service := app.NewSessionService(questions, sessions, board, limiter, answerQuota)
	sessionHandler := transport.NewSessionHandler(service, limiter, globalQuota, sessionQuota)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	sessionHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting emoji guess service on :%s", finalPort)
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

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions provides a minimal bank for development; production loads
// the bank from Postgres.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			Symbol: "😀",
			Answers: map[domain.Source][]string{
				domain.SourceGitHub:  {"grinning", "smile"},
				domain.SourceSlack:   {"grinning"},
				domain.SourceUnicode: {"grinning_face"},
			},
			Category:   "smileys",
			Difficulty: 1,
		},
		{
			Symbol: "😂",
			Answers: map[domain.Source][]string{
				domain.SourceGitHub:  {"joy"},
				domain.SourceSlack:   {"joy", "laughing_crying"},
				domain.SourceDiscord: {"joy"},
			},
			Category:   "smileys",
			Difficulty: 1,
		},
		{
			Symbol: "🚀",
			Answers: map[domain.Source][]string{
				domain.SourceGitHub:  {"rocket"},
				domain.SourceSlack:   {"rocket"},
				domain.SourceUnicode: {"rocket"},
			},
			Category:   "travel",
			Difficulty: 1,
		},
		{
			Symbol: "🤹",
			Answers: map[domain.Source][]string{
				domain.SourceGitHub:  {"juggling_person"},
				domain.SourceSlack:   {"juggling"},
				domain.SourceUnicode: {"person_juggling"},
			},
			Category:   "activities",
			Difficulty: 2,
		},
		{
			Symbol: "🫠",
			Answers: map[domain.Source][]string{
				domain.SourceGitHub:  {"melting_face"},
				domain.SourceUnicode: {"melting_face"},
			},
			Category:   "smileys",
			Difficulty: 3,
		},
		{
			Symbol: "🦕",
			Answers: map[domain.Source][]string{
				domain.SourceGitHub:  {"sauropod"},
				domain.SourceSlack:   {"sauropod"},
				domain.SourceDiscord: {"sauropod", "dinosaur"},
			},
			Category:   "animals",
			Difficulty: 2,
		},
	}
}
