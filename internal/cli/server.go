package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qcm-service/internal/app"
	"qcm-service/internal/config"
	"qcm-service/internal/domain"
	"qcm-service/internal/infra/csvfile"
	"qcm-service/internal/infra/memory"
	pgstore "qcm-service/internal/infra/postgres"
	redisstore "qcm-service/internal/infra/redis"
	"qcm-service/internal/infra/sheet"
	transport "qcm-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	var secureCookies bool
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port, secureCookies)
		},
	}
	cmd.Flags().BoolVar(&secureCookies, "secure-cookies", false, "mark the admin session cookie Secure")
	return cmd
}

// backends holds the adapters selected by the config, plus the clients they share.
type backends struct {
	questions app.QuestionRepository
	source    app.QuestionSource
	sink      app.ResultSink
	sessions  app.SessionRepository

	redisClient *redis.Client
	pool        *pgxpool.Pool
}

func (b *backends) Close() {
	if b.redisClient != nil {
		_ = b.redisClient.Close()
	}
	if b.pool != nil {
		b.pool.Close()
	}
}

func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}

	if cfg.Redis.Addr != "" {
		b.redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	if usesPostgres(cfg) {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.pool = pool
	}

	// csv/xlsx results and questions may share one workbook.
	var book *sheet.Workbook
	workbook := func(path string) *sheet.Workbook {
		if book == nil || book.Path() != path {
			book = sheet.NewWorkbook(path)
		}
		return book
	}

	switch cfg.Results.Sink {
	case config.BackendMemory:
		b.sink = memory.NewResultSink()
	case config.BackendCSV:
		b.sink = csvfile.NewResultSink(cfg.Results.Path)
	case config.BackendXLSX:
		b.sink = sheet.NewResultSink(workbook(cfg.Results.Path))
	case config.BackendPostgres:
		b.sink = pgstore.NewResultSink(b.pool)
	case config.BackendRedis:
		b.sink = redisstore.NewResultSink(b.redisClient, cfg.Results.Key)
	}

	switch cfg.Questions.Source {
	case config.BackendStatic:
		b.source = memory.NewStaticQuestionSource(sampleQuestions())
	case config.BackendMemory:
		rows := make([]domain.QuestionRow, 0)
		for _, q := range sampleQuestions() {
			rows = append(rows, domain.RowFromQuestion(q))
		}
		b.source = memory.NewQuestionSource(rows...)
	case config.BackendCSV:
		b.source = csvfile.NewQuestionSource(cfg.Questions.Path)
	case config.BackendXLSX:
		b.source = sheet.NewQuestionSource(workbook(cfg.Questions.Path))
	case config.BackendPostgres:
		b.source = pgstore.NewQuestionSource(b.pool)
	}

	loader := app.NewSourceLoader(b.source)
	cacheTTL := config.TTLDuration(cfg.Questions.CacheTTL, 10*time.Minute)
	sessionTTL := config.TTLDuration(cfg.Admin.SessionTTL, 8*time.Hour)
	if b.redisClient != nil {
		b.questions = redisstore.NewQuestionRepository(b.redisClient, loader, cacheTTL)
		b.sessions = redisstore.NewSessionStore(b.redisClient, sessionTTL)
	} else {
		b.questions = memory.NewQuestionRepository(loader, cacheTTL)
		b.sessions = memory.NewSessionStore(sessionTTL)
	}
	return b, nil
}

func usesPostgres(cfg config.Config) bool {
	return cfg.Questions.Source == config.BackendPostgres || cfg.Results.Sink == config.BackendPostgres
}

func passwordPolicy(cfg config.Config) app.PasswordPolicy {
	return app.PasswordPolicy{
		Secret:       cfg.Admin.Password,
		Hash:         cfg.Admin.PasswordHash,
		AllowDefault: cfg.Admin.AllowDefaultPassword,
	}
}

func runServer(ctx context.Context, configPath, portFlag string, secureCookies bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	policy := passwordPolicy(cfg)
	if !policy.Configured() {
		log.Printf("admin secret not configured; admin view stays locked")
	}

	feed := app.NewResultFeed()
	gate := app.NewAdminGate(b.sessions, policy)
	quiz := app.NewQuizService(b.questions, b.sink, feed)
	admin := app.NewAdminService(gate, b.sink, b.source, b.questions)
	handler := transport.NewHandler(quiz, admin, gate, feed)
	handler.SecureCookies = secureCookies

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting qcm service on :%s (questions=%s results=%s)", finalPort, cfg.Questions.Source, cfg.Results.Sink)
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

// sampleQuestions is the built-in IF/ELSE set served by the static source.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			Text:          "x = 5. Que vaut le résultat de : SI x > 3 ALORS \"grand\" SINON \"petit\" ?",
			Options:       []string{"grand", "petit", "erreur", "rien"},
			CorrectOption: 0,
		},
		{
			Text:          "Combien de branches un bloc SI / SINON exécute-t-il à chaque passage ?",
			Options:       []string{"Aucune", "Exactement une", "Les deux"},
			CorrectOption: 1,
		},
		{
			Text:          "a = 2, b = 2. SI a > b ALORS afficher(\"A\") SINON SI a = b ALORS afficher(\"=\") SINON afficher(\"B\"). Qu'est-ce qui s'affiche ?",
			Options:       []string{"A", "B", "=", "A puis ="},
			CorrectOption: 2,
		},
		{
			Text:          "Quelle condition est vraie quand n est pair ?",
			Options:       []string{"n mod 2 = 1", "n mod 2 = 0", "n / 2 = 0", "n = 2"},
			CorrectOption: 1,
		},
	}
}
