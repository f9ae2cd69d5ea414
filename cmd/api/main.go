package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"aititle/internal/adapter/repo"
	"aititle/internal/domain"
	"aititle/internal/domain/promptcfg"
	"aititle/internal/http/handlers"
	httpapi "aititle/internal/http/httpapi"
	"aititle/internal/infra"
	"aititle/internal/infra/credentials"
	"aititle/internal/pipeline"
	"aititle/internal/providers/title"
	"aititle/internal/providers/transcript"
)

func main() {
	// env files are optional
	_ = godotenv.Load(".env", ".env.local")

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	var (
		videos domain.VideoRepository
		runner *infra.SQLRunner
		ping   func(context.Context) error
	)
	switch cfg.StoreDriver {
	case infra.StoreDriverSQLite:
		db, err := infra.NewSQLiteDB(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open sqlite")
		}
		defer closeSQL(db, logger)
		ping = db.PingContext
		videos, err = repo.NewVideoRepositorySQLite(ctx, db)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare sqlite schema")
		}
	default:
		var dbpool *pgxpool.Pool
		dbpool, err = infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		ping = dbpool.Ping
		runner = infra.NewSQLRunner(dbpool, logger)
		videos = repo.NewVideoRepository(runner)
	}

	prompt, err := promptcfg.Load(cfg.TitlePromptPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load title prompt")
	}

	titles, err := newTitleGenerator(ctx, cfg, prompt, runner, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure title provider")
	}

	var transcripts domain.TranscriptProvider = transcript.NewYouTubeProvider(transcript.Options{
		BaseURL:  cfg.YouTubeBaseURL,
		Language: cfg.TranscriptLang,
		Logger:   &logger,
	})
	if cfg.RedisURL != "" {
		cache, err := transcript.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("transcript cache disabled")
		} else {
			defer cache.Close()
			transcripts = transcript.NewCachedProvider(transcripts, cache, cfg.TranscriptCacheTTL, logger)
		}
	}

	svc := pipeline.NewService(videos, transcripts, titles, logger)
	app := handlers.NewApp(svc, videos, logger)
	app.Ping = ping
	router := httpapi.NewRouter(app, logger, httpapi.Options{
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMin,
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("store", cfg.StoreDriver).Str("title_provider", cfg.TitleProvider).Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func newTitleGenerator(ctx context.Context, cfg *infra.Config, prompt promptcfg.TitlePrompt, runner *infra.SQLRunner, logger infra.Logger) (domain.TitleGenerator, error) {
	onFailure := func(provider, reason string, err error) {
		logger.Warn().Str("provider", provider).Str("reason", reason).Err(err).Msg("title generation failed")
	}

	envKey := cfg.GeminiAPIKey
	if cfg.TitleProvider == infra.TitleProviderOpenAI {
		envKey = cfg.OpenAIAPIKey
	}
	key, err := resolveAPIKey(ctx, cfg.TitleProvider, envKey, runner)
	if err != nil {
		return nil, err
	}

	switch cfg.TitleProvider {
	case infra.TitleProviderOpenAI:
		gen, err := title.NewOpenAIGenerator(title.OpenAIOptions{
			APIKey:       key,
			Model:        cfg.OpenAIModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
			Prompt:       prompt,
			OnFailure:    onFailure,
			OnWarning: func(reason, detail string) {
				logger.Warn().Str("provider", "openai").Str("reason", reason).Msg(detail)
			},
		})
		if err != nil {
			return nil, err
		}
		return gen, nil
	default:
		gen, err := title.NewGeminiGenerator(title.GeminiOptions{
			APIKey:    key,
			Model:     cfg.GeminiModel,
			BaseURL:   cfg.GeminiBaseURL,
			Prompt:    prompt,
			OnFailure: onFailure,
		})
		if err != nil {
			return nil, err
		}
		logger.Info().Str("model", gen.Model()).Msg("gemini title generator ready")
		return gen, nil
	}
}

// resolveAPIKey prefers the environment and falls back to the credentials
// store when the Postgres store is in use.
func resolveAPIKey(ctx context.Context, provider, envKey string, runner *infra.SQLRunner) (string, error) {
	if envKey != "" {
		return envKey, nil
	}
	if runner != nil {
		store, err := credentials.NewStore(runner, provider)
		if err != nil {
			return "", err
		}
		stored, err := store.APIKey(ctx)
		if err != nil {
			return "", err
		}
		if stored != "" {
			return stored, nil
		}
	}
	return "", fmt.Errorf("no %s API key in the environment or credentials store (run cmd/geminikey -provider %s)", provider, provider)
}

func closeSQL(db *sql.DB, logger infra.Logger) {
	if err := db.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close sqlite")
	}
}
