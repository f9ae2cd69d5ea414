package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"aititle/internal/infra"
	"aititle/internal/infra/credentials"
)

func main() {
	var keyFlag, providerFlag string
	flag.StringVar(&keyFlag, "key", "", "API key for the provider (fallbacks to GEMINI_API_KEY or OPENAI_API_KEY)")
	flag.StringVar(&providerFlag, "provider", infra.TitleProviderGemini, "title provider the key belongs to (gemini or openai)")
	flag.Parse()

	_ = godotenv.Load()

	provider := strings.ToLower(strings.TrimSpace(providerFlag))
	key := strings.TrimSpace(keyFlag)
	if key == "" {
		envName := "GEMINI_API_KEY"
		if provider == infra.TitleProviderOpenAI {
			envName = "OPENAI_API_KEY"
		}
		key = strings.TrimSpace(os.Getenv(envName))
	}
	if key == "" {
		fmt.Fprintf(os.Stderr, "%s API key is required via -key or environment\n", provider)
		os.Exit(1)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "geminikey").Str("provider", provider).Logger()
	store, err := credentials.NewStore(infra.NewSQLRunner(pool, logger), provider)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctxExec, cancelExec := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelExec()
	if err := store.SetAPIKey(ctxExec, key, "cli"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to persist %s api key: %v\n", provider, err)
		os.Exit(1)
	}

	fmt.Printf("%s API key stored; the API uses it when the environment key is unset\n", provider)
}
