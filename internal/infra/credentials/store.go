// Package credentials keeps title provider API keys in the integration_tokens
// table so deployments can rotate them without touching the environment.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"aititle/internal/infra"
	"aititle/internal/sqlinline"
)

// Store reads and writes the API key of one title provider, keyed by the
// provider name used in TITLE_PROVIDER.
type Store struct {
	sql      infra.SQLExecutor
	provider string
}

func NewStore(sql infra.SQLExecutor, provider string) (*Store, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	switch provider {
	case infra.TitleProviderGemini, infra.TitleProviderOpenAI:
	default:
		return nil, fmt.Errorf("credentials: unsupported provider %q", provider)
	}
	return &Store{sql: sql, provider: provider}, nil
}

func (s *Store) Provider() string {
	return s.provider
}

// APIKey returns the stored key, or "" when none was saved.
func (s *Store) APIKey(ctx context.Context) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, s.provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("credentials: load %s key: %w", s.provider, err)
	}
	return strings.TrimSpace(token), nil
}

// SetAPIKey stores key, recording source in the row properties.
func (s *Store) SetAPIKey(ctx context.Context, key, source string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("credentials: api key is required")
	}
	props, err := json.Marshal(map[string]string{"source": source})
	if err != nil {
		return err
	}
	if _, err := s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, s.provider, key, props); err != nil {
		return fmt.Errorf("credentials: store %s key: %w", s.provider, err)
	}
	return nil
}
