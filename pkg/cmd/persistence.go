package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/talentflow/pkg/persistence"
	"github.com/dukex/talentflow/pkg/persistence/file"
	"github.com/dukex/talentflow/pkg/persistence/postgresql"
)

// NewPersistence opens the store named by databaseURL: postgres:// or postgresql:// for
// PostgreSQL, file:// or a bare path for the file store.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		store, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create PostgreSQL persistence: %w", err))
		}

		return store
	case "file":
		return file.NewPersistence(databaseURL)
	default:
		panic("Unsupported persistence provider: " + databaseURL)
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}
