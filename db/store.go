package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/chess-tournament/repositories"
)

const connectTimeout = 5 * time.Second

// OpenDocumentStore returns the record store for driver ("postgres" or
// "memory") and a function releasing it. The Postgres store is migrated
// before it is returned.
func OpenDocumentStore(ctx context.Context, driver, dsn string, logger *slog.Logger) (repositories.DocumentStore, func(), error) {
	switch driver {
	case "memory":
		logger.Warn("using in-memory record store, data is lost on exit")
		return repositories.NewMemoryDocumentStore(), func() {}, nil
	case "postgres":
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", driver)
	}

	conn, err := Connect(dsn, connectTimeout)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("database connection established")

	if err := RunMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, nil, err
	}
	logger.Info("database migrations applied")

	closeFn := func() {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
			return
		}
		logger.Info("database connection closed")
	}
	return repositories.NewPostgresDocumentStore(conn), closeFn, nil
}
