// Package app opens the stores selected by configuration and builds the
// repositories on top of them.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/workflex/workflex/internal/auth"
	"github.com/workflex/workflex/internal/config"
	"github.com/workflex/workflex/internal/database"
	"github.com/workflex/workflex/internal/docstore"
	"github.com/workflex/workflex/internal/schedule"
	"github.com/workflex/workflex/internal/team"
)

// Stores holds open connections and the repositories built on them.
// Docs is nil unless teams live in the document store.
type Stores struct {
	DB        *database.DB
	Docs      *docstore.Store
	Users     auth.UserRepository
	Schedules schedule.Repository
	Teams     team.Repository
}

// OpenStores connects to Postgres, applies migrations and, when TEAM_STORE
// is mongo, connects to the document store for teams and invites.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db.Pool()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	s := &Stores{
		DB:        db,
		Users:     auth.NewRepository(db.Pool()),
		Schedules: schedule.NewRepository(db.Pool()),
	}

	switch cfg.TeamStore {
	case config.TeamStoreMongo:
		docs, err := docstore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			db.Close()
			return nil, err
		}
		repo := team.NewMongoRepository(docs.Database())
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = docs.Close(ctx)
			db.Close()
			return nil, fmt.Errorf("creating team indexes: %w", err)
		}
		s.Docs, s.Teams = docs, repo
	default:
		s.Teams = team.NewRepository(db.Pool())
	}

	slog.Info("stores ready", "teamStore", cfg.TeamStore)
	return s, nil
}

// Close releases every connection.
func (s *Stores) Close(ctx context.Context) {
	if s.Docs != nil {
		if err := s.Docs.Close(ctx); err != nil {
			slog.Error("closing document store", "error", err)
		}
	}
	s.DB.Close()
}
