package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/workflex/workflex/internal/database"
)

const blockColumns = `id, user_id, day, start_minute, end_minute, location, created_at, updated_at`

// PostgresRepository implements Repository using pgx.
type PostgresRepository struct {
	db database.Querier
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(db database.Querier) Repository {
	return &PostgresRepository{db: db}
}

// ListByUser returns a user's blocks ordered by weekday and start time.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Entry, error) {
	query := `
		SELECT ` + blockColumns + `
		FROM schedule_blocks
		WHERE user_id = $1
		ORDER BY array_position(ARRAY['Monday','Tuesday','Wednesday','Thursday','Friday','Saturday','Sunday']::varchar[], day), start_minute`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing schedule blocks: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedule rows: %w", err)
	}

	return entries, nil
}

// ListByUsers returns the blocks of several users keyed by user id. Users
// without blocks are absent from the map.
func (r *PostgresRepository) ListByUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]Entry, error) {
	result := make(map[uuid.UUID][]Entry, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		ids = append(ids, id.String())
	}

	query := `
		SELECT ` + blockColumns + `
		FROM schedule_blocks
		WHERE user_id = ANY($1::uuid[])
		ORDER BY user_id, start_minute`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("listing schedule blocks for users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result[e.UserID] = append(result[e.UserID], *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedule rows: %w", err)
	}

	return result, nil
}

// GetByID retrieves a single block.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	query := `SELECT ` + blockColumns + ` FROM schedule_blocks WHERE id = $1`

	e, err := scanEntry(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBlockNotFound
		}
		return nil, err
	}
	return e, nil
}

// Create inserts a new block for e.UserID.
func (r *PostgresRepository) Create(ctx context.Context, e *Entry) error {
	return insertEntry(ctx, r.db, e)
}

// CreateMany inserts the entries in one transaction.
func (r *PostgresRepository) CreateMany(ctx context.Context, entries []Entry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i := range entries {
		if err := insertEntry(ctx, tx, &entries[i]); err != nil {
			return fmt.Errorf("copying block to %s: %w", entries[i].Block.Day, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing schedule blocks: %w", err)
	}

	return nil
}

// Update rewrites a block owned by e.UserID. Returns ErrBlockNotFound if no
// such block belongs to that user.
func (r *PostgresRepository) Update(ctx context.Context, e *Entry) error {
	query := `
		UPDATE schedule_blocks
		SET day = $1, start_minute = $2, end_minute = $3, location = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		string(e.Block.Day),
		int(e.Block.Start),
		int(e.Block.End),
		e.Block.Location,
		e.ID,
		e.UserID,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrBlockNotFound
		}
		return fmt.Errorf("updating schedule block: %w", err)
	}

	return nil
}

// Delete removes a block owned by userID.
func (r *PostgresRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM schedule_blocks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting schedule block: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBlockNotFound
	}

	return nil
}

// rowQuerier is satisfied by both the pool and a transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertEntry(ctx context.Context, q rowQuerier, e *Entry) error {
	query := `
		INSERT INTO schedule_blocks (user_id, day, start_minute, end_minute, location)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := q.QueryRow(ctx, query,
		e.UserID,
		string(e.Block.Day),
		int(e.Block.Start),
		int(e.Block.End),
		e.Block.Location,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting schedule block: %w", err)
	}

	return nil
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var (
		e          Entry
		day        string
		start, end int
	)
	err := row.Scan(&e.ID, &e.UserID, &day, &start, &end, &e.Block.Location, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning schedule row: %w", err)
	}
	e.Block.Day = Weekday(day)
	e.Block.Start = Clock(start)
	e.Block.End = Clock(end)
	return &e, nil
}
