package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/chronicle/internal/game/turn"
	"github.com/cory-johannsen/chronicle/internal/storage"
)

// SnapshotRepository persists turn contexts as JSONB rows keyed by game and turn.
type SnapshotRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewSnapshotRepository creates a SnapshotRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with the snapshots
// migration applied.
func NewSnapshotRepository(db *pgxpool.Pool, logger *zap.Logger) *SnapshotRepository {
	return &SnapshotRepository{db: db, logger: logger}
}

// Save upserts the snapshot for (gameID, c.Turn).
func (r *SnapshotRepository) Save(ctx context.Context, gameID string, c turn.Context) error {
	if err := storage.ValidateGameID(gameID); err != nil {
		return err
	}
	data, err := storage.Encode(c)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO snapshots (game_id, turn, context)
		VALUES ($1, $2, $3)
		ON CONFLICT (game_id, turn)
		DO UPDATE SET context = EXCLUDED.context, created_at = NOW()`,
		gameID, c.Turn, data,
	)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	r.logger.Debug("snapshot saved", zap.String("game", gameID), zap.Int("turn", c.Turn))
	return nil
}

// Load returns the snapshot with the highest turn number for gameID.
//
// Postcondition: Returns storage.ErrSnapshotNotFound when the game has none.
func (r *SnapshotRepository) Load(ctx context.Context, gameID string) (turn.Context, error) {
	return r.scan(gameID, r.db.QueryRow(ctx, `
		SELECT context FROM snapshots
		WHERE game_id = $1
		ORDER BY turn DESC
		LIMIT 1`,
		gameID,
	))
}

// LoadTurn returns the snapshot of one turn.
//
// Postcondition: Returns storage.ErrSnapshotNotFound when no such turn was saved.
func (r *SnapshotRepository) LoadTurn(ctx context.Context, gameID string, turnNumber int) (turn.Context, error) {
	return r.scan(gameID, r.db.QueryRow(ctx, `
		SELECT context FROM snapshots WHERE game_id = $1 AND turn = $2`,
		gameID, turnNumber,
	))
}

func (r *SnapshotRepository) scan(gameID string, row pgx.Row) (turn.Context, error) {
	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return turn.Context{}, storage.ErrSnapshotNotFound
		}
		return turn.Context{}, fmt.Errorf("loading snapshot: %w", err)
	}
	c, rejects, err := storage.Decode(data)
	if err != nil {
		return turn.Context{}, err
	}
	if len(rejects) > 0 {
		r.logger.Warn("ignoring malformed legacy bonuses in snapshot",
			zap.String("game", gameID),
			zap.Strings("bonuses", rejects),
		)
	}
	return c, nil
}

// ListTurns returns every stored turn of gameID in ascending order.
func (r *SnapshotRepository) ListTurns(ctx context.Context, gameID string) ([]storage.TurnInfo, error) {
	rows, err := r.db.Query(ctx, `
		SELECT turn, created_at FROM snapshots WHERE game_id = $1 ORDER BY turn ASC`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]storage.TurnInfo, 0)
	for rows.Next() {
		var ti storage.TurnInfo
		if err := rows.Scan(&ti.Turn, &ti.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		out = append(out, ti)
	}
	return out, rows.Err()
}

// Delete removes every snapshot of gameID.
func (r *SnapshotRepository) Delete(ctx context.Context, gameID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM snapshots WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("deleting snapshots: %w", err)
	}
	return nil
}

var _ storage.SnapshotRepository = (*SnapshotRepository)(nil)
