// Package sqlite provides a single-file SQLite snapshot store for local play
// and tooling that runs without a PostgreSQL server.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/chronicle/internal/game/turn"
	"github.com/cory-johannsen/chronicle/internal/storage"
)

//go:embed schema.sql
var schema string

// Store persists turn contexts in SQLite.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

// Open opens (creating if needed) the SQLite database at path and applies
// the schema.
//
// Precondition: path must be non-empty.
// Postcondition: Returns an open Store or a non-nil error.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path must not be empty")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying sqlite schema: %w", err)
	}
	logger.Info("sqlite snapshot store opened", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts the snapshot for (gameID, c.Turn).
func (s *Store) Save(ctx context.Context, gameID string, c turn.Context) error {
	if err := storage.ValidateGameID(gameID); err != nil {
		return err
	}
	data, err := storage.Encode(c)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (game_id, turn, context, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (game_id, turn)
		DO UPDATE SET context = excluded.context, created_at = excluded.created_at`,
		gameID, c.Turn, string(data), toMillis(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	s.logger.Debug("snapshot saved", zap.String("game", gameID), zap.Int("turn", c.Turn))
	return nil
}

// Load returns the snapshot with the highest turn number for gameID.
//
// Postcondition: Returns storage.ErrSnapshotNotFound when the game has none.
func (s *Store) Load(ctx context.Context, gameID string) (turn.Context, error) {
	return s.scan(gameID, s.db.QueryRowContext(ctx, `
		SELECT context FROM snapshots
		WHERE game_id = ?
		ORDER BY turn DESC
		LIMIT 1`,
		gameID,
	))
}

// LoadTurn returns the snapshot of one turn.
//
// Postcondition: Returns storage.ErrSnapshotNotFound when no such turn was saved.
func (s *Store) LoadTurn(ctx context.Context, gameID string, turnNumber int) (turn.Context, error) {
	return s.scan(gameID, s.db.QueryRowContext(ctx, `
		SELECT context FROM snapshots WHERE game_id = ? AND turn = ?`,
		gameID, turnNumber,
	))
}

func (s *Store) scan(gameID string, row *sql.Row) (turn.Context, error) {
	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return turn.Context{}, storage.ErrSnapshotNotFound
		}
		return turn.Context{}, fmt.Errorf("loading snapshot: %w", err)
	}
	c, rejects, err := storage.Decode([]byte(data))
	if err != nil {
		return turn.Context{}, err
	}
	if len(rejects) > 0 {
		s.logger.Warn("ignoring malformed legacy bonuses in snapshot",
			zap.String("game", gameID),
			zap.Strings("bonuses", rejects),
		)
	}
	return c, nil
}

// ListTurns returns every stored turn of gameID in ascending order.
func (s *Store) ListTurns(ctx context.Context, gameID string) ([]storage.TurnInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT turn, created_at FROM snapshots WHERE game_id = ? ORDER BY turn ASC`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]storage.TurnInfo, 0)
	for rows.Next() {
		var (
			n       int
			created int64
		)
		if err := rows.Scan(&n, &created); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		out = append(out, storage.TurnInfo{Turn: n, CreatedAt: fromMillis(created)})
	}
	return out, rows.Err()
}

// Delete removes every snapshot of gameID.
func (s *Store) Delete(ctx context.Context, gameID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE game_id = ?`, gameID); err != nil {
		return fmt.Errorf("deleting snapshots: %w", err)
	}
	return nil
}

var _ storage.SnapshotRepository = (*Store)(nil)
