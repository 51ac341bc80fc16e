// Package storage defines the snapshot persistence contract shared by the
// postgres and sqlite backends.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cory-johannsen/chronicle/internal/game/turn"
)

// ErrSnapshotNotFound is returned when no snapshot matches a lookup.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// TurnInfo summarises one stored snapshot.
type TurnInfo struct {
	Turn      int
	CreatedAt time.Time
}

// SnapshotRepository stores one Context per game and turn number. Saving a
// turn that already exists replaces it.
type SnapshotRepository interface {
	Save(ctx context.Context, gameID string, c turn.Context) error
	Load(ctx context.Context, gameID string) (turn.Context, error)
	LoadTurn(ctx context.Context, gameID string, turnNumber int) (turn.Context, error)
	ListTurns(ctx context.Context, gameID string) ([]TurnInfo, error)
	Delete(ctx context.Context, gameID string) error
}

// Encode serialises c for storage.
func Encode(c turn.Context) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a stored snapshot and converts legacy bonus strings into
// structured bonuses.
//
// Postcondition: rejects lists the legacy strings that could not be parsed.
func Decode(data []byte) (c turn.Context, rejects []string, err error) {
	if err := json.Unmarshal(data, &c); err != nil {
		return turn.Context{}, nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	c, rejects = c.Normalized()
	return c, rejects, nil
}

// ValidateGameID rejects empty game ids.
func ValidateGameID(gameID string) error {
	if gameID == "" {
		return errors.New("game id must not be empty")
	}
	return nil
}
