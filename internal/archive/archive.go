// Package archive persists finished games to Postgres so results survive
// restarts and can be inspected later.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/will-hanabi-bot/go-bot/engine"
	"github.com/will-hanabi-bot/go-bot/internal/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id          UUID PRIMARY KEY,
	table_id    BIGINT NOT NULL,
	players     TEXT[] NOT NULL,
	our_seat    INT NOT NULL,
	score       INT NOT NULL,
	strikes     INT NOT NULL,
	turns       INT NOT NULL,
	actions     JSONB NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS games_finished_at_idx ON games (finished_at DESC);
`

// Store is the finished-game archive.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects and ensures the schema exists.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to archive: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("preparing archive schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (st *Store) Close() {
	st.pool.Close()
}

// SaveGame records one finished game with its full action feed.
func (st *Store) SaveGame(ctx context.Context, g *game.Game, history []engine.Action) error {
	actions, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encoding action feed: %w", err)
	}

	s := g.State
	_, err = st.pool.Exec(ctx, `
		INSERT INTO games (id, table_id, players, our_seat, score, strikes, turns, actions, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New(), g.TableID, s.PlayerNames, s.OurIndex,
		s.Score(), s.Strikes, s.TurnCount, actions, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("archiving game: %w", err)
	}
	return nil
}

// Result is one archived game summary.
type Result struct {
	ID         uuid.UUID
	TableID    int
	Players    []string
	Score      int
	Strikes    int
	Turns      int
	FinishedAt time.Time
}

// Recent lists the latest finished games.
func (st *Store) Recent(ctx context.Context, limit int) ([]Result, error) {
	rows, err := st.pool.Query(ctx, `
		SELECT id, table_id, players, score, strikes, turns, finished_at
		FROM games ORDER BY finished_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing archive: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.TableID, &r.Players, &r.Score, &r.Strikes, &r.Turns, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scanning archive row: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
