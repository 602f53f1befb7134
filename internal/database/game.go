// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/bussfix/internal/models"
)

// Store writes finished games and their action history.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// RecordGameResults marks the game completed and writes one game_results row
// per player.
func (s *Store) RecordGameResults(ctx context.Context, gameID uuid.UUID, roomID string, standings []models.Standing) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, room_id, status, end_time)
			VALUES ($1, $2, 'completed', NOW())
			ON CONFLICT (id) DO UPDATE SET status = 'completed', room_id = $2, end_time = NOW()
		`
		if _, e := tx.Exec(ctx, upsertGame, gameID, roomID); e != nil {
			return e
		}

		q := `
			INSERT INTO game_results (game_id, player_id, name, place, drinks)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (game_id, player_id)
			DO UPDATE SET place = $4, drinks = $5
		`
		for _, st := range standings {
			if _, e := tx.Exec(ctx, q, gameID, st.PlayerID, st.Name, st.Place, st.Drinks); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert game or results: %w", err)
	}
	return nil
}

// InsertActions writes a batch of history records in one transaction. An
// end_game record also closes out its game row.
func (s *Store) InsertActions(ctx context.Context, batch []models.GameAction) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range batch {
			if err := insertGameActionTx(ctx, tx, rec); err != nil {
				return fmt.Errorf("insertGameActionTx: %w", err)
			}
		}
		return nil
	})
}

// MarkAbandoned closes a game that is still in progress.
func (s *Store) MarkAbandoned(ctx context.Context, gameID uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			UPDATE games
			SET status = 'abandoned', end_time = NOW()
			WHERE id = $1 AND status = 'in_progress'
		`
		_, e := tx.Exec(ctx, q, gameID)
		return e
	})
}

func insertGameActionTx(ctx context.Context, tx pgx.Tx, rec models.GameAction) error {
	upsertGameQ := `
		INSERT INTO games (id, status, start_time)
		VALUES ($1, 'in_progress', NOW())
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, upsertGameQ, rec.GameID); err != nil {
		return err
	}

	payload, err := marshalPayload(rec.Payload)
	if err != nil {
		return err
	}
	actionInsertQ := `
		INSERT INTO game_actions (
			game_id, action_index, actor_id, action_type, action_payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id, action_index) DO NOTHING
	`
	_, err = tx.Exec(ctx, actionInsertQ,
		rec.GameID, rec.ActionIndex, rec.ActorID, rec.ActionType, payload, time.UnixMilli(rec.Timestamp),
	)
	if err != nil {
		return err
	}

	if rec.ActionType == models.ActionEndGame {
		finalizeQ := `
			UPDATE games
			SET status = 'completed', end_time = NOW()
			WHERE id = $1 AND status = 'in_progress'
		`
		if _, err = tx.Exec(ctx, finalizeQ, rec.GameID); err != nil {
			return err
		}
	}
	return nil
}

// marshalPayload never yields SQL NULL; the column expects an object.
func marshalPayload(p map[string]interface{}) ([]byte, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}
