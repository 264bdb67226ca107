package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/hanj724/arcade-live/internal/engine"
)

// DefaultRating is the Elo rating assumed for a player with no rating
// row yet.
const DefaultRating = 1200

// Repository is the durable archive behind the live store: completed
// results for profile display and the rating ledger the updater reads
// and writes.
type Repository interface {
	InsertResult(ctx context.Context, sess *Session) error
	GetResult(ctx context.Context, id string) (*Session, error)
	GetRating(ctx context.Context, userID string) (int, error)
	UpsertRating(ctx context.Context, userID string, rating int) error
	Close() error
}

type pgRepository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &pgRepository{db: db}, nil
}

func (r *pgRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// InsertResult archives a completed session. ON CONFLICT DO NOTHING
// keeps the first-written row authoritative; a completed session is
// never rewritten.
func (r *pgRepository) InsertResult(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Status != StatusCompleted {
		return nil
	}
	const q = `
		INSERT INTO game_results (
			session_id, game_type,
			player1_id, player2_id,
			winner_id, is_draw, end_reason,
			final_state, move_count,
			player1_rating_before, player1_rating_after,
			player2_rating_before, player2_rating_after,
			started_at, ended_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (session_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, q,
		sess.ID, string(sess.GameType),
		sess.Player1ID, sess.Player2ID,
		nullStr(sess.WinnerID), sess.IsDraw, sess.EndReason,
		sess.State, sess.MoveSeq,
		sess.Player1RatingBefore, sess.Player1RatingAfter,
		sess.Player2RatingBefore, sess.Player2RatingAfter,
		sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert game result: %w", err)
	}
	return nil
}

func (r *pgRepository) GetResult(ctx context.Context, id string) (*Session, error) {
	const q = `
		SELECT
			session_id, game_type,
			player1_id, player2_id,
			winner_id, is_draw, end_reason,
			final_state, move_count,
			player1_rating_before, player1_rating_after,
			player2_rating_before, player2_rating_after,
			started_at, ended_at
		FROM game_results
		WHERE session_id = $1`
	var (
		sess   Session
		gt     string
		winner sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&sess.ID, &gt,
		&sess.Player1ID, &sess.Player2ID,
		&winner, &sess.IsDraw, &sess.EndReason,
		&sess.State, &sess.MoveSeq,
		&sess.Player1RatingBefore, &sess.Player1RatingAfter,
		&sess.Player2RatingBefore, &sess.Player2RatingAfter,
		&sess.CreatedAt, &sess.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select game result: %w", err)
	}
	sess.GameType = gameTypeFrom(gt)
	sess.Status = StatusCompleted
	if winner.Valid {
		sess.WinnerID = winner.String
	}
	return &sess, nil
}

func (r *pgRepository) GetRating(ctx context.Context, userID string) (int, error) {
	const q = `SELECT rating FROM player_ratings WHERE user_id = $1`
	var rating int
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&rating)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultRating, nil
	}
	if err != nil {
		return 0, fmt.Errorf("select rating: %w", err)
	}
	return rating, nil
}

func (r *pgRepository) UpsertRating(ctx context.Context, userID string, rating int) error {
	const q = `
		INSERT INTO player_ratings (user_id, rating, games_played, updated_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			rating = EXCLUDED.rating,
			games_played = player_ratings.games_played + 1,
			updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, q, userID, rating); err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

func nullStr(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func gameTypeFrom(s string) engine.GameType {
	gt, err := engine.ParseGameType(s)
	if err != nil {
		return engine.GameType(s)
	}
	return gt
}
