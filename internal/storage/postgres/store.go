package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lutefd/navi-api/internal/domain/matches"
	"github.com/lutefd/navi-api/internal/domain/stats"
)

const uniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// conn is satisfied by both the pool and a transaction.
type conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// db returns the transaction opened by InTx for ctx, or the pool.
func (s *Store) db(ctx context.Context) conn {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool
}

// InTx runs fn in one transaction. Store calls made with the context passed
// to fn join it, and their own transactions become savepoints. Nothing fn
// wrote is kept when it returns an error.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := s.db(ctx).Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

const summaryColumns = `m.id, m.match_date, m.match_time, m.opponent, m.our_score, m.opponent_score, m.result`

func scanSummary(row scanner) (matches.Summary, error) {
	var (
		v      matches.Summary
		date   time.Time
		result string
	)
	if err := row.Scan(&v.ID, &date, &v.MatchTime, &v.Opponent, &v.OurScore, &v.OpponentScore, &result); err != nil {
		return matches.Summary{}, err
	}
	v.MatchDate = matches.DateOf(date)
	v.Result = matches.ParseResult(result)
	return v, nil
}

func (s *Store) ListMatches(ctx context.Context) ([]matches.Summary, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT `+summaryColumns+`
		FROM matches m
		ORDER BY m.match_date DESC, m.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	items := make([]matches.Summary, 0)
	for rows.Next() {
		v, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func (s *Store) CountMatches(ctx context.Context) (int, error) {
	var n int
	if err := s.db(ctx).QueryRow(ctx, `SELECT count(*) FROM matches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return n, nil
}

func (s *Store) getSummary(ctx context.Context, q querier, id int64) (matches.Summary, error) {
	v, err := scanSummary(q.QueryRow(ctx, `SELECT `+summaryColumns+` FROM matches m WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return matches.Summary{}, fmt.Errorf("match %d: %w", id, matches.ErrNotFound)
		}
		return matches.Summary{}, fmt.Errorf("get match %d: %w", id, err)
	}
	return v, nil
}

func (s *Store) GetMatchDetail(ctx context.Context, id int64) (matches.Detail, error) {
	summary, err := s.getSummary(ctx, s.db(ctx), id)
	if err != nil {
		return matches.Detail{}, err
	}
	out := matches.Detail{
		Summary:           summary,
		AttendeePlayerIDs: make([]int64, 0),
		GoalAssistRecords: make([]matches.GoalAssistRecord, 0),
	}

	rows, err := s.db(ctx).Query(ctx, `SELECT player_id FROM match_attendance WHERE match_id = $1 ORDER BY player_id`, id)
	if err != nil {
		return matches.Detail{}, fmt.Errorf("list attendees: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var playerID int64
		if err := rows.Scan(&playerID); err != nil {
			return matches.Detail{}, err
		}
		out.AttendeePlayerIDs = append(out.AttendeePlayerIDs, playerID)
	}
	if err := rows.Err(); err != nil {
		return matches.Detail{}, err
	}

	recRows, err := s.db(ctx).Query(ctx, `
		SELECT player_id, goals, assists
		FROM match_goal_assist
		WHERE match_id = $1
		ORDER BY goals DESC, assists DESC, id ASC
	`, id)
	if err != nil {
		return matches.Detail{}, fmt.Errorf("list goal records: %w", err)
	}
	defer recRows.Close()
	for recRows.Next() {
		var rec matches.GoalAssistRecord
		if err := recRows.Scan(&rec.PlayerID, &rec.Goals, &rec.Assists); err != nil {
			return matches.Detail{}, err
		}
		out.GoalAssistRecords = append(out.GoalAssistRecords, rec)
	}
	return out, recRows.Err()
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CreateMatch stores a normalised match with its attendees and scorer
// records in one transaction. Player ids that do not exist are skipped.
func (s *Store) CreateMatch(ctx context.Context, in matches.Input) (matches.Summary, error) {
	tx, err := s.db(ctx).Begin(ctx)
	if err != nil {
		return matches.Summary{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO matches (match_date, match_time, opponent, our_score, opponent_score, result)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id
	`, in.MatchDate.Time, in.MatchTime, in.Opponent, in.OurScore, in.OpponentScore, string(in.Result())).Scan(&id)
	if err != nil {
		return matches.Summary{}, fmt.Errorf("insert match: %w", err)
	}
	if err := writeParticipants(ctx, tx, id, in); err != nil {
		return matches.Summary{}, err
	}
	summary, err := s.getSummary(ctx, tx, id)
	if err != nil {
		return matches.Summary{}, err
	}
	return summary, tx.Commit(ctx)
}

// UpdateMatch replaces the match fields, attendees and scorer records.
func (s *Store) UpdateMatch(ctx context.Context, id int64, in matches.Input) (matches.Summary, error) {
	tx, err := s.db(ctx).Begin(ctx)
	if err != nil {
		return matches.Summary{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE matches SET
			match_date = $2,
			match_time = $3,
			opponent = $4,
			our_score = $5,
			opponent_score = $6,
			result = $7
		WHERE id = $1
	`, id, in.MatchDate.Time, in.MatchTime, in.Opponent, in.OurScore, in.OpponentScore, string(in.Result()))
	if err != nil {
		return matches.Summary{}, fmt.Errorf("update match %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return matches.Summary{}, fmt.Errorf("match %d: %w", id, matches.ErrNotFound)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM match_attendance WHERE match_id = $1`, id); err != nil {
		return matches.Summary{}, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM match_goal_assist WHERE match_id = $1`, id); err != nil {
		return matches.Summary{}, err
	}
	if err := writeParticipants(ctx, tx, id, in); err != nil {
		return matches.Summary{}, err
	}
	summary, err := s.getSummary(ctx, tx, id)
	if err != nil {
		return matches.Summary{}, err
	}
	return summary, tx.Commit(ctx)
}

func writeParticipants(ctx context.Context, tx pgx.Tx, matchID int64, in matches.Input) error {
	if len(in.AttendeePlayerIDs) > 0 {
		if _, err := tx.Exec(ctx, `
			INSERT INTO match_attendance (match_id, player_id)
			SELECT $1, p.id FROM players p WHERE p.id = ANY($2)
			ON CONFLICT DO NOTHING
		`, matchID, in.AttendeePlayerIDs); err != nil {
			return fmt.Errorf("insert attendance: %w", err)
		}
	}
	for _, rec := range in.GoalAssistRecords {
		if _, err := tx.Exec(ctx, `
			INSERT INTO match_goal_assist (match_id, player_id, goals, assists)
			SELECT $1, p.id, $3, $4 FROM players p WHERE p.id = $2
			ON CONFLICT (match_id, player_id) DO UPDATE
			SET goals = EXCLUDED.goals, assists = EXCLUDED.assists
		`, matchID, rec.PlayerID, rec.Goals, rec.Assists); err != nil {
			return fmt.Errorf("insert goal record for player %d: %w", rec.PlayerID, err)
		}
	}
	return nil
}

func (s *Store) DeleteMatch(ctx context.Context, id int64) error {
	tag, err := s.db(ctx).Exec(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete match %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("match %d: %w", id, matches.ErrNotFound)
	}
	return nil
}

// ListGoalAssistLogs returns every tally with at least one goal or assist,
// newest match first.
func (s *Store) ListGoalAssistLogs(ctx context.Context) ([]matches.GoalAssistLog, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT m.id, m.match_date, m.opponent, p.name, g.goals, g.assists
		FROM match_goal_assist g
		JOIN matches m ON m.id = g.match_id
		JOIN players p ON p.id = g.player_id
		WHERE g.goals > 0 OR g.assists > 0
		ORDER BY m.match_date DESC, m.id DESC, g.goals DESC, g.assists DESC, g.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list goal logs: %w", err)
	}
	defer rows.Close()

	items := make([]matches.GoalAssistLog, 0)
	for rows.Next() {
		var (
			v    matches.GoalAssistLog
			date time.Time
		)
		if err := rows.Scan(&v.MatchID, &date, &v.Opponent, &v.PlayerName, &v.Goals, &v.Assists); err != nil {
			return nil, err
		}
		v.MatchDate = matches.DateOf(date)
		items = append(items, v)
	}
	return items, rows.Err()
}

// ListAttendanceLogs returns one row per match, newest first, with the
// attendees' names in alphabetical order.
func (s *Store) ListAttendanceLogs(ctx context.Context) ([]matches.AttendanceLog, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT m.id, m.match_date, m.opponent,
		       COALESCE(array_agg(p.name ORDER BY p.name) FILTER (WHERE p.name IS NOT NULL), '{}') AS names
		FROM matches m
		LEFT JOIN match_attendance a ON a.match_id = m.id
		LEFT JOIN players p ON p.id = a.player_id
		GROUP BY m.id, m.match_date, m.opponent
		ORDER BY m.match_date DESC, m.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	items := make([]matches.AttendanceLog, 0)
	for rows.Next() {
		var (
			v    matches.AttendanceLog
			date time.Time
		)
		if err := rows.Scan(&v.MatchID, &date, &v.Opponent, &v.AttendedPlayerNames); err != nil {
			return nil, err
		}
		v.MatchDate = matches.DateOf(date)
		items = append(items, v)
	}
	return items, rows.Err()
}

func (s *Store) ListPlayers(ctx context.Context) ([]matches.Player, error) {
	rows, err := s.db(ctx).Query(ctx, `SELECT id, name, phone_number FROM players ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	items := make([]matches.Player, 0)
	for rows.Next() {
		var v matches.Player
		if err := rows.Scan(&v.ID, &v.Name, &v.PhoneNumber); err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func (s *Store) GetPlayerByName(ctx context.Context, name string) (matches.Player, error) {
	var v matches.Player
	err := s.db(ctx).QueryRow(ctx, `SELECT id, name, phone_number FROM players WHERE name = $1`, name).Scan(&v.ID, &v.Name, &v.PhoneNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return matches.Player{}, fmt.Errorf("player %q: %w", name, matches.ErrNotFound)
		}
		return matches.Player{}, err
	}
	return v, nil
}

func (s *Store) CreatePlayer(ctx context.Context, in matches.PlayerInput) (matches.Player, error) {
	v := matches.Player{Name: in.Name, PhoneNumber: in.PhoneNumber}
	err := s.db(ctx).QueryRow(ctx, `
		INSERT INTO players (name, phone_number) VALUES ($1, $2) RETURNING id
	`, in.Name, in.PhoneNumber).Scan(&v.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return matches.Player{}, fmt.Errorf("player %q: %w", in.Name, matches.ErrConflict)
		}
		return matches.Player{}, fmt.Errorf("insert player: %w", err)
	}
	return v, nil
}

// EnsurePlayer returns the player called name, creating it if needed.
func (s *Store) EnsurePlayer(ctx context.Context, name string) (matches.Player, error) {
	var v matches.Player
	err := s.db(ctx).QueryRow(ctx, `
		INSERT INTO players (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, phone_number
	`, name).Scan(&v.ID, &v.Name, &v.PhoneNumber)
	if err != nil {
		return matches.Player{}, fmt.Errorf("ensure player %q: %w", name, err)
	}
	return v, nil
}

func (s *Store) UpdatePlayerPhone(ctx context.Context, id int64, phone *string) (matches.Player, error) {
	var v matches.Player
	err := s.db(ctx).QueryRow(ctx, `
		UPDATE players SET phone_number = $2 WHERE id = $1
		RETURNING id, name, phone_number
	`, id, phone).Scan(&v.ID, &v.Name, &v.PhoneNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return matches.Player{}, fmt.Errorf("player %d: %w", id, matches.ErrNotFound)
		}
		return matches.Player{}, err
	}
	return v, nil
}

func scanNextMatch(row scanner) (matches.NextMatch, error) {
	var (
		v    matches.NextMatch
		date time.Time
	)
	if err := row.Scan(&v.ID, &date, &v.MatchTime, &v.Opponent, &v.Venue, &v.Memo); err != nil {
		return matches.NextMatch{}, err
	}
	v.MatchDate = matches.DateOf(date)
	return v, nil
}

func (s *Store) ListNextMatches(ctx context.Context) ([]matches.NextMatch, error) {
	rows, err := s.db(ctx).Query(ctx, `
		SELECT id, match_date, match_time, opponent, venue, memo
		FROM next_matches
		ORDER BY match_date ASC, match_time ASC NULLS LAST, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list next matches: %w", err)
	}
	defer rows.Close()

	items := make([]matches.NextMatch, 0)
	for rows.Next() {
		v, err := scanNextMatch(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func (s *Store) CountNextMatches(ctx context.Context) (int, error) {
	var n int
	if err := s.db(ctx).QueryRow(ctx, `SELECT count(*) FROM next_matches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count next matches: %w", err)
	}
	return n, nil
}

func (s *Store) CreateNextMatch(ctx context.Context, in matches.NextMatchInput) (matches.NextMatch, error) {
	v, err := scanNextMatch(s.db(ctx).QueryRow(ctx, `
		INSERT INTO next_matches (match_date, match_time, opponent, venue, memo)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, match_date, match_time, opponent, venue, memo
	`, in.MatchDate.Time, in.MatchTime, in.Opponent, in.Venue, in.Memo))
	if err != nil {
		return matches.NextMatch{}, fmt.Errorf("insert next match: %w", err)
	}
	return v, nil
}

func (s *Store) UpdateNextMatch(ctx context.Context, id int64, in matches.NextMatchInput) (matches.NextMatch, error) {
	v, err := scanNextMatch(s.db(ctx).QueryRow(ctx, `
		UPDATE next_matches SET
			match_date = $2,
			match_time = $3,
			opponent = $4,
			venue = $5,
			memo = $6
		WHERE id = $1
		RETURNING id, match_date, match_time, opponent, venue, memo
	`, id, in.MatchDate.Time, in.MatchTime, in.Opponent, in.Venue, in.Memo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return matches.NextMatch{}, fmt.Errorf("next match %d: %w", id, matches.ErrNotFound)
		}
		return matches.NextMatch{}, fmt.Errorf("update next match %d: %w", id, err)
	}
	return v, nil
}

func (s *Store) DeleteNextMatch(ctx context.Context, id int64) error {
	tag, err := s.db(ctx).Exec(ctx, `DELETE FROM next_matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete next match %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("next match %d: %w", id, matches.ErrNotFound)
	}
	return nil
}

// ReplaceSeasonStats swaps the whole season_stats projection for rows.
func (s *Store) ReplaceSeasonStats(ctx context.Context, rows []stats.SeasonStats, calculatedAt time.Time) error {
	tx, err := s.db(ctx).Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM season_stats`); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := tx.Exec(ctx, `
			INSERT INTO season_stats (season_year, total_matches, wins, draws, losses, last_calculated_at)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, row.SeasonYear, row.TotalMatches, row.Wins, row.Draws, row.Losses, calculatedAt); err != nil {
			return fmt.Errorf("insert season %d: %w", row.SeasonYear, err)
		}
	}
	return tx.Commit(ctx)
}

// GetLatestSeasonStats returns the most recent season's projection.
func (s *Store) GetLatestSeasonStats(ctx context.Context) (stats.SeasonStats, error) {
	var out stats.SeasonStats
	err := s.db(ctx).QueryRow(ctx, `
		SELECT season_year, total_matches, wins, draws, losses
		FROM season_stats
		ORDER BY season_year DESC
		LIMIT 1
	`).Scan(&out.SeasonYear, &out.TotalMatches, &out.Wins, &out.Draws, &out.Losses)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return stats.SeasonStats{}, fmt.Errorf("season stats: %w", matches.ErrNotFound)
		}
		return stats.SeasonStats{}, err
	}
	return out, nil
}
