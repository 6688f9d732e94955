package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"irrigation_node/internal/models"
)

type SessionSQLite struct {
	db *sql.DB
}

func NewSessionSQLite(db *sql.DB) *SessionSQLite {
	return &SessionSQLite{db: db}
}

const (
	sessionRowID = 1

	upsertSessionSQL = `
		INSERT INTO node_session (id, pump_mode, fan, light, telemetry_sent, lines_received, clean_shutdown, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pump_mode=excluded.pump_mode,
			fan=excluded.fan,
			light=excluded.light,
			telemetry_sent=excluded.telemetry_sent,
			lines_received=excluded.lines_received,
			clean_shutdown=excluded.clean_shutdown,
			updated_at=excluded.updated_at
	`

	selectSessionSQL = `
		SELECT id, pump_mode, fan, light, telemetry_sent, lines_received, clean_shutdown, updated_at
		FROM node_session WHERE id=?
	`
)

// Save updates or inserts the node_session row (id always 1).
func (r *SessionSQLite) Save(ctx context.Context, s models.SessionCheckpoint) error {
	ts := s.UpdatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}

	_, err := r.db.ExecContext(ctx, upsertSessionSQL,
		sessionRowID,
		s.PumpMode,
		s.Fan,
		s.Light,
		int64(s.TelemetrySent),
		int64(s.LinesReceived),
		s.CleanShutdown,
		ts,
	)
	return err
}

// Load fetches the checkpoint row. ok is false when no session was ever saved.
func (r *SessionSQLite) Load(ctx context.Context) (models.SessionCheckpoint, bool, error) {
	row := r.db.QueryRowContext(ctx, selectSessionSQL, sessionRowID)

	var (
		s           models.SessionCheckpoint
		sent, lines int64
	)
	if err := row.Scan(
		&s.ID,
		&s.PumpMode,
		&s.Fan,
		&s.Light,
		&sent,
		&lines,
		&s.CleanShutdown,
		&s.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SessionCheckpoint{}, false, nil
		}
		return models.SessionCheckpoint{}, false, err
	}
	if sent > 0 {
		s.TelemetrySent = uint64(sent)
	}
	if lines > 0 {
		s.LinesReceived = uint64(lines)
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, true, nil
}
