package infrastructure

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/disgoorg/snowflake/v2"
	_ "github.com/lib/pq"
	"github.com/sglre6355/vibr/internal/modules/music_player/application/ports"
)

const defaultTopTracksLimit = 10

var playHistoryMigrations = []string{
	`CREATE TABLE IF NOT EXISTS play_history (
		id           BIGSERIAL PRIMARY KEY,
		guild_id     BIGINT NOT NULL,
		requester_id BIGINT NOT NULL,
		title        TEXT NOT NULL,
		author       TEXT NOT NULL,
		uri          TEXT NOT NULL,
		source       TEXT NOT NULL,
		played_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS play_history_guild_idx ON play_history (guild_id)`,
}

// PostgresPlayRecorder stores play history in PostgreSQL.
type PostgresPlayRecorder struct {
	db *sql.DB
}

// NewPostgresPlayRecorder opens the database, pings it and creates the
// play_history table when missing.
func NewPostgresPlayRecorder(ctx context.Context, dsn string) (*PostgresPlayRecorder, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	recorder := &PostgresPlayRecorder{db: db}
	if err := recorder.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	slog.Info("play history database ready")
	return recorder, nil
}

func (r *PostgresPlayRecorder) migrate(ctx context.Context) error {
	for _, m := range playHistoryMigrations {
		if _, err := r.db.ExecContext(ctx, m); err != nil {
			return errors.Wrapf(err, "failed to execute migration: %s", m)
		}
	}
	return nil
}

// RecordPlay inserts one play.
func (r *PostgresPlayRecorder) RecordPlay(ctx context.Context, record ports.PlayRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	track := record.Track
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO play_history (guild_id, requester_id, title, author, uri, source, played_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		int64(record.GuildID),
		int64(record.RequesterID),
		track.Title,
		track.Author,
		track.URI,
		track.SourceName,
		record.PlayedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to record play for guild %s", record.GuildID)
	}
	return nil
}

// TopTracks returns the guild's most played tracks.
func (r *PostgresPlayRecorder) TopTracks(
	ctx context.Context,
	guildID snowflake.ID,
	limit int,
) ([]ports.TrackPlayCount, error) {
	if limit <= 0 {
		limit = defaultTopTracksLimit
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT title, uri, COUNT(*) AS plays
		 FROM play_history
		 WHERE guild_id = $1
		 GROUP BY title, uri
		 ORDER BY plays DESC, title ASC
		 LIMIT $2`,
		int64(guildID),
		limit,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query top tracks for guild %s", guildID)
	}
	defer func() { _ = rows.Close() }()

	var counts []ports.TrackPlayCount
	for rows.Next() {
		var c ports.TrackPlayCount
		if err := rows.Scan(&c.Title, &c.URI, &c.Plays); err != nil {
			return nil, errors.Wrap(err, "failed to scan top track")
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate top tracks")
	}
	return counts, nil
}

// Close closes the database.
func (r *PostgresPlayRecorder) Close() error {
	return r.db.Close()
}

var _ ports.PlayRecorder = (*PostgresPlayRecorder)(nil)
