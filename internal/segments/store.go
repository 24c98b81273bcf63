package segments

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/godlykids/radio-engine/internal/domain"
)

// ErrNotFound is returned when a segment id does not exist.
var ErrNotFound = errors.New("segment not found")

// Store persists broadcast segments in SQLite.
type Store struct {
	db *sql.DB
}

// Open initializes the segment store at the given path, creating the schema
// if needed.
func Open(ctx context.Context, path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS segments (
    id TEXT PRIMARY KEY,
    station_id TEXT NOT NULL,
    type TEXT NOT NULL,
    position INTEGER NOT NULL,
    host_id TEXT,
    script_text TEXT,
    audio_url TEXT,
    duration_seconds REAL NOT NULL DEFAULT 0,
    playlist_ref TEXT,
    song_info TEXT,
    next_track TEXT,
    previous_track TEXT,
    status TEXT NOT NULL,
    error_message TEXT
);
CREATE INDEX IF NOT EXISTS idx_segments_station_position ON segments(station_id, position);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert writes a batch of segments in one transaction.
func (s *Store) Insert(ctx context.Context, batch []domain.Segment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO segments (id, station_id, type, position, host_id, script_text, audio_url,
    duration_seconds, playlist_ref, song_info, next_track, previous_track, status, error_message)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, seg := range batch {
		playlistRef, err := marshalNullable(seg.PlaylistRef)
		if err != nil {
			return err
		}
		songInfo, err := marshalNullable(seg.SongInfo)
		if err != nil {
			return err
		}
		nextTrack, err := marshalNullable(seg.NextTrack)
		if err != nil {
			return err
		}
		previousTrack, err := marshalNullable(seg.PreviousTrack)
		if err != nil {
			return err
		}

		if _, err := stmt.ExecContext(ctx,
			seg.ID, seg.StationID, seg.Type, seg.Order, seg.HostID, seg.ScriptText, seg.AudioURL,
			seg.DurationSeconds, playlistRef, songInfo, nextTrack, previousTrack, seg.Status, seg.ErrorMessage,
		); err != nil {
			return fmt.Errorf("insert segment %s: %w", seg.ID, err)
		}
	}

	return tx.Commit()
}

// ListByStation returns a station's segments ordered by position.
func (s *Store) ListByStation(ctx context.Context, stationID string) ([]domain.Segment, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` WHERE station_id = ? ORDER BY position`, stationID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var result []domain.Segment
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, seg)
	}
	return result, rows.Err()
}

// Get returns a segment by id.
func (s *Store) Get(ctx context.Context, id string) (domain.Segment, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	seg, err := scanSegment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Segment{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return seg, err
}

// Update describes a partial segment mutation. Nil fields are left unchanged.
type Update struct {
	ScriptText      *string
	AudioURL        *string
	Status          *string
	Order           *int
	DurationSeconds *float64
	ErrorMessage    *string
}

// Update applies a partial update to one segment.
func (s *Store) Update(ctx context.Context, id string, update Update) error {
	setClause := ""
	var args []any

	appendSet := func(column string, value any) {
		if setClause != "" {
			setClause += ", "
		}
		setClause += column + " = ?"
		args = append(args, value)
	}

	if update.ScriptText != nil {
		appendSet("script_text", *update.ScriptText)
	}
	if update.AudioURL != nil {
		appendSet("audio_url", *update.AudioURL)
	}
	if update.Status != nil {
		appendSet("status", *update.Status)
	}
	if update.Order != nil {
		appendSet("position", *update.Order)
	}
	if update.DurationSeconds != nil {
		appendSet("duration_seconds", *update.DurationSeconds)
	}
	if update.ErrorMessage != nil {
		appendSet("error_message", *update.ErrorMessage)
	}

	if setClause == "" {
		return nil
	}

	args = append(args, id)
	result, err := s.db.ExecContext(ctx, `UPDATE segments SET `+setClause+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update segment: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// OrderPair assigns a new order value to one segment.
type OrderPair struct {
	ID    string `json:"id" binding:"required"`
	Order int    `json:"order"`
}

// Reorder applies a batch of (id, order) pairs as one atomic transaction.
// Resulting order uniqueness is the caller's responsibility.
func (s *Store) Reorder(ctx context.Context, pairs []OrderPair) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer tx.Rollback()

	for _, pair := range pairs {
		if _, err := tx.ExecContext(ctx, `UPDATE segments SET position = ? WHERE id = ?`, pair.Order, pair.ID); err != nil {
			return fmt.Errorf("reorder segment %s: %w", pair.ID, err)
		}
	}

	return tx.Commit()
}

// Delete removes one segment.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM segments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete segment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// DeleteByStation removes all of a station's segments and returns the count.
func (s *Store) DeleteByStation(ctx context.Context, stationID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM segments WHERE station_id = ?`, stationID)
	if err != nil {
		return 0, fmt.Errorf("delete station segments: %w", err)
	}
	return result.RowsAffected()
}

// NextOrder returns the next free order value for a station.
func (s *Store) NextOrder(ctx context.Context, stationID string) (int, error) {
	var max sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(position) FROM segments WHERE station_id = ?`, stationID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("next order: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

const selectColumns = `
SELECT id, station_id, type, position, host_id, script_text, audio_url,
    duration_seconds, playlist_ref, song_info, next_track, previous_track, status, error_message
FROM segments`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSegment(row rowScanner) (domain.Segment, error) {
	var seg domain.Segment
	var hostID, scriptText, audioURL, errorMessage sql.NullString
	var playlistRef, songInfo, nextTrack, previousTrack sql.NullString

	err := row.Scan(&seg.ID, &seg.StationID, &seg.Type, &seg.Order, &hostID, &scriptText, &audioURL,
		&seg.DurationSeconds, &playlistRef, &songInfo, &nextTrack, &previousTrack, &seg.Status, &errorMessage)
	if err != nil {
		return domain.Segment{}, err
	}

	seg.HostID = hostID.String
	seg.ScriptText = scriptText.String
	seg.AudioURL = audioURL.String
	seg.ErrorMessage = errorMessage.String

	if err := unmarshalNullable(playlistRef, &seg.PlaylistRef); err != nil {
		return domain.Segment{}, err
	}
	if err := unmarshalNullable(songInfo, &seg.SongInfo); err != nil {
		return domain.Segment{}, err
	}
	if err := unmarshalNullable(nextTrack, &seg.NextTrack); err != nil {
		return domain.Segment{}, err
	}
	if err := unmarshalNullable(previousTrack, &seg.PreviousTrack); err != nil {
		return domain.Segment{}, err
	}

	return seg, nil
}

func marshalNullable[T any](value *T) (sql.NullString, error) {
	if value == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode segment field: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalNullable[T any](value sql.NullString, target **T) error {
	if !value.Valid || value.String == "" {
		return nil
	}
	decoded := new(T)
	if err := json.Unmarshal([]byte(value.String), decoded); err != nil {
		return fmt.Errorf("decode segment field: %w", err)
	}
	*target = decoded
	return nil
}
