package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"songd/pkg/types"
)

// Store is the SQLite-backed song catalog. It owns the database handle and
// resolves song and image file names against the configured directories.
type Store struct {
	db        *sql.DB
	songsDir  string
	imagesDir string
}

// Open opens (or creates) the catalog database at path. songsDir and
// imagesDir anchor the relative file names stored in the table.
func Open(path, songsDir, imagesDir string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty database path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Store{db: db, songsDir: songsDir, imagesDir: imagesDir}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Init creates the songs table when it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS songs (
			song_id INTEGER PRIMARY KEY,
			song_name TEXT NOT NULL,
			artist_name TEXT NOT NULL,
			song_name_serialized TEXT NOT NULL,
			artist_name_serialized TEXT NOT NULL,
			duration INTEGER NOT NULL,
			song_file_name TEXT NOT NULL,
			image_file_name TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Add inserts one record. The serialized name columns are derived here so
// that Search always matches against the same normalization.
func (s *Store) Add(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO songs (song_id, song_name, artist_name, song_name_serialized,
			artist_name_serialized, duration, song_file_name, image_file_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Artist, serialize(r.Name), serialize(r.Artist),
		r.Duration, r.SongFile, r.ImageFile)
	if err != nil {
		return fmt.Errorf("insert song %d: %w", r.ID, err)
	}
	return nil
}

// Count reports the number of songs in the catalog.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM songs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count songs: %w", err)
	}
	return n, nil
}

// Search returns songs whose serialized song or artist name contains term.
// An empty term matches nothing. Cover art is attached when the image file
// exists; a missing file just leaves Image empty.
func (s *Store) Search(ctx context.Context, term string) ([]types.Song, error) {
	term = serialize(term)
	if term == "" {
		return nil, nil
	}
	pattern := "%" + term + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT song_id, song_name, artist_name, duration, image_file_name
		FROM songs
		WHERE song_name_serialized LIKE ? OR artist_name_serialized LIKE ?
		ORDER BY song_id`, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search songs: %w", err)
	}
	defer rows.Close()

	var out []types.Song
	for rows.Next() {
		var (
			song      types.Song
			imageFile string
		)
		if err := rows.Scan(&song.ID, &song.Name, &song.Artist, &song.Duration, &imageFile); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		song.DurationString = formatDuration(song.Duration)
		if imageFile != "" {
			if b, err := os.ReadFile(filepath.Join(s.imagesDir, imageFile)); err == nil {
				song.Image = b
			}
		}
		out = append(out, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search songs: %w", err)
	}
	return out, nil
}

// SongFile returns the absolute path of the audio file for a song id.
func (s *Store) SongFile(ctx context.Context, id int64) (string, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT song_file_name FROM songs WHERE song_id = ?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrSongNotFound(id)
	}
	if err != nil {
		return "", fmt.Errorf("lookup song %d: %w", id, err)
	}
	return filepath.Join(s.songsDir, name), nil
}

// serialize normalizes a name for matching: lowercase letters and digits
// only, everything else dropped.
func serialize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
