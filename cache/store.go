// ABOUTME: SQLite persistence for cached playlists and video lists
// ABOUTME: Survives restarts so a session starts without spending quota

package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"yanger/playlist"
)

const schema = `
CREATE TABLE IF NOT EXISTS playlists (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	item_count INTEGER NOT NULL DEFAULT 0,
	privacy TEXT NOT NULL DEFAULT '',
	is_special INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS videos (
	playlist_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	video_id TEXT NOT NULL,
	item_id TEXT NOT NULL,
	title TEXT NOT NULL,
	channel TEXT NOT NULL DEFAULT '',
	duration TEXT NOT NULL DEFAULT '',
	view_count INTEGER NOT NULL DEFAULT 0,
	added_at TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (playlist_id, item_id)
);

CREATE TABLE IF NOT EXISTS fetched (
	key TEXT PRIMARY KEY,
	fetched_at TEXT NOT NULL
);
`

// playlistsKey marks the freshness of the playlist collection in the
// fetched table; per-playlist video lists use their playlist id.
const playlistsKey = "playlists"

// Store persists cached remote state in SQLite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the cache database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open cache db %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply cache schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SavePlaylists replaces the stored playlist collection.
func (s *Store) SavePlaylists(playlists []playlist.Playlist, fetchedAt time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM playlists`); err != nil {
		return fmt.Errorf("clear playlists: %w", err)
	}

	for _, p := range playlists {
		special := 0
		if p.IsSpecial {
			special = 1
		}

		_, err := tx.Exec(
			`INSERT INTO playlists (id, title, description, item_count, privacy, is_special)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.Title, p.Description, p.ItemCount, string(p.Privacy), special,
		)
		if err != nil {
			return fmt.Errorf("insert playlist %s: %w", p.ID, err)
		}
	}

	if err := markFetched(tx, playlistsKey, fetchedAt); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadPlaylists returns the stored playlist collection and when it was
// fetched. A zero time means nothing is stored.
func (s *Store) LoadPlaylists() ([]playlist.Playlist, time.Time, error) {
	fetchedAt, err := s.fetchedAt(playlistsKey)
	if err != nil {
		return nil, time.Time{}, err
	}

	if fetchedAt.IsZero() {
		return nil, time.Time{}, nil
	}

	rows, err := s.db.Query(
		`SELECT id, title, description, item_count, privacy, is_special
		 FROM playlists ORDER BY is_special DESC, title`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load playlists: %w", err)
	}
	defer rows.Close()

	var out []playlist.Playlist

	for rows.Next() {
		var p playlist.Playlist
		var privacy string
		var special int

		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.ItemCount, &privacy, &special); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan playlist: %w", err)
		}

		p.Privacy = playlist.Privacy(privacy)
		p.IsSpecial = special != 0

		out = append(out, p)
	}

	return out, fetchedAt, rows.Err()
}

// SaveVideos replaces the stored video list of one playlist.
func (s *Store) SaveVideos(playlistID string, videos []playlist.Video, fetchedAt time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM videos WHERE playlist_id = ?`, playlistID); err != nil {
		return fmt.Errorf("clear videos of %s: %w", playlistID, err)
	}

	for _, v := range videos {
		_, err := tx.Exec(
			`INSERT INTO videos (playlist_id, position, video_id, item_id, title, channel, duration, view_count, added_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			playlistID, v.Position, v.ID, v.PlaylistItemID, v.Title, v.ChannelTitle,
			v.Duration, v.ViewCount, v.AddedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("insert video %s: %w", v.ID, err)
		}
	}

	if err := markFetched(tx, playlistID, fetchedAt); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadVideos returns the stored video list of one playlist and when it
// was fetched. A zero time means nothing is stored.
func (s *Store) LoadVideos(playlistID string) ([]playlist.Video, time.Time, error) {
	fetchedAt, err := s.fetchedAt(playlistID)
	if err != nil {
		return nil, time.Time{}, err
	}

	if fetchedAt.IsZero() {
		return nil, time.Time{}, nil
	}

	rows, err := s.db.Query(
		`SELECT position, video_id, item_id, title, channel, duration, view_count, added_at
		 FROM videos WHERE playlist_id = ? ORDER BY position`, playlistID)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load videos of %s: %w", playlistID, err)
	}
	defer rows.Close()

	var out []playlist.Video

	for rows.Next() {
		var v playlist.Video
		var addedAt string

		if err := rows.Scan(&v.Position, &v.ID, &v.PlaylistItemID, &v.Title, &v.ChannelTitle,
			&v.Duration, &v.ViewCount, &addedAt); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan video: %w", err)
		}

		if t, err := time.Parse(time.RFC3339, addedAt); err == nil {
			v.AddedAt = t
		}

		v.PlaylistID = playlistID

		out = append(out, v)
	}

	return out, fetchedAt, rows.Err()
}

// DeleteVideos drops the stored video list of one playlist.
func (s *Store) DeleteVideos(playlistID string) error {
	if _, err := s.db.Exec(`DELETE FROM videos WHERE playlist_id = ?`, playlistID); err != nil {
		return fmt.Errorf("delete videos of %s: %w", playlistID, err)
	}

	if _, err := s.db.Exec(`DELETE FROM fetched WHERE key = ?`, playlistID); err != nil {
		return fmt.Errorf("delete freshness of %s: %w", playlistID, err)
	}

	return nil
}

// DeletePlaylists drops the stored playlist collection.
func (s *Store) DeletePlaylists() error {
	if _, err := s.db.Exec(`DELETE FROM playlists`); err != nil {
		return fmt.Errorf("delete playlists: %w", err)
	}

	if _, err := s.db.Exec(`DELETE FROM fetched WHERE key = ?`, playlistsKey); err != nil {
		return fmt.Errorf("delete playlists freshness: %w", err)
	}

	return nil
}

// Clear drops everything.
func (s *Store) Clear() error {
	for _, stmt := range []string{
		`DELETE FROM videos`,
		`DELETE FROM playlists`,
		`DELETE FROM fetched`,
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
	}

	return nil
}

func (s *Store) fetchedAt(key string) (time.Time, error) {
	var raw string

	err := s.db.QueryRow(`SELECT fetched_at FROM fetched WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}

	if err != nil {
		return time.Time{}, fmt.Errorf("freshness of %s: %w", key, err)
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, nil
	}

	return t, nil
}

func markFetched(tx *sql.Tx, key string, at time.Time) error {
	_, err := tx.Exec(
		`INSERT INTO fetched (key, fetched_at) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET fetched_at = excluded.fetched_at`,
		key, at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("mark fetched %s: %w", key, err)
	}

	return nil
}
