// Package sqlite stores readings in a sqlite database. Temperatures are
// kept in tenths of a degree, NULL for invalid channels.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang/glog"
	_ "github.com/mattn/go-sqlite3"

	"github.com/robotalks/tmon/pkg/proto"
	"github.com/robotalks/tmon/pkg/reading"
)

//go:embed sql/schema.sql
var schemaSQL string

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/recent-readings.sql
var recentReadingsSQL string

//go:embed sql/recent-readings-by-addr.sql
var recentReadingsByAddrSQL string

// Store is a reading.Sink backed by sqlite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	dsn, err := buildDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("db schema: %w", err)
	}
	glog.V(2).Infof("sqlite: opened %s", dsn)
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func buildDSN(path string) (string, error) {
	params := []string{
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}
	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}

// Insert implements reading.Sink. Each call is a single INSERT.
func (s *Store) Insert(ctx context.Context, r reading.Reading) error {
	args := []interface{}{r.Time.Unix(), int(r.Address)}
	for _, c := range r.Channels {
		if c.Valid {
			args = append(args, int(c.Tenths))
		} else {
			args = append(args, nil)
		}
	}
	if _, err := s.db.ExecContext(ctx, insertReadingSQL, args...); err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// Recent returns up to n readings, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]reading.Reading, error) {
	rows, err := s.db.QueryContext(ctx, recentReadingsSQL, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReadings(rows)
}

// RecentFrom returns up to n readings of one node, newest first.
func (s *Store) RecentFrom(ctx context.Context, addr byte, n int) ([]reading.Reading, error) {
	rows, err := s.db.QueryContext(ctx, recentReadingsByAddrSQL, int(addr), n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReadings(rows)
}

func scanReadings(rows *sql.Rows) ([]reading.Reading, error) {
	var out []reading.Reading
	for rows.Next() {
		var (
			ts    int64
			addr  int
			temps [proto.Channels]sql.NullInt32
		)
		if err := rows.Scan(&ts, &addr, &temps[0], &temps[1], &temps[2], &temps[3]); err != nil {
			return nil, err
		}
		r := reading.Reading{Time: time.Unix(ts, 0), Address: byte(addr)}
		for ch, t := range temps {
			r.Channels[ch] = reading.Channel{Tenths: int16(t.Int32), Valid: t.Valid}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
