package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sort"

	"bluujobs/internal/database"
)

// Dialect holds the backend-specific SQL of a SQLKV.
type Dialect struct {
	Name string
	// LockKey serializes commits touching the same key. Empty when the
	// backend already serializes write transactions.
	LockKey string
	Now     string
	rebind  func(string) string
}

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

var (
	PostgresDialect = Dialect{
		Name:    "postgres",
		LockKey: `SELECT pg_advisory_xact_lock(hashtext($1))`,
		Now:     "now()",
	}
	SQLiteDialect = Dialect{
		Name: "sqlite",
		Now:  "CURRENT_TIMESTAMP",
		rebind: func(q string) string {
			return placeholderRe.ReplaceAllString(q, "?$1")
		},
	}
)

func (d Dialect) q(query string) string {
	if d.rebind == nil {
		return query
	}
	return d.rebind(query)
}

// SQLKV keeps entries in the kv_entries table of a relational database.
type SQLKV struct {
	db      database.DB
	dialect Dialect
	logger  *log.Logger
}

func NewSQLKV(db database.DB, dialect Dialect, logger *log.Logger) *SQLKV {
	return &SQLKV{db: db, dialect: dialect, logger: logger}
}

func (s *SQLKV) Get(ctx context.Context, key string) (Entry, error) {
	if s == nil || s.db == nil {
		return Entry{}, ErrClosed
	}
	var (
		value   string
		version int64
	)
	err := s.db.QueryRow(ctx, s.dialect.q(`SELECT value, version FROM kv_entries WHERE key = $1`), key).Scan(&value, &version)
	if err != nil {
		if isNoRows(err) {
			return Entry{}, nil
		}
		return Entry{}, fmt.Errorf("%s get key=%s: %w", s.dialect.Name, key, err)
	}
	return Entry{Value: []byte(value), Version: version, Exists: true}, nil
}

func (s *SQLKV) Commit(ctx context.Context, writes []Write) (err error) {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	if len(writes) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s begin: %w", s.dialect.Name, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	keys := uniqueKeys(writes)
	sort.Strings(keys)

	current := make(map[string]int64, len(keys))
	for _, k := range keys {
		if s.dialect.LockKey != "" {
			if _, err = tx.Exec(ctx, s.dialect.q(s.dialect.LockKey), k); err != nil {
				return fmt.Errorf("%s lock key=%s: %w", s.dialect.Name, k, err)
			}
		}
		var v int64
		scanErr := tx.QueryRow(ctx, s.dialect.q(`SELECT version FROM kv_entries WHERE key = $1`), k).Scan(&v)
		if scanErr != nil && !isNoRows(scanErr) {
			err = fmt.Errorf("%s read version key=%s: %w", s.dialect.Name, k, scanErr)
			return err
		}
		current[k] = v
	}

	for _, w := range writes {
		if !versionMatches(w, current[w.Key]) {
			err = ErrConflict
			return err
		}
	}

	for _, w := range writes {
		if err = s.apply(ctx, tx, w, current[w.Key]); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s commit: %w", s.dialect.Name, err)
	}
	return nil
}

func (s *SQLKV) apply(ctx context.Context, tx database.Tx, w Write, current int64) error {
	var (
		n   int64
		err error
	)
	switch w.Kind {
	case WritePut:
		if current == 0 {
			n, err = tx.Exec(ctx, s.dialect.q(`INSERT INTO kv_entries (key, value, version, updated_at) VALUES ($1, $2, 1, `+s.dialect.Now+`) ON CONFLICT (key) DO NOTHING`),
				w.Key, string(w.Value))
		} else {
			n, err = tx.Exec(ctx, s.dialect.q(`UPDATE kv_entries SET value = $1, version = version + 1, updated_at = `+s.dialect.Now+` WHERE key = $2 AND version = $3`),
				string(w.Value), w.Key, current)
		}
	case WriteDelete:
		if current == 0 {
			return nil
		}
		n, err = tx.Exec(ctx, s.dialect.q(`DELETE FROM kv_entries WHERE key = $1 AND version = $2`), w.Key, current)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s %s key=%s: %w", s.dialect.Name, w.Kind, w.Key, err)
	}
	if n == 0 {
		if s.logger != nil {
			s.logger.Printf("[Store] %s %s affected no rows key=%s", s.dialect.Name, w.Kind, w.Key)
		}
		return ErrConflict
	}
	return nil
}

func (s *SQLKV) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isNoRows(err error) bool {
	return errors.Is(err, database.ErrNoRows)
}
