// Package migration creates the kv_entries table and its history on
// PostgreSQL before the SQL key-value backend starts serving.
package migration

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"bluujobs/internal/database"
)

//go:embed sql/*.sql
var embedded embed.FS

// lockKey serialises concurrent API replicas that boot at the same time.
const lockKey = 0x626c7575

// ErrChecksumMismatch is returned when an applied file was edited afterwards.
var ErrChecksumMismatch = errors.New("migrate: checksum mismatch")

// Runner applies versioned SQL files named V<version>__<name>.sql, once
// each and in version order, recording them in kv_migrations.
type Runner struct {
	FS     fs.FS
	Dir    string
	Logger *log.Logger
}

// Default returns a runner over the migrations compiled into the binary.
func Default(logger *log.Logger) Runner {
	return Runner{FS: embedded, Dir: "sql", Logger: logger}
}

func (r Runner) Run(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("migrate: %w", database.ErrNotConnected)
	}

	migs, err := r.load()
	if err != nil {
		return err
	}
	if len(migs) == 0 {
		return nil
	}

	// The advisory lock is per session, so every statement runs on one conn.
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("migrate: acquire conn: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS kv_migrations (
	version BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return fmt.Errorf("migrate: create history: %w", err)
	}

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		return fmt.Errorf("migrate: lock: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
	}()

	applied, err := history(ctx, conn)
	if err != nil {
		return err
	}

	todo, err := pending(migs, applied)
	if err != nil {
		return err
	}
	for _, m := range todo {
		if err := apply(ctx, conn, m); err != nil {
			return err
		}
		if r.Logger != nil {
			r.Logger.Printf("[Migrate] applied V%d %s", m.Version, m.Name)
		}
	}
	if len(todo) == 0 && r.Logger != nil {
		r.Logger.Printf("[Migrate] kv_entries schema up to date (V%d)", migs[len(migs)-1].Version)
	}

	return nil
}

type Migration struct {
	Version  int64
	Name     string
	Filename string
	SQL      string
	Checksum string
}

var fileRe = regexp.MustCompile(`^V(\d+)__([A-Za-z0-9_.-]+)\.sql$`)

func (r Runner) load() ([]Migration, error) {
	fsys := r.FS
	if fsys == nil {
		fsys = embedded
	}
	dir := strings.TrimSpace(r.Dir)
	if dir == "" {
		dir = "."
	}
	return loadMigrations(fsys, dir)
}

func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	migs := make([]Migration, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		m := fileRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version: %s", name)
		}

		b, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, err
		}
		sqlText := strings.TrimSpace(string(b))
		if sqlText == "" {
			return nil, fmt.Errorf("empty migration file: %s", name)
		}

		h := sha256.Sum256([]byte(sqlText))
		migs = append(migs, Migration{
			Version:  v,
			Name:     m[2],
			Filename: name,
			SQL:      sqlText,
			Checksum: hex.EncodeToString(h[:]),
		})
	}

	sort.Slice(migs, func(i, j int) bool { return migs[i].Version < migs[j].Version })
	for i := 1; i < len(migs); i++ {
		if migs[i].Version == migs[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version: %d", migs[i].Version)
		}
	}

	return migs, nil
}

// pending returns the migrations not yet in applied, keyed by version to
// checksum. An applied file whose contents changed stops the run.
func pending(migs []Migration, applied map[int64]string) ([]Migration, error) {
	var out []Migration
	for _, m := range migs {
		sum, ok := applied[m.Version]
		if !ok {
			out = append(out, m)
			continue
		}
		if sum != m.Checksum {
			return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, m.Filename)
		}
	}
	return out, nil
}

func history(ctx context.Context, conn *sql.Conn) (map[int64]string, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version, checksum FROM kv_migrations`)
	if err != nil {
		return nil, fmt.Errorf("migrate: read history: %w", err)
	}
	defer rows.Close()

	out := map[int64]string{}
	for rows.Next() {
		var v int64
		var c string
		if err := rows.Scan(&v, &c); err != nil {
			return nil, err
		}
		out[v] = c
	}
	return out, rows.Err()
}

func apply(ctx context.Context, conn *sql.Conn, m Migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("migrate: %s: %w", m.Filename, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO kv_migrations (version, name, checksum, applied_at) VALUES ($1, $2, $3, $4)`,
		m.Version, m.Name, m.Checksum, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("migrate: record %s: %w", m.Filename, err)
	}

	return tx.Commit()
}
