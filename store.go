package homepage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested post row does not exist.
var ErrNotFound = sql.ErrNoRows

// Store owns the connection pool for the posts table. Handlers never query
// through it directly: they acquire a Conn per request and pass it as a
// bun.IDB to the query functions below.
type Store struct {
	db *bun.DB
}

// OpenStore connects to dsn and ensures the schema exists. postgres:// and
// postgresql:// URLs use PostgreSQL; anything else is a SQLite path or
// file: DSN.
func OpenStore(ctx context.Context, dsn string) (*Store, error) {
	var db *bun.DB
	if isPostgresDSN(dsn) {
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, err
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	} else {
		sqldb, err := openSQLite(dsn)
		if err != nil {
			return nil, err
		}
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// openSQLite opens (or creates) the SQLite database at dsn, making sure the
// data directory exists for plain paths.
func openSQLite(dsn string) (*sql.DB, error) {
	if !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed while a sync writes; the busy timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	return db, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*Post)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// DB returns the underlying pool, for callers outside request handling such
// as the sync command.
func (s *Store) DB() *bun.DB {
	return s.db
}

// Conn acquires a dedicated connection. The caller must Close it.
func (s *Store) Conn(ctx context.Context) (bun.Conn, error) {
	return s.db.Conn(ctx)
}

// Close closes the underlying database pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListPosts returns every post ordered by creation date, oldest first.
func ListPosts(ctx context.Context, db bun.IDB) ([]Post, error) {
	var posts []Post
	err := db.NewSelect().
		Model(&posts).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost returns the post whose path equals slug, or ErrNotFound.
func GetPost(ctx context.Context, db bun.IDB, slug string) (Post, error) {
	var post Post
	err := db.NewSelect().
		Model(&post).
		Where("path = ?", slug).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Post{}, ErrNotFound
		}
		return Post{}, err
	}
	return post, nil
}

// SavePost inserts p, or updates the title of the existing row with the same
// path. A non-zero CreatedAt also replaces the stored date. It reports
// whether a new row was created.
func SavePost(ctx context.Context, db bun.IDB, p *Post) (bool, error) {
	existing, err := GetPost(ctx, db, p.Path)
	switch {
	case errors.Is(err, ErrNotFound):
		if _, err := db.NewInsert().Model(p).Exec(ctx); err != nil {
			return false, err
		}
		return true, nil
	case err != nil:
		return false, err
	}

	p.ID = existing.ID
	q := db.NewUpdate().
		Model(p).
		Column("title").
		WherePK()
	if !p.CreatedAt.IsZero() {
		q = q.Column("created_at")
	} else {
		p.CreatedAt = existing.CreatedAt
	}
	if _, err := q.Exec(ctx); err != nil {
		return false, err
	}
	return false, nil
}
