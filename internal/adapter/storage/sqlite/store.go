package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"

	"github.com/avasseur/reelpress/internal/domain"
	"github.com/avasseur/reelpress/internal/port"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store persists conversion job records. SQLite in WAL mode with a single
// writer connection; job state survives restarts so the startup sweep can
// fail interrupted jobs and re-arm expiry for surviving outputs.
type Store struct {
	db *sql.DB
}

var hookOnce sync.Once

func registerHook() {
	hookOnce.Do(func() {
		sqlite.RegisterConnectionHook(func(conn sqlite.ExecQuerierContext, dsn string) error {
			pragmas := []string{
				"PRAGMA journal_mode = WAL",
				"PRAGMA busy_timeout = 5000",
				"PRAGMA synchronous = NORMAL",
				"PRAGMA foreign_keys = ON",
			}
			for _, p := range pragmas {
				if _, err := conn.ExecContext(context.Background(), p, nil); err != nil {
					return fmt.Errorf("execute %s: %w", p, err)
				}
			}
			return nil
		})
	})
}

func NewStore(dataDir string) (*Store, error) {
	registerHook()

	dbPath := filepath.Join(dataDir, "reelpress.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL allows concurrent reads but only one writer.
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const jobColumns = `id, source, quality, state, temp_path, output_path, output_name,
	size_bytes, error_kind, error_message, created_at, expires_at`

func (s *Store) Save(j *domain.ConversionJob) error {
	_, err := s.db.Exec(`
		INSERT INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.SourceRaw, j.Quality, string(j.State), j.TempPath, j.OutputPath,
		j.OutputName, j.SizeBytes, j.ErrorKind, j.ErrorMessage, j.CreatedAt,
		nullableTime(j.ExpiresAt),
	)
	return err
}

func (s *Store) Update(j *domain.ConversionJob) error {
	_, err := s.db.Exec(`
		UPDATE jobs SET state = ?, temp_path = ?, output_path = ?, output_name = ?,
			size_bytes = ?, error_kind = ?, error_message = ?, expires_at = ?
		WHERE id = ?`,
		string(j.State), j.TempPath, j.OutputPath, j.OutputName,
		j.SizeBytes, j.ErrorKind, j.ErrorMessage, nullableTime(j.ExpiresAt), j.ID,
	)
	return err
}

func (s *Store) Get(id string) (*domain.ConversionJob, error) {
	row := s.db.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	return scanJob(row)
}

func (s *Store) GetByOutputName(name string) (*domain.ConversionJob, error) {
	row := s.db.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE output_name = ? ORDER BY created_at DESC LIMIT 1`, name)
	return scanJob(row)
}

func (s *Store) ListReady() ([]*domain.ConversionJob, error) {
	return s.list(`SELECT ` + jobColumns + ` FROM jobs WHERE state = 'ready'`)
}

func (s *Store) ListUnfinished() ([]*domain.ConversionJob, error) {
	return s.list(`SELECT ` + jobColumns + ` FROM jobs
		WHERE state IN ('created', 'acquiring', 'acquired', 'transcoding')`)
}

func (s *Store) MarkGone(id string, at time.Time) error {
	_, err := s.db.Exec(`UPDATE jobs SET state = 'gone', expires_at = ? WHERE id = ?`, at, id)
	return err
}

func (s *Store) list(query string) ([]*domain.ConversionJob, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var jobs []*domain.ConversionJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.ConversionJob, error) {
	var j domain.ConversionJob
	var state string
	var expiresAt sql.NullTime

	err := row.Scan(
		&j.ID, &j.SourceRaw, &j.Quality, &state, &j.TempPath, &j.OutputPath,
		&j.OutputName, &j.SizeBytes, &j.ErrorKind, &j.ErrorMessage,
		&j.CreatedAt, &expiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	j.State = domain.JobState(state)
	if expiresAt.Valid {
		j.ExpiresAt = expiresAt.Time
	}
	return &j, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

var _ port.JobStore = (*Store)(nil)
