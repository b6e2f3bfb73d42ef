package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

var createRequests = `create table if not exists requests (
		id TEXT not null primary key,
		request_line TEXT not null,
		status TEXT not null,
		body_size INTEGER not null default 0,
		remote_addr TEXT not null default '',
		payload BLOB,
		served_at TEXT not null default (strftime('%Y-%m-%dT%H:%M:%fZ'))
	) strict;`

// Store archives served requests to sqlite.
type Store struct {
	logger *slog.Logger
	db     *sqlx.DB
}

func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	db, err := sqlx.Open("sqlite3", fmt.Sprintf("%s?cache=shared&mode=rwc&_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, logger: logger}

	// another process may hold the schema lock briefly, so give the
	// migration a few tries
	ctx := context.Background()
	err = NewRetry(3, 100*time.Millisecond, func() error {
		return s.migrate(ctx)
	}).Do()
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, createRequests)
		return err
	})
}

// Insert archives one served request.
func (s *Store) Insert(ctx context.Context, record *Record) error {
	payload, err := record.Marshal()
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		writeQuery := `insert into requests (id, request_line, status, body_size, remote_addr, payload, served_at) values ($1, $2, $3, $4, $5, $6, $7)`
		_, innerErr := tx.ExecContext(ctx, writeQuery, record.Id, record.RequestLine, record.Status, record.BodySize, record.RemoteAddr, payload, record.ServedAt)
		return innerErr
	})
}

// Recent returns the most recently served requests, newest first. The ids
// are ULIDs, so lexical order on id is arrival order.
func (s *Store) Recent(ctx context.Context, limit int) (records []Record, err error) {
	getRecent := `select id, request_line, status, body_size, remote_addr, served_at from requests order by id desc limit $1;`

	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		rows, rowsErr := tx.QueryxContext(ctx, getRecent, limit)
		if rowsErr != nil {
			return rowsErr
		}
		defer rows.Close()

		for rows.Next() {
			var rowValue Record
			if rowScanErr := rows.StructScan(&rowValue); rowScanErr != nil {
				return rowScanErr
			}
			records = append(records, rowValue)
		}

		return rows.Err()
	})

	return records, err
}

// CountByStatus reports how many archived requests carry the given status line.
func (s *Store) CountByStatus(ctx context.Context, status string) (count int64, err error) {
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		row := tx.QueryRowxContext(ctx, `select count(*) from requests where status = $1`, status)
		if row.Err() != nil {
			return row.Err()
		}

		return row.Scan(&count)
	})

	return count, err
}

// Truncate clears the archive.
func (s *Store) Truncate(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `delete from requests`)
		return err
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) inTx(ctx context.Context, cb func(*sqlx.Tx) error) (err error) {
	tx, beginErr := s.db.BeginTxx(ctx, nil)
	if beginErr != nil {
		return fmt.Errorf("cannot start tx: %w", beginErr)
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = rollback(tx, nil)
			panic(rec)
		}
	}()

	if err = cb(tx); err != nil {
		return rollback(tx, err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("cannot commit tx: %w", commitErr)
	}

	return nil
}

func rollback(tx *sqlx.Tx, err error) error {
	if rollbackErr := tx.Rollback(); rollbackErr != nil {
		return fmt.Errorf("cannot roll back tx after error (tx error: %v), original error: %w", rollbackErr, err)
	}
	return err
}
