// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package source

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	perrors "github.com/sirseerhq/peoplestream/internal/errors"
	"github.com/sirseerhq/peoplestream/internal/people"
)

const (
	// The pattern is always a bound parameter; LIKE metacharacters in it are escaped.
	peopleQuery = `SELECT id, name FROM person WHERE name LIKE '%' || ? || '%' ESCAPE '\' ORDER BY id`

	schemaDDL = `CREATE TABLE IF NOT EXISTS person (
	id   INTEGER PRIMARY KEY,
	name TEXT
);`
)

// SQLSource streams people from a SQLite database.
type SQLSource struct {
	db *sql.DB
}

// OpenSQLite opens the SQLite database at dsn and verifies the connection.
// The returned source owns the connection pool; call Close when done.
func OpenSQLite(ctx context.Context, dsn string) (*SQLSource, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlite dsn is empty: %w", perrors.ErrInvalidConfig)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w: %w", perrors.ErrSource, err)
	}
	return NewSQLSource(db), nil
}

// NewSQLSource creates a source over an existing connection pool.
func NewSQLSource(db *sql.DB) *SQLSource {
	return &SQLSource{db: db}
}

// Open runs the people query. Rows are read one at a time as Next is called;
// cancelling ctx interrupts the query and releases its connection.
func (s *SQLSource) Open(ctx context.Context, pattern string) (Cursor, error) {
	rows, err := s.db.QueryContext(ctx, peopleQuery, escapeLike(pattern))
	if err != nil {
		return nil, classify(ctx, "query people", err)
	}
	return &rowsCursor{rows: rows}, nil
}

// Ping checks that the database is reachable.
func (s *SQLSource) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Seed creates the person table if needed and inserts ps in a single transaction.
// Existing rows with the same id are replaced.
func (s *SQLSource) Seed(ctx context.Context, ps []people.Person) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("create person table: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO person(id, name) VALUES (?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare seed insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range ps {
		if _, err := stmt.ExecContext(ctx, p.ID, p.Name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert person %d: %w", p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *SQLSource) Close() error {
	return s.db.Close()
}

type rowsCursor struct {
	rows     *sql.Rows
	once     sync.Once
	closed   bool
	closeErr error
}

func (c *rowsCursor) Next(ctx context.Context) (people.Person, error) {
	if c.closed {
		return people.Person{}, ErrCursorClosed
	}
	if err := ctx.Err(); err != nil {
		return people.Person{}, classify(ctx, "next person", err)
	}

	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			return people.Person{}, classify(ctx, "read person rows", err)
		}
		return people.Person{}, io.EOF
	}

	var (
		id   int
		name sql.NullString
	)
	if err := c.rows.Scan(&id, &name); err != nil {
		return people.Person{}, classify(ctx, "scan person", err)
	}
	return people.Person{ID: id, Name: name.String}, nil
}

func (c *rowsCursor) Close() error {
	c.once.Do(func() {
		c.closed = true
		c.closeErr = c.rows.Close()
	})
	return c.closeErr
}

// escapeLike makes pattern match literally inside a LIKE ... ESCAPE '\' clause.
func escapeLike(pattern string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(pattern)
}
