// Package dbtest is an in-memory stand-in for a pgx pool. It answers
// statements from canned results and records which statements each
// transaction ran and whether that transaction committed.
package dbtest

import (
	"context"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Conn struct {
	mu sync.Mutex

	// Rows holds the values QueryRow scans for a key contained in the
	// whitespace-normalized statement. A nil slice answers pgx.ErrNoRows.
	Rows map[string][]any
	// ExecErr fails Exec for statements containing the key.
	ExecErr map[string]error
	// Affected sets the rows-affected count of matching Execs; default 1.
	Affected map[string]int64
	// CommitErrs are handed out by successive Commit calls; nil succeeds.
	CommitErrs []error

	Begins    int
	Commits   int
	Rollbacks int
	// Committed lists the statements of committed work in execution order.
	Committed []string
}

func New() *Conn {
	return &Conn{
		Rows:     map[string][]any{},
		ExecErr:  map[string]error{},
		Affected: map[string]int64{},
	}
}

func norm(sql string) string { return strings.Join(strings.Fields(sql), " ") }

// DidCommit reports whether a committed statement contains fragment.
func (c *Conn) DidCommit(fragment string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.Committed {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}

func (c *Conn) BeginTx(_ context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Begins++
	return &Tx{conn: c}, nil
}

// Exec outside a transaction autocommits.
func (c *Conn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	tag, err := c.exec(sql)
	if err == nil {
		c.mu.Lock()
		c.Committed = append(c.Committed, norm(sql))
		c.mu.Unlock()
	}
	return tag, err
}

func (c *Conn) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	return nil, errors.Newf("dbtest: Query not supported: %s", norm(sql))
}

func (c *Conn) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	return c.row(sql)
}

func (c *Conn) exec(sql string) (pgconn.CommandTag, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sql = norm(sql)
	for k, err := range c.ExecErr {
		if strings.Contains(sql, k) {
			return pgconn.CommandTag{}, err
		}
	}
	n := int64(1)
	for k, v := range c.Affected {
		if strings.Contains(sql, k) {
			n = v
		}
	}
	return pgconn.NewCommandTag("UPDATE " + strconv.FormatInt(n, 10)), nil
}

func (c *Conn) row(sql string) pgx.Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	sql = norm(sql)
	for k, vals := range c.Rows {
		if strings.Contains(sql, k) {
			if vals == nil {
				return row{err: pgx.ErrNoRows}
			}
			return row{vals: vals}
		}
	}
	return row{err: errors.Newf("dbtest: unexpected query: %s", sql)}
}

// Tx embeds pgx.Tx only to satisfy the interface; methods it does not
// override panic when called.
type Tx struct {
	pgx.Tx
	conn  *Conn
	stmts []string
	done  bool
}

func (t *Tx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	tag, err := t.conn.exec(sql)
	if err == nil {
		t.stmts = append(t.stmts, norm(sql))
	}
	return tag, err
}

func (t *Tx) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	return nil, errors.Newf("dbtest: Query not supported: %s", norm(sql))
}

func (t *Tx) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	t.stmts = append(t.stmts, norm(sql))
	return t.conn.row(sql)
}

func (t *Tx) Commit(_ context.Context) error {
	c := t.conn
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	c.Commits++
	if len(c.CommitErrs) > 0 {
		err := c.CommitErrs[0]
		c.CommitErrs = c.CommitErrs[1:]
		if err != nil {
			return err
		}
	}
	t.done = true
	c.Committed = append(c.Committed, t.stmts...)
	return nil
}

func (t *Tx) Rollback(_ context.Context) error {
	c := t.conn
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	c.Rollbacks++
	return nil
}

type row struct {
	vals []any
	err  error
}

func (r row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return errors.Newf("dbtest: scan into %d targets, have %d values", len(dest), len(r.vals))
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.vals[i]))
	}
	return nil
}
