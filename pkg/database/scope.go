package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
)

// ActorKey is the Info key holding the id of the authenticated user that
// performs writes in this scope.
const ActorKey = "uid"

// ErrTxInProgress is returned when InTx is called inside another InTx.
var ErrTxInProgress = errors.New("transaction already in progress")

// Scope is the per-request unit of work handed to repositories. It
// satisfies sqlx.ExtContext and routes statements to the open
// transaction when there is one, otherwise to the pool. A Scope must not
// be shared between requests.
type Scope struct {
	db *sqlx.DB

	mu          sync.Mutex
	tx          *sqlx.Tx
	info        map[string]any
	afterCommit []func()
}

var _ sqlx.ExtContext = (*Scope)(nil)

// NewScope creates an empty scope over db.
func NewScope(db *sqlx.DB) *Scope {
	return &Scope{db: db, info: map[string]any{}}
}

// DB returns the underlying pool.
func (s *Scope) DB() *sqlx.DB { return s.db }

// Info returns a copy of the scope metadata.
func (s *Scope) Info() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]any, len(s.info))
	for k, v := range s.info {
		out[k] = v
	}
	return out
}

// SetInfo stores a metadata value.
func (s *Scope) SetInfo(key string, v any) {
	s.mu.Lock()
	s.info[key] = v
	s.mu.Unlock()
}

// SetActorID records the id of the user acting in this scope. Writes
// stamp it into created_by / updated_by.
func (s *Scope) SetActorID(id int64) { s.SetInfo(ActorKey, id) }

// ActorID returns the recorded actor, if any.
func (s *Scope) ActorID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.info[ActorKey].(int64)
	return id, ok
}

// AfterCommit registers fn to run once the current transaction commits.
// Hooks are dropped on rollback. Outside a transaction every write is
// already committed, so fn runs immediately.
func (s *Scope) AfterCommit(fn func()) {
	s.mu.Lock()
	if s.tx == nil {
		s.mu.Unlock()
		fn()
		return
	}
	s.afterCommit = append(s.afterCommit, fn)
	s.mu.Unlock()
}

// InTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back on error or panic; panics are rethrown. After-commit hooks
// run only after a successful commit.
func (s *Scope) InTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	s.mu.Lock()
	if s.tx != nil {
		s.mu.Unlock()
		return ErrTxInProgress
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("begin tx: %w", err)
	}
	s.tx = tx
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		hooks := s.afterCommit
		s.tx = nil
		s.afterCommit = nil
		s.mu.Unlock()

		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if err = tx.Commit(); err != nil {
			err = fmt.Errorf("commit tx: %w", err)
			return
		}
		for _, h := range hooks {
			h()
		}
	}()

	err = fn(ctx)
	return err
}

func (s *Scope) ext() sqlx.ExtContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// DriverName implements sqlx.ExtContext.
func (s *Scope) DriverName() string { return s.db.DriverName() }

// Rebind implements sqlx.ExtContext.
func (s *Scope) Rebind(query string) string { return s.db.Rebind(query) }

// BindNamed implements sqlx.ExtContext.
func (s *Scope) BindNamed(query string, arg any) (string, []any, error) {
	return s.db.BindNamed(query, arg)
}

// QueryContext implements sqlx.ExtContext.
func (s *Scope) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.ext().QueryContext(ctx, query, args...)
}

// QueryxContext implements sqlx.ExtContext.
func (s *Scope) QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error) {
	return s.ext().QueryxContext(ctx, query, args...)
}

// QueryRowxContext implements sqlx.ExtContext.
func (s *Scope) QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row {
	return s.ext().QueryRowxContext(ctx, query, args...)
}

// ExecContext implements sqlx.ExtContext.
func (s *Scope) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.ext().ExecContext(ctx, query, args...)
}
