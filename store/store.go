// Package store persists the connectivity-check row served by the public
// db-test endpoint.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	seedTitle       = "Connection Test!"
	seedDescription = "This is a test title to verify the database connection."
)

// ConnectionCheck is the seeded row a deployment reads to prove the
// database is reachable.
type ConnectionCheck struct {
	bun.BaseModel `bun:"table:connection_checks,alias:cc"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Description   string     `bun:"description,notnull" json:"description,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// SeededCheckID derives the seed row's UUID from its title so repeated
// boots converge on the same record.
func SeededCheckID() uuid.UUID {
	id, err := hashid.NewUUID(seedTitle)
	if err != nil {
		return uuid.Nil
	}
	return id
}

type Checks interface {
	repository.Repository[*ConnectionCheck]

	Seeded(ctx context.Context) (*ConnectionCheck, error)
}

type checks struct {
	repository.Repository[*ConnectionCheck]
	db *bun.DB
}

var (
	_ Checks                                  = (*checks)(nil)
	_ repository.Repository[*ConnectionCheck] = (*checks)(nil)
)

func NewChecksRepository(db *bun.DB) Checks {
	repo := repository.NewRepository[*ConnectionCheck](db, repository.ModelHandlers[*ConnectionCheck]{
		NewRecord: func() *ConnectionCheck { return &ConnectionCheck{} },
		GetID: func(c *ConnectionCheck) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *ConnectionCheck, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
		GetIdentifier: func() string {
			return "title"
		},
	})

	return &checks{
		Repository: repo,
		db:         db,
	}
}

func (c *checks) Seeded(ctx context.Context) (*ConnectionCheck, error) {
	return c.GetByID(ctx, SeededCheckID().String())
}

// IsNotFound reports whether err means the row does not exist. Raw bun
// queries surface sql.ErrNoRows, repository calls surface their own
// not-found error.
func IsNotFound(err error) bool {
	return repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows)
}

// Store owns the database handle and the repositories bound to it.
type Store struct {
	db     *bun.DB
	checks Checks
}

// Open connects to sqlite at dsn, ensures the schema, and seeds the
// connectivity row.
func Open(ctx context.Context, dsn string) (*Store, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "store: open database")
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	s := &Store{
		db:     db,
		checks: NewChecksRepository(db),
	}

	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*ConnectionCheck)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "store: create tables")
	}

	seed := &ConnectionCheck{
		ID:          SeededCheckID(),
		Title:       seedTitle,
		Description: seedDescription,
	}
	if _, err := s.checks.GetOrCreate(ctx, seed); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "store: seed connectivity row")
	}

	return nil
}

func (s *Store) Checks() Checks {
	return s.checks
}

func (s *Store) DB() *bun.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}
