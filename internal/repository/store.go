package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/rpattn/assettrack/internal/db"
)

// pgStore implements Store over a pgx pool or transaction.
type pgStore struct {
	conn *db.Connection
	q    db.Querier
	inTx bool
}

// NewStore creates a Postgres-backed store over the connection pool.
func NewStore(conn *db.Connection) Store {
	return &pgStore{conn: conn, q: conn.Pool}
}

func (s *pgStore) Assets() AssetRepository           { return &assetRepository{q: s.q} }
func (s *pgStore) AssetModels() AssetModelRepository { return &assetModelRepository{q: s.q} }
func (s *pgStore) Users() UserRepository             { return &userRepository{q: s.q} }
func (s *pgStore) Assignments() AssignmentRepository { return &assignmentRepository{q: s.q} }
func (s *pgStore) Maintenance() MaintenanceRepository {
	return &maintenanceRepository{q: s.q}
}
func (s *pgStore) Disposals() DisposalRepository { return &disposalRepository{q: s.q} }
func (s *pgStore) Activity() ActivityRepository  { return &activityRepository{q: s.q} }

// WithinTx runs fn against a transaction-bound store. Calls are not
// nested; a store that is already transactional reuses its
// transaction.
func (s *pgStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.conn.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(&pgStore{conn: s.conn, q: tx, inTx: true})
	})
}
