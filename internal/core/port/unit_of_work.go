package port

import "context"

// TxRepositories groups repositories bound to a single transaction.
type TxRepositories struct {
	Users   UserRepository
	Books   BookRepository
	Borrows BorrowRepository
}

// UnitOfWork runs a function against transaction-scoped repositories. The
// transaction commits when fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(TxRepositories) error) error
	// WithinUserLock additionally serializes the transaction against every
	// other WithinUserLock call for the same user, so check-then-write
	// sequences (duplicate-request and loan-cap checks) cannot race.
	WithinUserLock(ctx context.Context, userID string, fn func(TxRepositories) error) error
}
