package postgres

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/karimezz22/Library/internal/core/port"
)

// UnitOfWork runs callbacks against transaction-scoped repositories so
// multi-statement workflows commit or roll back as one.
type UnitOfWork struct {
	pool    *pgxpool.Pool
	users   *UserRepository
	books   *BookRepository
	borrows *BorrowRepository
}

// NewUnitOfWork wires a transaction runner over the shared pool.
func NewUnitOfWork(pool *pgxpool.Pool, users *UserRepository, books *BookRepository, borrows *BorrowRepository) *UnitOfWork {
	return &UnitOfWork{
		pool:    pool,
		users:   users,
		books:   books,
		borrows: borrows,
	}
}

func (u *UnitOfWork) run(ctx context.Context, before func(pgx.Tx) error, fn func(port.TxRepositories) error) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if before != nil {
		if err := before(tx); err != nil {
			return err
		}
	}

	repos := port.TxRepositories{
		Users:   u.users.WithTx(tx),
		Books:   u.books.WithTx(tx),
		Borrows: u.borrows.WithTx(tx),
	}

	if err := fn(repos); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// WithinTx executes fn inside a single transaction.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(port.TxRepositories) error) error {
	return u.run(ctx, nil, fn)
}

// WithinUserLock executes fn inside a transaction holding an advisory lock
// keyed by the user, serializing check-then-write sequences for that user.
// The lock releases automatically at commit or rollback.
func (u *UnitOfWork) WithinUserLock(ctx context.Context, userID string, fn func(port.TxRepositories) error) error {
	return u.run(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", advisoryLockKey(userID)); err != nil {
			return fmt.Errorf("acquire user lock: %w", err)
		}
		return nil
	}, fn)
}

// advisoryLockKey hashes the user id into the signed 64-bit keyspace
// pg_advisory_xact_lock expects.
func advisoryLockKey(userID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(userID))
	return int64(h.Sum64())
}

var _ port.UnitOfWork = (*UnitOfWork)(nil)
