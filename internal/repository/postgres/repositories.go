package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users   *UserRepository
	Books   *BookRepository
	Borrows *BorrowRepository
	UoW     *UnitOfWork
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	users := NewUserRepository(pool)
	books := NewBookRepository(pool)
	borrows := NewBorrowRepository(pool)

	return &Repositories{
		Users:   users,
		Books:   books,
		Borrows: borrows,
		UoW:     NewUnitOfWork(pool, users, books, borrows),
	}
}
