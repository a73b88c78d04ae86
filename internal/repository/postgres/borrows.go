package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/karimezz22/Library/internal/core/domain"
	"github.com/karimezz22/Library/internal/core/port"
	"github.com/karimezz22/Library/internal/repository"
)

// BorrowRepository implements port.BorrowRepository using PostgreSQL.
type BorrowRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewBorrowRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewBorrowRepository(exec pgExecutor) *BorrowRepository {
	repo := &BorrowRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *BorrowRepository) WithTx(tx pgx.Tx) *BorrowRepository {
	if tx == nil {
		return r
	}
	return &BorrowRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new borrow request row.
func (r *BorrowRepository) Create(ctx context.Context, request domain.BorrowRequest) error {
	stmt, args, err := r.builder.Insert("library.borrow_requests").
		Columns(
			"id",
			"user_id",
			"book_id",
			"status",
			"borrow_date",
			"return_due",
		).
		Values(
			request.ID,
			request.UserID,
			request.BookID,
			request.Status,
			request.BorrowDate,
			request.ReturnDue,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert borrow request sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert borrow request: %w", err)
	}

	return nil
}

// GetByID retrieves a borrow request by identifier.
func (r *BorrowRepository) GetByID(ctx context.Context, id string) (*domain.BorrowRequest, error) {
	stmt, args, err := r.builder.
		Select("id", "user_id", "book_id", "status", "borrow_date", "return_due").
		From("library.borrow_requests").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select borrow request sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var request domain.BorrowRequest
	if err := row.Scan(
		&request.ID,
		&request.UserID,
		&request.BookID,
		&request.Status,
		&request.BorrowDate,
		&request.ReturnDue,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan borrow request: %w", err)
	}

	return &request, nil
}

// HasOpenRequest reports whether a pending-or-active request already exists
// for the (user, book) pair.
func (r *BorrowRepository) HasOpenRequest(ctx context.Context, userID, bookID string) (bool, error) {
	stmt, args, err := r.builder.
		Select("COUNT(*)").
		From("library.borrow_requests").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"book_id": bookID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build count open requests sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("scan open requests count: %w", err)
	}

	return count > 0, nil
}

// CountActiveByUser counts the user's active requests; pending requests do
// not count toward the loan cap.
func (r *BorrowRepository) CountActiveByUser(ctx context.Context, userID string) (int, error) {
	stmt, args, err := r.builder.
		Select("COUNT(*)").
		From("library.borrow_requests").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"status": domain.BorrowStatusActive}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count active requests sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan active requests count: %w", err)
	}

	return int(count), nil
}

// MarkActive transitions a pending request to active and stores the due date.
func (r *BorrowRepository) MarkActive(ctx context.Context, id string, due time.Time) error {
	stmt, args, err := r.builder.Update("library.borrow_requests").
		Set("status", domain.BorrowStatusActive).
		Set("return_due", due).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark active sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("mark borrow request active: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes the request row. Rejections and returns are not archived.
func (r *BorrowRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("library.borrow_requests").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete borrow request sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete borrow request: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListPending returns pending requests enriched with borrower and book
// attributes, oldest first.
func (r *BorrowRepository) ListPending(ctx context.Context) ([]domain.PendingBorrowRequest, error) {
	stmt, args, err := r.builder.
		Select(
			"br.id",
			"br.user_id",
			"br.book_id",
			"br.status",
			"br.borrow_date",
			"br.return_due",
			"u.name",
			"u.email",
			"b.title",
		).
		From("library.borrow_requests br").
		Join("library.users u ON u.id = br.user_id").
		Join("library.books b ON b.id = br.book_id").
		Where(squirrel.Eq{"br.status": domain.BorrowStatusPending}).
		OrderBy("br.borrow_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list pending requests sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query pending requests: %w", err)
	}
	defer rows.Close()

	pending := make([]domain.PendingBorrowRequest, 0)
	for rows.Next() {
		var request domain.PendingBorrowRequest
		if err := rows.Scan(
			&request.ID,
			&request.UserID,
			&request.BookID,
			&request.Status,
			&request.BorrowDate,
			&request.ReturnDue,
			&request.UserName,
			&request.UserEmail,
			&request.BookTitle,
		); err != nil {
			return nil, fmt.Errorf("scan pending request: %w", err)
		}
		pending = append(pending, request)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending requests: %w", err)
	}

	return pending, nil
}

// ListActiveBooksByUser returns the books a user currently has checked out.
func (r *BorrowRepository) ListActiveBooksByUser(ctx context.Context, userID string) ([]domain.Book, error) {
	stmt, args, err := r.builder.
		Select(
			"b.id",
			"b.title",
			"b.author",
			"b.subject",
			"b.isbn",
			"b.rack_number",
			"b.image_url",
			"b.created_at",
		).
		From("library.borrow_requests br").
		Join("library.books b ON b.id = br.book_id").
		Where(squirrel.Eq{"br.user_id": userID}).
		Where(squirrel.Eq{"br.status": domain.BorrowStatusActive}).
		OrderBy("br.borrow_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list active books sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query active books: %w", err)
	}
	defer rows.Close()

	books := make([]domain.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan active book: %w", err)
		}
		books = append(books, *book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active books: %w", err)
	}

	return books, nil
}

var _ port.BorrowRepository = (*BorrowRepository)(nil)
