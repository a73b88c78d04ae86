package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/karimezz22/Library/internal/core/domain"
	"github.com/karimezz22/Library/internal/core/port"
	"github.com/karimezz22/Library/internal/repository"
)

// BookRepository implements port.BookRepository using PostgreSQL.
type BookRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewBookRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewBookRepository(exec pgExecutor) *BookRepository {
	repo := &BookRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *BookRepository) WithTx(tx pgx.Tx) *BookRepository {
	if tx == nil {
		return r
	}
	return &BookRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new catalog row.
func (r *BookRepository) Create(ctx context.Context, book domain.Book) error {
	var imageValue any
	if book.ImageRef != "" {
		imageValue = book.ImageRef
	}

	stmt, args, err := r.builder.Insert("library.books").
		Columns(
			"id",
			"title",
			"author",
			"subject",
			"isbn",
			"rack_number",
			"image_url",
			"created_at",
		).
		Values(
			book.ID,
			book.Title,
			book.Author,
			book.Subject,
			book.ISBN,
			book.RackNumber,
			imageValue,
			book.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert book sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert book: %w", err)
	}

	return nil
}

func (r *BookRepository) selectBooks() squirrel.SelectBuilder {
	return r.builder.Select(
		"id",
		"title",
		"author",
		"subject",
		"isbn",
		"rack_number",
		"image_url",
		"created_at",
	).From("library.books")
}

func scanBook(row pgx.Row) (*domain.Book, error) {
	var (
		book  domain.Book
		image sql.NullString
	)

	if err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.Subject,
		&book.ISBN,
		&book.RackNumber,
		&image,
		&book.CreatedAt,
	); err != nil {
		return nil, err
	}

	if image.Valid {
		book.ImageRef = image.String
	}

	return &book, nil
}

// GetByID retrieves a catalog record by identifier.
func (r *BookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	stmt, args, err := r.selectBooks().
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select book sql: %w", err)
	}

	book, err := scanBook(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan book: %w", err)
	}

	return book, nil
}

func (r *BookRepository) queryBooks(ctx context.Context, query squirrel.SelectBuilder) ([]domain.Book, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select books sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := make([]domain.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}

	return books, nil
}

// List returns the full catalog ordered by (isbn, rack_number).
func (r *BookRepository) List(ctx context.Context) ([]domain.Book, error) {
	return r.queryBooks(ctx, r.selectBooks().OrderBy("isbn ASC", "rack_number ASC"))
}

// Search matches the term case-insensitively against every descriptive column.
func (r *BookRepository) Search(ctx context.Context, term string) ([]domain.Book, error) {
	pattern := fmt.Sprint("%", term, "%")

	query := r.selectBooks().Where(squirrel.Or{
		squirrel.ILike{"title": pattern},
		squirrel.ILike{"author": pattern},
		squirrel.ILike{"subject": pattern},
		squirrel.ILike{"isbn": pattern},
		squirrel.ILike{"rack_number": pattern},
	})

	return r.queryBooks(ctx, query)
}

// Update applies a partial update; nil fields keep their stored value.
func (r *BookRepository) Update(ctx context.Context, id string, changes port.BookUpdate) error {
	query := r.builder.Update("library.books")

	updated := false
	if changes.Title != nil {
		query = query.Set("title", *changes.Title)
		updated = true
	}
	if changes.Author != nil {
		query = query.Set("author", *changes.Author)
		updated = true
	}
	if changes.Subject != nil {
		query = query.Set("subject", *changes.Subject)
		updated = true
	}
	if changes.ISBN != nil {
		query = query.Set("isbn", *changes.ISBN)
		updated = true
	}
	if changes.RackNumber != nil {
		query = query.Set("rack_number", *changes.RackNumber)
		updated = true
	}
	if changes.ImageRef != nil {
		query = query.Set("image_url", *changes.ImageRef)
		updated = true
	}

	if !updated {
		return nil
	}

	stmt, args, err := query.Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update book sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes the catalog row.
func (r *BookRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("library.books").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete book sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.BookRepository = (*BookRepository)(nil)
