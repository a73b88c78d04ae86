package port

import (
	"context"

	"github.com/karimezz22/Library/internal/core/domain"
)

// BookUpdate carries a partial update; nil fields keep their stored value.
type BookUpdate struct {
	Title      *string
	Author     *string
	Subject    *string
	ISBN       *string
	RackNumber *string
	ImageRef   *string
}

// BookRepository persists and retrieves catalog records.
type BookRepository interface {
	Create(ctx context.Context, book domain.Book) error
	GetByID(ctx context.Context, id string) (*domain.Book, error)
	// List returns the full catalog ordered by (isbn, rack_number).
	List(ctx context.Context) ([]domain.Book, error)
	// Search returns books whose title, author, subject, isbn, or rack
	// number contains the term, case-insensitively. No ordering guarantee.
	Search(ctx context.Context, term string) ([]domain.Book, error)
	Update(ctx context.Context, id string, changes BookUpdate) error
	Delete(ctx context.Context, id string) error
}
