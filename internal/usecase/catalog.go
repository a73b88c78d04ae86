package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/karimezz22/Library/internal/core/domain"
	"github.com/karimezz22/Library/internal/core/port"
)

// BookInput carries the attributes for creating a catalog record.
type BookInput struct {
	Title      string
	Author     string
	Subject    string
	ISBN       string
	RackNumber string
	ImageRef   string
}

// BookChanges carries a partial update; nil fields keep their stored value.
type BookChanges struct {
	Title      *string
	Author     *string
	Subject    *string
	ISBN       *string
	RackNumber *string
	ImageRef   *string
}

// CatalogService manages the book catalog and its image assets.
type CatalogService struct {
	books  port.BookRepository
	uow    port.UnitOfWork
	images port.ImageStore
	logger *zap.Logger
}

// NewCatalogService constructs the catalog service.
func NewCatalogService(books port.BookRepository, uow port.UnitOfWork, images port.ImageStore, log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{books: books, uow: uow, images: images, logger: log}
}

func validateTitle(title string) error {
	if len([]rune(strings.TrimSpace(title))) < 4 {
		return validationErr("title must be at least 4 characters")
	}
	return nil
}

func validateAuthor(author string) error {
	if len([]rune(strings.TrimSpace(author))) < 3 {
		return validationErr("author must be at least 3 characters")
	}
	return nil
}

func validateSubject(subject string) error {
	if len([]rune(strings.TrimSpace(subject))) < 4 {
		return validationErr("subject must be at least 4 characters")
	}
	return nil
}

func validateISBN(isbn string) error {
	isbn = strings.TrimSpace(isbn)
	if len(isbn) < 10 {
		return validationErr("isbn must be at least 10 digits")
	}
	for _, r := range isbn {
		if r < '0' || r > '9' {
			return validationErr("isbn must contain only digits")
		}
	}
	return nil
}

func validateRackNumber(rack string) error {
	if len([]rune(strings.TrimSpace(rack))) < 2 {
		return validationErr("rack number must be at least 2 characters")
	}
	return nil
}

// CreateBook validates and persists a new catalog record.
func (s *CatalogService) CreateBook(ctx context.Context, input BookInput) (domain.Book, error) {
	if err := validateTitle(input.Title); err != nil {
		return domain.Book{}, err
	}
	if err := validateAuthor(input.Author); err != nil {
		return domain.Book{}, err
	}
	if err := validateSubject(input.Subject); err != nil {
		return domain.Book{}, err
	}
	if err := validateISBN(input.ISBN); err != nil {
		return domain.Book{}, err
	}
	if err := validateRackNumber(input.RackNumber); err != nil {
		return domain.Book{}, err
	}
	if input.ImageRef == "" {
		return domain.Book{}, validationErr("a cover image is required")
	}

	book := domain.Book{
		ID:         uuid.NewString(),
		Title:      strings.TrimSpace(input.Title),
		Author:     strings.TrimSpace(input.Author),
		Subject:    strings.TrimSpace(input.Subject),
		ISBN:       strings.TrimSpace(input.ISBN),
		RackNumber: strings.TrimSpace(input.RackNumber),
		ImageRef:   input.ImageRef,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.books.Create(ctx, book); err != nil {
		return domain.Book{}, fmt.Errorf("create book: %w", err)
	}

	return book, nil
}

// UpdateBook applies a partial update. When the image changes, the previous
// asset is removed best-effort after the row is persisted.
func (s *CatalogService) UpdateBook(ctx context.Context, id string, changes BookChanges) (domain.Book, error) {
	if id == "" {
		return domain.Book{}, validationErr("book id is required")
	}

	if changes.Title != nil {
		if err := validateTitle(*changes.Title); err != nil {
			return domain.Book{}, err
		}
	}
	if changes.Author != nil {
		if err := validateAuthor(*changes.Author); err != nil {
			return domain.Book{}, err
		}
	}
	if changes.Subject != nil {
		if err := validateSubject(*changes.Subject); err != nil {
			return domain.Book{}, err
		}
	}
	if changes.ISBN != nil {
		if err := validateISBN(*changes.ISBN); err != nil {
			return domain.Book{}, err
		}
	}
	if changes.RackNumber != nil {
		if err := validateRackNumber(*changes.RackNumber); err != nil {
			return domain.Book{}, err
		}
	}

	var (
		updated  domain.Book
		oldImage string
	)

	err := s.uow.WithinTx(ctx, func(repos port.TxRepositories) error {
		current, err := repos.Books.GetByID(ctx, id)
		if err != nil {
			return err
		}

		update := port.BookUpdate{
			Title:      changes.Title,
			Author:     changes.Author,
			Subject:    changes.Subject,
			ISBN:       changes.ISBN,
			RackNumber: changes.RackNumber,
			ImageRef:   changes.ImageRef,
		}

		if err := repos.Books.Update(ctx, id, update); err != nil {
			return err
		}

		updated = *current
		if changes.Title != nil {
			updated.Title = strings.TrimSpace(*changes.Title)
		}
		if changes.Author != nil {
			updated.Author = strings.TrimSpace(*changes.Author)
		}
		if changes.Subject != nil {
			updated.Subject = strings.TrimSpace(*changes.Subject)
		}
		if changes.ISBN != nil {
			updated.ISBN = strings.TrimSpace(*changes.ISBN)
		}
		if changes.RackNumber != nil {
			updated.RackNumber = strings.TrimSpace(*changes.RackNumber)
		}
		if changes.ImageRef != nil {
			if current.ImageRef != *changes.ImageRef {
				oldImage = current.ImageRef
			}
			updated.ImageRef = *changes.ImageRef
		}

		return nil
	})
	if err != nil {
		return domain.Book{}, err
	}

	if oldImage != "" && s.images != nil {
		if err := s.images.Delete(oldImage); err != nil {
			s.logger.Warn("delete replaced book image failed",
				zap.String("book_id", id),
				zap.String("image_ref", oldImage),
				zap.Error(err),
			)
		}
	}

	return updated, nil
}

// DeleteBook removes the catalog row. The image asset stays on disk.
func (s *CatalogService) DeleteBook(ctx context.Context, id string) error {
	if id == "" {
		return validationErr("book id is required")
	}

	if err := s.books.Delete(ctx, id); err != nil {
		return err
	}

	return nil
}

// GetBook retrieves a single catalog record.
func (s *CatalogService) GetBook(ctx context.Context, id string) (domain.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return domain.Book{}, err
	}
	return *book, nil
}

// ListBooks returns the catalog, filtered by the search term when present.
func (s *CatalogService) ListBooks(ctx context.Context, term string) ([]domain.Book, error) {
	term = strings.TrimSpace(term)

	var (
		books []domain.Book
		err   error
	)
	if term == "" {
		books, err = s.books.List(ctx)
	} else {
		books, err = s.books.Search(ctx, term)
	}
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	return books, nil
}

// SaveImage stores an uploaded cover asset and returns its reference.
func (s *CatalogService) SaveImage(filename string, r io.Reader) (string, error) {
	if s.images == nil {
		return "", errors.New("image store not configured")
	}
	return s.images.Save(filename, r)
}
