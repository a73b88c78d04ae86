package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/karimezz22/Library/internal/core/domain"
	"github.com/karimezz22/Library/internal/repository"
)

func TestBorrowRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewBorrowRepository(mock)

	borrowDate := time.Now().UTC()
	request := domain.BorrowRequest{
		ID:         "req-1",
		UserID:     "user-1",
		BookID:     "book-1",
		Status:     domain.BorrowStatusPending,
		BorrowDate: borrowDate,
	}

	mock.ExpectExec(`INSERT INTO library\.borrow_requests`).
		WithArgs(
			request.ID,
			request.UserID,
			request.BookID,
			request.Status,
			request.BorrowDate,
			(*time.Time)(nil),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), request); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBorrowRepository_HasOpenRequest(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewBorrowRepository(mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM library\.borrow_requests`).
		WithArgs("user-1", "book-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))

	open, err := repo.HasOpenRequest(context.Background(), "user-1", "book-1")
	if err != nil {
		t.Fatalf("HasOpenRequest returned error: %v", err)
	}
	if !open {
		t.Fatal("expected an open request to be reported")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBorrowRepository_CountActiveByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewBorrowRepository(mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM library\.borrow_requests`).
		WithArgs("user-1", domain.BorrowStatusActive).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := repo.CountActiveByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("CountActiveByUser returned error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBorrowRepository_MarkActive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewBorrowRepository(mock)

	due := time.Now().UTC().AddDate(0, 0, 14)

	mock.ExpectExec(`UPDATE library\.borrow_requests`).
		WithArgs(domain.BorrowStatusActive, due, "req-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.MarkActive(context.Background(), "req-1", due); err != nil {
		t.Fatalf("MarkActive returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBorrowRepository_DeleteNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewBorrowRepository(mock)

	mock.ExpectExec(`DELETE FROM library\.borrow_requests`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBorrowRepository_ListPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewBorrowRepository(mock)

	borrowDate := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "user_id", "book_id", "status", "borrow_date", "return_due", "name", "email", "title",
	}).AddRow(
		"req-1", "user-1", "book-1", domain.BorrowStatusPending, borrowDate, nil,
		"mona", "mona@example.com", "Clean Architecture",
	)

	mock.ExpectQuery(`SELECT .*FROM library\.borrow_requests br JOIN library\.users u ON u\.id = br\.user_id JOIN library\.books b ON b\.id = br\.book_id`).
		WithArgs(domain.BorrowStatusPending).
		WillReturnRows(rows)

	pending, err := repo.ListPending(context.Background())
	if err != nil {
		t.Fatalf("ListPending returned error: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending request, got %d", len(pending))
	}
	if pending[0].UserName != "mona" || pending[0].BookTitle != "Clean Architecture" {
		t.Fatalf("expected joined attributes populated, got %+v", pending[0])
	}
	if pending[0].ReturnDue != nil {
		t.Fatal("pending request should not carry a due date")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBorrowRepository_ListActiveBooksByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewBorrowRepository(mock)

	rows := bookRows().
		AddRow("book-1", "Go in Action", "William Kennedy", "Programming", "9781617291784", "C3", "cover.png", time.Now().UTC())

	mock.ExpectQuery(`SELECT .*FROM library\.borrow_requests br JOIN library\.books b ON b\.id = br\.book_id`).
		WithArgs("user-1", domain.BorrowStatusActive).
		WillReturnRows(rows)

	books, err := repo.ListActiveBooksByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListActiveBooksByUser returned error: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("expected 1 book, got %d", len(books))
	}
	if books[0].Title != "Go in Action" {
		t.Fatalf("unexpected title %q", books[0].Title)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
