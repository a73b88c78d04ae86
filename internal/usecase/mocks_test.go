package usecase

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/karimezz22/Library/internal/core/domain"
	"github.com/karimezz22/Library/internal/core/port"
	"github.com/karimezz22/Library/internal/repository"
)

type mockUserRepository struct {
	usersByID    map[string]domain.User
	createErr    error
	setOnlineErr error
}

func newMockUserRepository(users ...domain.User) *mockUserRepository {
	m := &mockUserRepository{usersByID: make(map[string]domain.User)}
	for _, u := range users {
		m.usersByID[u.ID] = u
	}
	return m
}

func (m *mockUserRepository) Create(_ context.Context, user domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.usersByID[user.ID] = user
	return nil
}

func (m *mockUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (m *mockUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.usersByID {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) GetByToken(_ context.Context, token string) (*domain.User, error) {
	for _, user := range m.usersByID {
		if user.Token == token {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) List(_ context.Context, filter port.UserFilter) ([]domain.User, error) {
	users := make([]domain.User, 0)
	for _, user := range m.usersByID {
		if filter.Status != "" && user.Status != filter.Status {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

func (m *mockUserRepository) UpdateStatus(_ context.Context, id string, status domain.UserStatus) error {
	user, ok := m.usersByID[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Status = status
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepository) SetOnline(_ context.Context, id string, online bool) error {
	if m.setOnlineErr != nil {
		return m.setOnlineErr
	}
	user, ok := m.usersByID[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Online = online
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepository) Delete(_ context.Context, id string) error {
	if _, ok := m.usersByID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.usersByID, id)
	return nil
}

type mockBookRepository struct {
	booksByID map[string]domain.Book
	updates   []port.BookUpdate
}

func newMockBookRepository(books ...domain.Book) *mockBookRepository {
	m := &mockBookRepository{booksByID: make(map[string]domain.Book)}
	for _, b := range books {
		m.booksByID[b.ID] = b
	}
	return m
}

func (m *mockBookRepository) Create(_ context.Context, book domain.Book) error {
	m.booksByID[book.ID] = book
	return nil
}

func (m *mockBookRepository) GetByID(_ context.Context, id string) (*domain.Book, error) {
	book, ok := m.booksByID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &book, nil
}

func (m *mockBookRepository) List(_ context.Context) ([]domain.Book, error) {
	books := make([]domain.Book, 0, len(m.booksByID))
	for _, book := range m.booksByID {
		books = append(books, book)
	}
	return books, nil
}

func (m *mockBookRepository) Search(_ context.Context, term string) ([]domain.Book, error) {
	books := make([]domain.Book, 0)
	for _, book := range m.booksByID {
		if containsFold(book.Title, term) || containsFold(book.Author, term) ||
			containsFold(book.Subject, term) || containsFold(book.ISBN, term) ||
			containsFold(book.RackNumber, term) {
			books = append(books, book)
		}
	}
	return books, nil
}

func (m *mockBookRepository) Update(_ context.Context, id string, changes port.BookUpdate) error {
	book, ok := m.booksByID[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.updates = append(m.updates, changes)
	if changes.Title != nil {
		book.Title = *changes.Title
	}
	if changes.Author != nil {
		book.Author = *changes.Author
	}
	if changes.Subject != nil {
		book.Subject = *changes.Subject
	}
	if changes.ISBN != nil {
		book.ISBN = *changes.ISBN
	}
	if changes.RackNumber != nil {
		book.RackNumber = *changes.RackNumber
	}
	if changes.ImageRef != nil {
		book.ImageRef = *changes.ImageRef
	}
	m.booksByID[id] = book
	return nil
}

func (m *mockBookRepository) Delete(_ context.Context, id string) error {
	if _, ok := m.booksByID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.booksByID, id)
	return nil
}

type mockBorrowRepository struct {
	requestsByID map[string]domain.BorrowRequest
	activeBooks  map[string][]domain.Book
}

func newMockBorrowRepository(requests ...domain.BorrowRequest) *mockBorrowRepository {
	m := &mockBorrowRepository{
		requestsByID: make(map[string]domain.BorrowRequest),
		activeBooks:  make(map[string][]domain.Book),
	}
	for _, r := range requests {
		m.requestsByID[r.ID] = r
	}
	return m
}

func (m *mockBorrowRepository) Create(_ context.Context, request domain.BorrowRequest) error {
	m.requestsByID[request.ID] = request
	return nil
}

func (m *mockBorrowRepository) GetByID(_ context.Context, id string) (*domain.BorrowRequest, error) {
	request, ok := m.requestsByID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &request, nil
}

func (m *mockBorrowRepository) HasOpenRequest(_ context.Context, userID, bookID string) (bool, error) {
	for _, request := range m.requestsByID {
		if request.UserID == userID && request.BookID == bookID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockBorrowRepository) CountActiveByUser(_ context.Context, userID string) (int, error) {
	count := 0
	for _, request := range m.requestsByID {
		if request.UserID == userID && request.Status == domain.BorrowStatusActive {
			count++
		}
	}
	return count, nil
}

func (m *mockBorrowRepository) MarkActive(_ context.Context, id string, due time.Time) error {
	request, ok := m.requestsByID[id]
	if !ok {
		return repository.ErrNotFound
	}
	request.Status = domain.BorrowStatusActive
	request.ReturnDue = &due
	m.requestsByID[id] = request
	return nil
}

func (m *mockBorrowRepository) Delete(_ context.Context, id string) error {
	if _, ok := m.requestsByID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.requestsByID, id)
	return nil
}

func (m *mockBorrowRepository) ListPending(_ context.Context) ([]domain.PendingBorrowRequest, error) {
	pending := make([]domain.PendingBorrowRequest, 0)
	for _, request := range m.requestsByID {
		if request.Status == domain.BorrowStatusPending {
			pending = append(pending, domain.PendingBorrowRequest{BorrowRequest: request})
		}
	}
	return pending, nil
}

func (m *mockBorrowRepository) ListActiveBooksByUser(_ context.Context, userID string) ([]domain.Book, error) {
	return m.activeBooks[userID], nil
}

// mockUnitOfWork hands the same mock repositories to the callback; there is
// no real transaction to commit or roll back.
type mockUnitOfWork struct {
	users   port.UserRepository
	books   port.BookRepository
	borrows port.BorrowRepository

	lockedUsers []string
}

func (m *mockUnitOfWork) repos() port.TxRepositories {
	return port.TxRepositories{Users: m.users, Books: m.books, Borrows: m.borrows}
}

func (m *mockUnitOfWork) WithinTx(_ context.Context, fn func(port.TxRepositories) error) error {
	return fn(m.repos())
}

func (m *mockUnitOfWork) WithinUserLock(_ context.Context, userID string, fn func(port.TxRepositories) error) error {
	m.lockedUsers = append(m.lockedUsers, userID)
	return fn(m.repos())
}

type mockEventPublisher struct {
	registered []domain.UserRegisteredEvent
	approved   []domain.UserApprovedEvent
	requested  []domain.BorrowRequestedEvent
	accepted   []domain.BorrowAcceptedEvent
	rejected   []domain.BorrowRejectedEvent
}

func (m *mockEventPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	m.registered = append(m.registered, event)
	return nil
}

func (m *mockEventPublisher) PublishUserApproved(_ context.Context, event domain.UserApprovedEvent) error {
	m.approved = append(m.approved, event)
	return nil
}

func (m *mockEventPublisher) PublishBorrowRequested(_ context.Context, event domain.BorrowRequestedEvent) error {
	m.requested = append(m.requested, event)
	return nil
}

func (m *mockEventPublisher) PublishBorrowAccepted(_ context.Context, event domain.BorrowAcceptedEvent) error {
	m.accepted = append(m.accepted, event)
	return nil
}

func (m *mockEventPublisher) PublishBorrowRejected(_ context.Context, event domain.BorrowRejectedEvent) error {
	m.rejected = append(m.rejected, event)
	return nil
}

type mockImageStore struct {
	saved   []string
	deleted []string
}

func (m *mockImageStore) Save(filename string, _ io.Reader) (string, error) {
	m.saved = append(m.saved, filename)
	return "stored-" + filename, nil
}

func (m *mockImageStore) Delete(ref string) error {
	m.deleted = append(m.deleted, ref)
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
