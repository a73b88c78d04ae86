package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/karimezz22/Library/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserSummary describes the view of an account returned by the API.
// The password hash never leaves the usecase layer.
type UserSummary struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Phone        *string           `json:"phone,omitempty"`
	Status       domain.UserStatus `json:"status"`
	Online       bool              `json:"online"`
	Role         domain.UserRole   `json:"role"`
	RegisteredAt time.Time         `json:"registered_at"`
}

// RegisterRequest defines the account registration payload.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse contains the created account and its session token.
// The token is issued once at registration and stays valid across logins.
type RegisterResponse struct {
	User    UserSummary `json:"user"`
	Token   string      `json:"token"`
	Message string      `json:"message"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	User  UserSummary `json:"user"`
	Token string      `json:"token"`
}

// UserListResponse wraps accounts awaiting administrator review.
type UserListResponse struct {
	Users []UserSummary `json:"users"`
	Total int           `json:"total"`
}

// BookPayload describes a catalog record. ImageURL is resolved against the
// upload base URL; it is empty when the book has no cover asset.
type BookPayload struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	Subject    string    `json:"subject"`
	ISBN       string    `json:"isbn"`
	RackNumber string    `json:"rack_number"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// BookListResponse wraps catalog listings and search results.
type BookListResponse struct {
	Books []BookPayload `json:"books"`
	Total int           `json:"total"`
}

// BorrowRequestPayload describes a borrow request in API responses.
type BorrowRequestPayload struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	BookID     string              `json:"book_id"`
	Status     domain.BorrowStatus `json:"status"`
	BorrowDate time.Time           `json:"borrow_date"`
	ReturnDue  *time.Time          `json:"return_due,omitempty"`
}

// PendingBorrowPayload enriches a pending request with the borrower and book
// attributes an administrator reviews it by.
type PendingBorrowPayload struct {
	BorrowRequestPayload
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	BookTitle string `json:"book_title"`
}

// BorrowListResponse wraps pending borrow requests for the admin review queue.
type BorrowListResponse struct {
	Requests []PendingBorrowPayload `json:"requests"`
	Total    int                    `json:"total"`
}

// BorrowAcceptRequest carries the due date the admin grants the loan until.
type BorrowAcceptRequest struct {
	ReturnDue time.Time `json:"return_due" binding:"required"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// newUserSummary converts a domain user to a summary suitable for API responses.
func newUserSummary(user domain.User) UserSummary {
	summary := UserSummary{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Status:       user.Status,
		Online:       user.Online,
		Role:         user.Role,
		RegisteredAt: user.RegisteredAt,
	}

	if phone := strings.TrimSpace(user.Phone); phone != "" {
		summary.Phone = &phone
	}

	return summary
}

// newBookPayload converts a catalog record, resolving the stored image
// reference against the public upload prefix.
func newBookPayload(book domain.Book, imageBaseURL string) BookPayload {
	payload := BookPayload{
		ID:         book.ID,
		Title:      book.Title,
		Author:     book.Author,
		Subject:    book.Subject,
		ISBN:       book.ISBN,
		RackNumber: book.RackNumber,
		CreatedAt:  book.CreatedAt,
	}

	if book.ImageRef != "" && imageBaseURL != "" {
		payload.ImageURL = imageBaseURL + "/" + book.ImageRef
	}

	return payload
}

func newBorrowRequestPayload(request domain.BorrowRequest) BorrowRequestPayload {
	return BorrowRequestPayload{
		ID:         request.ID,
		UserID:     request.UserID,
		BookID:     request.BookID,
		Status:     request.Status,
		BorrowDate: request.BorrowDate,
		ReturnDue:  request.ReturnDue,
	}
}
