package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/karimezz22/Library/internal/core/domain"
	"github.com/karimezz22/Library/internal/repository"
	"github.com/karimezz22/Library/internal/transport/http/middleware"
	"github.com/karimezz22/Library/internal/usecase"
)

// BorrowHandler exposes the borrow request lifecycle endpoints.
type BorrowHandler struct {
	borrow       *usecase.BorrowService
	imageBaseURL string
}

// NewBorrowHandler constructs BorrowHandler.
func NewBorrowHandler(borrow *usecase.BorrowService, imageBaseURL string) *BorrowHandler {
	return &BorrowHandler{
		borrow:       borrow,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
	}
}

// RegisterRoutes binds the member-facing borrow routes.
func (h *BorrowHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/:bookId", h.request)
	r.GET("/active", h.activeBooks)
}

// RegisterAdminRoutes binds the admin review routes.
func (h *BorrowHandler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/pending", h.listPending)
	r.PUT("/:id/accept", h.accept)
	r.DELETE("/:id/reject", h.reject)
}

func (h *BorrowHandler) request(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	request, err := h.borrow.Request(c.Request.Context(), userID, c.Param("bookId"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: validationMessage(err)},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "book not found"},
			{Err: usecase.ErrDuplicateRequest, Status: http.StatusConflict, Message: "a request for this book is already open"},
		}, http.StatusInternalServerError, "failed to create borrow request")
		return
	}

	c.JSON(http.StatusCreated, newBorrowRequestPayload(request))
}

func (h *BorrowHandler) activeBooks(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	books, err := h.borrow.ActiveBooks(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list borrowed books"))
		return
	}

	payloads := make([]BookPayload, 0, len(books))
	for _, book := range books {
		payloads = append(payloads, h.newBookPayload(book))
	}

	c.JSON(http.StatusOK, BookListResponse{Books: payloads, Total: len(payloads)})
}

func (h *BorrowHandler) listPending(c *gin.Context) {
	requests, err := h.borrow.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list borrow requests"))
		return
	}

	payloads := make([]PendingBorrowPayload, 0, len(requests))
	for _, request := range requests {
		payloads = append(payloads, PendingBorrowPayload{
			BorrowRequestPayload: newBorrowRequestPayload(request.BorrowRequest),
			UserName:             request.UserName,
			UserEmail:            request.UserEmail,
			BookTitle:            request.BookTitle,
		})
	}

	c.JSON(http.StatusOK, BorrowListResponse{Requests: payloads, Total: len(payloads)})
}

func (h *BorrowHandler) accept(c *gin.Context) {
	acceptedBy, _ := middleware.GetAuthenticatedUserID(c)

	var req BorrowAcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "return_due is required"))
		return
	}

	request, err := h.borrow.Accept(c.Request.Context(), c.Param("id"), acceptedBy, req.ReturnDue)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: validationMessage(err)},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "borrow request not found"},
			{Err: usecase.ErrRequestNotPending, Status: http.StatusConflict, Message: "borrow request is not pending"},
			{Err: usecase.ErrLoanLimitReached, Status: http.StatusUnprocessableEntity, Message: "borrower has reached the active loan limit"},
		}, http.StatusInternalServerError, "failed to accept borrow request")
		return
	}

	c.JSON(http.StatusOK, newBorrowRequestPayload(request))
}

func (h *BorrowHandler) reject(c *gin.Context) {
	rejectedBy, _ := middleware.GetAuthenticatedUserID(c)

	if err := h.borrow.Reject(c.Request.Context(), c.Param("id"), rejectedBy); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "borrow request not found"},
		}, http.StatusInternalServerError, "failed to reject borrow request")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *BorrowHandler) newBookPayload(book domain.Book) BookPayload {
	return newBookPayload(book, h.imageBaseURL)
}
