package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/karimezz22/Library/internal/core/domain"
	"github.com/karimezz22/Library/internal/repository"
	"github.com/karimezz22/Library/internal/usecase"
)

// BookHandler exposes catalog endpoints. imageBaseURL is the public prefix
// under which uploaded cover assets are served.
type BookHandler struct {
	catalog      *usecase.CatalogService
	imageBaseURL string
}

// NewBookHandler constructs BookHandler.
func NewBookHandler(catalog *usecase.CatalogService, imageBaseURL string) *BookHandler {
	return &BookHandler{
		catalog:      catalog,
		imageBaseURL: strings.TrimRight(imageBaseURL, "/"),
	}
}

// RegisterRoutes binds the read-only catalog routes.
func (h *BookHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
	r.GET("/:id", h.get)
}

// RegisterAdminRoutes binds the catalog mutation routes.
func (h *BookHandler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.POST("", h.create)
	r.PUT("/:id", h.update)
	r.DELETE("/:id", h.delete)
}

func (h *BookHandler) list(c *gin.Context) {
	term := strings.TrimSpace(c.Query("search"))

	books, err := h.catalog.ListBooks(c.Request.Context(), term)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list books"))
		return
	}

	payloads := make([]BookPayload, 0, len(books))
	for _, book := range books {
		payloads = append(payloads, h.newBookPayload(book))
	}

	c.JSON(http.StatusOK, BookListResponse{Books: payloads, Total: len(payloads)})
}

func (h *BookHandler) get(c *gin.Context) {
	book, err := h.catalog.GetBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "book not found"},
		}, http.StatusInternalServerError, "failed to load book")
		return
	}

	c.JSON(http.StatusOK, h.newBookPayload(book))
}

func (h *BookHandler) create(c *gin.Context) {
	input := usecase.BookInput{
		Title:      c.PostForm("title"),
		Author:     c.PostForm("author"),
		Subject:    c.PostForm("subject"),
		ISBN:       c.PostForm("isbn"),
		RackNumber: c.PostForm("rack_number"),
	}

	if file, err := c.FormFile("image"); err == nil && file != nil {
		ref, err := h.storeImage(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "failed to store image: "+err.Error()))
			return
		}
		input.ImageRef = ref
	}

	book, err := h.catalog.CreateBook(c.Request.Context(), input)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: validationMessage(err)},
		}, http.StatusInternalServerError, "failed to create book")
		return
	}

	c.JSON(http.StatusCreated, h.newBookPayload(book))
}

func (h *BookHandler) update(c *gin.Context) {
	var changes usecase.BookChanges
	for key, target := range map[string]**string{
		"title":       &changes.Title,
		"author":      &changes.Author,
		"subject":     &changes.Subject,
		"isbn":        &changes.ISBN,
		"rack_number": &changes.RackNumber,
	} {
		if value, ok := c.GetPostForm(key); ok {
			v := value
			*target = &v
		}
	}

	if file, err := c.FormFile("image"); err == nil && file != nil {
		ref, err := h.storeImage(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "failed to store image: "+err.Error()))
			return
		}
		changes.ImageRef = &ref
	}

	book, err := h.catalog.UpdateBook(c.Request.Context(), c.Param("id"), changes)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: validationMessage(err)},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "book not found"},
		}, http.StatusInternalServerError, "failed to update book")
		return
	}

	c.JSON(http.StatusOK, h.newBookPayload(book))
}

func (h *BookHandler) delete(c *gin.Context) {
	if err := h.catalog.DeleteBook(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "book not found"},
		}, http.StatusInternalServerError, "failed to delete book")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *BookHandler) storeImage(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	return h.catalog.SaveImage(file.Filename, src)
}

func (h *BookHandler) newBookPayload(book domain.Book) BookPayload {
	return newBookPayload(book, h.imageBaseURL)
}
