package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/karimezz22/Library/internal/repository"
	"github.com/karimezz22/Library/internal/transport/http/middleware"
	"github.com/karimezz22/Library/internal/usecase"
)

// AuthHandler exposes registration and session endpoints.
type AuthHandler struct {
	identity *usecase.IdentityService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(identity *usecase.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// RegisterRoutes binds authentication routes, applying optional middleware
// ahead of the rate-limited endpoints.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, registerMiddlewares, loginMiddlewares []gin.HandlerFunc) {
	r.POST("/register", append(append([]gin.HandlerFunc{}, registerMiddlewares...), h.register)...)
	r.POST("/login", append(append([]gin.HandlerFunc{}, loginMiddlewares...), h.login)...)
	r.PUT("/logout", middleware.RequireAuth(h.identity), h.logout)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	user, err := h.identity.Register(c.Request.Context(), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, NewErrorResponse(c, "email already registered"))
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: validationMessage(err)},
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
		}, http.StatusInternalServerError, "failed to register account")
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		User:    newUserSummary(user),
		Token:   user.Token,
		Message: "registration received; an administrator must approve the account before login",
	})
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	user, err := h.identity.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: validationMessage(err)},
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "account not found"},
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: usecase.ErrAccountPending, Status: http.StatusConflict, Message: "account awaiting approval"},
		}, http.StatusInternalServerError, "authentication failed")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		User:  newUserSummary(user),
		Token: user.Token,
	})
}

func (h *AuthHandler) logout(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.identity.Logout(c.Request.Context(), userID); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to logout")
		return
	}

	c.Status(http.StatusNoContent)
}

// validationMessage extracts the human-readable part of a validation error,
// keeping internal wrapping out of the response.
func validationMessage(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return "validation failed"
}
