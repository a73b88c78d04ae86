package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/karimezz22/Library/internal/repository"
	"github.com/karimezz22/Library/internal/transport/http/middleware"
	"github.com/karimezz22/Library/internal/usecase"
)

// UserAdminHandler exposes the account approval endpoints.
type UserAdminHandler struct {
	identity *usecase.IdentityService
}

// NewUserAdminHandler constructs UserAdminHandler.
func NewUserAdminHandler(identity *usecase.IdentityService) *UserAdminHandler {
	return &UserAdminHandler{identity: identity}
}

// RegisterRoutes binds the admin user-management routes.
func (h *UserAdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/pending", h.listPending)
	r.PUT("/:id/approve", h.approve)
	r.DELETE("/:id/reject", h.reject)
}

func (h *UserAdminHandler) listPending(c *gin.Context) {
	users, err := h.identity.ListPendingUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list pending accounts"))
		return
	}

	summaries := make([]UserSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, newUserSummary(user))
	}

	c.JSON(http.StatusOK, UserListResponse{Users: summaries, Total: len(summaries)})
}

func (h *UserAdminHandler) approve(c *gin.Context) {
	approvedBy, _ := middleware.GetAuthenticatedUserID(c)

	user, err := h.identity.ApproveUser(c.Request.Context(), c.Param("id"), approvedBy)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to approve account")
		return
	}

	c.JSON(http.StatusOK, newUserSummary(user))
}

func (h *UserAdminHandler) reject(c *gin.Context) {
	if err := h.identity.RejectUser(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusInternalServerError, "failed to reject account")
		return
	}

	c.Status(http.StatusNoContent)
}
