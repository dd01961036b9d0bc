package admin

import (
	"context"
	"net/http"

	"CivicLens/internal/delivery/http/controllers"
	"CivicLens/internal/delivery/http/controllers/middleware"
	"CivicLens/internal/identity"
	"CivicLens/internal/models"
	"CivicLens/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserService interface {
	ListUsers(ctx context.Context, actor identity.Identity) ([]models.User, error)
	SetUserRoles(ctx context.Context, actor identity.Identity, userID uuid.UUID, roles []string) error
}

type UserHandler struct {
	log     logger.Log
	service UserService
}

func NewUserHandler(l logger.Log, s UserService) *UserHandler {
	return &UserHandler{log: l, service: s}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) SetUserRoles(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	var input struct {
		Roles []string `json:"roles" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.service.SetUserRoles(c.Request.Context(), middleware.IdentityFrom(c), userID, input.Roles)
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
