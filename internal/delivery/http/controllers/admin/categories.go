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

type CategoryService interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, actor identity.Identity, category models.Category) (uuid.UUID, error)
	UpdateCategory(ctx context.Context, actor identity.Identity, category models.Category) error
	DeleteCategory(ctx context.Context, actor identity.Identity, id uuid.UUID) error
}

type CategoryHandler struct {
	log     logger.Log
	service CategoryService
}

func NewCategoryHandler(l logger.Log, s CategoryService) *CategoryHandler {
	return &CategoryHandler{log: l, service: s}
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var input categoryRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.service.CreateCategory(c.Request.Context(), middleware.IdentityFrom(c), models.Category{
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
	})
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("category_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
		return
	}

	var input categoryRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.service.UpdateCategory(c.Request.Context(), middleware.IdentityFrom(c), models.Category{
		ID:          categoryID,
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
	})
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("category_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), middleware.IdentityFrom(c), categoryID); err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
