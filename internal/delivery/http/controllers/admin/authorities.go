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

type AuthorityService interface {
	ListAuthorities(ctx context.Context) ([]models.Authority, error)
	AuthorityByID(ctx context.Context, id uuid.UUID) (*models.Authority, error)
	CreateAuthority(ctx context.Context, actor identity.Identity, authority models.Authority) (uuid.UUID, error)
	UpdateAuthority(ctx context.Context, actor identity.Identity, authority models.Authority) error
	DeleteAuthority(ctx context.Context, actor identity.Identity, id uuid.UUID) error
	SetHandledCategories(ctx context.Context, actor identity.Identity, authorityID uuid.UUID, categoryIDs []uuid.UUID) error
	LinkUser(ctx context.Context, actor identity.Identity, userID, authorityID uuid.UUID) error
	UnlinkUser(ctx context.Context, actor identity.Identity, userID uuid.UUID) error
	ListLinks(ctx context.Context, actor identity.Identity) ([]models.AuthorityLink, error)
	ListDepartments(ctx context.Context) ([]models.Department, error)
	CreateDepartment(ctx context.Context, actor identity.Identity, department models.Department) (uuid.UUID, error)
}

type AuthorityHandler struct {
	log     logger.Log
	service AuthorityService
}

func NewAuthorityHandler(l logger.Log, s AuthorityService) *AuthorityHandler {
	return &AuthorityHandler{log: l, service: s}
}

func (h *AuthorityHandler) ListAuthorities(c *gin.Context) {
	authorities, err := h.service.ListAuthorities(c.Request.Context())
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authorities": authorities})
}

func (h *AuthorityHandler) GetAuthority(c *gin.Context) {
	authorityID, err := uuid.Parse(c.Param("authority_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid authority_id"})
		return
	}

	authority, err := h.service.AuthorityByID(c.Request.Context(), authorityID)
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, authority)
}

type authorityRequest struct {
	Name         string     `json:"name" binding:"required"`
	City         string     `json:"city" binding:"required"`
	Region       string     `json:"region" binding:"required"`
	Address      string     `json:"address"`
	DepartmentID *uuid.UUID `json:"department_id"`
}

func (h *AuthorityHandler) CreateAuthority(c *gin.Context) {
	var input authorityRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.service.CreateAuthority(c.Request.Context(), middleware.IdentityFrom(c), models.Authority{
		Name:         input.Name,
		City:         input.City,
		Region:       input.Region,
		Address:      input.Address,
		DepartmentID: input.DepartmentID,
	})
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *AuthorityHandler) UpdateAuthority(c *gin.Context) {
	authorityID, err := uuid.Parse(c.Param("authority_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid authority_id"})
		return
	}

	var input authorityRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.service.UpdateAuthority(c.Request.Context(), middleware.IdentityFrom(c), models.Authority{
		ID:           authorityID,
		Name:         input.Name,
		City:         input.City,
		Region:       input.Region,
		Address:      input.Address,
		DepartmentID: input.DepartmentID,
	})
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *AuthorityHandler) DeleteAuthority(c *gin.Context) {
	authorityID, err := uuid.Parse(c.Param("authority_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid authority_id"})
		return
	}

	if err := h.service.DeleteAuthority(c.Request.Context(), middleware.IdentityFrom(c), authorityID); err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *AuthorityHandler) SetHandledCategories(c *gin.Context) {
	authorityID, err := uuid.Parse(c.Param("authority_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid authority_id"})
		return
	}

	var input struct {
		CategoryIDs []uuid.UUID `json:"category_ids"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.service.SetHandledCategories(c.Request.Context(), middleware.IdentityFrom(c), authorityID, input.CategoryIDs)
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *AuthorityHandler) LinkUser(c *gin.Context) {
	authorityID, err := uuid.Parse(c.Param("authority_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid authority_id"})
		return
	}

	var input struct {
		UserID uuid.UUID `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.service.LinkUser(c.Request.Context(), middleware.IdentityFrom(c), input.UserID, authorityID)
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{})
}

func (h *AuthorityHandler) UnlinkUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}

	if err := h.service.UnlinkUser(c.Request.Context(), middleware.IdentityFrom(c), userID); err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *AuthorityHandler) ListLinks(c *gin.Context) {
	links, err := h.service.ListLinks(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

func (h *AuthorityHandler) ListDepartments(c *gin.Context) {
	departments, err := h.service.ListDepartments(c.Request.Context())
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": departments})
}

func (h *AuthorityHandler) CreateDepartment(c *gin.Context) {
	var input struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.service.CreateDepartment(c.Request.Context(), middleware.IdentityFrom(c), models.Department{Name: input.Name})
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}
