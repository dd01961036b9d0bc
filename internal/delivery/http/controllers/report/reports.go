package report

import (
	"context"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"CivicLens/internal/delivery/http/controllers"
	"CivicLens/internal/delivery/http/controllers/middleware"
	"CivicLens/internal/identity"
	"CivicLens/internal/models"
	"CivicLens/internal/service/report"
	"CivicLens/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReportService interface {
	CreateReport(ctx context.Context, actor identity.Identity, input report.NewReport) (*models.Report, error)
	ReportByID(ctx context.Context, actor identity.Identity, id uuid.UUID) (*models.Report, error)
	ListReports(ctx context.Context, actor identity.Identity, filter models.ReportFilter) ([]models.Report, error)
	SearchReports(ctx context.Context, actor identity.Identity, query string, size int) ([]models.Report, error)
	CountSearch(ctx context.Context, query string) (int, error)
	UpdateStatus(ctx context.Context, actor identity.Identity, reportID uuid.UUID, status, comment string) (*models.Report, error)
	AssignAuthority(ctx context.Context, actor identity.Identity, reportID, authorityID uuid.UUID) error
	UploadImage(ctx context.Context, actor identity.Identity, reportID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (*models.ReportImage, error)
}

type authorityResolver interface {
	LinkedAuthorityFor(ctx context.Context, userID uuid.UUID) (*models.Authority, error)
}

type ReportHandler struct {
	log         logger.Log
	service     ReportService
	authorities authorityResolver
}

func NewReportHandler(l logger.Log, s ReportService, authorities authorityResolver) *ReportHandler {
	return &ReportHandler{log: l, service: s, authorities: authorities}
}

type newReportRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CategoryID  uuid.UUID `json:"category_id"`
	City        string    `json:"city"`
	Region      string    `json:"region"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
}

func (h *ReportHandler) CreateReport(c *gin.Context) {
	var input newReportRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateReport(c.Request.Context(), middleware.IdentityFrom(c), report.NewReport{
		Title:       input.Title,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		City:        input.City,
		Region:      input.Region,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
	})
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": created})
}

func (h *ReportHandler) GetReport(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("report_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report_id"})
		return
	}

	found, err := h.service.ReportByID(c.Request.Context(), middleware.IdentityFrom(c), reportID)
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": found})
}

func (h *ReportHandler) ListReports(c *gin.Context) {
	filter := models.ReportFilter{
		Status: c.Query("status"),
		City:   c.Query("city"),
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
			return
		}
		filter.CategoryID = id
	}
	if raw := c.Query("authority_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid authority_id"})
			return
		}
		filter.AuthorityID = id
	}
	if c.Query("mine") == "true" {
		id := middleware.IdentityFrom(c)
		if id.Capabilities.IsAuthenticated {
			filter.ReporterID = id.User.ID
		}
	}
	// An authority user's "assigned to me" view scopes to their linked
	// authority server-side; the client never supplies the authority id.
	if c.Query("assigned") == "me" {
		id := middleware.IdentityFrom(c)
		if !id.Capabilities.IsAuthority {
			c.JSON(http.StatusForbidden, gin.H{"error": "assigned=me requires the authority role"})
			return
		}
		authority, err := h.authorities.LinkedAuthorityFor(c.Request.Context(), id.User.ID)
		if err != nil {
			controllers.RespondError(c, h.log, err)
			return
		}
		filter.AuthorityID = authority.ID
	}

	if query := strings.TrimSpace(c.Query("q")); query != "" {
		size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
		reports, err := h.service.SearchReports(c.Request.Context(), middleware.IdentityFrom(c), query, size)
		if err != nil {
			controllers.RespondError(c, h.log, err)
			return
		}
		total, err := h.service.CountSearch(c.Request.Context(), query)
		if err != nil {
			controllers.RespondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reports": reports, "total": total})
		return
	}

	reports, err := h.service.ListReports(c.Request.Context(), middleware.IdentityFrom(c), filter)
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

type statusUpdateRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("report_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report_id"})
		return
	}

	var input statusUpdateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), middleware.IdentityFrom(c), reportID, input.Status, input.Comment)
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": updated})
}

type assignRequest struct {
	AuthorityID uuid.UUID `json:"authority_id" binding:"required"`
}

func (h *ReportHandler) AssignAuthority(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("report_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report_id"})
		return
	}

	var input assignRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.AssignAuthority(c.Request.Context(), middleware.IdentityFrom(c), reportID, input.AuthorityID); err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *ReportHandler) UploadImage(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("report_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report_id"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(fileHeader.Filename)))
	}

	img, err := h.service.UploadImage(
		c.Request.Context(),
		middleware.IdentityFrom(c),
		reportID,
		fileHeader.Filename,
		file,
		fileHeader.Size,
		contentType,
	)
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"image": img})
}
