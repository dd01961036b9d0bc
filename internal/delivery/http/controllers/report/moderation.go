package report

import (
	"context"
	"net/http"

	"CivicLens/internal/delivery/http/controllers"
	"CivicLens/internal/delivery/http/controllers/middleware"
	"CivicLens/internal/identity"
	"CivicLens/internal/models"
	"CivicLens/internal/service/moderation"
	"CivicLens/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ModerationService interface {
	FlagReport(ctx context.Context, actor identity.Identity, reportID, flagTypeID uuid.UUID, comment string) (*models.Flag, error)
	DeleteFlag(ctx context.Context, actor identity.Identity, flagID, reportID uuid.UUID) error
	HideReport(ctx context.Context, actor identity.Identity, reportID uuid.UUID) error
	FlagTypes(ctx context.Context) ([]models.FlagType, error)
}

type flaggedLister interface {
	FlaggedReports(ctx context.Context, actor identity.Identity) ([]models.Report, error)
}

type ModerationHandler struct {
	log     logger.Log
	service ModerationService
	reports flaggedLister
}

func NewModerationHandler(l logger.Log, s ModerationService, reports flaggedLister) *ModerationHandler {
	return &ModerationHandler{log: l, service: s, reports: reports}
}

type flagRequest struct {
	FlagTypeID uuid.UUID `json:"flag_type_id" binding:"required"`
	Comment    string    `json:"comment"`
}

func (h *ModerationHandler) FlagReport(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("report_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report_id"})
		return
	}

	var input flagRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flag, err := h.service.FlagReport(c.Request.Context(), middleware.IdentityFrom(c), reportID, input.FlagTypeID, input.Comment)
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"flag": flag})
}

func (h *ModerationHandler) DeleteFlag(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("report_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report_id"})
		return
	}
	flagID, err := uuid.Parse(c.Param("flag_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flag_id"})
		return
	}

	if err := h.service.DeleteFlag(c.Request.Context(), middleware.IdentityFrom(c), flagID, reportID); err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *ModerationHandler) HideReport(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("report_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report_id"})
		return
	}

	if err := h.service.HideReport(c.Request.Context(), middleware.IdentityFrom(c), reportID); err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *ModerationHandler) ListFlagTypes(c *gin.Context) {
	types, err := h.service.FlagTypes(c.Request.Context())
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flags": types})
}

// FlaggedReports is the admin moderation queue, each report annotated with
// its per-type flag counts.
func (h *ModerationHandler) FlaggedReports(c *gin.Context) {
	reports, err := h.reports.FlaggedReports(c.Request.Context(), middleware.IdentityFrom(c))
	if err != nil {
		controllers.RespondError(c, h.log, err)
		return
	}

	type flaggedReport struct {
		models.Report
		FlagCounts map[string]int `json:"flag_counts"`
	}
	out := make([]flaggedReport, 0, len(reports))
	for i := range reports {
		out = append(out, flaggedReport{
			Report:     reports[i],
			FlagCounts: moderation.AggregateFlagsByType(&reports[i]),
		})
	}
	c.JSON(http.StatusOK, gin.H{"reports": out})
}
