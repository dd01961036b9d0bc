package report

import (
	"context"
	"io"
	"strings"

	"CivicLens/internal/app_errors"
	"CivicLens/internal/identity"
	"CivicLens/internal/models"
	"CivicLens/pkg/logger"

	"github.com/google/uuid"
)

type reportRepo interface {
	CreateReport(ctx context.Context, report *models.Report) (uuid.UUID, error)
	ReportByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListReports(ctx context.Context, filter models.ReportFilter) ([]models.Report, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status, comment string, actorID uuid.UUID) (*models.Report, error)
	SetAuthority(ctx context.Context, id uuid.UUID, authorityID uuid.UUID) error
	AddImage(ctx context.Context, reportID uuid.UUID, objectKey string, position int) (*models.ReportImage, error)
}

type flagRepo interface {
	FlagsByReport(ctx context.Context, reportID uuid.UUID) ([]models.Flag, error)
}

type categoryRepo interface {
	CategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

type matcher interface {
	Match(ctx context.Context, categoryID uuid.UUID, city, region string) (*models.Authority, error)
}

type imageRepo interface {
	UploadImage(ctx context.Context, reportID uuid.UUID, position int, filename string, reader io.Reader, size int64, contentType string) (string, error)
	GetImageURL(ctx context.Context, objectKey string) (string, error)
	DeleteImage(ctx context.Context, objectKey string) error
}

type searchRepo interface {
	Index(ctx context.Context, report models.Report) error
	Search(ctx context.Context, query string, size int) ([]uuid.UUID, error)
	Count(ctx context.Context, query string) (int, error)
}

type events interface {
	Publish(kind string, reportID uuid.UUID)
}

// ReportService owns the report status lifecycle and its audit trail. The
// hidden flag and the flag sequence belong to the moderation service; this
// service only reads them.
type ReportService struct {
	log          logger.Log
	reportRepo   reportRepo
	flagRepo     flagRepo
	categoryRepo categoryRepo
	matcher      matcher
	imageRepo    imageRepo
	searchRepo   searchRepo
	events       events
}

func NewReportService(log logger.Log, reports reportRepo, flags flagRepo, categories categoryRepo,
	m matcher, images imageRepo, search searchRepo, ev events,
) *ReportService {
	return &ReportService{
		log:          log,
		reportRepo:   reports,
		flagRepo:     flags,
		categoryRepo: categories,
		matcher:      m,
		imageRepo:    images,
		searchRepo:   search,
		events:       ev,
	}
}

type NewReport struct {
	Title       string
	Description string
	CategoryID  uuid.UUID
	City        string
	Region      string
	Latitude    *float64
	Longitude   *float64
}

// CreateReport files a citizen report. Validation order is fixed (title,
// description, category, city, region) so the first failing field is
// deterministic. The authority matcher runs exactly once, here; an unmatched
// report stays unassigned until an admin assigns one manually.
func (s *ReportService) CreateReport(ctx context.Context, actor identity.Identity, input NewReport) (*models.Report, error) {
	if !actor.Capabilities.IsCitizen {
		return nil, app_errors.NewPermissionDenied("createReport", models.CitizenRole)
	}

	if err := s.validateNewReport(ctx, &input); err != nil {
		return nil, err
	}

	report := &models.Report{
		Title:       input.Title,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		City:        input.City,
		Region:      input.Region,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		ReporterID:  actor.User.ID,
		Status:      models.StatusReported,
		IsHidden:    false,
	}

	matched, err := s.matcher.Match(ctx, input.CategoryID, input.City, input.Region)
	if err != nil {
		// Matching is a best-effort sub-step: the report is still filed and
		// an admin can assign later.
		s.log.ErrorErr("createReport: authority matching failed, leaving unassigned", err)
	} else if matched != nil {
		report.AuthorityID = &matched.ID
	}

	id, err := s.reportRepo.CreateReport(ctx, report)
	if err != nil {
		return nil, err
	}

	if err := s.searchRepo.Index(ctx, *report); err != nil {
		s.log.ErrorErr("createReport: failed to index report", err, "report_id", id)
	}
	s.events.Publish("report_created", id)

	return report, nil
}

func (s *ReportService) validateNewReport(ctx context.Context, input *NewReport) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.City = strings.TrimSpace(input.City)
	input.Region = strings.TrimSpace(input.Region)

	if len(input.Title) < 5 {
		return app_errors.NewValidation("title", "title must be at least 5 characters long")
	}
	if len(input.Description) < 10 {
		return app_errors.NewValidation("description", "description must be at least 10 characters long")
	}
	if input.CategoryID == uuid.Nil {
		return app_errors.NewValidation("category", "category is required")
	}
	if _, err := s.categoryRepo.CategoryByID(ctx, input.CategoryID); err != nil {
		if app_errors.IsNotFound(err) {
			return app_errors.NewValidation("category", "unknown category")
		}
		return err
	}
	if input.City == "" {
		return app_errors.NewValidation("city", "city is required")
	}
	if input.Region == "" {
		return app_errors.NewValidation("region", "region is required")
	}
	return nil
}

// UpdateStatus drives the lifecycle state machine. Any status may follow any
// other, including the same one again; a same-state update still appends a
// log entry. Backwards transitions are allowed so authorities can correct
// mistaken updates.
func (s *ReportService) UpdateStatus(ctx context.Context, actor identity.Identity, reportID uuid.UUID, status, comment string) (*models.Report, error) {
	if !actor.Capabilities.IsAuthority && !actor.Capabilities.IsAdmin {
		return nil, app_errors.NewPermissionDenied("updateStatus", models.AuthorityRole+"|"+models.AdminRole)
	}
	if !models.ValidStatus(status) {
		return nil, app_errors.NewValidation("status", "status must be one of reported, in_progress, resolved, rejected")
	}

	report, err := s.reportRepo.UpdateStatus(ctx, reportID, status, comment, actor.User.ID)
	if err != nil {
		return nil, err
	}

	s.events.Publish("status_updated", reportID)
	return report, nil
}

// AssignAuthority is the manual fallback for reports the matcher left
// unassigned. Assignment never re-runs the matcher.
func (s *ReportService) AssignAuthority(ctx context.Context, actor identity.Identity, reportID, authorityID uuid.UUID) error {
	if !actor.Capabilities.IsAdmin {
		return app_errors.NewPermissionDenied("assignAuthority", models.AdminRole)
	}
	if err := s.reportRepo.SetAuthority(ctx, reportID, authorityID); err != nil {
		return err
	}
	s.events.Publish("authority_assigned", reportID)
	return nil
}

// ReportByID loads one report with its images, status log and flags. Hidden
// reports stay visible to admins only.
func (s *ReportService) ReportByID(ctx context.Context, actor identity.Identity, id uuid.UUID) (*models.Report, error) {
	report, err := s.reportRepo.ReportByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.IsHidden && !actor.Capabilities.IsAdmin {
		return nil, app_errors.NewNotFound("report", id.String())
	}

	if report.Flags, err = s.flagRepo.FlagsByReport(ctx, id); err != nil {
		return nil, err
	}
	s.resolveImageURLs(ctx, report)
	return report, nil
}

func (s *ReportService) ListReports(ctx context.Context, actor identity.Identity, filter models.ReportFilter) ([]models.Report, error) {
	// Hidden reports only ever show up in admin views.
	filter.IncludeHidden = filter.IncludeHidden && actor.Capabilities.IsAdmin
	return s.reportRepo.ListReports(ctx, filter)
}

// FlaggedReports is the admin moderation queue: every report carrying at
// least one flag, hidden ones included.
func (s *ReportService) FlaggedReports(ctx context.Context, actor identity.Identity) ([]models.Report, error) {
	if !actor.Capabilities.IsAdmin {
		return nil, app_errors.NewPermissionDenied("listFlaggedReports", models.AdminRole)
	}
	reports, err := s.reportRepo.ListReports(ctx, models.ReportFilter{OnlyFlagged: true, IncludeHidden: true})
	if err != nil {
		return nil, err
	}
	for i := range reports {
		if reports[i].Flags, err = s.flagRepo.FlagsByReport(ctx, reports[i].ID); err != nil {
			return nil, err
		}
	}
	return reports, nil
}

// SearchReports resolves a free-text query against the search index and loads
// the matching, non-hidden reports.
func (s *ReportService) SearchReports(ctx context.Context, actor identity.Identity, query string, size int) ([]models.Report, error) {
	ids, err := s.searchRepo.Search(ctx, query, size)
	if err != nil {
		return nil, app_errors.NewTransient(err)
	}

	reports := make([]models.Report, 0, len(ids))
	for _, id := range ids {
		report, err := s.reportRepo.ReportByID(ctx, id)
		if err != nil {
			s.log.ErrorErr("searchReports: failed to load report from index hit", err, "report_id", id)
			continue
		}
		if report.IsHidden && !actor.Capabilities.IsAdmin {
			continue
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

// UploadImage attaches one image to a report. Only the reporter may attach,
// and only to their own report. The image lands at the next free position so
// the report's image sequence stays ordered.
func (s *ReportService) UploadImage(ctx context.Context, actor identity.Identity, reportID uuid.UUID,
	filename string, reader io.Reader, size int64, contentType string,
) (*models.ReportImage, error) {
	if !actor.Capabilities.IsCitizen {
		return nil, app_errors.NewPermissionDenied("uploadReportImage", models.CitizenRole)
	}
	report, err := s.reportRepo.ReportByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.ReporterID != actor.User.ID {
		return nil, app_errors.ErrNotReporter
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, app_errors.ErrNotImage
	}

	position := len(report.Images)
	objectKey, err := s.imageRepo.UploadImage(ctx, reportID, position, filename, reader, size, contentType)
	if err != nil {
		return nil, err
	}

	img, err := s.reportRepo.AddImage(ctx, reportID, objectKey, position)
	if err != nil {
		// The object must not outlive a failed attach, or the next upload at
		// this position would collide with it.
		if delErr := s.imageRepo.DeleteImage(ctx, objectKey); delErr != nil {
			s.log.ErrorErr("uploadImage: failed to remove orphaned object", delErr, "object_key", objectKey)
		}
		return nil, err
	}

	if url, urlErr := s.imageRepo.GetImageURL(ctx, objectKey); urlErr == nil {
		img.URL = url
	}
	return img, nil
}

// CountSearch reports how many indexed reports match the query, for listing
// pagination alongside SearchReports.
func (s *ReportService) CountSearch(ctx context.Context, query string) (int, error) {
	n, err := s.searchRepo.Count(ctx, query)
	if err != nil {
		return 0, app_errors.NewTransient(err)
	}
	return n, nil
}

func (s *ReportService) resolveImageURLs(ctx context.Context, report *models.Report) {
	for i := range report.Images {
		url, err := s.imageRepo.GetImageURL(ctx, report.Images[i].ObjectKey)
		if err != nil {
			s.log.ErrorErr("failed to presign report image", err, "object_key", report.Images[i].ObjectKey)
			continue
		}
		report.Images[i].URL = url
	}
}
