package report

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"CivicLens/internal/app_errors"
	"CivicLens/internal/delivery/http/controllers/middleware"
	"CivicLens/internal/identity"
	"CivicLens/internal/models"
	"CivicLens/internal/service/report"
	"CivicLens/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReportService struct {
	listFilter models.ReportFilter
	listCalled bool
}

func (f *fakeReportService) CreateReport(ctx context.Context, actor identity.Identity, input report.NewReport) (*models.Report, error) {
	return nil, nil
}

func (f *fakeReportService) ReportByID(ctx context.Context, actor identity.Identity, id uuid.UUID) (*models.Report, error) {
	return nil, nil
}

func (f *fakeReportService) ListReports(ctx context.Context, actor identity.Identity, filter models.ReportFilter) ([]models.Report, error) {
	f.listCalled = true
	f.listFilter = filter
	return nil, nil
}

func (f *fakeReportService) SearchReports(ctx context.Context, actor identity.Identity, query string, size int) ([]models.Report, error) {
	return nil, nil
}

func (f *fakeReportService) CountSearch(ctx context.Context, query string) (int, error) {
	return 0, nil
}

func (f *fakeReportService) UpdateStatus(ctx context.Context, actor identity.Identity, reportID uuid.UUID, status, comment string) (*models.Report, error) {
	return nil, nil
}

func (f *fakeReportService) AssignAuthority(ctx context.Context, actor identity.Identity, reportID, authorityID uuid.UUID) error {
	return nil
}

func (f *fakeReportService) UploadImage(ctx context.Context, actor identity.Identity, reportID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (*models.ReportImage, error) {
	return nil, nil
}

type fakeAuthorityResolver struct {
	authority *models.Authority
	err       error
	userID    uuid.UUID
}

func (f *fakeAuthorityResolver) LinkedAuthorityFor(ctx context.Context, userID uuid.UUID) (*models.Authority, error) {
	f.userID = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.authority, nil
}

func listRequest(t *testing.T, handler *ReportHandler, actor identity.Identity, rawQuery string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/reports?"+rawQuery, nil)
	c.Set(middleware.IdentityCtx, actor)
	handler.ListReports(c)
	return w
}

func TestListReportsAssignedMeScopesToLinkedAuthority(t *testing.T) {
	authorityID := uuid.New()
	service := &fakeReportService{}
	resolver := &fakeAuthorityResolver{authority: &models.Authority{ID: authorityID}}
	handler := NewReportHandler(logger.New("prod"), service, resolver)

	actor := identity.Resolve(&models.User{ID: uuid.New(), Roles: []string{"authority"}})
	w := listRequest(t, handler, actor, "assigned=me")

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, service.listCalled)
	assert.Equal(t, authorityID, service.listFilter.AuthorityID)
	assert.Equal(t, actor.User.ID, resolver.userID)
}

func TestListReportsAssignedMeRejectsNonAuthority(t *testing.T) {
	service := &fakeReportService{}
	resolver := &fakeAuthorityResolver{}
	handler := NewReportHandler(logger.New("prod"), service, resolver)

	for _, roles := range [][]string{{"citizen"}, {"admin"}} {
		actor := identity.Resolve(&models.User{ID: uuid.New(), Roles: roles})
		w := listRequest(t, handler, actor, "assigned=me")

		assert.Equal(t, http.StatusForbidden, w.Code, "roles %v", roles)
		assert.False(t, service.listCalled)
	}
}

func TestListReportsAssignedMeUnlinkedAuthority(t *testing.T) {
	service := &fakeReportService{}
	resolver := &fakeAuthorityResolver{err: app_errors.NewNotFound("authority link", "none")}
	handler := NewReportHandler(logger.New("prod"), service, resolver)

	actor := identity.Resolve(&models.User{ID: uuid.New(), Roles: []string{"authority"}})
	w := listRequest(t, handler, actor, "assigned=me")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, service.listCalled)
}
