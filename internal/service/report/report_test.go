package report

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"

	"CivicLens/internal/app_errors"
	"CivicLens/internal/identity"
	"CivicLens/internal/models"
	"CivicLens/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReportRepo struct {
	reports map[uuid.UUID]*models.Report

	createdReport  *models.Report
	statusArgs     []string
	statusActorID  uuid.UUID
	listFilter     models.ReportFilter
	setAuthorityID uuid.UUID
	addImageErr    error
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: make(map[uuid.UUID]*models.Report)}
}

func (f *fakeReportRepo) CreateReport(ctx context.Context, report *models.Report) (uuid.UUID, error) {
	report.ID = uuid.New()
	f.createdReport = report
	f.reports[report.ID] = report
	return report.ID, nil
}

func (f *fakeReportRepo) ReportByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	r, ok := f.reports[id]
	if !ok {
		return nil, app_errors.NewNotFound("report", id.String())
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReportRepo) ListReports(ctx context.Context, filter models.ReportFilter) ([]models.Report, error) {
	f.listFilter = filter
	out := make([]models.Report, 0, len(f.reports))
	for _, r := range f.reports {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeReportRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status, comment string, actorID uuid.UUID) (*models.Report, error) {
	r, ok := f.reports[id]
	if !ok {
		return nil, app_errors.NewNotFound("report", id.String())
	}
	from := r.Status
	r.Status = status
	r.StatusLog = append(r.StatusLog, models.StatusLogEntry{
		ReportID:   id,
		FromStatus: &from,
		ToStatus:   status,
		Comment:    comment,
		ActorID:    actorID,
	})
	f.statusArgs = []string{status, comment}
	f.statusActorID = actorID
	cp := *r
	return &cp, nil
}

func (f *fakeReportRepo) SetAuthority(ctx context.Context, id uuid.UUID, authorityID uuid.UUID) error {
	f.setAuthorityID = authorityID
	return nil
}

func (f *fakeReportRepo) AddImage(ctx context.Context, reportID uuid.UUID, objectKey string, position int) (*models.ReportImage, error) {
	if f.addImageErr != nil {
		return nil, f.addImageErr
	}
	r, ok := f.reports[reportID]
	if !ok {
		return nil, app_errors.NewNotFound("report", reportID.String())
	}
	img := models.ReportImage{ID: uuid.New(), ReportID: reportID, ObjectKey: objectKey, Position: position}
	r.Images = append(r.Images, img)
	return &img, nil
}

type fakeFlagRepo struct {
	flags map[uuid.UUID][]models.Flag
}

func (f *fakeFlagRepo) FlagsByReport(ctx context.Context, reportID uuid.UUID) ([]models.Flag, error) {
	return f.flags[reportID], nil
}

type fakeCategoryRepo struct {
	known map[uuid.UUID]bool
}

func (f *fakeCategoryRepo) CategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if !f.known[id] {
		return nil, app_errors.NewNotFound("category", id.String())
	}
	return &models.Category{ID: id}, nil
}

type fakeMatcher struct {
	matched *models.Authority
	err     error
	calls   int
}

func (f *fakeMatcher) Match(ctx context.Context, categoryID uuid.UUID, city, region string) (*models.Authority, error) {
	f.calls++
	return f.matched, f.err
}

type fakeImageRepo struct {
	deleted []string
}

func (f *fakeImageRepo) UploadImage(ctx context.Context, reportID uuid.UUID, position int, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	return fmt.Sprintf("reports/%s/%03d%s", reportID, position, filepath.Ext(filename)), nil
}

func (f *fakeImageRepo) GetImageURL(ctx context.Context, objectKey string) (string, error) {
	return "https://example.test/" + objectKey, nil
}

func (f *fakeImageRepo) DeleteImage(ctx context.Context, objectKey string) error {
	f.deleted = append(f.deleted, objectKey)
	return nil
}

type fakeSearchRepo struct {
	indexed  []uuid.UUID
	hits     []uuid.UUID
	countErr error
}

func (f *fakeSearchRepo) Index(ctx context.Context, report models.Report) error {
	f.indexed = append(f.indexed, report.ID)
	return nil
}

func (f *fakeSearchRepo) Search(ctx context.Context, query string, size int) ([]uuid.UUID, error) {
	return f.hits, nil
}

func (f *fakeSearchRepo) Count(ctx context.Context, query string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.hits), nil
}

type fakeEvents struct {
	published []string
}

func (f *fakeEvents) Publish(kind string, reportID uuid.UUID) {
	f.published = append(f.published, kind)
}

type reportFixture struct {
	service    *ReportService
	reportRepo *fakeReportRepo
	flagRepo   *fakeFlagRepo
	categories *fakeCategoryRepo
	matcher    *fakeMatcher
	images     *fakeImageRepo
	search     *fakeSearchRepo
	events     *fakeEvents
	categoryID uuid.UUID
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	f := &reportFixture{
		reportRepo: newFakeReportRepo(),
		flagRepo:   &fakeFlagRepo{flags: make(map[uuid.UUID][]models.Flag)},
		matcher:    &fakeMatcher{},
		images:     &fakeImageRepo{},
		search:     &fakeSearchRepo{},
		events:     &fakeEvents{},
		categoryID: uuid.New(),
	}
	f.categories = &fakeCategoryRepo{known: map[uuid.UUID]bool{f.categoryID: true}}
	f.service = NewReportService(logger.New("prod"), f.reportRepo, f.flagRepo, f.categories,
		f.matcher, f.images, f.search, f.events)
	return f
}

func actorWithRoles(roles ...string) identity.Identity {
	return identity.Resolve(&models.User{ID: uuid.New(), Roles: roles})
}

func validInput(categoryID uuid.UUID) NewReport {
	return NewReport{
		Title:       "Broken streetlight",
		Description: "The streetlight at the corner has been out for a week.",
		CategoryID:  categoryID,
		City:        "Jaipur",
		Region:      "Mansarovar",
	}
}

func TestCreateReportHappyPath(t *testing.T) {
	f := newReportFixture(t)
	citizen := actorWithRoles("citizen")

	matched := &models.Authority{ID: uuid.New(), Name: "JMC", City: "Jaipur", Region: "Mansarovar"}
	f.matcher.matched = matched

	report, err := f.service.CreateReport(context.Background(), citizen, validInput(f.categoryID))
	require.NoError(t, err)

	assert.Equal(t, models.StatusReported, report.Status)
	assert.Equal(t, citizen.User.ID, report.ReporterID)
	require.NotNil(t, report.AuthorityID)
	assert.Equal(t, matched.ID, *report.AuthorityID)
	assert.Equal(t, 1, f.matcher.calls)
	assert.Len(t, f.search.indexed, 1)
	assert.Equal(t, []string{"report_created"}, f.events.published)
}

func TestCreateReportUnmatchedStaysUnassigned(t *testing.T) {
	f := newReportFixture(t)

	report, err := f.service.CreateReport(context.Background(), actorWithRoles("citizen"), validInput(f.categoryID))
	require.NoError(t, err)
	assert.Nil(t, report.AuthorityID)
}

func TestCreateReportMatcherFailureStillFiles(t *testing.T) {
	f := newReportFixture(t)
	f.matcher.err = assert.AnError

	report, err := f.service.CreateReport(context.Background(), actorWithRoles("citizen"), validInput(f.categoryID))
	require.NoError(t, err)
	assert.Nil(t, report.AuthorityID)
	assert.NotNil(t, f.reportRepo.createdReport)
}

func TestCreateReportRequiresCitizen(t *testing.T) {
	f := newReportFixture(t)

	for _, roles := range [][]string{{"admin"}, {"authority"}, nil} {
		_, err := f.service.CreateReport(context.Background(), actorWithRoles(roles...), validInput(f.categoryID))
		assert.True(t, app_errors.IsPermissionDenied(err), "roles %v", roles)
	}
	assert.Nil(t, f.reportRepo.createdReport)
}

func TestCreateReportValidationOrder(t *testing.T) {
	f := newReportFixture(t)
	citizen := actorWithRoles("citizen")

	tests := []struct {
		name      string
		mutate    func(*NewReport)
		wantField string
	}{
		{"short title", func(r *NewReport) { r.Title = "Pot" }, "title"},
		{"whitespace title", func(r *NewReport) { r.Title = "    Pot    " }, "title"},
		{"short description", func(r *NewReport) { r.Description = "bad" }, "description"},
		{"missing category", func(r *NewReport) { r.CategoryID = uuid.Nil }, "category"},
		{"unknown category", func(r *NewReport) { r.CategoryID = uuid.New() }, "category"},
		{"missing city", func(r *NewReport) { r.City = "  " }, "city"},
		{"missing region", func(r *NewReport) { r.Region = "" }, "region"},
		// Title is checked first even when later fields are also bad.
		{"title before description", func(r *NewReport) { r.Title = "x"; r.Description = "y" }, "title"},
		{"description before city", func(r *NewReport) { r.Description = "y"; r.City = "" }, "description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput(f.categoryID)
			tt.mutate(&input)

			_, err := f.service.CreateReport(context.Background(), citizen, input)
			var vErr *app_errors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestUpdateStatusAppendsLogEntry(t *testing.T) {
	f := newReportFixture(t)
	authority := actorWithRoles("authority")

	created, err := f.service.CreateReport(context.Background(), actorWithRoles("citizen"), validInput(f.categoryID))
	require.NoError(t, err)

	updated, err := f.service.UpdateStatus(context.Background(), authority, created.ID, models.StatusInProgress, "crew dispatched")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)
	assert.Equal(t, authority.User.ID, f.reportRepo.statusActorID)
	assert.Contains(t, f.events.published, "status_updated")

	// Same-state update still appends an entry.
	again, err := f.service.UpdateStatus(context.Background(), authority, created.ID, models.StatusInProgress, "still working")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, again.Status)
	require.Len(t, again.StatusLog, 2)
	assert.Equal(t, models.StatusInProgress, *again.StatusLog[1].FromStatus)

	// Backwards transition is legal.
	back, err := f.service.UpdateStatus(context.Background(), actorWithRoles("admin"), created.ID, models.StatusReported, "reopened")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReported, back.Status)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	f := newReportFixture(t)

	created, err := f.service.CreateReport(context.Background(), actorWithRoles("citizen"), validInput(f.categoryID))
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(context.Background(), actorWithRoles("admin"), created.ID, "done", "")
	var vErr *app_errors.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "status", vErr.Field)
}

func TestUpdateStatusRequiresAuthorityOrAdmin(t *testing.T) {
	f := newReportFixture(t)

	created, err := f.service.CreateReport(context.Background(), actorWithRoles("citizen"), validInput(f.categoryID))
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(context.Background(), actorWithRoles("citizen"), created.ID, models.StatusResolved, "")
	assert.True(t, app_errors.IsPermissionDenied(err))
}

func TestReportByIDHidesHiddenFromNonAdmins(t *testing.T) {
	f := newReportFixture(t)

	created, err := f.service.CreateReport(context.Background(), actorWithRoles("citizen"), validInput(f.categoryID))
	require.NoError(t, err)
	f.reportRepo.reports[created.ID].IsHidden = true

	_, err = f.service.ReportByID(context.Background(), actorWithRoles("citizen"), created.ID)
	assert.True(t, app_errors.IsNotFound(err))

	got, err := f.service.ReportByID(context.Background(), actorWithRoles("admin"), created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsHidden)
}

func TestListReportsDropsIncludeHiddenForNonAdmins(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.service.ListReports(context.Background(), actorWithRoles("citizen"), models.ReportFilter{IncludeHidden: true})
	require.NoError(t, err)
	assert.False(t, f.reportRepo.listFilter.IncludeHidden)

	_, err = f.service.ListReports(context.Background(), actorWithRoles("admin"), models.ReportFilter{IncludeHidden: true})
	require.NoError(t, err)
	assert.True(t, f.reportRepo.listFilter.IncludeHidden)
}

func TestAssignAuthorityAdminOnly(t *testing.T) {
	f := newReportFixture(t)
	authorityID := uuid.New()

	created, err := f.service.CreateReport(context.Background(), actorWithRoles("citizen"), validInput(f.categoryID))
	require.NoError(t, err)

	err = f.service.AssignAuthority(context.Background(), actorWithRoles("authority"), created.ID, authorityID)
	assert.True(t, app_errors.IsPermissionDenied(err))

	err = f.service.AssignAuthority(context.Background(), actorWithRoles("admin"), created.ID, authorityID)
	require.NoError(t, err)
	assert.Equal(t, authorityID, f.reportRepo.setAuthorityID)
	assert.Contains(t, f.events.published, "authority_assigned")
}

func TestSearchReportsSkipsHiddenForNonAdmins(t *testing.T) {
	f := newReportFixture(t)

	visible, err := f.service.CreateReport(context.Background(), actorWithRoles("citizen"), validInput(f.categoryID))
	require.NoError(t, err)
	hidden, err := f.service.CreateReport(context.Background(), actorWithRoles("citizen"), validInput(f.categoryID))
	require.NoError(t, err)
	f.reportRepo.reports[hidden.ID].IsHidden = true
	f.search.hits = []uuid.UUID{visible.ID, hidden.ID}

	got, err := f.service.SearchReports(context.Background(), actorWithRoles("citizen"), "streetlight", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, visible.ID, got[0].ID)

	all, err := f.service.SearchReports(context.Background(), actorWithRoles("admin"), "streetlight", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUploadImageOwnershipAndType(t *testing.T) {
	f := newReportFixture(t)
	reporter := actorWithRoles("citizen")

	input := validInput(f.categoryID)
	created, err := f.service.CreateReport(context.Background(), reporter, input)
	require.NoError(t, err)

	_, err = f.service.UploadImage(context.Background(), actorWithRoles("citizen"), created.ID, "a.jpg", nil, 10, "image/jpeg")
	assert.ErrorIs(t, err, app_errors.ErrNotReporter)

	_, err = f.service.UploadImage(context.Background(), reporter, created.ID, "a.pdf", nil, 10, "application/pdf")
	assert.ErrorIs(t, err, app_errors.ErrNotImage)

	img, err := f.service.UploadImage(context.Background(), reporter, created.ID, "a.jpg", nil, 10, "image/jpeg")
	require.NoError(t, err)
	assert.NotEmpty(t, img.ObjectKey)
}

func TestUploadImageAttachesInOrder(t *testing.T) {
	f := newReportFixture(t)
	reporter := actorWithRoles("citizen")

	created, err := f.service.CreateReport(context.Background(), reporter, validInput(f.categoryID))
	require.NoError(t, err)

	first, err := f.service.UploadImage(context.Background(), reporter, created.ID, "a.jpg", nil, 10, "image/jpeg")
	require.NoError(t, err)
	second, err := f.service.UploadImage(context.Background(), reporter, created.ID, "b.png", nil, 10, "image/png")
	require.NoError(t, err)

	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)
	assert.NotEqual(t, first.ObjectKey, second.ObjectKey)

	got, err := f.service.ReportByID(context.Background(), reporter, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 2)
	assert.Equal(t, first.ObjectKey, got.Images[0].ObjectKey)
	assert.Equal(t, second.ObjectKey, got.Images[1].ObjectKey)
	assert.NotEmpty(t, got.Images[0].URL)
}

func TestUploadImageRemovesObjectWhenAttachFails(t *testing.T) {
	f := newReportFixture(t)
	reporter := actorWithRoles("citizen")

	created, err := f.service.CreateReport(context.Background(), reporter, validInput(f.categoryID))
	require.NoError(t, err)

	f.reportRepo.addImageErr = assert.AnError
	_, err = f.service.UploadImage(context.Background(), reporter, created.ID, "a.jpg", nil, 10, "image/jpeg")
	assert.Error(t, err)
	require.Len(t, f.images.deleted, 1)
	assert.Empty(t, f.reportRepo.reports[created.ID].Images)
}

func TestCountSearch(t *testing.T) {
	f := newReportFixture(t)
	f.search.hits = []uuid.UUID{uuid.New(), uuid.New()}

	n, err := f.service.CountSearch(context.Background(), "streetlight")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f.search.countErr = assert.AnError
	_, err = f.service.CountSearch(context.Background(), "streetlight")
	assert.True(t, app_errors.IsTransient(err))
}
