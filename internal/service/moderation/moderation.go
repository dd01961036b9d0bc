package moderation

import (
	"context"

	"CivicLens/internal/app_errors"
	"CivicLens/internal/identity"
	"CivicLens/internal/models"
	"CivicLens/pkg/logger"

	"github.com/google/uuid"
)

type flagRepo interface {
	CreateFlag(ctx context.Context, flag *models.Flag) (*models.Flag, error)
	FlagByID(ctx context.Context, id uuid.UUID) (*models.Flag, error)
	DeleteFlag(ctx context.Context, id uuid.UUID) error
	FlagsByReport(ctx context.Context, reportID uuid.UUID) ([]models.Flag, error)
	ListFlagTypes(ctx context.Context) ([]models.FlagType, error)
}

type reportRepo interface {
	ReportByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	SetHidden(ctx context.Context, id uuid.UUID, hidden bool) error
}

type searchRepo interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

type events interface {
	Publish(kind string, reportID uuid.UUID)
}

// ModerationService owns the flag sequence of a report and the hidden flag.
// Report status stays with the report service; the two never write the same
// fields.
type ModerationService struct {
	log        logger.Log
	flagRepo   flagRepo
	reportRepo reportRepo
	searchRepo searchRepo
	events     events
}

func NewModerationService(log logger.Log, flags flagRepo, reports reportRepo, search searchRepo, ev events) *ModerationService {
	return &ModerationService{
		log:        log,
		flagRepo:   flags,
		reportRepo: reports,
		searchRepo: search,
		events:     ev,
	}
}

// FlagReport records a citizen's moderation assertion. A user holds at most
// one flag per report: flagging again replaces the previous flag. The prior
// delete is best-effort; if it fails, creation still proceeds and the storage
// uniqueness constraint surfaces the leftover as a Conflict instead of
// letting two flags coexist.
func (s *ModerationService) FlagReport(ctx context.Context, actor identity.Identity, reportID, flagTypeID uuid.UUID, comment string) (*models.Flag, error) {
	if !actor.Capabilities.IsCitizen {
		return nil, app_errors.NewPermissionDenied("flagReport", models.CitizenRole)
	}

	report, err := s.reportRepo.ReportByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	flags, err := s.flagRepo.FlagsByReport(ctx, report.ID)
	if err != nil {
		return nil, err
	}
	if existing := UserHasFlagged(&models.Report{Flags: flags}, actor.User.ID); existing != nil {
		if err := s.flagRepo.DeleteFlag(ctx, existing.ID); err != nil {
			s.log.ErrorErr("flagReport: failed to delete prior flag, proceeding with create", err,
				"flag_id", existing.ID, "report_id", reportID)
		} else {
			s.events.Publish("flag_deleted", reportID)
		}
	}

	flag := &models.Flag{
		ReportID:   reportID,
		FlagTypeID: flagTypeID,
		UserID:     actor.User.ID,
		Comment:    comment,
	}
	created, err := s.flagRepo.CreateFlag(ctx, flag)
	if err != nil {
		return nil, err
	}

	s.events.Publish("flagged", reportID)
	return created, nil
}

// DeleteFlag removes a flag: admins may remove any flag, a citizen only their
// own (the replace flow's first step).
func (s *ModerationService) DeleteFlag(ctx context.Context, actor identity.Identity, flagID, reportID uuid.UUID) error {
	flag, err := s.flagRepo.FlagByID(ctx, flagID)
	if err != nil {
		return err
	}
	if flag.ReportID != reportID {
		return app_errors.NewNotFound("flag", flagID.String())
	}
	if !actor.Capabilities.IsAdmin && (actor.User == nil || flag.UserID != actor.User.ID) {
		return app_errors.NewPermissionDenied("deleteFlag", models.AdminRole)
	}

	if err := s.flagRepo.DeleteFlag(ctx, flagID); err != nil {
		return err
	}
	s.events.Publish("flag_deleted", reportID)
	return nil
}

// HideReport takes a report out of citizen and authority views. One-way,
// there is no unhide. Hiding an already-hidden report is a no-op, not an
// error.
func (s *ModerationService) HideReport(ctx context.Context, actor identity.Identity, reportID uuid.UUID) error {
	if !actor.Capabilities.IsAdmin {
		return app_errors.NewPermissionDenied("hideReport", models.AdminRole)
	}

	report, err := s.reportRepo.ReportByID(ctx, reportID)
	if err != nil {
		return err
	}
	if report.IsHidden {
		return nil
	}

	if err := s.reportRepo.SetHidden(ctx, reportID, true); err != nil {
		return err
	}
	if err := s.searchRepo.Delete(ctx, reportID); err != nil {
		s.log.ErrorErr("hideReport: failed to drop report from search index", err, "report_id", reportID)
	}

	s.events.Publish("hidden", reportID)
	return nil
}

func (s *ModerationService) FlagTypes(ctx context.Context) ([]models.FlagType, error) {
	return s.flagRepo.ListFlagTypes(ctx)
}

// AggregateFlagsByType counts a report's flags per flag-type name. Flags with
// an unresolved type reference land under "Unknown". A map, not a sequence:
// callers must not depend on any ordering.
func AggregateFlagsByType(report *models.Report) map[string]int {
	counts := make(map[string]int, len(report.Flags))
	for _, flag := range report.Flags {
		name := "Unknown"
		if flag.FlagType != nil && flag.FlagType.Name != "" {
			name = flag.FlagType.Name
		}
		counts[name]++
	}
	return counts
}

// UserHasFlagged returns the user's flag on the report, or nil. At most one
// exists by invariant.
func UserHasFlagged(report *models.Report, userID uuid.UUID) *models.Flag {
	for i := range report.Flags {
		if report.Flags[i].UserID == userID {
			return &report.Flags[i]
		}
	}
	return nil
}
