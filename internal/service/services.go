package service

import (
	"CivicLens/internal/service/auth"
	"CivicLens/internal/service/authority"
	"CivicLens/internal/service/category"
	"CivicLens/internal/service/moderation"
	"CivicLens/internal/service/report"
	"CivicLens/internal/service/user"
)

type Collection struct {
	*auth.AuthService
	*category.CategoryService
	*authority.AuthorityService
	*report.ReportService
	*moderation.ModerationService
	*user.UserService
}
