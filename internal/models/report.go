package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusReported   = "reported"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

// ValidStatus reports whether s is one of the four report status literals.
func ValidStatus(s string) bool {
	switch s {
	case StatusReported, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

type Report struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CategoryID  uuid.UUID  `json:"category_id"`
	City        string     `json:"city"`
	Region      string     `json:"region"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	ReporterID  uuid.UUID  `json:"reporter_id"`
	AuthorityID *uuid.UUID `json:"authority_id,omitempty"`
	Status      string     `json:"status"`
	IsHidden    bool       `json:"is_hidden"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Images    []ReportImage    `json:"images,omitempty"`
	StatusLog []StatusLogEntry `json:"status_log,omitempty"`
	Flags     []Flag           `json:"flags,omitempty"`
}

// StatusLogEntry is append-only: entries are never mutated or deleted.
type StatusLogEntry struct {
	ID         uuid.UUID `json:"id"`
	ReportID   uuid.UUID `json:"report_id"`
	FromStatus *string   `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Comment    string    `json:"comment,omitempty"`
	ActorID    uuid.UUID `json:"actor_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReportImage struct {
	ID        uuid.UUID `json:"id"`
	ReportID  uuid.UUID `json:"report_id"`
	ObjectKey string    `json:"object_key"`
	Position  int       `json:"position"`
	URL       string    `json:"url,omitempty"`
}

// ReportFilter narrows listing queries. Zero values mean "no constraint".
type ReportFilter struct {
	Status        string
	CategoryID    uuid.UUID
	City          string
	ReporterID    uuid.UUID
	AuthorityID   uuid.UUID
	IncludeHidden bool
	OnlyFlagged   bool
}
