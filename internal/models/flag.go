package models

import (
	"time"

	"github.com/google/uuid"
)

type FlagType struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

// Flag records a citizen's moderation assertion against a report. At most one
// flag exists per (user, report) pair.
type Flag struct {
	ID         uuid.UUID `json:"id"`
	ReportID   uuid.UUID `json:"report_id"`
	FlagTypeID uuid.UUID `json:"flag_type_id"`
	UserID     uuid.UUID `json:"user_id"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	FlagType *FlagType `json:"flag_type,omitempty"`
}
