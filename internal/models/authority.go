package models

import "github.com/google/uuid"

type Authority struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	City         string      `json:"city"`
	Region       string      `json:"region"`
	DepartmentID *uuid.UUID  `json:"department_id,omitempty"`
	Address      string      `json:"address,omitempty"`
	Categories   []uuid.UUID `json:"categories,omitempty"`
}

type Department struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// AuthorityLink binds an authority-role user to an authority. One-to-one on
// both sides, enforced by the linking repository.
type AuthorityLink struct {
	UserID      uuid.UUID `json:"user_id"`
	AuthorityID uuid.UUID `json:"authority_id"`
}
