package models

import "github.com/google/uuid"

const (
	AdminRole     = "admin"
	AuthorityRole = "authority"
	CitizenRole   = "citizen"
)

type User struct {
	ID       uuid.UUID
	Name     string
	Password string
	Email    string
	Roles    []string
}
