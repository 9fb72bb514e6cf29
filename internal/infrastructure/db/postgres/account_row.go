package postgres

import "time"

type accountRow struct {
	ID                  string
	Name                string
	Phone               string
	Email               string
	PasswordHash        string
	Address             string
	Image               string
	IsBusiness          bool
	Role                string
	FailedLoginAttempts int
	LockUntil           *time.Time
	CreatedAt           time.Time
}
