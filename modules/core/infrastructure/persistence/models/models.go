package models

import (
	"database/sql"
	"time"
)

type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Role         string
	ChurchID     sql.NullString
	PasswordHash sql.NullString
	LastLogin    sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Session struct {
	Token     string
	UserID    string
	IP        string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}
