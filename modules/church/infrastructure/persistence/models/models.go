package models

import (
	"database/sql"
	"time"
)

type Church struct {
	ID          string
	Name        string
	Description sql.NullString
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Campus struct {
	ID        string
	ChurchID  string
	Name      string
	Address   sql.NullString
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Member struct {
	ID        string
	UserID    string
	ChurchID  string
	CampusID  sql.NullString
	Role      string
	JoinedAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
