package models

import (
	"database/sql"
	"time"
)

type Pathway struct {
	ID          string
	ChurchID    string
	Name        string
	Description sql.NullString
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Step struct {
	ID        string
	PathwayID string
	Name      string
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Progress struct {
	ID          string
	MemberID    string
	StepID      string
	CompletedAt time.Time
}
