package models

import "time"

type Notification struct {
	ID        string
	UserID    string
	Title     string
	Body      string
	Read      bool
	CreatedAt time.Time
}
