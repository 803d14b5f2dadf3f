package models

import (
	"time"

	"gorm.io/gorm"
)

// User holds one Google account's stored OAuth tokens when the service is
// backed by Postgres. The email is the tenancy key for everything else.
type User struct {
	gorm.Model
	GoogleEmail  string `gorm:"unique;not null"`
	AccessToken  string `gorm:"not null"`
	RefreshToken string
	TokenType    string
	TokenExpiry  time.Time
}

// Event is the provider-agnostic event shape served to clients. It is built
// fresh on every provider fetch and never persisted.
type Event struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int64     `json:"durationMinutes"`
	Location        string    `json:"location"`
	Attendees       []string  `json:"attendees"`
}

// Summary aggregates a user's upcoming events. FirstEventStart and
// LastEventEnd come from the first and last event in provider order and are
// null when the list is empty.
type Summary struct {
	TotalEvents     int        `json:"totalEvents"`
	TotalHours      float64    `json:"totalHours"`
	FirstEventStart *time.Time `json:"firstEventStart"`
	LastEventEnd    *time.Time `json:"lastEventEnd"`
}
