package models

import "time"

// Base model with auto-increment primary key and timestamps.
// Identifiers are numeric because they are part of the API surface
// (recipe list filters take comma-separated id lists).
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
