package models

import "time"

// ProfileView tracks how many times a public profile has been loaded.
// Every load counts; there is no per-visitor deduplication.
type ProfileView struct {
	ProfileID uint      `gorm:"primaryKey" json:"profile_id"`
	ViewCount int64     `gorm:"not null;default:0" json:"view_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (ProfileView) TableName() string {
	return "profile_views"
}
