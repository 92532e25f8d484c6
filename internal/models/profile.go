package models

import "time"

// LayoutStyle selects how a public profile renders its product groups.
type LayoutStyle string

const (
	// LayoutGrid renders products in a responsive grid.
	LayoutGrid LayoutStyle = "grid"
	// LayoutList renders products as a vertical list.
	LayoutList LayoutStyle = "list"
)

// Valid reports whether the layout style is one of the supported values.
func (l LayoutStyle) Valid() bool {
	return l == LayoutGrid || l == LayoutList
}

// Profile is the shareable identity for a user's stash. It is created at
// account creation, mutated only by its owner and never hard-deleted.
type Profile struct {
	UserID          uint        `gorm:"primaryKey" json:"user_id"`
	Username        string      `gorm:"size:30;not null;uniqueIndex" json:"username"`
	ThemeColor      string      `gorm:"size:7;not null;default:'#6B4E9B'" json:"theme_color"`
	BackgroundColor string      `gorm:"size:7;not null;default:'#FFFFFF'" json:"background_color"`
	LayoutStyle     LayoutStyle `gorm:"type:varchar(10);not null;default:'grid'" json:"layout_style"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Profile) TableName() string {
	return "profiles"
}
