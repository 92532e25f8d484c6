package models

import "time"

// Product is a catalogued item inside a category. ImageURL is either an
// absolute URL or a relative object name in the private image bucket.
// Position is the manual sort key within the category: ascending order only,
// duplicates and gaps are tolerated.
type Product struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:200;not null" json:"name"`
	Brand         string    `gorm:"size:120" json:"brand,omitempty"`
	ImageURL      string    `json:"image_url,omitempty"`
	AffiliateLink string    `json:"affiliate_link,omitempty"`
	CategoryID    uint      `gorm:"not null;index" json:"category_id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Position      int       `gorm:"not null;default:0" json:"position"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Product) TableName() string {
	return "products"
}
