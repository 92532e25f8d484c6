package models

import "time"

// Category is a named grouping of products owned by one user. Creation time
// drives the default ordering of categories on both the owner and public
// views. Deleting a category cascades to its products.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Products  []Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"products,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Category) TableName() string {
	return "categories"
}
