package models

import "time"

// A user may hold each emoji on a product at most once; the composite index
// backs the toggle's conditional insert. No DeletedAt: toggling off must
// free the triple so the same reaction can be added again.
type Reaction struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	ProductID uint   `gorm:"not null;uniqueIndex:idx_product_user_emoji"`
	UserID    uint   `gorm:"not null;uniqueIndex:idx_product_user_emoji"`
	Emoji     string `gorm:"not null;uniqueIndex:idx_product_user_emoji"`

	// Relationships
	Product Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
