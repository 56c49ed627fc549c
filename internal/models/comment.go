package models

import "gorm.io/gorm"

type Comment struct {
	gorm.Model

	ProductID uint   `gorm:"not null;index"`
	UserID    uint   `gorm:"not null"`
	Text      string `gorm:"not null"`

	// Relationships
	Product Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
