package models

import "gorm.io/gorm"

type Product struct {
	gorm.Model

	WishlistID  uint   `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Description string
	Price       float64 `gorm:"not null"`
	ImageURL    string

	AddedByID      uint `gorm:"not null"`
	LastEditedByID uint `gorm:"not null"`

	// Relationships
	Wishlist     Wishlist   `gorm:"foreignKey:WishlistID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AddedBy      User       `gorm:"foreignKey:AddedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	LastEditedBy User       `gorm:"foreignKey:LastEditedByID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Comments     []Comment  `gorm:"foreignKey:ProductID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Reactions    []Reaction `gorm:"foreignKey:ProductID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
