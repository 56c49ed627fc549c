package models

import "gorm.io/gorm"

type Wishlist struct {
	gorm.Model

	Name        string `gorm:"not null"`
	Description string
	IsPrivate   bool `gorm:"default:false"`
	OwnerID     uint `gorm:"not null;index"`

	// Unique system-wide while non-null; null only transiently during rotation.
	InviteCode *string `gorm:"uniqueIndex"`

	// Relationships
	Owner         User                   `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Collaborators []WishlistCollaborator `gorm:"foreignKey:WishlistID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Products      []Product              `gorm:"foreignKey:WishlistID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
