package models

import "time"

// No DeletedAt here: removal must free the (wishlist, user) pair so the
// user can rejoin by invite code later.
type WishlistCollaborator struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	WishlistID uint `gorm:"not null;uniqueIndex:idx_wishlist_user"`
	UserID     uint `gorm:"not null;uniqueIndex:idx_wishlist_user"`

	// Relationships
	Wishlist Wishlist `gorm:"foreignKey:WishlistID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User     User     `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
