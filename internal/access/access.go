// Package access holds the permission predicates for wishlists. Every
// mutation checks exactly one of these before touching storage.
package access

import "github.com/yashs79/wishlist-app/internal/models"

// CanManage reports whether the actor owns the wishlist. Required for
// field updates, deletion, collaborator removal and invite code rotation.
func CanManage(wishlist models.Wishlist, userID uint) bool {
	return wishlist.OwnerID == userID
}

// CanWrite reports whether the actor is the owner or a collaborator.
// Required for all product, comment and reaction mutations.
// Collaborators must be loaded on the wishlist.
func CanWrite(wishlist models.Wishlist, userID uint) bool {
	if wishlist.OwnerID == userID {
		return true
	}

	for _, collaborator := range wishlist.Collaborators {
		if collaborator.UserID == userID {
			return true
		}
	}

	return false
}

// CanRead reports whether the actor may view the wishlist: members always,
// anyone if the wishlist is not private.
func CanRead(wishlist models.Wishlist, userID uint) bool {
	if !wishlist.IsPrivate {
		return true
	}

	return CanWrite(wishlist, userID)
}
