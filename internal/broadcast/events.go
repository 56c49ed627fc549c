package broadcast

// Event names delivered to subscribers. All are room-scoped except
// EventWishlistCreated, which is published globally because the room does
// not exist until the mutation that creates it completes.
const (
	EventWishlistCreated     = "wishlist-created"
	EventWishlistUpdated     = "wishlist-updated"
	EventWishlistDeleted     = "wishlist-deleted"
	EventCollaboratorAdded   = "collaborator-added"
	EventCollaboratorRemoved = "collaborator-removed"
	EventProductAdded        = "product-added"
	EventProductUpdated      = "product-updated"
	EventProductDeleted      = "product-deleted"
	EventCommentAdded        = "comment-added"
	EventReactionUpdated     = "reaction-updated"
)
