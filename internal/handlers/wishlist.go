package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashs79/wishlist-app/db"
	"github.com/yashs79/wishlist-app/internal/access"
	"github.com/yashs79/wishlist-app/internal/broadcast"
	"github.com/yashs79/wishlist-app/internal/invite"
	"github.com/yashs79/wishlist-app/internal/models"
	"github.com/yashs79/wishlist-app/internal/types"
	"github.com/yashs79/wishlist-app/internal/utils"
	"gorm.io/gorm"
)

type CreateWishlistRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"isPrivate"`
}

type UpdateWishlistRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPrivate   *bool   `json:"isPrivate"`
}

type JoinWishlistRequest struct {
	InviteCode string `json:"inviteCode" binding:"required"`
}

type WishlistHandler struct {
	hub *broadcast.Hub
}

func NewWishlistHandler(hub *broadcast.Hub) *WishlistHandler {
	return &WishlistHandler{hub: hub}
}

// loadWishlist fetches a wishlist with its collaborator rows, enough for
// every access check.
func loadWishlist(id uint) (models.Wishlist, error) {
	var wishlist models.Wishlist

	err := db.DB.Preload("Collaborators").Where("id = ?", id).First(&wishlist).Error

	return wishlist, err
}

// withWishlistPreloads loads the canonical display representation: owner
// and collaborators as user summaries, products with comments and
// reactions. Collaborators and comments keep insertion order.
func withWishlistPreloads(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Owner").
		Preload("Collaborators", func(tx *gorm.DB) *gorm.DB { return tx.Order("wishlist_collaborators.id") }).
		Preload("Collaborators.User").
		Preload("Products", func(tx *gorm.DB) *gorm.DB { return tx.Order("products.id") }).
		Preload("Products.AddedBy").
		Preload("Products.LastEditedBy").
		Preload("Products.Comments", func(tx *gorm.DB) *gorm.DB { return tx.Order("comments.id") }).
		Preload("Products.Comments.User").
		Preload("Products.Reactions").
		Preload("Products.Reactions.User")
}

func loadWishlistFull(id uint) (models.Wishlist, error) {
	var wishlist models.Wishlist

	err := withWishlistPreloads(db.DB).Where("id = ?", id).First(&wishlist).Error

	return wishlist, err
}

func (h *WishlistHandler) CreateWishlist(ctx *gin.Context) {
	var body CreateWishlistRequest

	if err := ctx.BindJSON(&body); err != nil {
		respondError(ctx, http.StatusBadRequest, CodeValidation, "Invalid request")
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, CodeUnauthenticated, "User not authenticated")
		return
	}

	wishlist := models.Wishlist{
		Name:        body.Name,
		Description: body.Description,
		IsPrivate:   body.IsPrivate,
		OwnerID:     userID,
	}

	// The row and its invite code land in one insert, so a wishlist can
	// never exist without a resolvable code.
	if err := invite.Create(db.DB, &wishlist); err != nil {
		log.Printf("Failed to create wishlist: %v", err)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to create wishlist")
		return
	}

	full, err := loadWishlistFull(wishlist.ID)

	if err != nil {
		log.Printf("Failed to load created wishlist: %v", err)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to create wishlist")
		return
	}

	response := types.NewWishlistResponse(full)

	// The owner's other sessions cannot be in a room that did not exist a
	// moment ago, so creation goes out globally.
	h.hub.PublishGlobal(broadcast.EventWishlistCreated, response)

	ctx.JSON(http.StatusCreated, response)
}

func (h *WishlistHandler) ListMyWishlists(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, CodeUnauthenticated, "User not authenticated")
		return
	}

	memberOf := db.DB.Model(&models.WishlistCollaborator{}).Select("wishlist_id").Where("user_id = ?", userID)

	var wishlists []models.Wishlist

	err = withWishlistPreloads(db.DB).
		Where("owner_id = ? OR id IN (?)", userID, memberOf).
		Order("id").
		Find(&wishlists).Error

	if err != nil {
		log.Printf("Failed to list wishlists: %v", err)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to retrieve wishlists")
		return
	}

	response := make([]types.WishlistResponse, 0, len(wishlists))

	for _, wishlist := range wishlists {
		response = append(response, types.NewWishlistResponse(wishlist))
	}

	ctx.JSON(http.StatusOK, response)
}

func (h *WishlistHandler) GetWishlist(ctx *gin.Context) {
	wishlistID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, CodeUnauthenticated, "User not authenticated")
		return
	}

	wishlist, err := loadWishlistFull(wishlistID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(ctx, http.StatusNotFound, CodeNotFound, "Wishlist not found")
		} else {
			log.Printf("Failed to load wishlist %d: %v", wishlistID, err)
			respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to retrieve wishlist")
		}
		return
	}

	if !access.CanRead(wishlist, userID) {
		respondError(ctx, http.StatusForbidden, CodeAccessDenied, "Access denied")
		return
	}

	ctx.JSON(http.StatusOK, types.NewWishlistResponse(wishlist))
}

func (h *WishlistHandler) UpdateWishlist(ctx *gin.Context) {
	wishlistID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, CodeUnauthenticated, "User not authenticated")
		return
	}

	var body UpdateWishlistRequest

	if err := ctx.BindJSON(&body); err != nil {
		respondError(ctx, http.StatusBadRequest, CodeValidation, "Invalid request")
		return
	}

	wishlist, err := loadWishlist(wishlistID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(ctx, http.StatusNotFound, CodeNotFound, "Wishlist not found")
		} else {
			log.Printf("Failed to load wishlist %d: %v", wishlistID, err)
			respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to retrieve wishlist")
		}
		return
	}

	if !access.CanManage(wishlist, userID) {
		respondError(ctx, http.StatusForbidden, CodeAccessDenied, "Only the owner can update the wishlist")
		return
	}

	updates := map[string]interface{}{}

	if body.Name != nil && *body.Name != "" {
		updates["name"] = *body.Name
	}
	if body.Description != nil {
		updates["description"] = *body.Description
	}
	if body.IsPrivate != nil {
		updates["is_private"] = *body.IsPrivate
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&models.Wishlist{}).Where("id = ?", wishlist.ID).Updates(updates).Error; err != nil {
			log.Printf("Failed to update wishlist %d: %v", wishlistID, err)
			respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to update wishlist")
			return
		}
	}

	full, err := loadWishlistFull(wishlist.ID)

	if err != nil {
		log.Printf("Failed to reload wishlist %d: %v", wishlistID, err)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to update wishlist")
		return
	}

	response := types.NewWishlistResponse(full)

	h.hub.Publish(wishlist.ID, broadcast.EventWishlistUpdated, response)

	ctx.JSON(http.StatusOK, response)
}

func (h *WishlistHandler) DeleteWishlist(ctx *gin.Context) {
	wishlistID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, CodeUnauthenticated, "User not authenticated")
		return
	}

	wishlist, err := loadWishlist(wishlistID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(ctx, http.StatusNotFound, CodeNotFound, "Wishlist not found")
		} else {
			log.Printf("Failed to load wishlist %d: %v", wishlistID, err)
			respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to retrieve wishlist")
		}
		return
	}

	if !access.CanManage(wishlist, userID) {
		respondError(ctx, http.StatusForbidden, CodeAccessDenied, "Only the owner can delete the wishlist")
		return
	}

	// Cascade in one transaction: reactions and comments of the wishlist's
	// products, the products, the collaborator rows, then the wishlist.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		productIDs := tx.Model(&models.Product{}).Select("id").Where("wishlist_id = ?", wishlist.ID)

		if err := tx.Where("product_id IN (?)", productIDs).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("product_id IN (?)", productIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("wishlist_id = ?", wishlist.ID).Delete(&models.Product{}).Error; err != nil {
			return err
		}

		if err := tx.Where("wishlist_id = ?", wishlist.ID).Delete(&models.WishlistCollaborator{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&models.Wishlist{}, wishlist.ID).Error
	})

	if err != nil {
		log.Printf("Failed to delete wishlist %d: %v", wishlistID, err)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to delete wishlist")
		return
	}

	h.hub.Publish(wishlist.ID, broadcast.EventWishlistDeleted, wishlist.ID)

	ctx.JSON(http.StatusOK, gin.H{"message": "Wishlist deleted successfully"})
}

func (h *WishlistHandler) JoinWishlist(ctx *gin.Context) {
	var body JoinWishlistRequest

	if err := ctx.BindJSON(&body); err != nil {
		respondError(ctx, http.StatusBadRequest, CodeValidation, "Invite code is required")
		return
	}

	user, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, CodeUnauthenticated, "User not authenticated")
		return
	}

	var wishlist models.Wishlist

	err = db.DB.Preload("Collaborators").Where("invite_code = ?", body.InviteCode).First(&wishlist).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(ctx, http.StatusNotFound, CodeNotFound, "Invalid invite code")
		} else {
			log.Printf("Failed to resolve invite code: %v", err)
			respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to join wishlist")
		}
		return
	}

	if wishlist.OwnerID == user.ID {
		respondError(ctx, http.StatusBadRequest, CodeConflict, "You are the owner of this wishlist")
		return
	}

	if access.CanWrite(wishlist, user.ID) {
		respondError(ctx, http.StatusBadRequest, CodeConflict, "You are already a collaborator")
		return
	}

	collaborator := models.WishlistCollaborator{
		WishlistID: wishlist.ID,
		UserID:     user.ID,
	}

	if err := db.DB.Create(&collaborator).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(ctx, http.StatusBadRequest, CodeConflict, "You are already a collaborator")
			return
		}
		log.Printf("Failed to add collaborator: %v", err)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to join wishlist")
		return
	}

	h.hub.Publish(wishlist.ID, broadcast.EventCollaboratorAdded, gin.H{
		"wishlistId": wishlist.ID,
		"user": types.UserResponse{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
	})

	full, err := loadWishlistFull(wishlist.ID)

	if err != nil {
		log.Printf("Failed to reload wishlist %d: %v", wishlist.ID, err)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to join wishlist")
		return
	}

	ctx.JSON(http.StatusOK, types.NewWishlistResponse(full))
}

func (h *WishlistHandler) RemoveCollaborator(ctx *gin.Context) {
	wishlistID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	targetID, ok := parseIDParam(ctx, "user_id")

	if !ok {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, CodeUnauthenticated, "User not authenticated")
		return
	}

	wishlist, err := loadWishlist(wishlistID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(ctx, http.StatusNotFound, CodeNotFound, "Wishlist not found")
		} else {
			log.Printf("Failed to load wishlist %d: %v", wishlistID, err)
			respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to retrieve wishlist")
		}
		return
	}

	// Owner may remove anyone; a collaborator may remove themselves.
	if !access.CanManage(wishlist, userID) && targetID != userID {
		respondError(ctx, http.StatusForbidden, CodeAccessDenied, "Not authorized")
		return
	}

	result := db.DB.Where("wishlist_id = ? AND user_id = ?", wishlist.ID, targetID).Delete(&models.WishlistCollaborator{})

	if result.Error != nil {
		log.Printf("Failed to remove collaborator: %v", result.Error)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to remove collaborator")
		return
	}

	if result.RowsAffected == 0 {
		respondError(ctx, http.StatusNotFound, CodeNotFound, "Collaborator not found")
		return
	}

	// Revoked members stop receiving room events immediately.
	h.hub.Kick(wishlist.ID, targetID)

	h.hub.Publish(wishlist.ID, broadcast.EventCollaboratorRemoved, gin.H{
		"wishlistId": wishlist.ID,
		"userId":     targetID,
	})

	ctx.JSON(http.StatusOK, gin.H{"message": "Collaborator removed successfully"})
}

func (h *WishlistHandler) RotateInviteCode(ctx *gin.Context) {
	wishlistID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, CodeUnauthenticated, "User not authenticated")
		return
	}

	wishlist, err := loadWishlist(wishlistID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(ctx, http.StatusNotFound, CodeNotFound, "Wishlist not found")
		} else {
			log.Printf("Failed to load wishlist %d: %v", wishlistID, err)
			respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to retrieve wishlist")
		}
		return
	}

	if !access.CanManage(wishlist, userID) {
		respondError(ctx, http.StatusForbidden, CodeAccessDenied, "Only the owner can generate a new invite code")
		return
	}

	if err := invite.Rotate(db.DB, &wishlist); err != nil {
		if errors.Is(err, invite.ErrCodeExhausted) {
			respondError(ctx, http.StatusConflict, CodeConflict, "Could not generate a unique invite code")
			return
		}
		log.Printf("Failed to rotate invite code for wishlist %d: %v", wishlistID, err)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to generate invite code")
		return
	}

	// No broadcast: only the owner needs the new code.
	ctx.JSON(http.StatusOK, gin.H{"inviteCode": *wishlist.InviteCode})
}
