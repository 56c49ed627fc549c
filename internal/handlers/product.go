package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashs79/wishlist-app/db"
	"github.com/yashs79/wishlist-app/internal/access"
	"github.com/yashs79/wishlist-app/internal/broadcast"
	"github.com/yashs79/wishlist-app/internal/models"
	"github.com/yashs79/wishlist-app/internal/types"
	"github.com/yashs79/wishlist-app/internal/utils"
	"gorm.io/gorm"
)

type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" binding:"required,gte=0"`
	ImageURL    string   `json:"imageUrl"`
	WishlistID  uint     `json:"wishlistId" binding:"required"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	ImageURL    *string  `json:"imageUrl"`
}

type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

type ToggleReactionRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

type ProductHandler struct {
	hub *broadcast.Hub
}

func NewProductHandler(hub *broadcast.Hub) *ProductHandler {
	return &ProductHandler{hub: hub}
}

func loadProductFull(id uint) (models.Product, error) {
	var product models.Product

	err := db.DB.
		Preload("AddedBy").
		Preload("LastEditedBy").
		Preload("Comments", func(tx *gorm.DB) *gorm.DB { return tx.Order("comments.id") }).
		Preload("Comments.User").
		Preload("Reactions").
		Preload("Reactions.User").
		Where("id = ?", id).
		First(&product).Error

	return product, err
}

// findProductForWrite resolves the product and enforces the write privilege
// on its wishlist, writing the error response itself on failure.
func findProductForWrite(ctx *gin.Context, productID uint, userID uint) (models.Product, bool) {
	var product models.Product

	if err := db.DB.Where("id = ?", productID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(ctx, http.StatusNotFound, CodeNotFound, "Product not found")
		} else {
			log.Printf("Failed to load product %d: %v", productID, err)
			respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to retrieve product")
		}
		return models.Product{}, false
	}

	wishlist, err := loadWishlist(product.WishlistID)

	if err != nil {
		log.Printf("Failed to load wishlist %d for product %d: %v", product.WishlistID, productID, err)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to retrieve product")
		return models.Product{}, false
	}

	if !access.CanWrite(wishlist, userID) {
		respondError(ctx, http.StatusForbidden, CodeAccessDenied, "Access denied")
		return models.Product{}, false
	}

	return product, true
}

func (h *ProductHandler) CreateProduct(ctx *gin.Context) {
	var body CreateProductRequest

	if err := ctx.BindJSON(&body); err != nil {
		respondError(ctx, http.StatusBadRequest, CodeValidation, "Invalid request")
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, CodeUnauthenticated, "User not authenticated")
		return
	}

	wishlist, err := loadWishlist(body.WishlistID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(ctx, http.StatusNotFound, CodeNotFound, "Wishlist not found")
		} else {
			log.Printf("Failed to load wishlist %d: %v", body.WishlistID, err)
			respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to add product")
		}
		return
	}

	if !access.CanWrite(wishlist, userID) {
		respondError(ctx, http.StatusForbidden, CodeAccessDenied, "Access denied")
		return
	}

	product := models.Product{
		WishlistID:     wishlist.ID,
		Name:           body.Name,
		Description:    body.Description,
		Price:          *body.Price,
		ImageURL:       body.ImageURL,
		AddedByID:      userID,
		LastEditedByID: userID,
	}

	if err := db.DB.Create(&product).Error; err != nil {
		log.Printf("Failed to create product: %v", err)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to add product")
		return
	}

	full, err := loadProductFull(product.ID)

	if err != nil {
		log.Printf("Failed to load created product %d: %v", product.ID, err)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to add product")
		return
	}

	response := types.NewProductResponse(full)

	h.hub.Publish(wishlist.ID, broadcast.EventProductAdded, response)

	ctx.JSON(http.StatusCreated, response)
}

func (h *ProductHandler) GetProduct(ctx *gin.Context) {
	productID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, CodeUnauthenticated, "User not authenticated")
		return
	}

	product, err := loadProductFull(productID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(ctx, http.StatusNotFound, CodeNotFound, "Product not found")
		} else {
			log.Printf("Failed to load product %d: %v", productID, err)
			respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to retrieve product")
		}
		return
	}

	wishlist, err := loadWishlist(product.WishlistID)

	if err != nil {
		log.Printf("Failed to load wishlist %d for product %d: %v", product.WishlistID, productID, err)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to retrieve product")
		return
	}

	if !access.CanRead(wishlist, userID) {
		respondError(ctx, http.StatusForbidden, CodeAccessDenied, "Access denied")
		return
	}

	ctx.JSON(http.StatusOK, types.NewProductResponse(product))
}

func (h *ProductHandler) UpdateProduct(ctx *gin.Context) {
	productID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, CodeUnauthenticated, "User not authenticated")
		return
	}

	var body UpdateProductRequest

	if err := ctx.BindJSON(&body); err != nil {
		respondError(ctx, http.StatusBadRequest, CodeValidation, "Invalid request")
		return
	}

	product, ok := findProductForWrite(ctx, productID, userID)

	if !ok {
		return
	}

	// Field merge, last writer wins: concurrent scalar edits have no
	// optimistic lock, the final state is whichever write lands last.
	if body.Name != nil && *body.Name != "" {
		product.Name = *body.Name
	}
	if body.Description != nil {
		product.Description = *body.Description
	}
	if body.Price != nil {
		product.Price = *body.Price
	}
	if body.ImageURL != nil {
		product.ImageURL = *body.ImageURL
	}

	product.LastEditedByID = userID

	if err := db.DB.Save(&product).Error; err != nil {
		log.Printf("Failed to update product %d: %v", productID, err)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to update product")
		return
	}

	full, err := loadProductFull(product.ID)

	if err != nil {
		log.Printf("Failed to reload product %d: %v", productID, err)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to update product")
		return
	}

	response := types.NewProductResponse(full)

	h.hub.Publish(product.WishlistID, broadcast.EventProductUpdated, response)

	ctx.JSON(http.StatusOK, response)
}

func (h *ProductHandler) DeleteProduct(ctx *gin.Context) {
	productID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, CodeUnauthenticated, "User not authenticated")
		return
	}

	product, ok := findProductForWrite(ctx, productID, userID)

	if !ok {
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("product_id = ?", product.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&models.Product{}, product.ID).Error
	})

	if err != nil {
		log.Printf("Failed to delete product %d: %v", productID, err)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to delete product")
		return
	}

	h.hub.Publish(product.WishlistID, broadcast.EventProductDeleted, product.ID)

	ctx.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func (h *ProductHandler) AddComment(ctx *gin.Context) {
	productID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, CodeUnauthenticated, "User not authenticated")
		return
	}

	var body AddCommentRequest

	if err := ctx.BindJSON(&body); err != nil {
		respondError(ctx, http.StatusBadRequest, CodeValidation, "Comment text is required")
		return
	}

	product, ok := findProductForWrite(ctx, productID, userID)

	if !ok {
		return
	}

	comment := models.Comment{
		ProductID: product.ID,
		UserID:    userID,
		Text:      body.Text,
	}

	if err := db.DB.Create(&comment).Error; err != nil {
		log.Printf("Failed to add comment to product %d: %v", productID, err)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to add comment")
		return
	}

	if err := db.DB.Preload("User").First(&comment, comment.ID).Error; err != nil {
		log.Printf("Failed to reload comment %d: %v", comment.ID, err)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to add comment")
		return
	}

	response := types.NewCommentResponse(comment)

	h.hub.Publish(product.WishlistID, broadcast.EventCommentAdded, gin.H{
		"productId": product.ID,
		"comment":   response,
	})

	ctx.JSON(http.StatusCreated, response)
}

func (h *ProductHandler) ToggleReaction(ctx *gin.Context) {
	productID, ok := parseIDParam(ctx, "id")

	if !ok {
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, CodeUnauthenticated, "User not authenticated")
		return
	}

	var body ToggleReactionRequest

	if err := ctx.BindJSON(&body); err != nil {
		respondError(ctx, http.StatusBadRequest, CodeValidation, "Emoji is required")
		return
	}

	product, ok := findProductForWrite(ctx, productID, userID)

	if !ok {
		return
	}

	// Toggle keyed on (product, user, emoji): a conditional delete, and an
	// insert only when nothing was deleted. The unique index absorbs two
	// identical toggles racing each other.
	result := db.DB.Where("product_id = ? AND user_id = ? AND emoji = ?", product.ID, userID, body.Emoji).Delete(&models.Reaction{})

	if result.Error != nil {
		log.Printf("Failed to toggle reaction on product %d: %v", productID, result.Error)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to update reaction")
		return
	}

	if result.RowsAffected == 0 {
		reaction := models.Reaction{
			ProductID: product.ID,
			UserID:    userID,
			Emoji:     body.Emoji,
		}

		if err := db.DB.Create(&reaction).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Printf("Failed to add reaction to product %d: %v", productID, err)
			respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to update reaction")
			return
		}
	}

	var reactions []models.Reaction

	err = db.DB.Preload("User").Where("product_id = ?", product.ID).Order("id").Find(&reactions).Error

	if err != nil {
		log.Printf("Failed to load reactions for product %d: %v", productID, err)
		respondError(ctx, http.StatusInternalServerError, CodeInternal, "Failed to update reaction")
		return
	}

	response := types.NewReactionResponses(reactions)

	h.hub.Publish(product.WishlistID, broadcast.EventReactionUpdated, gin.H{
		"productId": product.ID,
		"reactions": response,
	})

	ctx.JSON(http.StatusOK, response)
}
