package types

import (
	"time"

	"github.com/yashs79/wishlist-app/internal/models"
)

// UserResponse is the display-ready summary of a referenced user. It is the
// only shape in which user data leaves the API; credentials never do.
type UserResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CommentResponse struct {
	ID        uint         `json:"id"`
	Text      string       `json:"text"`
	User      UserResponse `json:"user"`
	CreatedAt time.Time    `json:"createdAt"`
}

type ReactionResponse struct {
	ID    uint         `json:"id"`
	Emoji string       `json:"emoji"`
	User  UserResponse `json:"user"`
}

type ProductResponse struct {
	ID           uint               `json:"id"`
	WishlistID   uint               `json:"wishlistId"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Price        float64            `json:"price"`
	ImageURL     string             `json:"imageUrl"`
	AddedBy      UserResponse       `json:"addedBy"`
	LastEditedBy UserResponse       `json:"lastEditedBy"`
	Comments     []CommentResponse  `json:"comments"`
	Reactions    []ReactionResponse `json:"reactions"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

type WishlistResponse struct {
	ID            uint              `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	IsPrivate     bool              `json:"isPrivate"`
	InviteCode    string            `json:"inviteCode,omitempty"`
	Owner         UserResponse      `json:"owner"`
	Collaborators []UserResponse    `json:"collaborators"`
	Products      []ProductResponse `json:"products"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

func NewCommentResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		Text:      comment.Text,
		User:      NewUserResponse(comment.User),
		CreatedAt: comment.CreatedAt,
	}
}

func NewReactionResponse(reaction models.Reaction) ReactionResponse {
	return ReactionResponse{
		ID:    reaction.ID,
		Emoji: reaction.Emoji,
		User:  NewUserResponse(reaction.User),
	}
}

func NewReactionResponses(reactions []models.Reaction) []ReactionResponse {
	response := make([]ReactionResponse, 0, len(reactions))

	for _, reaction := range reactions {
		response = append(response, NewReactionResponse(reaction))
	}

	return response
}

func NewProductResponse(product models.Product) ProductResponse {
	comments := make([]CommentResponse, 0, len(product.Comments))

	for _, comment := range product.Comments {
		comments = append(comments, NewCommentResponse(comment))
	}

	return ProductResponse{
		ID:           product.ID,
		WishlistID:   product.WishlistID,
		Name:         product.Name,
		Description:  product.Description,
		Price:        product.Price,
		ImageURL:     product.ImageURL,
		AddedBy:      NewUserResponse(product.AddedBy),
		LastEditedBy: NewUserResponse(product.LastEditedBy),
		Comments:     comments,
		Reactions:    NewReactionResponses(product.Reactions),
		CreatedAt:    product.CreatedAt,
		UpdatedAt:    product.UpdatedAt,
	}
}

func NewWishlistResponse(wishlist models.Wishlist) WishlistResponse {
	collaborators := make([]UserResponse, 0, len(wishlist.Collaborators))

	for _, collaborator := range wishlist.Collaborators {
		collaborators = append(collaborators, NewUserResponse(collaborator.User))
	}

	products := make([]ProductResponse, 0, len(wishlist.Products))

	for _, product := range wishlist.Products {
		products = append(products, NewProductResponse(product))
	}

	var inviteCode string

	if wishlist.InviteCode != nil {
		inviteCode = *wishlist.InviteCode
	}

	return WishlistResponse{
		ID:            wishlist.ID,
		Name:          wishlist.Name,
		Description:   wishlist.Description,
		IsPrivate:     wishlist.IsPrivate,
		InviteCode:    inviteCode,
		Owner:         NewUserResponse(wishlist.Owner),
		Collaborators: collaborators,
		Products:      products,
		CreatedAt:     wishlist.CreatedAt,
		UpdatedAt:     wishlist.UpdatedAt,
	}
}
