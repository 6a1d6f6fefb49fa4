package api

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Identity messages.

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type RegisterResponse struct {
	UserID string `json:"userId"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

type LoginResponse struct {
	AccessToken string                 `json:"accessToken"`
	ExpiresAt   *timestamppb.Timestamp `json:"expiresAt"`
	User        User                   `json:"user"`
}

type ProfileRequest struct{}

type UpdateProfileRequest struct {
	Name string `json:"name"`
}

type ProfileResponse struct {
	User User `json:"user"`
}

type GetUserRequest struct {
	ID string `json:"id"`
}

// PublicUser is what any caller may learn about an account.
type PublicUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

type GetUserResponse struct {
	User PublicUser `json:"user"`
}

type UploadAvatarRequest struct {
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

type UploadAvatarResponse struct {
	URL string `json:"url"`
}

// Catalog messages.

type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Stock       int64   `json:"stock"`
}

type Product struct {
	ID string `json:"id"`
	ProductInput
	OwnerID   string                 `json:"ownerId"`
	OwnerName string                 `json:"ownerName"`
	CreatedAt *timestamppb.Timestamp `json:"createdAt"`
	UpdatedAt *timestamppb.Timestamp `json:"updatedAt"`
}

type CreateProductRequest struct {
	Product ProductInput `json:"product"`
}

type UpdateProductRequest struct {
	ID      string       `json:"id"`
	Product ProductInput `json:"product"`
}

type DeleteProductRequest struct {
	ID string `json:"id"`
}

type DeleteProductResponse struct{}

type GetProductRequest struct {
	ID string `json:"id"`
}

type ProductResponse struct {
	Product Product `json:"product"`
}

type ListProductsRequest struct{}

type MyProductsRequest struct{}

type ListByCategoryRequest struct {
	Category string `json:"category"`
}

type SearchProductsRequest struct {
	Keyword string `json:"keyword"`
}

type ProductsResponse struct {
	Products []Product `json:"products"`
}

// Media messages.

type Media struct {
	ID          string                 `json:"id"`
	ResourceID  string                 `json:"resourceId"`
	Filename    string                 `json:"filename"`
	ContentType string                 `json:"contentType"`
	Size        int64                  `json:"size"`
	UploadedBy  string                 `json:"uploadedBy"`
	URL         string                 `json:"url"`
	CreatedAt   *timestamppb.Timestamp `json:"createdAt"`
}

type UploadMediaRequest struct {
	ResourceID  string `json:"resourceId"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

type MediaResponse struct {
	Media Media `json:"media"`
}

type ListMediaRequest struct {
	ResourceID string `json:"resourceId"`
}

type ListMediaResponse struct {
	Media []Media `json:"media"`
}

type DeleteMediaRequest struct {
	ID string `json:"id"`
}

type DeleteMediaResponse struct{}
