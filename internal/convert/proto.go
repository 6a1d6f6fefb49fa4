// Package convert maps domain models to API messages and back.
package convert

import (
	"time"

	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/FredericTischler/safe-zone/internal/api"
	"github.com/FredericTischler/safe-zone/internal/model"
)

func ts(t time.Time) *timestamppb.Timestamp {
	if t.IsZero() {
		return nil
	}
	return timestamppb.New(t)
}

// FromTimestamp returns the zero time for a nil timestamp.
func FromTimestamp(t *timestamppb.Timestamp) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.AsTime()
}

// ToAPIUser drops credentials from u.
func ToAPIUser(u model.User) api.User {
	return api.User{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role), Avatar: u.Avatar}
}

// ToPublicUser keeps only the fields any caller may see.
func ToPublicUser(u model.User) api.PublicUser {
	return api.PublicUser{ID: u.ID, Name: u.Name, Role: string(u.Role), Avatar: u.Avatar}
}

// ToLoginResponse builds the login reply.
func ToLoginResponse(tok model.Tokens, u model.User) *api.LoginResponse {
	return &api.LoginResponse{
		AccessToken: tok.AccessToken,
		ExpiresAt:   ts(tok.ExpiresAt),
		User:        ToAPIUser(u),
	}
}

// FromProductInput copies user-editable product fields.
func FromProductInput(in api.ProductInput) model.ProductFields {
	return model.ProductFields{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Stock:       in.Stock,
	}
}

// ToAPIProduct converts a stored product.
func ToAPIProduct(p model.Product) api.Product {
	return api.Product{
		ID: p.ID,
		ProductInput: api.ProductInput{
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Category:    p.Category,
			Stock:       p.Stock,
		},
		OwnerID:   p.OwnerID,
		OwnerName: p.OwnerName,
		CreatedAt: ts(p.CreatedAt),
		UpdatedAt: ts(p.UpdatedAt),
	}
}

// ToProductsResponse converts a product listing; an empty listing is an empty slice.
func ToProductsResponse(ps []model.Product) *api.ProductsResponse {
	out := make([]api.Product, 0, len(ps))
	for _, p := range ps {
		out = append(out, ToAPIProduct(p))
	}
	return &api.ProductsResponse{Products: out}
}

// ToAPIMedia converts an artifact record.
func ToAPIMedia(a model.Artifact) api.Media {
	return api.Media{
		ID:          a.ID,
		ResourceID:  a.ResourceID,
		Filename:    a.Filename,
		ContentType: a.ContentType,
		Size:        a.Size,
		UploadedBy:  a.UploadedBy,
		URL:         a.URL,
		CreatedAt:   ts(a.CreatedAt),
	}
}

// ToListMediaResponse converts the artifacts of one resource.
func ToListMediaResponse(as []model.Artifact) *api.ListMediaResponse {
	out := make([]api.Media, 0, len(as))
	for _, a := range as {
		out = append(out, ToAPIMedia(a))
	}
	return &api.ListMediaResponse{Media: out}
}
