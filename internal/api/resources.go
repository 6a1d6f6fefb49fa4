package api

import (
	"context"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/FredericTischler/safe-zone/internal/errs"
)

// PublicMethods need no bearer token.
var PublicMethods = map[string]bool{
	Identity_Register_FullMethodName:      true,
	Identity_Login_FullMethodName:         true,
	Identity_GetUser_FullMethodName:       true,
	Catalog_GetProduct_FullMethodName:     true,
	Catalog_ListProducts_FullMethodName:   true,
	Catalog_ListByCategory_FullMethodName: true,
	Catalog_SearchProducts_FullMethodName: true,
	Media_ListMedia_FullMethodName:        true,
}

// CatalogResources answers product ownership questions over the catalog API.
type CatalogResources struct {
	Client CatalogClient
}

// ResourceOwner returns the owner of product id, or errs.ErrNotFound when the
// catalog no longer has it.
func (r CatalogResources) ResourceOwner(ctx context.Context, id string) (string, error) {
	resp, err := r.Client.GetProduct(ctx, &GetProductRequest{ID: id})
	if status.Code(err) == codes.NotFound {
		return "", fmt.Errorf("product %s: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("catalog lookup %s: %w", id, err)
	}
	return resp.Product.OwnerID, nil
}
