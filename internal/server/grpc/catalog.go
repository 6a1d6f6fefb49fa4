package grpcserver

import (
	"context"

	"github.com/FredericTischler/safe-zone/internal/api"
	"github.com/FredericTischler/safe-zone/internal/auth"
	"github.com/FredericTischler/safe-zone/internal/convert"
	"github.com/FredericTischler/safe-zone/internal/model"
	"github.com/FredericTischler/safe-zone/internal/service"
)

// CatalogServer serves product reads to anyone and mutations to sellers.
type CatalogServer struct {
	catalog service.CatalogService
}

var _ api.CatalogServer = (*CatalogServer)(nil)

func NewCatalogServer(catalog service.CatalogService) *CatalogServer {
	return &CatalogServer{catalog: catalog}
}

func seller(ctx context.Context) (auth.Claims, error) {
	c, err := caller(ctx)
	if err != nil {
		return auth.Claims{}, err
	}
	if err := auth.RequireRole(c, model.RoleSeller); err != nil {
		return auth.Claims{}, err
	}
	return c, nil
}

// CreateProduct stores a product owned by the calling seller.
func (s *CatalogServer) CreateProduct(ctx context.Context, req *api.CreateProductRequest) (*api.ProductResponse, error) {
	c, err := seller(ctx)
	if err != nil {
		return nil, err
	}
	f := convert.FromProductInput(req.Product)
	if err := f.Validate(); err != nil {
		return nil, err
	}
	p, err := s.catalog.Create(ctx, f, c.UserID, c.Name)
	if err != nil {
		return nil, err
	}
	return &api.ProductResponse{Product: convert.ToAPIProduct(p)}, nil
}

func (s *CatalogServer) UpdateProduct(ctx context.Context, req *api.UpdateProductRequest) (*api.ProductResponse, error) {
	c, err := seller(ctx)
	if err != nil {
		return nil, err
	}
	f := convert.FromProductInput(req.Product)
	if err := f.Validate(); err != nil {
		return nil, err
	}
	p, err := s.catalog.Update(ctx, req.ID, f, c.UserID)
	if err != nil {
		return nil, err
	}
	return &api.ProductResponse{Product: convert.ToAPIProduct(p)}, nil
}

func (s *CatalogServer) DeleteProduct(ctx context.Context, req *api.DeleteProductRequest) (*api.DeleteProductResponse, error) {
	c, err := seller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.catalog.Delete(ctx, req.ID, c.UserID); err != nil {
		return nil, err
	}
	return &api.DeleteProductResponse{}, nil
}

func (s *CatalogServer) GetProduct(ctx context.Context, req *api.GetProductRequest) (*api.ProductResponse, error) {
	p, err := s.catalog.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &api.ProductResponse{Product: convert.ToAPIProduct(p)}, nil
}

func (s *CatalogServer) ListProducts(ctx context.Context, _ *api.ListProductsRequest) (*api.ProductsResponse, error) {
	return products(s.catalog.List(ctx))
}

func (s *CatalogServer) ListByCategory(ctx context.Context, req *api.ListByCategoryRequest) (*api.ProductsResponse, error) {
	return products(s.catalog.ListByCategory(ctx, req.Category))
}

func (s *CatalogServer) SearchProducts(ctx context.Context, req *api.SearchProductsRequest) (*api.ProductsResponse, error) {
	return products(s.catalog.Search(ctx, req.Keyword))
}

// MyProducts lists the caller's own products.
func (s *CatalogServer) MyProducts(ctx context.Context, _ *api.MyProductsRequest) (*api.ProductsResponse, error) {
	c, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	return products(s.catalog.ListByOwner(ctx, c.UserID))
}

func products(ps []model.Product, err error) (*api.ProductsResponse, error) {
	if err != nil {
		return nil, err
	}
	return convert.ToProductsResponse(ps), nil
}
