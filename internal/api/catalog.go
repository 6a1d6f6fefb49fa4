package api

import (
	"context"

	"google.golang.org/grpc"
)

// CatalogServiceName is the fully qualified catalog service name.
const CatalogServiceName = "marketplace.catalog.v1.Catalog"

const (
	Catalog_CreateProduct_FullMethodName  = "/" + CatalogServiceName + "/CreateProduct"
	Catalog_UpdateProduct_FullMethodName  = "/" + CatalogServiceName + "/UpdateProduct"
	Catalog_DeleteProduct_FullMethodName  = "/" + CatalogServiceName + "/DeleteProduct"
	Catalog_GetProduct_FullMethodName     = "/" + CatalogServiceName + "/GetProduct"
	Catalog_ListProducts_FullMethodName   = "/" + CatalogServiceName + "/ListProducts"
	Catalog_ListByCategory_FullMethodName = "/" + CatalogServiceName + "/ListByCategory"
	Catalog_SearchProducts_FullMethodName = "/" + CatalogServiceName + "/SearchProducts"
	Catalog_MyProducts_FullMethodName     = "/" + CatalogServiceName + "/MyProducts"
)

// CatalogServer is implemented by the catalog service.
type CatalogServer interface {
	CreateProduct(context.Context, *CreateProductRequest) (*ProductResponse, error)
	UpdateProduct(context.Context, *UpdateProductRequest) (*ProductResponse, error)
	DeleteProduct(context.Context, *DeleteProductRequest) (*DeleteProductResponse, error)
	GetProduct(context.Context, *GetProductRequest) (*ProductResponse, error)
	ListProducts(context.Context, *ListProductsRequest) (*ProductsResponse, error)
	ListByCategory(context.Context, *ListByCategoryRequest) (*ProductsResponse, error)
	SearchProducts(context.Context, *SearchProductsRequest) (*ProductsResponse, error)
	MyProducts(context.Context, *MyProductsRequest) (*ProductsResponse, error)
}

var Catalog_ServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(CatalogServiceName, "CreateProduct", CatalogServer.CreateProduct),
		unary(CatalogServiceName, "UpdateProduct", CatalogServer.UpdateProduct),
		unary(CatalogServiceName, "DeleteProduct", CatalogServer.DeleteProduct),
		unary(CatalogServiceName, "GetProduct", CatalogServer.GetProduct),
		unary(CatalogServiceName, "ListProducts", CatalogServer.ListProducts),
		unary(CatalogServiceName, "ListByCategory", CatalogServer.ListByCategory),
		unary(CatalogServiceName, "SearchProducts", CatalogServer.SearchProducts),
		unary(CatalogServiceName, "MyProducts", CatalogServer.MyProducts),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marketplace/catalog/v1/catalog.proto",
}

func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&Catalog_ServiceDesc, srv)
}

// CatalogClient is the client API for the catalog service.
type CatalogClient interface {
	CreateProduct(ctx context.Context, in *CreateProductRequest, opts ...grpc.CallOption) (*ProductResponse, error)
	UpdateProduct(ctx context.Context, in *UpdateProductRequest, opts ...grpc.CallOption) (*ProductResponse, error)
	DeleteProduct(ctx context.Context, in *DeleteProductRequest, opts ...grpc.CallOption) (*DeleteProductResponse, error)
	GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*ProductResponse, error)
	ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ProductsResponse, error)
	ListByCategory(ctx context.Context, in *ListByCategoryRequest, opts ...grpc.CallOption) (*ProductsResponse, error)
	SearchProducts(ctx context.Context, in *SearchProductsRequest, opts ...grpc.CallOption) (*ProductsResponse, error)
	MyProducts(ctx context.Context, in *MyProductsRequest, opts ...grpc.CallOption) (*ProductsResponse, error)
}

type catalogClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogClient(cc grpc.ClientConnInterface) CatalogClient {
	return &catalogClient{cc}
}

func (c *catalogClient) CreateProduct(ctx context.Context, in *CreateProductRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	return invoke[ProductResponse](ctx, c.cc, Catalog_CreateProduct_FullMethodName, in, opts...)
}

func (c *catalogClient) UpdateProduct(ctx context.Context, in *UpdateProductRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	return invoke[ProductResponse](ctx, c.cc, Catalog_UpdateProduct_FullMethodName, in, opts...)
}

func (c *catalogClient) DeleteProduct(ctx context.Context, in *DeleteProductRequest, opts ...grpc.CallOption) (*DeleteProductResponse, error) {
	return invoke[DeleteProductResponse](ctx, c.cc, Catalog_DeleteProduct_FullMethodName, in, opts...)
}

func (c *catalogClient) GetProduct(ctx context.Context, in *GetProductRequest, opts ...grpc.CallOption) (*ProductResponse, error) {
	return invoke[ProductResponse](ctx, c.cc, Catalog_GetProduct_FullMethodName, in, opts...)
}

func (c *catalogClient) ListProducts(ctx context.Context, in *ListProductsRequest, opts ...grpc.CallOption) (*ProductsResponse, error) {
	return invoke[ProductsResponse](ctx, c.cc, Catalog_ListProducts_FullMethodName, in, opts...)
}

func (c *catalogClient) ListByCategory(ctx context.Context, in *ListByCategoryRequest, opts ...grpc.CallOption) (*ProductsResponse, error) {
	return invoke[ProductsResponse](ctx, c.cc, Catalog_ListByCategory_FullMethodName, in, opts...)
}

func (c *catalogClient) SearchProducts(ctx context.Context, in *SearchProductsRequest, opts ...grpc.CallOption) (*ProductsResponse, error) {
	return invoke[ProductsResponse](ctx, c.cc, Catalog_SearchProducts_FullMethodName, in, opts...)
}

func (c *catalogClient) MyProducts(ctx context.Context, in *MyProductsRequest, opts ...grpc.CallOption) (*ProductsResponse, error) {
	return invoke[ProductsResponse](ctx, c.cc, Catalog_MyProducts_FullMethodName, in, opts...)
}
