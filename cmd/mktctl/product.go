package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/FredericTischler/safe-zone/internal/api"
)

func productFlags(cmd *cobra.Command, in *api.ProductInput) {
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "product name")
	f.StringVar(&in.Description, "description", "", "description")
	f.Float64Var(&in.Price, "price", 0, "price")
	f.StringVar(&in.Category, "category", "", "category")
	f.Int64Var(&in.Stock, "stock", 0, "units in stock")
}

// catalogRun dials the catalog and prints what call returns.
func catalogRun(opts *RootOptions, authed bool, call func(context.Context, api.CatalogClient) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := opts.callContext(cmd)
		defer cancel()
		conn, err := opts.connect(opts.CatalogAddr, authed)
		if err != nil {
			return err
		}
		defer conn.Close()
		out, err := call(ctx, api.NewCatalogClient(conn))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), out)
	}
}

func newProductCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "product", Short: "Manage catalog products"}

	var create api.ProductInput
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product (sellers)",
		Args:  cobra.NoArgs,
		RunE: catalogRun(opts, true, func(ctx context.Context, c api.CatalogClient) (any, error) {
			resp, err := c.CreateProduct(ctx, &api.CreateProductRequest{Product: create})
			if err != nil {
				return nil, err
			}
			return resp.Product, nil
		}),
	}
	productFlags(createCmd, &create)

	var upd api.UpdateProductRequest
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Replace a product's fields (owner only)",
		Args:  cobra.NoArgs,
		RunE: catalogRun(opts, true, func(ctx context.Context, c api.CatalogClient) (any, error) {
			if upd.ID == "" {
				return nil, errors.New("need --id")
			}
			resp, err := c.UpdateProduct(ctx, &upd)
			if err != nil {
				return nil, err
			}
			return resp.Product, nil
		}),
	}
	updateCmd.Flags().StringVar(&upd.ID, "id", "", "product id")
	productFlags(updateCmd, &upd.Product)

	var id string
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a product (owner only)",
		Args:  cobra.NoArgs,
		RunE: catalogRun(opts, true, func(ctx context.Context, c api.CatalogClient) (any, error) {
			if id == "" {
				return nil, errors.New("need --id")
			}
			return c.DeleteProduct(ctx, &api.DeleteProductRequest{ID: id})
		}),
	}
	deleteCmd.Flags().StringVar(&id, "id", "", "product id")

	var getID string
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show one product",
		Args:  cobra.NoArgs,
		RunE: catalogRun(opts, false, func(ctx context.Context, c api.CatalogClient) (any, error) {
			resp, err := c.GetProduct(ctx, &api.GetProductRequest{ID: getID})
			if err != nil {
				return nil, err
			}
			return resp.Product, nil
		}),
	}
	getCmd.Flags().StringVar(&getID, "id", "", "product id")

	var category string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List products, optionally by category",
		Args:  cobra.NoArgs,
		RunE: catalogRun(opts, false, func(ctx context.Context, c api.CatalogClient) (any, error) {
			var resp *api.ProductsResponse
			var err error
			if category != "" {
				resp, err = c.ListByCategory(ctx, &api.ListByCategoryRequest{Category: category})
			} else {
				resp, err = c.ListProducts(ctx, &api.ListProductsRequest{})
			}
			if err != nil {
				return nil, err
			}
			return resp.Products, nil
		}),
	}
	listCmd.Flags().StringVar(&category, "category", "", "only this category")

	mineCmd := &cobra.Command{
		Use:   "mine",
		Short: "List your own products",
		Args:  cobra.NoArgs,
		RunE: catalogRun(opts, true, func(ctx context.Context, c api.CatalogClient) (any, error) {
			resp, err := c.MyProducts(ctx, &api.MyProductsRequest{})
			if err != nil {
				return nil, err
			}
			return resp.Products, nil
		}),
	}

	var keyword string
	searchCmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search products by name",
		Args:  cobra.ExactArgs(1),
		PreRun: func(_ *cobra.Command, args []string) {
			keyword = args[0]
		},
		RunE: catalogRun(opts, false, func(ctx context.Context, c api.CatalogClient) (any, error) {
			resp, err := c.SearchProducts(ctx, &api.SearchProductsRequest{Keyword: keyword})
			if err != nil {
				return nil, err
			}
			return resp.Products, nil
		}),
	}

	cmd.AddCommand(createCmd, updateCmd, deleteCmd, getCmd, listCmd, mineCmd, searchCmd)
	return cmd
}
