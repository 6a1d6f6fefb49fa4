package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FredericTischler/safe-zone/internal/api"
	"github.com/FredericTischler/safe-zone/internal/upload"
)

func newMediaCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "media", Short: "Manage product images"}

	var product, contentType string
	uploadCmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image for a product (sellers)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if product == "" {
				return errors.New("need --product")
			}
			data, err := readFile(args[0])
			if err != nil {
				return err
			}
			ct := contentType
			if ct == "" {
				ct = upload.ContentTypeFor(args[0])
			}
			ctx, cancel := opts.callContext(cmd)
			defer cancel()
			conn, err := opts.connect(opts.MediaAddr, true)
			if err != nil {
				return err
			}
			defer conn.Close()

			resp, err := api.NewMediaClient(conn).UploadMedia(ctx, &api.UploadMediaRequest{
				ResourceID: product, ContentType: ct, Data: data,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp.Media)
		},
	}
	uploadCmd.Flags().StringVar(&product, "product", "", "product id")
	uploadCmd.Flags().StringVar(&contentType, "type", "", "content type (default: from extension)")

	var listProduct string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List a product's images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := opts.callContext(cmd)
			defer cancel()
			conn, err := opts.connect(opts.MediaAddr, false)
			if err != nil {
				return err
			}
			defer conn.Close()
			resp, err := api.NewMediaClient(conn).ListMedia(ctx, &api.ListMediaRequest{ResourceID: listProduct})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp.Media)
		},
	}
	listCmd.Flags().StringVar(&listProduct, "product", "", "product id")

	deleteCmd := &cobra.Command{
		Use:   "delete <media-id>",
		Short: "Delete one of your images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.callContext(cmd)
			defer cancel()
			conn, err := opts.connect(opts.MediaAddr, true)
			if err != nil {
				return err
			}
			defer conn.Close()
			if _, err := api.NewMediaClient(conn).DeleteMedia(ctx, &api.DeleteMediaRequest{ID: args[0]}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted")
			return nil
		},
	}

	cmd.AddCommand(uploadCmd, listCmd, deleteCmd)
	return cmd
}
