package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/FredericTischler/safe-zone/internal/api"
	"github.com/FredericTischler/safe-zone/internal/convert"
	"github.com/FredericTischler/safe-zone/internal/upload"
)

func newRegisterCommand(opts *RootOptions) *cobra.Command {
	var req api.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Email == "" || req.Password == "" {
				return errors.New("need --email and --password")
			}
			ctx, cancel := opts.callContext(cmd)
			defer cancel()
			conn, err := opts.connect(opts.IdentityAddr, false)
			if err != nil {
				return err
			}
			defer conn.Close()

			resp, err := api.NewIdentityClient(conn).Register(ctx, &req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.UserID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email (login)")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	cmd.Flags().StringVar(&req.Role, "role", "CLIENT", "CLIENT or SELLER")
	return cmd
}

func newLoginCommand(opts *RootOptions) *cobra.Command {
	var req api.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Email == "" || req.Password == "" {
				return errors.New("need --email and --password")
			}
			ctx, cancel := opts.callContext(cmd)
			defer cancel()
			conn, err := opts.connect(opts.IdentityAddr, false)
			if err != nil {
				return err
			}
			defer conn.Close()

			resp, err := api.NewIdentityClient(conn).Login(ctx, &req)
			if err != nil {
				return err
			}
			if err := saveToken(tokenFile{
				AccessToken: resp.AccessToken,
				ExpiresAt:   convert.FromTimestamp(resp.ExpiresAt),
				UserID:      resp.User.ID,
				Role:        resp.User.Role,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok (%s, %s)\n", resp.User.Email, resp.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "email")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return removeToken()
		},
	}
}

func newProfileCommand(opts *RootOptions) *cobra.Command {
	var name, avatar string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := opts.callContext(cmd)
			defer cancel()
			conn, err := opts.connect(opts.IdentityAddr, true)
			if err != nil {
				return err
			}
			defer conn.Close()
			cli := api.NewIdentityClient(conn)

			if avatar != "" {
				data, err := readFile(avatar)
				if err != nil {
					return err
				}
				resp, err := cli.UploadAvatar(ctx, &api.UploadAvatarRequest{ContentType: upload.ContentTypeFor(avatar), Data: data})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.URL)
			}
			var resp *api.ProfileResponse
			if name != "" {
				resp, err = cli.UpdateProfile(ctx, &api.UpdateProfileRequest{Name: name})
			} else {
				resp, err = cli.Profile(ctx, &api.ProfileRequest{})
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp.User)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&avatar, "avatar", "", "image file to upload as avatar")
	return cmd
}

func newUserCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "user <id>",
		Short: "Show the public profile of any user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.callContext(cmd)
			defer cancel()
			conn, err := opts.connect(opts.IdentityAddr, false)
			if err != nil {
				return err
			}
			defer conn.Close()
			resp, err := api.NewIdentityClient(conn).GetUser(ctx, &api.GetUserRequest{ID: args[0]})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp.User)
		},
	}
}

// readFile reads p, or stdin for "-".
func readFile(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}
