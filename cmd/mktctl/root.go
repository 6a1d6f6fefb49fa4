package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/FredericTischler/safe-zone/internal/api"
)

// DialFunc opens a connection to addr that sends token as a bearer when non-empty.
type DialFunc func(addr, token string) (*grpc.ClientConn, error)

// RootOptions holds the global flags.
type RootOptions struct {
	IdentityAddr string
	CatalogAddr  string
	MediaAddr    string
	CACert       string
	SkipVerify   bool
	Plaintext    bool
	Timeout      time.Duration

	dial DialFunc
}

// NewRootCommand builds the command tree. A nil dial uses the network.
func NewRootCommand(dial DialFunc) *cobra.Command {
	opts := &RootOptions{}
	if dial != nil {
		opts.dial = dial
	} else {
		opts.dial = opts.dialNetwork
	}

	root := &cobra.Command{
		Use:           "mktctl",
		Short:         "Marketplace command line client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	f := root.PersistentFlags()
	f.StringVar(&opts.IdentityAddr, "identity", envOr("MKT_IDENTITY_ADDR", "localhost:50051"), "identity service address")
	f.StringVar(&opts.CatalogAddr, "catalog", envOr("MKT_CATALOG_ADDR", "localhost:50052"), "catalog service address")
	f.StringVar(&opts.MediaAddr, "media", envOr("MKT_MEDIA_ADDR", "localhost:50053"), "media service address")
	f.StringVar(&opts.CACert, "cacert", "", "CA cert (PEM)")
	f.BoolVar(&opts.SkipVerify, "insecure", false, "skip cert verify (dev)")
	f.BoolVar(&opts.Plaintext, "plaintext", false, "no TLS (local dev)")
	f.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "per-command timeout")

	root.AddCommand(
		newVersionCommand(),
		newRegisterCommand(opts),
		newLoginCommand(opts),
		newLogoutCommand(),
		newProfileCommand(opts),
		newUserCommand(opts),
		newProductCommand(opts),
		newMediaCommand(opts),
	)
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

type bearerCreds struct {
	token  string
	secure bool
}

func (b bearerCreds) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.token}, nil
}
func (b bearerCreds) RequireTransportSecurity() bool { return b.secure }

func (o *RootOptions) transport() (credentials.TransportCredentials, error) {
	if o.Plaintext {
		return insecure.NewCredentials(), nil
	}
	if o.SkipVerify {
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil
	}
	if o.CACert == "" {
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(o.CACert)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

func (o *RootOptions) dialNetwork(addr, token string) (*grpc.ClientConn, error) {
	creds, err := o.transport()
	if err != nil {
		return nil, err
	}
	dopts := []grpc.DialOption{grpc.WithTransportCredentials(creds), api.DialOption()}
	if token != "" {
		dopts = append(dopts, grpc.WithPerRPCCredentials(bearerCreds{token: token, secure: !o.Plaintext}))
	}
	return grpc.NewClient(addr, dopts...)
}

// connect dials addr, attaching the saved token when authed is set.
func (o *RootOptions) connect(addr string, authed bool) (*grpc.ClientConn, error) {
	var token string
	if authed {
		tf, err := loadToken()
		if err != nil {
			return nil, err
		}
		token = tf.AccessToken
	}
	return o.dial(addr, token)
}

func (o *RootOptions) callContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.Timeout)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mktctl %s (%s)\n", version, buildDate)
		},
	}
}
