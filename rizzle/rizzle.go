package rizzle

import (
	"context"
	"io/fs"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rizzle-org/rizzle-golang/rizzle/config"
	"github.com/rizzle-org/rizzle-golang/rizzle/connection"
	"github.com/rizzle-org/rizzle-golang/rizzle/core"
	"github.com/rizzle-org/rizzle-golang/rizzle/utils"
)

// ErrNoCredentials is returned when no configured source yields an account token.
var ErrNoCredentials = errors.New("no credentials: set auth.arl, auth.cookie_file or RIZZLE_ARL")

// Login using the sid and arl cookies of a browser session
func Login(ctx context.Context, sid string, arl string, opts ...core.Option) (*core.Session, error) {
	return core.Login(ctx, core.Credentials{SessionID: sid, AccountToken: arl}, opts...)
}

// Login using credentials saved by SaveCredentials at path
func LoginSaved(ctx context.Context, path string, opts ...core.Option) (*core.Session, error) {
	blob, err := utils.BlobFromFile(path)
	if err != nil {
		return nil, err
	}
	return core.Login(ctx, blob.Credentials, opts...)
}

// Login using the cookies of a Netscape cookies.txt export
func LoginCookieFile(ctx context.Context, path string, opts ...core.Option) (*core.Session, error) {
	creds, err := utils.CredentialsFromCookieFile(path)
	if err != nil {
		return nil, err
	}
	return core.Login(ctx, creds, opts...)
}

// ResolveCredentials picks the credentials a configuration points at. An arl set in the configuration or the
// environment comes first, then the cookie file, then the credentials saved by an earlier run.
func ResolveCredentials(cfg *config.Config) (core.Credentials, error) {
	if cfg.Auth.ARL != "" {
		return core.Credentials{
			SessionID:    cfg.Auth.SID,
			AccountToken: cfg.Auth.ARL,
			AccessToken:  cfg.Auth.APIToken,
		}, nil
	}

	if cfg.Auth.CookieFile != "" {
		return utils.CredentialsFromCookieFile(cfg.Auth.CookieFile)
	}

	if cfg.Auth.CredentialsFile != "" {
		blob, err := utils.BlobFromFile(cfg.Auth.CredentialsFile)
		switch {
		case err == nil:
			return blob.Credentials, nil
		case !errors.Is(err, fs.ErrNotExist):
			return core.Credentials{}, err
		}
	}

	return core.Credentials{}, ErrNoCredentials
}

// Options translates the transport settings of cfg into session options.
func Options(cfg *config.Config, logger *zap.Logger) []core.Option {
	return []core.Option{
		core.WithHTTPClient(connection.NewHTTPClient(cfg.Timeout())),
		core.WithGatewayURL(cfg.HTTP.GatewayURL),
		core.WithCDNTemplate(cfg.HTTP.CDNTemplate),
		core.WithUserAgent(cfg.HTTP.UserAgent),
		core.WithLogger(logger),
	}
}

// Login with whatever cfg points at
func LoginConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*core.Session, error) {
	creds, err := ResolveCredentials(cfg)
	if err != nil {
		return nil, err
	}
	return core.Login(ctx, creds, Options(cfg, logger)...)
}

// SaveCredentials stores what a closed session handed back in the credentials file of cfg, if there is one.
func SaveCredentials(cfg *config.Config, creds core.Credentials) error {
	if cfg.Auth.CredentialsFile == "" {
		return nil
	}
	blob := utils.NewBlobInfo(creds)
	return blob.SaveToFile(cfg.Auth.CredentialsFile)
}
