package rizzle

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rizzle-org/rizzle-golang/rizzle/config"
	"github.com/rizzle-org/rizzle-golang/rizzle/core"
	"github.com/rizzle-org/rizzle-golang/rizzle/utils"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Auth.CredentialsFile = filepath.Join(t.TempDir(), "credentials")
	return &cfg
}

func TestResolveCredentialsPrefersExplicitArl(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.SID = "sid"
	cfg.Auth.ARL = "arl"
	cfg.Auth.APIToken = "tok"
	cfg.Auth.CookieFile = "/does/not/matter"

	creds, err := ResolveCredentials(cfg)
	require.NoError(t, err)
	assert.Equal(t, core.Credentials{SessionID: "sid", AccountToken: "arl", AccessToken: "tok"}, creds)
}

func TestResolveCredentialsFromCookieFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.CookieFile = filepath.Join(t.TempDir(), "cookies.txt")
	require.NoError(t, os.WriteFile(cfg.Auth.CookieFile,
		[]byte("# Netscape HTTP Cookie File\n.deezer.com\tTRUE\t/\tTRUE\t2000000000\tarl\tarl-from-cookies\n"), 0o600))

	creds, err := ResolveCredentials(cfg)
	require.NoError(t, err)
	assert.Equal(t, "arl-from-cookies", creds.AccountToken)
}

func TestResolveCredentialsFromSavedBlob(t *testing.T) {
	cfg := testConfig(t)

	_, err := ResolveCredentials(cfg)
	assert.Equal(t, ErrNoCredentials, err)

	saved := core.Credentials{SessionID: "sid", AccountToken: "arl", AccessToken: "tok", LicenseToken: "lic"}
	require.NoError(t, SaveCredentials(cfg, saved))

	creds, err := ResolveCredentials(cfg)
	require.NoError(t, err)
	assert.Equal(t, saved, creds)
}

func TestLoginConfigRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"error": [], "results": {"checkForm": "fresh",
			"USER": {"USER_ID": 1, "OPTIONS": {"license_token": "lic"}}}}`)
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.HTTP.GatewayURL = server.URL
	cfg.Auth.ARL = "arl"

	s, err := LoginConfig(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, SaveCredentials(cfg, s.Close()))

	blob, err := utils.BlobFromFile(cfg.Auth.CredentialsFile)
	require.NoError(t, err)
	assert.Equal(t, "fresh", blob.Credentials.AccessToken)
	assert.Equal(t, "arl", blob.Credentials.AccountToken)
}
