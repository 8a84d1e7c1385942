package connection

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecorate(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "https://www.deezer.com/ajax/gw-light.php", nil)
	Decorate(req, "test-agent", Metadata{SessionID: "fr123", AccountToken: "arl456", LicenseToken: "lic"})

	assert.Equal(t, "*/*", req.Header.Get("Accept"))
	assert.Equal(t, "no-cache", req.Header.Get("Cache-Control"))
	assert.Equal(t, "test-agent", req.Header.Get("User-Agent"))
	assert.Equal(t, "1", req.Header.Get("DNT"))
	assert.Equal(t, "lic", req.Header.Get("X-License-Token"))
	assert.Equal(t, "sid=fr123; arl=arl456", req.Header.Get("Cookie"))

	sid, err := req.Cookie("sid")
	require.NoError(t, err)
	assert.Equal(t, "fr123", sid.Value)
}

func TestDecorateBeforeLogin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://example.com/", nil)
	Decorate(req, "", Metadata{AccountToken: "arl456"})

	assert.Equal(t, DefaultUserAgent, req.Header.Get("User-Agent"))
	assert.Empty(t, req.Header.Get("X-License-Token"))
	assert.Equal(t, "arl=arl456", req.Header.Get("Cookie"))
}

type closeRecorder struct {
	closed bool
}

func (c *closeRecorder) Do(req *http.Request) (*http.Response, error) { return nil, nil }
func (c *closeRecorder) CloseIdleConnections()                        { c.closed = true }

type plainDoer struct{}

func (plainDoer) Do(req *http.Request) (*http.Response, error) { return nil, nil }

func TestCloseIdle(t *testing.T) {
	rec := &closeRecorder{}
	CloseIdle(rec)
	assert.True(t, rec.closed)

	// No panic on doers without idle connections
	CloseIdle(plainDoer{})
	CloseIdle(NewHTTPClient(0))
}
