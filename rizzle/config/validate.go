package config

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateHTTP(); err != nil {
		return err
	}
	if err := c.validateStream(); err != nil {
		return err
	}
	return c.validateLogging()
}

// HasCredentials reports whether any source of account credentials is configured.
func (c *Config) HasCredentials() bool {
	return c.Auth.ARL != "" || c.Auth.CookieFile != "" || c.Auth.CredentialsFile != ""
}

func (c *Config) validateHTTP() error {
	if c.HTTP.TimeoutSeconds < 0 {
		return errors.New("http.timeout_seconds must be zero or positive")
	}
	u, err := url.Parse(c.HTTP.GatewayURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Errorf("http.gateway_url %q is not an absolute URL", c.HTTP.GatewayURL)
	}
	if strings.Count(c.HTTP.CDNTemplate, "%") != 2 || !strings.Contains(c.HTTP.CDNTemplate, "%c") ||
		!strings.Contains(c.HTTP.CDNTemplate, "%s") {
		return errors.Errorf("http.cdn_template %q must contain exactly one %%c and one %%s", c.HTTP.CDNTemplate)
	}
	return nil
}

func (c *Config) validateStream() error {
	switch c.Stream.Quality {
	case 1, 3:
		return nil
	}
	return errors.Errorf("stream.quality must be 1 (128 kbit/s) or 3 (320 kbit/s), got %d", c.Stream.Quality)
}

func (c *Config) validateLogging() error {
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return errors.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
		return nil
	}
	return errors.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
}
