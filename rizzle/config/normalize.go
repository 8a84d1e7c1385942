package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

func (c *Config) normalize() error {
	if err := c.normalizeAuth(); err != nil {
		return err
	}
	if err := c.normalizeHTTP(); err != nil {
		return err
	}
	if err := c.normalizeStream(); err != nil {
		return err
	}
	c.normalizeLogging()
	return c.normalizeDownload()
}

// override replaces *field with the named environment variable when it is set and not blank.
func override(field *string, name string) {
	if value, ok := os.LookupEnv(name); ok && strings.TrimSpace(value) != "" {
		*field = strings.TrimSpace(value)
	}
}

func (c *Config) normalizeAuth() error {
	override(&c.Auth.SID, "RIZZLE_SID")
	override(&c.Auth.ARL, "RIZZLE_ARL")
	override(&c.Auth.APIToken, "RIZZLE_API_TOKEN")
	override(&c.Auth.CookieFile, "RIZZLE_COOKIE_FILE")
	override(&c.Auth.CredentialsFile, "RIZZLE_CREDENTIALS_FILE")

	c.Auth.SID = strings.TrimSpace(c.Auth.SID)
	c.Auth.ARL = strings.TrimSpace(c.Auth.ARL)
	c.Auth.APIToken = strings.TrimSpace(c.Auth.APIToken)

	var err error
	if c.Auth.CookieFile, err = expandPath(strings.TrimSpace(c.Auth.CookieFile)); err != nil {
		return errors.Wrap(err, "auth.cookie_file")
	}
	if c.Auth.CredentialsFile, err = expandPath(strings.TrimSpace(c.Auth.CredentialsFile)); err != nil {
		return errors.Wrap(err, "auth.credentials_file")
	}
	return nil
}

func (c *Config) normalizeHTTP() error {
	override(&c.HTTP.UserAgent, "RIZZLE_USER_AGENT")
	c.HTTP.UserAgent = strings.TrimSpace(c.HTTP.UserAgent)
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = defaultUserAgent
	}
	c.HTTP.GatewayURL = strings.TrimSpace(c.HTTP.GatewayURL)
	if c.HTTP.GatewayURL == "" {
		c.HTTP.GatewayURL = defaultGatewayURL
	}
	c.HTTP.CDNTemplate = strings.TrimSpace(c.HTTP.CDNTemplate)
	if c.HTTP.CDNTemplate == "" {
		c.HTTP.CDNTemplate = defaultCDNTemplate
	}
	return nil
}

func (c *Config) normalizeStream() error {
	if value, ok := os.LookupEnv("RIZZLE_QUALITY"); ok && strings.TrimSpace(value) != "" {
		quality, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return errors.Wrap(err, "RIZZLE_QUALITY")
		}
		c.Stream.Quality = quality
	}
	if c.Stream.Quality == 0 {
		c.Stream.Quality = defaultQuality
	}
	return nil
}

func (c *Config) normalizeLogging() {
	override(&c.Logging.Level, "RIZZLE_LOG_LEVEL")
	override(&c.Logging.Format, "RIZZLE_LOG_FORMAT")

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

func (c *Config) normalizeDownload() error {
	override(&c.Download.Dir, "RIZZLE_DOWNLOAD_DIR")
	if strings.TrimSpace(c.Download.Dir) == "" {
		c.Download.Dir = defaultDownloadDir
	}

	var err error
	if c.Download.Dir, err = expandPath(strings.TrimSpace(c.Download.Dir)); err != nil {
		return errors.Wrap(err, "download.dir")
	}
	return nil
}
