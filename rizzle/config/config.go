package config

import (
	_ "embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

//go:embed sample_config.toml
var sampleConfig string

// Auth holds the session cookies, or where to find them.
type Auth struct {
	SID string `toml:"sid"`
	ARL string `toml:"arl"`
	// APIToken is an access token kept from an earlier run. Login replaces it.
	APIToken        string `toml:"api_token"`
	CookieFile      string `toml:"cookie_file"`
	CredentialsFile string `toml:"credentials_file"`
}

// HTTP contains transport settings.
type HTTP struct {
	UserAgent string `toml:"user_agent"`
	// TimeoutSeconds bounds whole requests, downloads included. Zero means no limit.
	TimeoutSeconds int    `toml:"timeout_seconds"`
	GatewayURL     string `toml:"gateway_url"`
	CDNTemplate    string `toml:"cdn_template"`
}

// Stream contains playback and download settings.
type Stream struct {
	Quality int `toml:"quality"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Download contains configuration for saved tracks.
type Download struct {
	Dir string `toml:"dir"`
}

// Config encapsulates all configuration values for rizzle.
type Config struct {
	Auth     Auth     `toml:"auth"`
	HTTP     HTTP     `toml:"http"`
	Stream   Stream   `toml:"stream"`
	Logging  Logging  `toml:"logging"`
	Download Download `toml:"download"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/rizzle/config.toml")
}

// Load locates, parses, and validates a configuration file, then applies the environment. A .env file in the
// working directory or next to the configuration file is read first; variables already set take precedence over it.
// It returns the config, the resolved path, and whether that file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, errors.Wrap(err, "open config")
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, errors.Wrap(err, "parse config")
		}
	}

	if err := loadDotEnv(filepath.Dir(resolvedPath)); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, errors.Wrap(err, "stat config")
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("rizzle.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func loadDotEnv(configDir string) error {
	candidates := []string{".env"}
	if configDir != "" {
		candidates = append(candidates, filepath.Join(configDir, ".env"))
	}

	var files []string
	seen := map[string]bool{}
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			files = append(files, abs)
		}
	}

	if len(files) == 0 {
		return nil
	}
	return errors.Wrap(godotenv.Load(files...), "load .env")
}

// Timeout returns the configured request timeout; zero means none.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// EnsureDirectories creates the download directory and the directory of the credentials file.
func (c *Config) EnsureDirectories() error {
	if c.Download.Dir != "" {
		if err := os.MkdirAll(c.Download.Dir, 0o755); err != nil {
			return errors.Wrapf(err, "create directory %q", c.Download.Dir)
		}
	}
	if c.Auth.CredentialsFile != "" {
		dir := filepath.Dir(c.Auth.CredentialsFile)
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return errors.Wrapf(err, "create directory %q", dir)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve home directory")
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", errors.Wrapf(err, "resolve absolute path for %q", cleaned)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create config directory")
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return errors.Wrap(err, "write sample config")
	}
	return nil
}
