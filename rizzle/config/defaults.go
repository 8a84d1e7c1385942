package config

const (
	defaultCookieFile      = ""
	defaultCredentialsFile = "~/.config/rizzle/credentials"
	defaultUserAgent       = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	defaultTimeoutSeconds  = 0
	defaultGatewayURL      = "https://www.deezer.com/ajax/gw-light.php"
	defaultCDNTemplate     = "https://e-cdns-proxy-%c.dzcdn.net/mobile/1/%s"
	defaultQuality         = 1
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultDownloadDir     = "~/Music/rizzle"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Auth: Auth{
			CookieFile:      defaultCookieFile,
			CredentialsFile: defaultCredentialsFile,
		},
		HTTP: HTTP{
			UserAgent:      defaultUserAgent,
			TimeoutSeconds: defaultTimeoutSeconds,
			GatewayURL:     defaultGatewayURL,
			CDNTemplate:    defaultCDNTemplate,
		},
		Stream: Stream{
			Quality: defaultQuality,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Download: Download{
			Dir: defaultDownloadDir,
		},
	}
}
